package entity

import (
	"context"
	"time"
)

// DashboardCounts são os contadores somente leitura do painel admin.
type DashboardCounts struct {
	Stores        int `json:"stores"`
	Leads         int `json:"leads"`
	Captures      int `json:"captures"`
	LeadsToday    int `json:"leadsToday"`
	CapturesToday int `json:"capturesToday"`
	ActiveBrokers int `json:"activeBrokers"`
}

type DashboardRepositoryInterface interface {
	Counts(ctx context.Context, since time.Time) (DashboardCounts, error)
}
