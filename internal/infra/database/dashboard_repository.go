package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type DashboardRepository struct {
	DB *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

// Counts: since marca o início do "hoje" no fuso do chamador.
func (r *DashboardRepository) Counts(ctx context.Context, since time.Time) (entity.DashboardCounts, error) {
	var c entity.DashboardCounts
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM stores),
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM captures),
			(SELECT COUNT(*) FROM leads WHERE received_at >= $1),
			(SELECT COUNT(*) FROM captures WHERE captured_at >= $1),
			(SELECT COUNT(*) FROM attendances WHERE status = 'PRESENT')
	`, since).Scan(&c.Stores, &c.Leads, &c.Captures, &c.LeadsToday, &c.CapturesToday, &c.ActiveBrokers)
	if err != nil {
		return entity.DashboardCounts{}, fmt.Errorf("contadores do painel: %w", err)
	}
	return c, nil
}
