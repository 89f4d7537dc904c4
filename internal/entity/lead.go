package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadWaiting  LeadStatus = "WAITING"
	LeadAssigned LeadStatus = "ASSIGNED"
	LeadCaptured LeadStatus = "CAPTURED"
	LeadExpired  LeadStatus = "EXPIRED"
)

// Terminal indica que o lead não volta mais para a fila.
func (s LeadStatus) Terminal() bool {
	return s == LeadCaptured || s == LeadExpired
}

type Lead struct {
	ID         string          `json:"id"`
	Campaign   string          `json:"campaign"`
	AdSet      string          `json:"adSet"`
	IsHot      bool            `json:"isHot"`
	Status     LeadStatus      `json:"status"`
	ReceivedAt time.Time       `json:"receivedAt"`
	AssignedAt *time.Time      `json:"assignedAt,omitempty"`
	CapturedAt *time.Time      `json:"capturedAt,omitempty"`
	AssignedTo string          `json:"assignedTo,omitempty"`
	StoreID    string          `json:"storeId"`
	Payload    json.RawMessage `json:"leadData,omitempty"` // opaco: só armazena e repassa
}

func NewLead(campaign, adSet string, isHot bool, storeID string, payload json.RawMessage, now time.Time) *Lead {
	return &Lead{
		ID:         uuid.New().String(),
		Campaign:   campaign,
		AdSet:      adSet,
		IsHot:      isHot,
		Status:     LeadWaiting,
		ReceivedAt: now,
		StoreID:    storeID,
		Payload:    payload,
	}
}

type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead Lead) error
	FindOpen(ctx context.Context) ([]Lead, error)
}
