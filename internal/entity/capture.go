package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CaptureStatus string

const (
	CaptureProcessing CaptureStatus = "PROCESSING"
	CaptureSent       CaptureStatus = "SENT"
	CaptureError      CaptureStatus = "ERROR"
)

// Capture é o registro vinculante: no máximo um por lead.
type Capture struct {
	ID         string        `json:"id"`
	LeadID     string        `json:"leadId"`
	BrokerID   string        `json:"brokerId"`
	StoreID    string        `json:"storeId"`
	Status     CaptureStatus `json:"status"`
	CapturedAt time.Time     `json:"capturedAt"`
	SentAt     *time.Time    `json:"sentAt,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Lead       *Lead         `json:"lead,omitempty"`
}

func NewCapture(lead Lead, brokerID string, now time.Time) *Capture {
	return &Capture{
		ID:         uuid.New().String(),
		LeadID:     lead.ID,
		BrokerID:   brokerID,
		StoreID:    lead.StoreID,
		Status:     CaptureProcessing,
		CapturedAt: now,
	}
}

type CaptureStats struct {
	Hourly int `json:"hourly"`
	Daily  int `json:"daily"`
	Total  int `json:"total"`
}

type CaptureRepositoryInterface interface {
	Record(ctx context.Context, lead Lead, c Capture) error
	Discard(ctx context.Context, captureID string, lead Lead) error
	UpdateStatus(ctx context.Context, c Capture) error
	FindSince(ctx context.Context, since time.Time) ([]Capture, error)
	TotalsByBroker(ctx context.Context) (map[string]int, error)
	ListByBroker(ctx context.Context, brokerID string, limit int) ([]Capture, error)
}
