package usecase

import (
	"context"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/queue"
	"github.com/xavierca1/lead-roulette/internal/roulette"
)

// Roulette é a parte do engine que os casos de uso usam.
type Roulette interface {
	Enqueue(ctx context.Context, in roulette.NewLeadInput) (entity.Lead, error)
	Checkin(ctx context.Context, broker entity.Broker, req roulette.CheckinRequest) (entity.Attendance, error)
	Checkout(brokerID string) (entity.Attendance, error)
	Status(brokerID string) (entity.Attendance, bool)
	Capture(ctx context.Context, brokerID, leadID string) (entity.Capture, error)
	HandOffResult(ctx context.Context, captureID string, status entity.CaptureStatus, detail string) (entity.Capture, error)
	Stats(brokerID string) entity.CaptureStats
	Waiting(storeID string) ([]entity.Lead, error)
	Assigned(brokerID string) []entity.Lead
	Stores() []entity.Store
	Store(storeID string) (entity.Store, bool)
	Overview() roulette.Overview
}

var _ Roulette = (*roulette.Engine)(nil)

type QueueProducerInterface interface {
	PublishHandOff(ctx context.Context, payload queue.HandOffPayload) error
}

type BrokerRepository interface {
	Upsert(ctx context.Context, b entity.Broker) error
}

type CaptureHistory interface {
	ListByBroker(ctx context.Context, brokerID string, limit int) ([]entity.Capture, error)
}
