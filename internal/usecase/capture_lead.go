package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/queue"
)

type CaptureLeadUseCase struct {
	Engine Roulette
	Queue  QueueProducerInterface
	Log    *slog.Logger
}

func NewCaptureLeadUseCase(engine Roulette, q QueueProducerInterface, log *slog.Logger) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{Engine: engine, Queue: q, Log: log}
}

// Execute confirma a captura e publica o hand-off para o CRM. A captura já
// é definitiva quando a publicação acontece: se a fila falhar, a captura
// fica como ERROR para a retentativa externa, mas não é desfeita.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, broker entity.Broker, leadID string) (CaptureView, error) {
	c, err := uc.Engine.Capture(ctx, broker.ID, leadID)
	if err != nil {
		return CaptureView{}, FromEngineError(err)
	}

	payload := queue.HandOffPayload{
		CaptureID:   c.ID,
		LeadID:      c.LeadID,
		BrokerID:    broker.ID,
		BrokerName:  broker.Name,
		BrokerEmail: broker.Email,
		StoreID:     c.StoreID,
		CapturedAt:  c.CapturedAt,
	}
	if c.Lead != nil {
		payload.Campaign = c.Lead.Campaign
		payload.AdSet = c.Lead.AdSet
		payload.IsHot = c.Lead.IsHot
		payload.LeadData = c.Lead.Payload
	}
	if s, ok := uc.Engine.Store(c.StoreID); ok {
		payload.StoreName = s.Name
	}

	if err := uc.Queue.PublishHandOff(ctx, payload); err != nil {
		uc.Log.Error("hand-off não publicado", "capture_id", c.ID, "lead_id", c.LeadID, "error", err)
		if updated, herr := uc.Engine.HandOffResult(ctx, c.ID, entity.CaptureError, "publish: "+err.Error()); herr != nil {
			uc.Log.Error("status ERROR não gravado", "capture_id", c.ID, "error", herr)
		} else {
			c.Status = updated.Status
		}
	}

	return newCaptureView(c, uc.Engine.Store), nil
}
