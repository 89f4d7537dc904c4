package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/roulette"
)

type IngestLeadUseCase struct {
	Engine Roulette
	Log    *slog.Logger
}

func NewIngestLeadUseCase(engine Roulette, log *slog.Logger) *IngestLeadUseCase {
	return &IngestLeadUseCase{Engine: engine, Log: log}
}

// Execute recebe o lead de uma campanha. O lead volta já ASSIGNED quando
// havia corretor elegível na loja.
func (uc *IngestLeadUseCase) Execute(ctx context.Context, input IngestLeadInput) (LeadView, error) {
	if err := validateInput(input); err != nil {
		return LeadView{}, err
	}

	lead, err := uc.Engine.Enqueue(ctx, roulette.NewLeadInput{
		Campaign: input.Campaign,
		AdSet:    input.AdSet,
		IsHot:    input.IsHot,
		StoreID:  input.StoreID,
		Payload:  input.LeadData,
	})
	if err != nil {
		return LeadView{}, FromEngineError(err)
	}

	uc.Log.Info("lead recebido", "lead_id", lead.ID, "store_id", lead.StoreID, "hot", lead.IsHot, "status", lead.Status)
	return newLeadView(lead, uc.Engine.Store), nil
}

// CreateTestLead é o atalho do admin para ver a roleta girar.
func (uc *IngestLeadUseCase) CreateTestLead(ctx context.Context, input TestLeadInput) (LeadView, error) {
	if err := validateInput(input); err != nil {
		return LeadView{}, err
	}

	storeID := input.StoreID
	if storeID == "" {
		stores := uc.Engine.Stores()
		if len(stores) == 0 {
			return LeadView{}, FromEngineError(entity.ErrStoreNotFound)
		}
		storeID = stores[0].ID
	}

	payload, _ := json.Marshal(map[string]any{"name": "Lead de teste", "source": "admin"})
	return uc.Execute(ctx, IngestLeadInput{
		Campaign: input.Campaign,
		AdSet:    input.AdSet,
		IsHot:    input.IsHot,
		StoreID:  storeID,
		LeadData: payload,
	})
}
