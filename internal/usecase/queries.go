package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type QueryUseCase struct {
	Engine    Roulette
	History   CaptureHistory
	Dashboard entity.DashboardRepositoryInterface
	Location  *time.Location // define o "hoje" do painel
}

func NewQueryUseCase(engine Roulette, history CaptureHistory, dashboard entity.DashboardRepositoryInterface, loc *time.Location) *QueryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryUseCase{Engine: engine, History: history, Dashboard: dashboard, Location: loc}
}

func (uc *QueryUseCase) Stores() []StoreView {
	stores := uc.Engine.Stores()
	out := make([]StoreView, 0, len(stores))
	for _, s := range stores {
		out = append(out, NewStoreView(s))
	}
	return out
}

// Waiting: storeID vazio junta todas as lojas na mesma ordem da fila.
func (uc *QueryUseCase) Waiting(storeID string) ([]LeadView, error) {
	leads, err := uc.Engine.Waiting(storeID)
	if err != nil {
		return nil, FromEngineError(err)
	}
	return uc.leadViews(leads), nil
}

func (uc *QueryUseCase) Assigned(brokerID string) []LeadView {
	return uc.leadViews(uc.Engine.Assigned(brokerID))
}

func (uc *QueryUseCase) Stats(brokerID string) entity.CaptureStats {
	return uc.Engine.Stats(brokerID)
}

const maxHistory = 200

func (uc *QueryUseCase) MyCaptures(ctx context.Context, brokerID string, limit int) ([]CaptureView, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	captures, err := uc.History.ListByBroker(ctx, brokerID, limit)
	if err != nil {
		return nil, FromEngineError(&entity.TransientError{Op: "captures", Err: err})
	}
	out := make([]CaptureView, 0, len(captures))
	for _, c := range captures {
		out = append(out, newCaptureView(c, uc.Engine.Store))
	}
	return out, nil
}

// AdminDashboard junta os contadores do banco com o retrato em memória.
func (uc *QueryUseCase) AdminDashboard(ctx context.Context, now time.Time) (DashboardView, error) {
	local := now.In(uc.Location)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, uc.Location)

	counts, err := uc.Dashboard.Counts(ctx, startOfDay)
	if err != nil {
		return DashboardView{}, FromEngineError(&entity.TransientError{Op: "dashboard", Err: err})
	}
	o := uc.Engine.Overview()
	return DashboardView{DashboardCounts: counts, Present: o.Present, Waiting: o.Waiting, Assigned: o.Assigned}, nil
}

func (uc *QueryUseCase) leadViews(leads []entity.Lead) []LeadView {
	out := make([]LeadView, 0, len(leads))
	for _, l := range leads {
		out = append(out, newLeadView(l, uc.Engine.Store))
	}
	return out
}
