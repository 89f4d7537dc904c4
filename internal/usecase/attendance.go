package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/roulette"
)

type AttendanceUseCase struct {
	Engine  Roulette
	Brokers BrokerRepository
	Log     *slog.Logger
}

func NewAttendanceUseCase(engine Roulette, brokers BrokerRepository, log *slog.Logger) *AttendanceUseCase {
	return &AttendanceUseCase{Engine: engine, Brokers: brokers, Log: log}
}

// Checkin sincroniza o perfil do corretor e registra a presença.
func (uc *AttendanceUseCase) Checkin(ctx context.Context, broker entity.Broker, input CheckinInput) (AttendanceView, error) {
	if err := validateInput(input); err != nil {
		return AttendanceView{}, err
	}
	if !broker.Tier.Valid() {
		return AttendanceView{}, FromEngineError(entity.ErrInvalidTier)
	}

	if err := uc.Brokers.Upsert(ctx, broker); err != nil {
		return AttendanceView{}, FromEngineError(&entity.TransientError{Op: "checkin", Err: err})
	}

	req := roulette.CheckinRequest{StoreID: input.StoreID, TOTPCode: input.TOTPCode}
	if input.Latitude != nil && input.Longitude != nil {
		req.Location = &entity.Coordinate{Latitude: *input.Latitude, Longitude: *input.Longitude}
	}

	att, err := uc.Engine.Checkin(ctx, broker, req)
	if err != nil {
		uc.Log.Info("check-in recusado", "broker_id", broker.ID, "store_id", input.StoreID, "error", err)
		return AttendanceView{}, FromEngineError(err)
	}
	return newAttendanceView(att, uc.Engine.Store), nil
}

func (uc *AttendanceUseCase) Checkout(ctx context.Context, brokerID string) (AttendanceView, error) {
	att, err := uc.Engine.Checkout(brokerID)
	if err != nil {
		return AttendanceView{}, FromEngineError(err)
	}
	return newAttendanceView(att, uc.Engine.Store), nil
}

// Status devolve a presença aberta, se houver.
func (uc *AttendanceUseCase) Status(ctx context.Context, brokerID string) (AttendanceView, bool) {
	att, ok := uc.Engine.Status(brokerID)
	if !ok {
		return AttendanceView{}, false
	}
	return newAttendanceView(att, uc.Engine.Store), true
}
