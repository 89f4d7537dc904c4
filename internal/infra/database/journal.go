package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/roulette"
)

// Journal liga o engine da roleta ao Postgres.
type Journal struct {
	Leads       entity.LeadRepositoryInterface
	Attendances entity.AttendanceRepositoryInterface
	Captures    entity.CaptureRepositoryInterface
}

var _ roulette.Journal = (*Journal)(nil)

func NewJournal(db *sql.DB) *Journal {
	return &Journal{
		Leads:       NewLeadRepository(db),
		Attendances: NewAttendanceRepository(db),
		Captures:    NewCaptureRepository(db),
	}
}

func (j *Journal) SaveLead(ctx context.Context, lead entity.Lead) error {
	return j.Leads.Upsert(ctx, lead)
}

func (j *Journal) OpenAttendance(ctx context.Context, a entity.Attendance) error {
	return j.Attendances.Open(ctx, a)
}

func (j *Journal) CloseAttendance(ctx context.Context, a entity.Attendance) error {
	return j.Attendances.Close(ctx, a)
}

func (j *Journal) RecordCapture(ctx context.Context, lead entity.Lead, c entity.Capture) error {
	return j.Captures.Record(ctx, lead, c)
}

func (j *Journal) DiscardCapture(ctx context.Context, captureID string, lead entity.Lead) error {
	return j.Captures.Discard(ctx, captureID, lead)
}

func (j *Journal) UpdateCaptureStatus(ctx context.Context, c entity.Capture) error {
	return j.Captures.UpdateStatus(ctx, c)
}

// SnapshotSource reúne o que o engine precisa para subir.
type SnapshotSource struct {
	Stores      entity.StoreRepositoryInterface
	Brokers     entity.BrokerRepositoryInterface
	Attendances entity.AttendanceRepositoryInterface
	Leads       entity.LeadRepositoryInterface
	Captures    entity.CaptureRepositoryInterface
}

func NewSnapshotSource(db *sql.DB) *SnapshotSource {
	return &SnapshotSource{
		Stores:      NewStoreRepository(db),
		Brokers:     NewBrokerRepository(db),
		Attendances: NewAttendanceRepository(db),
		Leads:       NewLeadRepository(db),
		Captures:    NewCaptureRepository(db),
	}
}

// Load lê o estado durável. Capturas só das últimas 24h: é o que a janela
// do limitador enxerga; o total vem agregado.
func (s *SnapshotSource) Load(ctx context.Context, now time.Time) (roulette.Snapshot, error) {
	var snap roulette.Snapshot
	var err error

	if snap.Stores, err = s.Stores.FindAll(ctx); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Brokers, err = s.Brokers.FindAll(ctx); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Attendances, err = s.Attendances.FindOpen(ctx); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Leads, err = s.Leads.FindOpen(ctx); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Captures, err = s.Captures.FindSince(ctx, now.Add(-24*time.Hour)); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.CaptureTotals, err = s.Captures.TotalsByBroker(ctx); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}
