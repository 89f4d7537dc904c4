package roulette

import (
	"context"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Journal torna o engine durável. Nunca é chamado com lock.
// SaveLead não pode rebaixar um lead já CAPTURED no banco.
type Journal interface {
	SaveLead(ctx context.Context, lead entity.Lead) error
	OpenAttendance(ctx context.Context, a entity.Attendance) error
	CloseAttendance(ctx context.Context, a entity.Attendance) error
	// RecordCapture grava a captura e o lead CAPTURED numa única transação.
	RecordCapture(ctx context.Context, lead entity.Lead, c entity.Capture) error
	// DiscardCapture desfaz uma captura revertida e regrava o lead, na mesma transação.
	DiscardCapture(ctx context.Context, captureID string, lead entity.Lead) error
	UpdateCaptureStatus(ctx context.Context, c entity.Capture) error
}

// TimeoutScheduler agenda verificações pontuais fora do processo.
// A varredura periódica (Sweep) continua sendo a rede de segurança.
type TimeoutScheduler interface {
	ScheduleAssignmentTimeout(ctx context.Context, leadID string, assignedAt, runAt time.Time) error
	ScheduleShiftCeiling(ctx context.Context, brokerID, attendanceID string, runAt time.Time) error
}

// Recorder recebe métricas do engine. Chamado com lock: não pode bloquear.
type Recorder interface {
	LeadEnqueued(storeID string, hot bool)
	LeadAssigned(storeID string)
	LeadRequeued(storeID, reason string)
	LeadExpired(storeID string)
	CaptureRecorded(storeID string)
	CaptureRejected(reason string)
	CheckinRecorded(storeID string, method entity.CheckinMethod)
	CheckoutRecorded(storeID, reason string)
	NoEligibleBroker(storeID string)
	QueueDepth(storeID string, depth int)
	PresentBrokers(storeID string, count int)
}

type NopJournal struct{}

func (NopJournal) SaveLead(context.Context, entity.Lead) error                      { return nil }
func (NopJournal) OpenAttendance(context.Context, entity.Attendance) error          { return nil }
func (NopJournal) CloseAttendance(context.Context, entity.Attendance) error         { return nil }
func (NopJournal) RecordCapture(context.Context, entity.Lead, entity.Capture) error { return nil }
func (NopJournal) DiscardCapture(context.Context, string, entity.Lead) error        { return nil }
func (NopJournal) UpdateCaptureStatus(context.Context, entity.Capture) error        { return nil }

type nopRecorder struct{}

func (nopRecorder) LeadEnqueued(string, bool)                    {}
func (nopRecorder) LeadAssigned(string)                          {}
func (nopRecorder) LeadRequeued(string, string)                  {}
func (nopRecorder) LeadExpired(string)                           {}
func (nopRecorder) CaptureRecorded(string)                       {}
func (nopRecorder) CaptureRejected(string)                       {}
func (nopRecorder) CheckinRecorded(string, entity.CheckinMethod) {}
func (nopRecorder) CheckoutRecorded(string, string)              {}
func (nopRecorder) NoEligibleBroker(string)                      {}
func (nopRecorder) QueueDepth(string, int)                       {}
func (nopRecorder) PresentBrokers(string, int)                   {}
