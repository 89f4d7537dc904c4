package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Expirer é o lado do engine que as tarefas acionam. Os dois métodos
// conferem de novo o estado: tarefa atrasada ou repetida não faz nada.
type Expirer interface {
	ExpireAssignment(leadID string, assignedAt time.Time) bool
	ExpireShift(brokerID, attendanceID string) bool
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	expirer Expirer
	log     *slog.Logger
}

func NewWorker(redisURL string, expirer Expirer, log *slog.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{defaultQueue: 1},
	})

	w := newWorker(expirer, log)
	w.server = server
	return w, nil
}

func newWorker(expirer Expirer, log *slog.Logger) *Worker {
	w := &Worker{mux: asynq.NewServeMux(), expirer: expirer, log: log}
	w.mux.HandleFunc(TaskAssignmentTimeout, w.handleAssignmentTimeout)
	w.mux.HandleFunc(TaskShiftCeiling, w.handleShiftCeiling)
	return w
}

// Run bloqueia até o contexto acabar.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("scheduler worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleAssignmentTimeout(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAssignmentTimeoutPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if w.expirer.ExpireAssignment(payload.LeadID, payload.AssignedAt) {
		w.log.Info("timeout de atribuição aplicado", "lead_id", payload.LeadID)
	}
	return nil
}

func (w *Worker) handleShiftCeiling(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseShiftCeilingPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if w.expirer.ExpireShift(payload.BrokerID, payload.AttendanceID) {
		w.log.Info("teto de turno aplicado", "broker_id", payload.BrokerID, "attendance_id", payload.AttendanceID)
	}
	return nil
}
