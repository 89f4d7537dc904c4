package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-roulette/internal/roulette"
)

// Sweeper é o que o worker aciona a cada tick; o engine implementa.
type Sweeper interface {
	Sweep() roulette.SweepReport
}

// SweepWorker roda a varredura do engine: timeouts de atribuição, teto de
// turno, TTL de lead e limpeza da janela de capturas.
type SweepWorker struct {
	engine       Sweeper
	tickInterval time.Duration
	log          *slog.Logger
}

func NewSweepWorker(engine Sweeper, tickInterval time.Duration, log *slog.Logger) *SweepWorker {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &SweepWorker{engine: engine, tickInterval: tickInterval, log: log}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info("varredura da roleta iniciada", "interval", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("varredura da roleta encerrada")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	r := w.engine.Sweep()
	if r.AssignmentsExpired+r.ShiftsClosed+r.LeadsExpired+r.Assigned == 0 {
		return
	}
	w.log.Info("varredura",
		"assignments_expired", r.AssignmentsExpired,
		"shifts_closed", r.ShiftsClosed,
		"leads_expired", r.LeadsExpired,
		"captures_pruned", r.CapturesPruned,
		"assigned", r.Assigned,
	)
}
