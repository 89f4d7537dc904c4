package roulette

import (
	"fmt"
	"sort"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

const (
	HourWindow = time.Hour
	DayWindow  = 24 * time.Hour
)

// CaptureCounter fornece os instantes de captura de um corretor.
type CaptureCounter interface {
	CaptureTimes(brokerID string, since time.Time) ([]time.Time, error)
}

// RateLimiter usa janelas móveis (últimos 60 min / últimas 24h), recalculadas
// a partir das capturas registradas. Sem contador incremental, sem drift.
type RateLimiter struct {
	caps    entity.TierCaps
	counter CaptureCounter
	clock   Clock
}

func NewRateLimiter(caps entity.TierCaps, counter CaptureCounter, clock Clock) *RateLimiter {
	if clock == nil {
		clock = systemClock{}
	}
	return &RateLimiter{caps: caps, counter: counter, clock: clock}
}

func (r *RateLimiter) capFor(t entity.Tier) (entity.TierCap, bool) {
	return r.caps.For(t)
}

// Check devolve nil se o corretor pode capturar mais um lead agora.
// Falha fechada: sem contagem ou sem teto configurado, não pode.
func (r *RateLimiter) Check(broker entity.Broker) error {
	limit, ok := r.capFor(broker.Tier)
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrInvalidTier, broker.Tier)
	}

	now := r.clock.Now()
	times, err := r.counter.CaptureTimes(broker.ID, now.Add(-DayWindow))
	if err != nil {
		return &entity.TransientError{Op: "rate_limit", Err: err}
	}

	hourStart := now.Add(-HourWindow)
	first := sort.Search(len(times), func(i int) bool { return times[i].After(hourStart) })

	var retryAfter time.Duration
	blocked := false
	if wait, full := windowWait(times[first:], limit.PerHour, HourWindow, now); full {
		blocked = true
		retryAfter = max(retryAfter, wait)
	}
	if wait, full := windowWait(times, limit.PerDay, DayWindow, now); full {
		blocked = true
		retryAfter = max(retryAfter, wait)
	}
	if blocked {
		return &entity.RateLimitExceededError{BrokerID: broker.ID, RetryAfter: retryAfter}
	}
	return nil
}

func (r *RateLimiter) CanCapture(broker entity.Broker) bool {
	return r.Check(broker) == nil
}

// windowWait diz se a janela está cheia e quanto falta para liberar uma vaga.
func windowWait(times []time.Time, limit int, window time.Duration, now time.Time) (time.Duration, bool) {
	if len(times) < limit {
		return 0, false
	}
	if limit <= 0 {
		return window, true
	}
	release := times[len(times)-limit].Add(window)
	return max(release.Sub(now), 0), true
}
