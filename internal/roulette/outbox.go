package roulette

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type outboxItem struct {
	name string
	fn   func(ctx context.Context) error
}

// outbox serializa as gravações não vinculantes na ordem em que as
// transições aconteceram. push é chamado com lock e não bloqueia.
type outbox struct {
	mu      sync.Mutex
	items   []outboxItem
	wake    chan struct{}
	log     *slog.Logger
	retries int
	backoff time.Duration
}

func newOutbox(log *slog.Logger) *outbox {
	return &outbox{
		wake:    make(chan struct{}, 1),
		log:     log,
		retries: 5,
		backoff: 200 * time.Millisecond,
	}
}

func (o *outbox) push(name string, fn func(ctx context.Context) error) {
	o.mu.Lock()
	o.items = append(o.items, outboxItem{name: name, fn: fn})
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) take() []outboxItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	items := o.items
	o.items = nil
	return items
}

func (o *outbox) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}

// run drena até o ctx acabar; no fim tenta esvaziar o que sobrou.
func (o *outbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			o.drain(flushCtx)
			cancel()
			return
		case <-o.wake:
			o.drain(ctx)
		}
	}
}

func (o *outbox) drain(ctx context.Context) {
	for {
		items := o.take()
		if len(items) == 0 {
			return
		}
		for _, it := range items {
			o.exec(ctx, it)
		}
	}
}

func (o *outbox) exec(ctx context.Context, it outboxItem) {
	wait := o.backoff
	for attempt := 1; ; attempt++ {
		err := it.fn(ctx)
		if err == nil {
			return
		}
		if attempt >= o.retries || ctx.Err() != nil {
			o.log.Error("outbox: gravação descartada", "item", it.name, "attempts", attempt, "error", err)
			return
		}
		o.log.Warn("outbox: falha, tentando de novo", "item", it.name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		wait *= 2
	}
}
