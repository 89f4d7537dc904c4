package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type StoreSource interface {
	FindAll(ctx context.Context) ([]entity.Store, error)
}

type StoreRegistry interface {
	RegisterStore(s entity.Store)
}

// StoreSyncWorker relê as lojas do banco e atualiza o engine: loja nova
// passa a aceitar leads e check-ins, raio e segredo TOTP editados valem
// sem reiniciar o processo.
type StoreSyncWorker struct {
	source       StoreSource
	registry     StoreRegistry
	tickInterval time.Duration
	log          *slog.Logger
}

func NewStoreSyncWorker(source StoreSource, registry StoreRegistry, tickInterval time.Duration, log *slog.Logger) *StoreSyncWorker {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &StoreSyncWorker{source: source, registry: registry, tickInterval: tickInterval, log: log}
}

func (w *StoreSyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.sync(ctx); err != nil {
				w.log.Error("falha ao recarregar lojas", "error", err)
			}
		}
	}
}

func (w *StoreSyncWorker) sync(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stores, err := w.source.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range stores {
		w.registry.RegisterStore(s)
	}
	w.log.Debug("lojas recarregadas", "stores", len(stores))
	return len(stores), nil
}
