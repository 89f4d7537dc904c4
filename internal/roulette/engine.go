package roulette

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type Options struct {
	Caps      entity.TierCaps
	Policy    Policy
	Clock     Clock
	Journal   Journal
	Scheduler TimeoutScheduler
	Metrics   Recorder
	Logger    *slog.Logger

	AssignmentTimeout time.Duration // 0 desliga
	ShiftCeiling      time.Duration // 0 desliga
	LeadTTL           time.Duration // 0 desliga
}

type storeShard struct {
	mu      sync.Mutex
	store   entity.Store
	queue   *LeadQueue
	present map[string]struct{}
}

func (s *storeShard) snapshot() entity.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

type brokerState struct {
	mu             sync.Mutex
	broker         entity.Broker
	attendance     *entity.Attendance
	checkingIn     bool
	outstanding    string // lead ASSIGNED em aberto, no máximo um
	lastAssignedAt time.Time
}

// free: presente nesta loja e sem lead em aberto.
func (b *brokerState) free(storeID string) bool {
	return b.attendance != nil && b.attendance.StoreID == storeID && b.outstanding == ""
}

type leadState struct {
	mu         sync.Mutex
	lead       entity.Lead
	claiming   bool   // captura em andamento (intenção de claim)
	claimEpoch uint64 // muda a cada devolução para a fila
}

func (l *leadState) snapshot() entity.Lead {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lead
}

type Engine struct {
	clock   Clock
	policy  Policy
	limiter *RateLimiter
	ledger  *CaptureLedger
	journal Journal
	sched   TimeoutScheduler
	metrics Recorder
	log     *slog.Logger
	outbox  *outbox

	assignmentTimeout time.Duration
	shiftCeiling      time.Duration
	leadTTL           time.Duration

	mu      sync.RWMutex
	stores  map[string]*storeShard
	brokers map[string]*brokerState
	leads   map[string]*leadState
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Policy == nil {
		opts.Policy = RoundRobin{}
	}
	if opts.Journal == nil {
		opts.Journal = NopJournal{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Caps == nil {
		opts.Caps = entity.DefaultTierCaps()
	}

	ledger := NewCaptureLedger()
	return &Engine{
		clock:             opts.Clock,
		policy:            opts.Policy,
		limiter:           NewRateLimiter(opts.Caps, ledger, opts.Clock),
		ledger:            ledger,
		journal:           opts.Journal,
		sched:             opts.Scheduler,
		metrics:           opts.Metrics,
		log:               opts.Logger,
		outbox:            newOutbox(opts.Logger),
		assignmentTimeout: opts.AssignmentTimeout,
		shiftCeiling:      opts.ShiftCeiling,
		leadTTL:           opts.LeadTTL,
		stores:            make(map[string]*storeShard),
		brokers:           make(map[string]*brokerState),
		leads:             make(map[string]*leadState),
	}
}

// Run drena o outbox até o ctx ser cancelado.
func (e *Engine) Run(ctx context.Context) {
	e.outbox.run(ctx)
}

func (e *Engine) Ledger() *CaptureLedger { return e.ledger }

func (e *Engine) Limiter() *RateLimiter { return e.limiter }

// PendingWrites é o tamanho atual do outbox.
func (e *Engine) PendingWrites() int { return e.outbox.pending() }

// Postgres guarda microssegundos; truncar evita divergência após restore.
func (e *Engine) now() time.Time {
	return e.clock.Now().Truncate(time.Microsecond)
}

// RegisterStore cadastra ou atualiza uma loja, preservando a fila.
func (e *Engine) RegisterStore(s entity.Store) {
	e.mu.Lock()
	shard, ok := e.stores[s.ID]
	if !ok {
		e.stores[s.ID] = &storeShard{
			store:   s,
			queue:   NewLeadQueue(),
			present: make(map[string]struct{}),
		}
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	shard.mu.Lock()
	shard.store = s
	shard.mu.Unlock()
}

// RegisterBroker cadastra ou atualiza o perfil (tier, flags) do corretor.
func (e *Engine) RegisterBroker(b entity.Broker) {
	e.upsertBroker(b)
}

func (e *Engine) upsertBroker(b entity.Broker) *brokerState {
	e.mu.Lock()
	bs, ok := e.brokers[b.ID]
	if !ok {
		bs = &brokerState{broker: b}
		e.brokers[b.ID] = bs
		e.mu.Unlock()
		return bs
	}
	e.mu.Unlock()

	bs.mu.Lock()
	bs.broker = b
	bs.mu.Unlock()
	return bs
}

func (e *Engine) shard(storeID string) *storeShard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stores[storeID]
}

func (e *Engine) brokerState(brokerID string) *brokerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.brokers[brokerID]
}

func (e *Engine) leadState(leadID string) *leadState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.leads[leadID]
}

func (e *Engine) forgetLead(leadID string) {
	e.mu.Lock()
	delete(e.leads, leadID)
	e.mu.Unlock()
}

func (e *Engine) allShards() []*storeShard {
	e.mu.RLock()
	ids := make([]string, 0, len(e.stores))
	for id := range e.stores {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Strings(ids)

	shards := make([]*storeShard, 0, len(ids))
	for _, id := range ids {
		if s := e.shard(id); s != nil {
			shards = append(shards, s)
		}
	}
	return shards
}

func (e *Engine) allBrokers() []*brokerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*brokerState, 0, len(e.brokers))
	for _, bs := range e.brokers {
		out = append(out, bs)
	}
	return out
}

func (e *Engine) allLeads() []*leadState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*leadState, 0, len(e.leads))
	for _, ls := range e.leads {
		out = append(out, ls)
	}
	return out
}

type NewLeadInput struct {
	Campaign string
	AdSet    string
	IsHot    bool
	StoreID  string
	Payload  json.RawMessage
}

// Enqueue grava o lead e só depois o coloca na fila da loja; a roleta
// roda em seguida. O lead devolvido pode já estar ASSIGNED.
func (e *Engine) Enqueue(ctx context.Context, in NewLeadInput) (entity.Lead, error) {
	shard := e.shard(in.StoreID)
	if shard == nil {
		return entity.Lead{}, entity.ErrStoreNotFound
	}

	lead := entity.NewLead(in.Campaign, in.AdSet, in.IsHot, in.StoreID, in.Payload, e.now())
	if err := e.journal.SaveLead(ctx, *lead); err != nil {
		return entity.Lead{}, &entity.TransientError{Op: "enqueue", Err: err}
	}

	ls := &leadState{lead: *lead}
	e.mu.Lock()
	e.leads[lead.ID] = ls
	e.mu.Unlock()

	shard.mu.Lock()
	shard.queue.Enqueue(*lead)
	e.metrics.LeadEnqueued(in.StoreID, in.IsHot)
	e.log.Debug("lead na fila", "lead_id", lead.ID, "store_id", in.StoreID, "hot", in.IsHot)
	e.dispatch(shard)
	shard.mu.Unlock()

	return ls.snapshot(), nil
}

// Trigger roda a roleta de uma loja (ex.: após captura ou tick da janela).
func (e *Engine) Trigger(storeID string) int {
	shard := e.shard(storeID)
	if shard == nil {
		return 0
	}
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return e.dispatch(shard)
}

func (e *Engine) saveLeadLater(name string, lead entity.Lead) {
	e.outbox.push(name, func(ctx context.Context) error {
		return e.journal.SaveLead(ctx, lead)
	})
}
