package roulette

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-roulette/internal/entity"
)

const testSecret = "JBSWY3DPEHPK3PXP"

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var paulista = entity.Store{
	ID:         "store-paulista",
	Name:       "Paulista",
	Location:   entity.Coordinate{Latitude: -23.5614, Longitude: -46.6559},
	Radius:     100,
	TOTPSecret: testSecret,
}

var pinheiros = entity.Store{
	ID:         "store-pinheiros",
	Name:       "Pinheiros",
	Location:   entity.Coordinate{Latitude: -23.5670, Longitude: -46.6930},
	Radius:     150,
	TOTPSecret: testSecret,
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func broker(id string, tier entity.Tier) entity.Broker {
	return entity.Broker{ID: id, Name: id, Email: id + "@roleta.test", Tier: tier}
}

type engineFixture struct {
	engine *Engine
	clock  *fakeClock
}

func newFixture(t *testing.T, mutate ...func(*Options)) *engineFixture {
	t.Helper()
	clock := newFakeClock(t0)
	opts := Options{
		Clock:             clock,
		Logger:            quietLogger(),
		AssignmentTimeout: 5 * time.Minute,
		ShiftCeiling:      12 * time.Hour,
	}
	for _, m := range mutate {
		m(&opts)
	}
	e := New(opts)
	e.RegisterStore(paulista)
	e.RegisterStore(pinheiros)
	return &engineFixture{engine: e, clock: clock}
}

// checkin faz check-in por GPS no centro da loja.
func (f *engineFixture) checkin(t *testing.T, b entity.Broker, store entity.Store) entity.Attendance {
	t.Helper()
	loc := store.Location
	att, err := f.engine.Checkin(context.Background(), b, CheckinRequest{StoreID: store.ID, Location: &loc})
	require.NoError(t, err)
	return att
}

func (f *engineFixture) enqueue(t *testing.T, store entity.Store, hot bool) entity.Lead {
	t.Helper()
	lead, err := f.engine.Enqueue(context.Background(), NewLeadInput{
		Campaign: "verao",
		AdSet:    "adset-1",
		IsHot:    hot,
		StoreID:  store.ID,
		Payload:  []byte(`{"name":"Maria","phone":"+5511999990000"}`),
	})
	require.NoError(t, err)
	return lead
}

// MockJournal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) SaveLead(ctx context.Context, lead entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockJournal) OpenAttendance(ctx context.Context, a entity.Attendance) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockJournal) CloseAttendance(ctx context.Context, a entity.Attendance) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockJournal) RecordCapture(ctx context.Context, lead entity.Lead, c entity.Capture) error {
	args := m.Called(ctx, lead, c)
	return args.Error(0)
}

func (m *MockJournal) DiscardCapture(ctx context.Context, captureID string, lead entity.Lead) error {
	args := m.Called(ctx, captureID, lead)
	return args.Error(0)
}

func (m *MockJournal) UpdateCaptureStatus(ctx context.Context, c entity.Capture) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// gateJournal segura RecordCapture até o teste liberar.
type gateJournal struct {
	NopJournal
	entered chan struct{}
	release chan struct{}

	mu        sync.Mutex
	discarded []string
}

func newGateJournal() *gateJournal {
	return &gateJournal{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gateJournal) RecordCapture(ctx context.Context, lead entity.Lead, c entity.Capture) error {
	g.entered <- struct{}{}
	<-g.release
	return nil
}

func (g *gateJournal) DiscardCapture(ctx context.Context, captureID string, lead entity.Lead) error {
	g.mu.Lock()
	g.discarded = append(g.discarded, captureID)
	g.mu.Unlock()
	return nil
}

type scheduledCall struct {
	kind  string
	id    string
	runAt time.Time
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

func (r *recordingScheduler) ScheduleAssignmentTimeout(ctx context.Context, leadID string, assignedAt, runAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, scheduledCall{kind: "assignment", id: leadID, runAt: runAt})
	return nil
}

func (r *recordingScheduler) ScheduleShiftCeiling(ctx context.Context, brokerID, attendanceID string, runAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, scheduledCall{kind: "shift", id: attendanceID, runAt: runAt})
	return nil
}
