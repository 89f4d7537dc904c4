package roulette

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-roulette/internal/entity"
)

func TestRestoreRebuildsState(t *testing.T) {
	clock := newFakeClock(t0)
	e := New(Options{Clock: clock, Logger: quietLogger(), AssignmentTimeout: 5 * time.Minute})

	at := func(d time.Duration) *time.Time {
		v := t0.Add(d)
		return &v
	}
	openAtt := entity.Attendance{
		ID: "att-1", BrokerID: "ana", StoreID: paulista.ID,
		Status: entity.AttendancePresent, Method: entity.CheckinGeo, CheckinAt: t0.Add(-time.Hour),
	}
	leads := []entity.Lead{
		{ID: "keep", StoreID: paulista.ID, Status: entity.LeadAssigned, AssignedTo: "ana", AssignedAt: at(-2 * time.Minute), ReceivedAt: t0.Add(-10 * time.Minute)},
		{ID: "second", StoreID: paulista.ID, Status: entity.LeadAssigned, AssignedTo: "ana", AssignedAt: at(-time.Minute), ReceivedAt: t0.Add(-20 * time.Minute)},
		{ID: "orphan", StoreID: paulista.ID, Status: entity.LeadAssigned, AssignedTo: "bia", AssignedAt: at(-time.Minute), ReceivedAt: t0.Add(-5 * time.Minute), IsHot: true},
		{ID: "waiting", StoreID: paulista.ID, Status: entity.LeadWaiting, ReceivedAt: t0.Add(-30 * time.Minute)},
		{ID: "lost", StoreID: "loja-fechada", Status: entity.LeadWaiting, ReceivedAt: t0},
	}
	recent := entity.NewCapture(entity.Lead{ID: "old", StoreID: paulista.ID}, "ana", t0.Add(-30*time.Minute))

	e.Restore(Snapshot{
		Stores:        []entity.Store{paulista},
		Brokers:       []entity.Broker{broker("ana", entity.TierForte), broker("bia", entity.TierForte)},
		Attendances:   []entity.Attendance{openAtt},
		Leads:         leads,
		Captures:      []entity.Capture{*recent},
		CaptureTotals: map[string]int{"ana": 12},
	})

	status, ok := e.Status("ana")
	require.True(t, ok)
	assert.Equal(t, "att-1", status.ID)

	assert.Equal(t, []string{"keep"}, leadIDs(e.Assigned("ana")))

	waiting, err := e.Waiting(paulista.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan", "waiting", "second"}, leadIDs(waiting))
	for _, l := range waiting {
		assert.Empty(t, l.AssignedTo)
	}

	assert.Equal(t, entity.CaptureStats{Hourly: 1, Daily: 1, Total: 12}, e.Stats("ana"))
	_, err = e.Lead("lost")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}
