package roulette

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-roulette/internal/entity"
)

func TestAssignmentTimeoutMovesLeadToNextBroker(t *testing.T) {
	f := newFixture(t)
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	f.checkin(t, broker("bia", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)
	require.Equal(t, []string{lead.ID}, leadIDs(f.engine.Assigned("ana")))

	f.clock.Advance(4 * time.Minute)
	assert.Equal(t, 0, f.engine.Sweep().AssignmentsExpired)

	f.clock.Advance(time.Minute)
	report := f.engine.Sweep()
	assert.Equal(t, 1, report.AssignmentsExpired)
	assert.Empty(t, f.engine.Assigned("ana"))
	assert.Equal(t, []string{lead.ID}, leadIDs(f.engine.Assigned("bia")))
}

func TestExpireAssignmentIgnoresStaleTimer(t *testing.T) {
	f := newFixture(t)
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)
	assigned := f.engine.Assigned("ana")[0]

	f.clock.Advance(10 * time.Minute)
	assert.False(t, f.engine.ExpireAssignment(lead.ID, assigned.AssignedAt.Add(-time.Second)))
	assert.True(t, f.engine.ExpireAssignment(lead.ID, *assigned.AssignedAt))

	// única candidata: volta para a mesma corretora com novo assignedAt
	again := f.engine.Assigned("ana")
	require.Len(t, again, 1)
	assert.True(t, again[0].AssignedAt.After(*assigned.AssignedAt))
	assert.False(t, f.engine.ExpireAssignment(lead.ID, *assigned.AssignedAt))
}

func TestExpireAssignmentSkipsInFlightCapture(t *testing.T) {
	gate := newGateJournal()
	f := newFixture(t, func(o *Options) { o.Journal = gate })
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)
	assignedAt := *f.engine.Assigned("ana")[0].AssignedAt

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.Capture(context.Background(), "ana", lead.ID)
		done <- err
	}()
	<-gate.entered

	f.clock.Advance(6 * time.Minute)
	assert.False(t, f.engine.ExpireAssignment(lead.ID, assignedAt))

	close(gate.release)
	require.NoError(t, <-done)
	assert.True(t, f.engine.Ledger().HasCapture(lead.ID))
}

func TestShiftCeilingClosesAttendance(t *testing.T) {
	f := newFixture(t)
	att := f.checkin(t, broker("ana", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)

	f.clock.Advance(12 * time.Hour)
	report := f.engine.Sweep()
	assert.Equal(t, 1, report.ShiftsClosed)

	_, present := f.engine.Status("ana")
	assert.False(t, present)
	assert.False(t, f.engine.ExpireShift("ana", att.ID))

	waiting, _ := f.engine.Waiting(paulista.ID)
	assert.Equal(t, []string{lead.ID}, leadIDs(waiting))
}

func TestLeadTTL(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.LeadTTL = time.Hour
		o.AssignmentTimeout = 0
	})
	waitingLead := f.enqueue(t, pinheiros, false)
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	assignedLead := f.enqueue(t, paulista, false)
	next := f.enqueue(t, paulista, false)

	f.clock.Advance(59 * time.Minute)
	assert.Equal(t, 0, f.engine.Sweep().LeadsExpired)

	f.clock.Advance(time.Minute)
	report := f.engine.Sweep()
	assert.Equal(t, 3, report.LeadsExpired)

	all, _ := f.engine.Waiting("")
	assert.Empty(t, all)
	assert.Empty(t, f.engine.Assigned("ana"))

	_, err := f.engine.Lead(waitingLead.ID)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	_, err = f.engine.Capture(context.Background(), "ana", assignedLead.ID)
	var nae *entity.NotAssignedError
	assert.ErrorAs(t, err, &nae)
	_, err = f.engine.Lead(next.ID)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestCaptureAfterWindowPruneIsStillAlreadyCaptured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)

	c, err := f.engine.Capture(ctx, "ana", lead.ID)
	require.NoError(t, err)
	_, err = f.engine.HandOffResult(ctx, c.ID, entity.CaptureSent, "")
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	assert.Equal(t, 1, f.engine.Sweep().CapturesPruned)

	_, err = f.engine.Capture(ctx, "ana", lead.ID)
	var ace *entity.AlreadyCapturedError
	assert.ErrorAs(t, err, &ace)
}
