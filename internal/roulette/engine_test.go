package roulette

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/totp"
)

func leadIDs(leads []entity.Lead) []string {
	ids := make([]string, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	return ids
}

func TestHotLeadGoesAheadOfOlderColdLead(t *testing.T) {
	f := newFixture(t)
	a := f.enqueue(t, paulista, false)
	f.clock.Advance(10 * time.Second)
	b := f.enqueue(t, paulista, true)

	waiting, err := f.engine.Waiting(paulista.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, leadIDs(waiting))
}

func TestEnqueueUnknownStore(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Enqueue(context.Background(), NewLeadInput{StoreID: "nope"})
	assert.ErrorIs(t, err, entity.ErrStoreNotFound)
}

func TestGeoOutOfRangeThenTOTPSucceeds(t *testing.T) {
	f := newFixture(t)
	b := broker("b1", entity.TierForte)
	ctx := context.Background()

	// ~150m ao norte do centro da loja (raio 100m)
	far := entity.Coordinate{Latitude: paulista.Location.Latitude + 0.00135, Longitude: paulista.Location.Longitude}
	_, err := f.engine.Checkin(ctx, b, CheckinRequest{StoreID: paulista.ID, Location: &far})
	var oor *entity.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.InDelta(t, 150, oor.Distance, 2)

	code, err := totp.Generate(testSecret, f.clock.Now())
	require.NoError(t, err)
	f.clock.Advance(20 * time.Second)

	att, err := f.engine.Checkin(ctx, b, CheckinRequest{StoreID: paulista.ID, Location: &far, TOTPCode: code})
	require.NoError(t, err)
	assert.Equal(t, entity.CheckinTOTP, att.Method)
	assert.Equal(t, entity.AttendancePresent, att.Status)

	status, ok := f.engine.Status("b1")
	require.True(t, ok)
	assert.Equal(t, att.ID, status.ID)
}

func TestCheckinValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := broker("b1", entity.TierMedio)

	_, err := f.engine.Checkin(ctx, b, CheckinRequest{StoreID: paulista.ID})
	assert.ErrorIs(t, err, entity.ErrCheckinProofNeeded)

	_, err = f.engine.Checkin(ctx, b, CheckinRequest{StoreID: paulista.ID, TOTPCode: "000000"})
	var ice *entity.InvalidCodeError
	assert.ErrorAs(t, err, &ice)

	_, err = f.engine.Checkin(ctx, b, CheckinRequest{StoreID: "nope", TOTPCode: "123456"})
	assert.ErrorIs(t, err, entity.ErrStoreNotFound)

	f.checkin(t, b, paulista)
	loc := pinheiros.Location
	_, err = f.engine.Checkin(ctx, b, CheckinRequest{StoreID: pinheiros.ID, Location: &loc})
	var ape *entity.AlreadyPresentError
	require.ErrorAs(t, err, &ape)
	assert.Equal(t, paulista.ID, ape.StoreID)
}

func TestTOTPFromTwoStepsAgoIsRejected(t *testing.T) {
	f := newFixture(t)
	code, err := totp.Generate(testSecret, f.clock.Now())
	require.NoError(t, err)

	f.clock.Advance(61 * time.Second)
	_, err = f.engine.Checkin(context.Background(), broker("b1", entity.TierForte), CheckinRequest{StoreID: paulista.ID, TOTPCode: code})
	var ice *entity.InvalidCodeError
	assert.ErrorAs(t, err, &ice)
}

func TestBrokerHoldsAtMostOneLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkin(t, broker("b1", entity.TierForte), paulista)

	l1 := f.enqueue(t, paulista, false)
	f.clock.Advance(time.Second)
	l2 := f.enqueue(t, paulista, false)

	assert.Equal(t, []string{l1.ID}, leadIDs(f.engine.Assigned("b1")))
	waiting, _ := f.engine.Waiting(paulista.ID)
	assert.Equal(t, []string{l2.ID}, leadIDs(waiting))

	c, err := f.engine.Capture(ctx, "b1", l1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CaptureProcessing, c.Status)
	require.NotNil(t, c.Lead)
	assert.Equal(t, entity.LeadCaptured, c.Lead.Status)

	// captura libera a vaga e a roleta anda sozinha
	assert.Equal(t, []string{l2.ID}, leadIDs(f.engine.Assigned("b1")))
	assert.Equal(t, entity.CaptureStats{Hourly: 1, Daily: 1, Total: 1}, f.engine.Stats("b1"))
}

func TestRouletteRotatesBetweenBrokers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	f.checkin(t, broker("bia", entity.TierForte), paulista)

	l1 := f.enqueue(t, paulista, false)
	assert.Equal(t, []string{l1.ID}, leadIDs(f.engine.Assigned("ana")), "empate decidido pelo id")

	f.clock.Advance(time.Minute)
	l2 := f.enqueue(t, paulista, false)
	assert.Equal(t, []string{l2.ID}, leadIDs(f.engine.Assigned("bia")))

	f.clock.Advance(time.Minute)
	_, err := f.engine.Capture(ctx, "bia", l2.ID)
	require.NoError(t, err)
	_, err = f.engine.Capture(ctx, "ana", l1.ID)
	require.NoError(t, err)

	// ana recebeu há mais tempo: é a vez dela
	f.clock.Advance(time.Minute)
	l3 := f.enqueue(t, paulista, false)
	assert.Equal(t, []string{l3.ID}, leadIDs(f.engine.Assigned("ana")))
	assert.Empty(t, f.engine.Assigned("bia"))
}

func TestCheckoutReinstatesLeadAtOriginalPosition(t *testing.T) {
	f := newFixture(t)
	f.checkin(t, broker("b1", entity.TierForte), paulista)

	l1 := f.enqueue(t, paulista, false)
	f.clock.Advance(time.Minute)
	l2 := f.enqueue(t, paulista, false)
	f.clock.Advance(time.Minute)
	l3 := f.enqueue(t, paulista, false)
	require.Equal(t, []string{l1.ID}, leadIDs(f.engine.Assigned("b1")))

	closed, err := f.engine.Checkout("b1")
	require.NoError(t, err)
	assert.Equal(t, entity.AttendanceAbsent, closed.Status)
	assert.Equal(t, entity.CheckoutManual, closed.CheckoutReason)

	waiting, err := f.engine.Waiting(paulista.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{l1.ID, l2.ID, l3.ID}, leadIDs(waiting))
	assert.Equal(t, entity.LeadWaiting, waiting[0].Status)
	assert.Empty(t, waiting[0].AssignedTo)
	assert.Nil(t, waiting[0].AssignedAt)
	assert.Equal(t, l1.ReceivedAt, waiting[0].ReceivedAt)

	_, err = f.engine.Checkout("b1")
	var npe *entity.NotPresentError
	assert.ErrorAs(t, err, &npe)
}

func TestFracoBrokerAtDailyCapIsNeverSelected(t *testing.T) {
	f := newFixture(t)
	b := broker("fraco", entity.TierFraco)

	// 8 capturas nas últimas 24h, no máximo 1 por hora
	for i := 0; i < 8; i++ {
		at := t0.Add(-time.Duration(23-i) * time.Hour)
		lead := entity.Lead{ID: "old-" + at.Format(time.RFC3339), StoreID: paulista.ID}
		require.NoError(t, f.engine.Ledger().Record(*entity.NewCapture(lead, "fraco", at)))
	}

	f.checkin(t, b, paulista)
	lead := f.enqueue(t, paulista, true)
	assert.Empty(t, f.engine.Assigned("fraco"))

	f.clock.Advance(59 * time.Minute)
	f.engine.Sweep()
	assert.Empty(t, f.engine.Assigned("fraco"))

	// a captura de 23h atrás sai da janela
	f.clock.Advance(time.Minute)
	report := f.engine.Sweep()
	assert.Equal(t, 1, report.Assigned)
	assert.Equal(t, []string{lead.ID}, leadIDs(f.engine.Assigned("fraco")))
}

func TestCaptureRequiresOwnAssignedLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkin(t, broker("ana", entity.TierForte), paulista)
	l1 := f.enqueue(t, paulista, false)
	l2 := f.enqueue(t, pinheiros, false)

	var nae *entity.NotAssignedError
	_, err := f.engine.Capture(ctx, "bia", l1.ID)
	assert.ErrorAs(t, err, &nae)

	_, err = f.engine.Capture(ctx, "ana", l2.ID)
	assert.ErrorAs(t, err, &nae, "lead WAITING não pode ser capturado")

	_, err = f.engine.Capture(ctx, "ana", "nope")
	assert.ErrorAs(t, err, &nae)

	_, err = f.engine.Capture(ctx, "ana", l1.ID)
	require.NoError(t, err)

	_, err = f.engine.Capture(ctx, "ana", l1.ID)
	var ace *entity.AlreadyCapturedError
	assert.ErrorAs(t, err, &ace)
}

func TestCaptureJournalFailureKeepsAssignment(t *testing.T) {
	j := new(MockJournal)
	j.On("SaveLead", mock.Anything, mock.Anything).Return(nil)
	j.On("OpenAttendance", mock.Anything, mock.Anything).Return(nil)
	j.On("RecordCapture", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	j.On("RecordCapture", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f := newFixture(t, func(o *Options) { o.Journal = j })
	ctx := context.Background()
	f.checkin(t, broker("b1", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)

	_, err := f.engine.Capture(ctx, "b1", lead.ID)
	var te *entity.TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, []string{lead.ID}, leadIDs(f.engine.Assigned("b1")))
	assert.False(t, f.engine.Ledger().HasCapture(lead.ID))

	_, err = f.engine.Capture(ctx, "b1", lead.ID)
	require.NoError(t, err)
	j.AssertNumberOfCalls(t, "RecordCapture", 2)
}

func TestEnqueueJournalFailure(t *testing.T) {
	j := new(MockJournal)
	j.On("SaveLead", mock.Anything, mock.Anything).Return(errors.New("db down"))

	f := newFixture(t, func(o *Options) { o.Journal = j })
	_, err := f.engine.Enqueue(context.Background(), NewLeadInput{StoreID: paulista.ID})

	var te *entity.TransientError
	assert.ErrorAs(t, err, &te)
	waiting, _ := f.engine.Waiting(paulista.ID)
	assert.Empty(t, waiting)
}

func TestCheckinJournalFailureReleasesReservation(t *testing.T) {
	j := new(MockJournal)
	j.On("OpenAttendance", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	j.On("OpenAttendance", mock.Anything, mock.Anything).Return(nil)

	f := newFixture(t, func(o *Options) { o.Journal = j })
	b := broker("b1", entity.TierForte)
	loc := paulista.Location

	_, err := f.engine.Checkin(context.Background(), b, CheckinRequest{StoreID: paulista.ID, Location: &loc})
	var te *entity.TransientError
	require.ErrorAs(t, err, &te)
	_, present := f.engine.Status("b1")
	assert.False(t, present)

	f.checkin(t, b, paulista)
	assert.Equal(t, 1, f.engine.PresentCount())
}

func TestHandOffResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.checkin(t, broker("b1", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)
	c, err := f.engine.Capture(ctx, "b1", lead.ID)
	require.NoError(t, err)

	updated, err := f.engine.HandOffResult(ctx, c.ID, entity.CaptureSent, "kommo:991")
	require.NoError(t, err)
	assert.Equal(t, entity.CaptureSent, updated.Status)
	require.NotNil(t, updated.SentAt)

	got, ok := f.engine.Ledger().Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, entity.CaptureSent, got.Status)

	// fora da memória ainda vai para o banco
	gone, err := f.engine.HandOffResult(ctx, "desconhecida", entity.CaptureError, "timeout")
	require.NoError(t, err)
	assert.Equal(t, entity.CaptureError, gone.Status)
}

func TestWaitingAcrossStoresKeepsQueueOrder(t *testing.T) {
	f := newFixture(t)
	a := f.enqueue(t, paulista, false)
	f.clock.Advance(time.Second)
	b := f.enqueue(t, pinheiros, false)
	f.clock.Advance(time.Second)
	c := f.enqueue(t, pinheiros, true)

	all, err := f.engine.Waiting("")
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, leadIDs(all))

	_, err = f.engine.Waiting("nope")
	assert.ErrorIs(t, err, entity.ErrStoreNotFound)
}

func TestSchedulerReceivesTimeouts(t *testing.T) {
	sched := &recordingScheduler{}
	f := newFixture(t, func(o *Options) { o.Scheduler = sched })
	att := f.checkin(t, broker("b1", entity.TierForte), paulista)
	lead := f.enqueue(t, paulista, false)

	f.engine.outbox.drain(context.Background())

	sched.mu.Lock()
	defer sched.mu.Unlock()
	require.Len(t, sched.calls, 2)
	assert.Equal(t, scheduledCall{kind: "shift", id: att.ID, runAt: t0.Add(12 * time.Hour)}, sched.calls[0])
	assert.Equal(t, scheduledCall{kind: "assignment", id: lead.ID, runAt: t0.Add(5 * time.Minute)}, sched.calls[1])
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	f.checkin(t, broker("b1", entity.TierForte), paulista)
	f.enqueue(t, paulista, false)
	f.enqueue(t, paulista, false)
	f.enqueue(t, pinheiros, true)

	assert.Equal(t, Overview{Stores: 2, Present: 1, Waiting: 2, Assigned: 1}, f.engine.Overview())
	assert.Len(t, f.engine.Stores(), 2)
	assert.Equal(t, "Paulista", f.engine.Stores()[0].Name)
}
