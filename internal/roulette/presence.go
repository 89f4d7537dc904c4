package roulette

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/geofence"
	"github.com/xavierca1/lead-roulette/internal/totp"
)

type CheckinRequest struct {
	StoreID  string
	Location *entity.Coordinate
	TOTPCode string
}

// Checkin valida a prova de presença (GEO primeiro, TOTP como alternativa)
// e marca o corretor como presente. A presença só vale depois de gravada.
func (e *Engine) Checkin(ctx context.Context, broker entity.Broker, req CheckinRequest) (entity.Attendance, error) {
	shard := e.shard(req.StoreID)
	if shard == nil {
		return entity.Attendance{}, entity.ErrStoreNotFound
	}
	bs := e.upsertBroker(broker)

	// reserva: impede dois check-ins simultâneos do mesmo corretor
	bs.mu.Lock()
	if bs.attendance != nil {
		storeID := bs.attendance.StoreID
		bs.mu.Unlock()
		return entity.Attendance{}, &entity.AlreadyPresentError{BrokerID: broker.ID, StoreID: storeID}
	}
	if bs.checkingIn {
		bs.mu.Unlock()
		return entity.Attendance{}, &entity.AlreadyPresentError{BrokerID: broker.ID}
	}
	bs.checkingIn = true
	bs.mu.Unlock()

	release := func() {
		bs.mu.Lock()
		bs.checkingIn = false
		bs.mu.Unlock()
	}

	now := e.now()
	method, err := verifyPresence(shard.snapshot(), req, now)
	if err != nil {
		release()
		return entity.Attendance{}, err
	}

	att := entity.NewAttendance(broker.ID, req.StoreID, method, now)
	if err := e.journal.OpenAttendance(ctx, *att); err != nil {
		release()
		return entity.Attendance{}, &entity.TransientError{Op: "checkin", Err: err}
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	bs.mu.Lock()
	bs.checkingIn = false
	bs.attendance = att
	shard.present[broker.ID] = struct{}{}
	bs.mu.Unlock()

	e.scheduleShiftCeiling(*att)
	e.metrics.CheckinRecorded(req.StoreID, method)
	e.log.Info("check-in realizado", "broker_id", broker.ID, "store_id", req.StoreID, "method", method)

	e.dispatch(shard)
	return *att, nil
}

func verifyPresence(store entity.Store, req CheckinRequest, now time.Time) (entity.CheckinMethod, error) {
	code := strings.TrimSpace(req.TOTPCode)
	if req.Location == nil && code == "" {
		return "", entity.ErrCheckinProofNeeded
	}

	if req.Location != nil {
		if geofence.Within(*req.Location, store) {
			return entity.CheckinGeo, nil
		}
		if code == "" {
			return "", &entity.OutOfRangeError{
				StoreID:  store.ID,
				Distance: geofence.Distance(*req.Location, store.Location),
				Radius:   store.Radius,
			}
		}
	}

	if totp.Validate(code, store.TOTPSecret, now) {
		return entity.CheckinTOTP, nil
	}
	return "", &entity.InvalidCodeError{StoreID: store.ID}
}

func (e *Engine) scheduleShiftCeiling(att entity.Attendance) {
	if e.sched == nil || e.shiftCeiling <= 0 {
		return
	}
	runAt := att.CheckinAt.Add(e.shiftCeiling)
	e.outbox.push("schedule.shift_ceiling", func(ctx context.Context) error {
		return e.sched.ScheduleShiftCeiling(ctx, att.BrokerID, att.ID, runAt)
	})
}

// Checkout encerra a presença. Um lead ainda ASSIGNED ao corretor volta
// para a fila na posição original.
func (e *Engine) Checkout(brokerID string) (entity.Attendance, error) {
	return e.checkout(brokerID, "", entity.CheckoutManual)
}

// ExpireShift fecha a presença que passou do teto de turno. attendanceID
// garante que um check-in mais novo não seja fechado por engano.
func (e *Engine) ExpireShift(brokerID, attendanceID string) bool {
	if e.shiftCeiling <= 0 {
		return false
	}
	att, ok := e.Status(brokerID)
	if !ok || att.ID != attendanceID {
		return false
	}
	if e.now().Before(att.CheckinAt.Add(e.shiftCeiling)) {
		return false
	}
	_, err := e.checkout(brokerID, attendanceID, entity.CheckoutShiftCeiling)
	return err == nil
}

func (e *Engine) checkout(brokerID, attendanceID, reason string) (entity.Attendance, error) {
	bs := e.brokerState(brokerID)
	if bs == nil {
		return entity.Attendance{}, &entity.NotPresentError{BrokerID: brokerID}
	}

	bs.mu.Lock()
	if bs.attendance == nil || (attendanceID != "" && bs.attendance.ID != attendanceID) {
		bs.mu.Unlock()
		return entity.Attendance{}, &entity.NotPresentError{BrokerID: brokerID}
	}
	current := *bs.attendance
	bs.mu.Unlock()

	shard := e.shard(current.StoreID)
	if shard == nil {
		return entity.Attendance{}, entity.ErrStoreNotFound
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	bs.mu.Lock()
	if bs.attendance == nil || bs.attendance.ID != current.ID {
		bs.mu.Unlock()
		return entity.Attendance{}, &entity.NotPresentError{BrokerID: brokerID}
	}

	closed := bs.attendance.Close(e.now(), reason)
	bs.attendance = nil
	delete(shard.present, brokerID)

	if bs.outstanding != "" {
		if ls := e.leadState(bs.outstanding); ls != nil {
			ls.mu.Lock()
			if ls.lead.Status == entity.LeadAssigned && ls.lead.AssignedTo == brokerID {
				e.requeueLocked(shard, bs, ls, RequeueCheckout)
			}
			ls.mu.Unlock()
		}
		bs.outstanding = ""
	}
	bs.mu.Unlock()

	e.outbox.push("attendance.close", func(ctx context.Context) error {
		return e.journal.CloseAttendance(ctx, closed)
	})
	e.metrics.CheckoutRecorded(closed.StoreID, reason)
	e.log.Info("check-out realizado", "broker_id", brokerID, "store_id", closed.StoreID, "reason", reason)

	e.dispatch(shard)
	return closed, nil
}

// Status devolve a presença aberta do corretor, se houver.
func (e *Engine) Status(brokerID string) (entity.Attendance, bool) {
	bs := e.brokerState(brokerID)
	if bs == nil {
		return entity.Attendance{}, false
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.attendance == nil {
		return entity.Attendance{}, false
	}
	return *bs.attendance, true
}

// PresentCount conta os corretores presentes em todas as lojas.
func (e *Engine) PresentCount() int {
	n := 0
	for _, shard := range e.allShards() {
		shard.mu.Lock()
		n += len(shard.present)
		shard.mu.Unlock()
	}
	return n
}
