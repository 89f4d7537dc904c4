package roulette

import (
	"context"
	"sort"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Snapshot é o estado durável lido do banco na subida do processo.
type Snapshot struct {
	Stores        []entity.Store
	Brokers       []entity.Broker
	Attendances   []entity.Attendance // só as abertas
	Leads         []entity.Lead       // só WAITING e ASSIGNED
	Captures      []entity.Capture    // últimas 24h
	CaptureTotals map[string]int
}

// Restore reconstrói filas, presenças e atribuições. Deve rodar antes de
// aceitar requisições. Atribuições que não se sustentam (corretor ausente,
// segundo lead do mesmo corretor) voltam para a fila.
func (e *Engine) Restore(s Snapshot) {
	for _, st := range s.Stores {
		e.RegisterStore(st)
	}
	for _, b := range s.Brokers {
		e.RegisterBroker(b)
	}
	e.ledger.Restore(s.Captures, s.CaptureTotals)

	for _, c := range s.Captures {
		if bs := e.brokerState(c.BrokerID); bs != nil {
			bs.mu.Lock()
			if c.CapturedAt.After(bs.lastAssignedAt) {
				bs.lastAssignedAt = c.CapturedAt
			}
			bs.mu.Unlock()
		}
	}

	attendances := append([]entity.Attendance(nil), s.Attendances...)
	sort.Slice(attendances, func(i, j int) bool { return attendances[i].CheckinAt.Before(attendances[j].CheckinAt) })
	for _, a := range attendances {
		e.restoreAttendance(a)
	}

	leads := append([]entity.Lead(nil), s.Leads...)
	sort.Slice(leads, func(i, j int) bool { return restoreOrder(leads[i], leads[j]) })
	for _, l := range leads {
		e.restoreLead(l)
	}

	assigned := 0
	for _, shard := range e.allShards() {
		shard.mu.Lock()
		assigned += e.dispatch(shard)
		shard.mu.Unlock()
	}
	e.log.Info("estado restaurado",
		"stores", len(s.Stores),
		"attendances", len(s.Attendances),
		"leads", len(s.Leads),
		"captures", len(s.Captures),
		"assigned_on_restore", assigned,
	)
}

// ASSIGNED mais antigo primeiro: é ele que fica com a vaga do corretor.
func restoreOrder(a, b entity.Lead) bool {
	if (a.AssignedAt == nil) != (b.AssignedAt == nil) {
		return a.AssignedAt != nil
	}
	if a.AssignedAt != nil && !a.AssignedAt.Equal(*b.AssignedAt) {
		return a.AssignedAt.Before(*b.AssignedAt)
	}
	return LessLead(a, b)
}

func (e *Engine) restoreAttendance(a entity.Attendance) {
	shard := e.shard(a.StoreID)
	bs := e.brokerState(a.BrokerID)
	if shard == nil || bs == nil {
		e.log.Warn("presença ignorada na restauração", "attendance_id", a.ID, "broker_id", a.BrokerID, "store_id", a.StoreID)
		return
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.attendance != nil {
		// duas presenças abertas: fica a mais antiga
		closed := a.Close(e.now(), entity.CheckoutManual)
		e.outbox.push("attendance.close", func(ctx context.Context) error {
			return e.journal.CloseAttendance(ctx, closed)
		})
		return
	}
	att := a
	bs.attendance = &att
	shard.present[a.BrokerID] = struct{}{}
	e.scheduleShiftCeiling(att)
}

func (e *Engine) restoreLead(l entity.Lead) {
	if l.Status.Terminal() {
		return
	}
	shard := e.shard(l.StoreID)
	if shard == nil {
		e.log.Warn("lead ignorado na restauração", "lead_id", l.ID, "store_id", l.StoreID)
		return
	}

	ls := &leadState{lead: l}
	e.mu.Lock()
	e.leads[l.ID] = ls
	e.mu.Unlock()

	var bs *brokerState
	if l.Status == entity.LeadAssigned {
		bs = e.brokerState(l.AssignedTo)
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if bs != nil {
		bs.mu.Lock()
		defer bs.mu.Unlock()
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if l.Status == entity.LeadAssigned {
		if bs != nil && bs.free(l.StoreID) && l.AssignedAt != nil {
			bs.outstanding = l.ID
			if l.AssignedAt.After(bs.lastAssignedAt) {
				bs.lastAssignedAt = *l.AssignedAt
			}
			e.scheduleAssignmentTimeout(l.ID, *l.AssignedAt)
			return
		}
		e.requeueLocked(shard, bs, ls, RequeueRestore)
		return
	}

	ls.lead.Status = entity.LeadWaiting
	shard.queue.Enqueue(ls.lead)
}
