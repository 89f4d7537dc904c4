package roulette

import (
	"github.com/xavierca1/lead-roulette/internal/entity"
)

type SweepReport struct {
	AssignmentsExpired int
	ShiftsClosed       int
	LeadsExpired       int
	CapturesPruned     int
	Assigned           int
}

// Sweep é a varredura periódica: timeouts de atribuição, teto de turno,
// validade do lead, limpeza do ledger e uma nova rodada em todas as lojas
// (a janela móvel pode ter liberado corretores).
func (e *Engine) Sweep() SweepReport {
	var r SweepReport
	now := e.now()

	if e.assignmentTimeout > 0 {
		for _, ls := range e.allLeads() {
			lead := ls.snapshot()
			if lead.Status != entity.LeadAssigned || lead.AssignedAt == nil {
				continue
			}
			if e.ExpireAssignment(lead.ID, *lead.AssignedAt) {
				r.AssignmentsExpired++
			}
		}
	}

	if e.shiftCeiling > 0 {
		for _, bs := range e.allBrokers() {
			bs.mu.Lock()
			att := bs.attendance
			var brokerID, attID string
			if att != nil && !now.Before(att.CheckinAt.Add(e.shiftCeiling)) {
				brokerID, attID = bs.broker.ID, att.ID
			}
			bs.mu.Unlock()
			if attID != "" && e.ExpireShift(brokerID, attID) {
				r.ShiftsClosed++
			}
		}
	}

	if e.leadTTL > 0 {
		for _, ls := range e.allLeads() {
			if e.expireLead(ls) {
				r.LeadsExpired++
			}
		}
	}

	r.CapturesPruned = e.ledger.Prune(now.Add(-DayWindow))

	for _, shard := range e.allShards() {
		shard.mu.Lock()
		r.Assigned += e.dispatch(shard)
		shard.mu.Unlock()
	}
	return r
}

// expireLead marca EXPIRED um lead aberto além da validade. Lead com
// captura em andamento fica para a próxima varredura.
func (e *Engine) expireLead(ls *leadState) bool {
	lead := ls.snapshot()
	if !e.leadTooOld(lead) {
		return false
	}
	shard := e.shard(lead.StoreID)
	if shard == nil {
		return false
	}
	var bs *brokerState
	if lead.AssignedTo != "" {
		bs = e.brokerState(lead.AssignedTo)
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if bs != nil {
		bs.mu.Lock()
	}
	ls.mu.Lock()
	expired := !ls.claiming && ls.lead.AssignedTo == lead.AssignedTo && e.leadTooOld(ls.lead)
	if expired {
		ls.lead.Status = entity.LeadExpired
		ls.claimEpoch++
		shard.queue.Remove(ls.lead.ID)
		if bs != nil && bs.outstanding == ls.lead.ID {
			bs.outstanding = ""
		}
		e.saveLeadLater("lead.expired", ls.lead)
		e.metrics.LeadExpired(shard.store.ID)
		e.log.Info("lead expirado", "lead_id", ls.lead.ID, "store_id", shard.store.ID)
	}
	ls.mu.Unlock()
	if bs != nil {
		bs.mu.Unlock()
	}

	if expired {
		e.forgetLead(lead.ID)
		e.dispatch(shard)
	}
	return expired
}

func (e *Engine) leadTooOld(lead entity.Lead) bool {
	if lead.Status != entity.LeadWaiting && lead.Status != entity.LeadAssigned {
		return false
	}
	return !e.now().Before(lead.ReceivedAt.Add(e.leadTTL))
}
