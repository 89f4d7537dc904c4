package roulette

import (
	"context"
	"sort"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Motivos de devolução para a fila.
const (
	RequeueTimeout  = "ASSIGNMENT_TIMEOUT"
	RequeueCheckout = "CHECKOUT"
	RequeueRestore  = "RESTORE"
)

// dispatch roda a roleta até o ponto fixo: enquanto houver lead na frente
// e corretor elegível, atribui. Exige shard.mu.
func (e *Engine) dispatch(shard *storeShard) int {
	storeID := shard.store.ID
	assigned := 0
	defer func() {
		e.metrics.QueueDepth(storeID, shard.queue.Len())
		e.metrics.PresentBrokers(storeID, len(shard.present))
	}()

	for {
		leadID, ok := shard.queue.PeekFront()
		if !ok {
			return assigned
		}
		ls := e.leadState(leadID)
		if ls == nil {
			shard.queue.Remove(leadID)
			continue
		}

		candidates := e.candidates(shard)
		if len(candidates) == 0 {
			e.metrics.NoEligibleBroker(storeID)
			return assigned
		}

		chosen := e.policy.Select(candidates)
		if e.assign(shard, ls, chosen.BrokerID) {
			assigned++
		}
	}
}

// candidates lista, em ordem de id, os presentes livres e dentro do teto.
// Exige shard.mu.
func (e *Engine) candidates(shard *storeShard) []Candidate {
	ids := make([]string, 0, len(shard.present))
	for id := range shard.present {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		bs := e.brokerState(id)
		if bs == nil {
			delete(shard.present, id)
			continue
		}
		bs.mu.Lock()
		if bs.free(shard.store.ID) && e.limiter.CanCapture(bs.broker) {
			out = append(out, Candidate{
				BrokerID:       id,
				Tier:           bs.broker.Tier,
				IsTop:          bs.broker.IsTop,
				LastAssignedAt: bs.lastAssignedAt,
			})
		}
		bs.mu.Unlock()
	}
	return out
}

// assign revalida com os locks do corretor e do lead e faz a transição
// WAITING -> ASSIGNED. Exige shard.mu.
func (e *Engine) assign(shard *storeShard, ls *leadState, brokerID string) bool {
	bs := e.brokerState(brokerID)
	if bs == nil {
		delete(shard.present, brokerID)
		return false
	}
	now := e.now()

	bs.mu.Lock()
	defer bs.mu.Unlock()
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.lead.Status != entity.LeadWaiting {
		shard.queue.Remove(ls.lead.ID)
		return false
	}
	if !bs.free(shard.store.ID) || !e.limiter.CanCapture(bs.broker) {
		return false
	}

	at := now
	ls.lead.Status = entity.LeadAssigned
	ls.lead.AssignedTo = brokerID
	ls.lead.AssignedAt = &at
	shard.queue.Remove(ls.lead.ID)

	bs.outstanding = ls.lead.ID
	bs.lastAssignedAt = now

	e.saveLeadLater("lead.assigned", ls.lead)
	e.scheduleAssignmentTimeout(ls.lead.ID, at)
	e.metrics.LeadAssigned(shard.store.ID)
	e.log.Info("lead atribuído",
		"lead_id", ls.lead.ID,
		"broker_id", brokerID,
		"store_id", shard.store.ID,
		"hot", ls.lead.IsHot,
	)
	return true
}

func (e *Engine) scheduleAssignmentTimeout(leadID string, assignedAt time.Time) {
	if e.sched == nil || e.assignmentTimeout <= 0 {
		return
	}
	runAt := assignedAt.Add(e.assignmentTimeout)
	e.outbox.push("schedule.assignment_timeout", func(ctx context.Context) error {
		return e.sched.ScheduleAssignmentTimeout(ctx, leadID, assignedAt, runAt)
	})
}

// requeueLocked devolve um lead ASSIGNED para a fila na posição original.
// Exige shard.mu, bs.mu (se bs != nil) e ls.mu.
func (e *Engine) requeueLocked(shard *storeShard, bs *brokerState, ls *leadState, reason string) {
	if bs != nil && bs.outstanding == ls.lead.ID {
		bs.outstanding = ""
	}
	ls.lead.Status = entity.LeadWaiting
	ls.lead.AssignedTo = ""
	ls.lead.AssignedAt = nil
	ls.claiming = false
	ls.claimEpoch++
	shard.queue.Requeue(ls.lead)

	e.saveLeadLater("lead.requeued", ls.lead)
	e.metrics.LeadRequeued(shard.store.ID, reason)
	e.log.Info("lead devolvido para a fila", "lead_id", ls.lead.ID, "store_id", shard.store.ID, "reason", reason)
}

// ExpireAssignment devolve o lead à fila se a atribuição identificada por
// assignedAt ainda está aberta e já passou do prazo. Atribuições mais novas
// ou com captura em andamento não são tocadas.
func (e *Engine) ExpireAssignment(leadID string, assignedAt time.Time) bool {
	if e.assignmentTimeout <= 0 {
		return false
	}
	ls := e.leadState(leadID)
	if ls == nil {
		return false
	}
	lead := ls.snapshot()
	if !e.assignmentExpired(lead, assignedAt) {
		return false
	}

	shard := e.shard(lead.StoreID)
	if shard == nil {
		return false
	}
	bs := e.brokerState(lead.AssignedTo)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if bs != nil {
		bs.mu.Lock()
	}
	ls.mu.Lock()
	expired := !ls.claiming && ls.lead.AssignedTo == lead.AssignedTo && e.assignmentExpired(ls.lead, assignedAt)
	if expired {
		e.requeueLocked(shard, bs, ls, RequeueTimeout)
	}
	ls.mu.Unlock()
	if bs != nil {
		bs.mu.Unlock()
	}

	if expired {
		e.dispatch(shard)
	}
	return expired
}

func (e *Engine) assignmentExpired(lead entity.Lead, assignedAt time.Time) bool {
	if lead.Status != entity.LeadAssigned || lead.AssignedAt == nil {
		return false
	}
	if !lead.AssignedAt.Equal(assignedAt) {
		return false
	}
	return !e.now().Before(assignedAt.Add(e.assignmentTimeout))
}
