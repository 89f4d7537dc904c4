package roulette

import (
	"sort"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Waiting lista a fila de uma loja na ordem de atribuição. Com storeID
// vazio junta todas as lojas mantendo a mesma ordem.
func (e *Engine) Waiting(storeID string) ([]entity.Lead, error) {
	if storeID != "" {
		shard := e.shard(storeID)
		if shard == nil {
			return nil, entity.ErrStoreNotFound
		}
		return e.waitingIn(shard), nil
	}

	var all []entity.Lead
	for _, shard := range e.allShards() {
		all = append(all, e.waitingIn(shard)...)
	}
	sort.SliceStable(all, func(i, j int) bool { return LessLead(all[i], all[j]) })
	return all, nil
}

func (e *Engine) waitingIn(shard *storeShard) []entity.Lead {
	shard.mu.Lock()
	defer shard.mu.Unlock()

	ids := shard.queue.IDs()
	out := make([]entity.Lead, 0, len(ids))
	for _, id := range ids {
		ls := e.leadState(id)
		if ls == nil {
			continue
		}
		lead := ls.snapshot()
		if lead.Status == entity.LeadWaiting {
			out = append(out, lead)
		}
	}
	return out
}

// Assigned devolve o lead em aberto do corretor (zero ou um).
func (e *Engine) Assigned(brokerID string) []entity.Lead {
	bs := e.brokerState(brokerID)
	if bs == nil {
		return []entity.Lead{}
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.outstanding == "" {
		return []entity.Lead{}
	}
	ls := e.leadState(bs.outstanding)
	if ls == nil {
		return []entity.Lead{}
	}
	lead := ls.snapshot()
	if lead.Status != entity.LeadAssigned || lead.AssignedTo != brokerID {
		return []entity.Lead{}
	}
	return []entity.Lead{lead}
}

// Lead devolve um lead ainda em aberto (WAITING ou ASSIGNED).
func (e *Engine) Lead(leadID string) (entity.Lead, error) {
	ls := e.leadState(leadID)
	if ls == nil {
		return entity.Lead{}, entity.ErrLeadNotFound
	}
	return ls.snapshot(), nil
}

func (e *Engine) Stores() []entity.Store {
	shards := e.allShards()
	out := make([]entity.Store, 0, len(shards))
	for _, shard := range shards {
		out = append(out, shard.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (e *Engine) Store(storeID string) (entity.Store, bool) {
	shard := e.shard(storeID)
	if shard == nil {
		return entity.Store{}, false
	}
	return shard.snapshot(), true
}

// Overview resume o estado atual para o painel de admin.
type Overview struct {
	Stores   int `json:"stores"`
	Present  int `json:"present"`
	Waiting  int `json:"waiting"`
	Assigned int `json:"assigned"`
}

func (e *Engine) Overview() Overview {
	var o Overview
	for _, shard := range e.allShards() {
		shard.mu.Lock()
		o.Stores++
		o.Present += len(shard.present)
		o.Waiting += shard.queue.Len()
		shard.mu.Unlock()
	}
	for _, ls := range e.allLeads() {
		if ls.snapshot().Status == entity.LeadAssigned {
			o.Assigned++
		}
	}
	return o
}
