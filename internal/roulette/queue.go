package roulette

import (
	"slices"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type queueItem struct {
	id         string
	hot        bool
	receivedAt time.Time
}

// compareItems ordena por (não-HOT, receivedAt, id). O id só desempata
// leads recebidos no mesmo instante para a ordem ser total.
func compareItems(a, b queueItem) int {
	if a.hot != b.hot {
		if a.hot {
			return -1
		}
		return 1
	}
	if c := a.receivedAt.Compare(b.receivedAt); c != 0 {
		return c
	}
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

// LeadQueue guarda os leads WAITING de uma loja, sempre ordenados.
// Não é segura para uso concorrente: o storeShard dono a protege.
type LeadQueue struct {
	items []queueItem
	index map[string]queueItem
}

func NewLeadQueue() *LeadQueue {
	return &LeadQueue{index: make(map[string]queueItem)}
}

// Enqueue insere na posição ordenada. Devolve false se o lead já está na fila.
func (q *LeadQueue) Enqueue(lead entity.Lead) bool {
	if _, ok := q.index[lead.ID]; ok {
		return false
	}
	item := queueItem{id: lead.ID, hot: lead.IsHot, receivedAt: lead.ReceivedAt}
	pos, _ := slices.BinarySearchFunc(q.items, item, compareItems)
	q.items = slices.Insert(q.items, pos, item)
	q.index[lead.ID] = item
	return true
}

// Requeue usa a mesma regra do Enqueue com o receivedAt original,
// então o lead volta à posição de origem e não ao fim da fila.
func (q *LeadQueue) Requeue(lead entity.Lead) bool {
	return q.Enqueue(lead)
}

func (q *LeadQueue) PeekFront() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0].id, true
}

func (q *LeadQueue) Remove(leadID string) bool {
	item, ok := q.index[leadID]
	if !ok {
		return false
	}
	pos, found := slices.BinarySearchFunc(q.items, item, compareItems)
	if !found {
		return false
	}
	q.items = slices.Delete(q.items, pos, pos+1)
	delete(q.index, leadID)
	return true
}

func (q *LeadQueue) Contains(leadID string) bool {
	_, ok := q.index[leadID]
	return ok
}

func (q *LeadQueue) Len() int {
	return len(q.items)
}

// IDs devolve os ids na ordem da fila.
func (q *LeadQueue) IDs() []string {
	ids := make([]string, len(q.items))
	for i, it := range q.items {
		ids[i] = it.id
	}
	return ids
}

// LessLead aplica a mesma ordem da fila a leads soltos (visão multi-loja).
func LessLead(a, b entity.Lead) bool {
	return compareItems(
		queueItem{id: a.ID, hot: a.IsHot, receivedAt: a.ReceivedAt},
		queueItem{id: b.ID, hot: b.IsHot, receivedAt: b.ReceivedAt},
	) < 0
}
