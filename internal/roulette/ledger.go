package roulette

import (
	"slices"
	"sync"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type brokerHistory struct {
	times []time.Time // capturas das últimas 24h, ordenadas
	total int
}

// CaptureLedger guarda as capturas e deriva as estatísticas por corretor.
// Também é a fonte de contagem do RateLimiter.
type CaptureLedger struct {
	mu      sync.RWMutex
	byID    map[string]*entity.Capture
	byLead  map[string]string
	brokers map[string]*brokerHistory
	pruned  map[string]struct{} // leads cuja captura já saiu da janela
}

func NewCaptureLedger() *CaptureLedger {
	return &CaptureLedger{
		byID:    make(map[string]*entity.Capture),
		byLead:  make(map[string]string),
		brokers: make(map[string]*brokerHistory),
		pruned:  make(map[string]struct{}),
	}
}

// Record falha com AlreadyCapturedError se o lead já tem captura.
func (l *CaptureLedger) Record(c entity.Capture) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.captured(c.LeadID) {
		return &entity.AlreadyCapturedError{LeadID: c.LeadID}
	}
	l.insert(c)
	l.history(c.BrokerID).total++
	return nil
}

func (l *CaptureLedger) insert(c entity.Capture) {
	c.Lead = nil
	l.byID[c.ID] = &c
	l.byLead[c.LeadID] = c.ID

	h := l.history(c.BrokerID)
	pos, _ := slices.BinarySearchFunc(h.times, c.CapturedAt, func(a, b time.Time) int { return a.Compare(b) })
	h.times = slices.Insert(h.times, pos, c.CapturedAt)
}

func (l *CaptureLedger) history(brokerID string) *brokerHistory {
	h, ok := l.brokers[brokerID]
	if !ok {
		h = &brokerHistory{}
		l.brokers[brokerID] = h
	}
	return h
}

func (l *CaptureLedger) HasCapture(leadID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.captured(leadID)
}

// captured exige l.mu.
func (l *CaptureLedger) captured(leadID string) bool {
	if _, ok := l.byLead[leadID]; ok {
		return true
	}
	_, ok := l.pruned[leadID]
	return ok
}

func (l *CaptureLedger) Get(captureID string) (entity.Capture, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.byID[captureID]
	if !ok {
		return entity.Capture{}, false
	}
	return *c, true
}

// CaptureTimes devolve, em ordem, as capturas do corretor depois de since.
func (l *CaptureLedger) CaptureTimes(brokerID string, since time.Time) ([]time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, ok := l.brokers[brokerID]
	if !ok {
		return nil, nil
	}
	var out []time.Time
	for _, t := range h.times {
		if t.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *CaptureLedger) Stats(brokerID string, now time.Time) entity.CaptureStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, ok := l.brokers[brokerID]
	if !ok {
		return entity.CaptureStats{}
	}
	stats := entity.CaptureStats{Total: h.total}
	hourStart := now.Add(-HourWindow)
	dayStart := now.Add(-DayWindow)
	for _, t := range h.times {
		if t.After(dayStart) {
			stats.Daily++
		}
		if t.After(hourStart) {
			stats.Hourly++
		}
	}
	return stats
}

// UpdateStatus aplica o retorno do CRM (SENT/ERROR).
func (l *CaptureLedger) UpdateStatus(captureID string, status entity.CaptureStatus, at time.Time, detail string) (entity.Capture, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.byID[captureID]
	if !ok {
		return entity.Capture{}, entity.ErrCaptureNotFound
	}
	c.Status = status
	c.Detail = detail
	if status == entity.CaptureSent {
		sentAt := at
		c.SentAt = &sentAt
	}
	return *c, nil
}

// Prune descarta o que saiu da janela de 24h. Totais são preservados,
// capturas ainda PROCESSING ficam até o CRM responder e o id do lead
// continua marcado como capturado.
func (l *CaptureLedger) Prune(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for _, h := range l.brokers {
		i := 0
		for i < len(h.times) && !h.times[i].After(before) {
			i++
		}
		h.times = h.times[i:]
	}
	for id, c := range l.byID {
		if c.CapturedAt.After(before) || c.Status == entity.CaptureProcessing {
			continue
		}
		delete(l.byID, id)
		delete(l.byLead, c.LeadID)
		l.pruned[c.LeadID] = struct{}{}
		removed++
	}
	return removed
}

// Restore carrega capturas recentes e os totais históricos vindos do banco.
func (l *CaptureLedger) Restore(captures []entity.Capture, totals map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range captures {
		if l.captured(c.LeadID) {
			continue
		}
		l.insert(c)
	}
	for brokerID, total := range totals {
		l.history(brokerID).total = total
	}
}
