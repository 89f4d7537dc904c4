package roulette

import (
	"context"
	"errors"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Capture confirma o lead atribuído ao corretor. Em duas fases: a intenção
// é marcada com lock, a gravação acontece sem lock e a finalização confere
// se nada (check-out, timeout) desfez a atribuição nesse meio tempo.
func (e *Engine) Capture(ctx context.Context, brokerID, leadID string) (entity.Capture, error) {
	ls := e.leadState(leadID)
	if ls == nil {
		if e.ledger.HasCapture(leadID) {
			e.metrics.CaptureRejected("already_captured")
			return entity.Capture{}, &entity.AlreadyCapturedError{LeadID: leadID}
		}
		e.metrics.CaptureRejected("not_assigned")
		return entity.Capture{}, &entity.NotAssignedError{LeadID: leadID, BrokerID: brokerID}
	}
	bs := e.brokerState(brokerID)
	if bs == nil {
		e.metrics.CaptureRejected("not_assigned")
		return entity.Capture{}, &entity.NotAssignedError{LeadID: leadID, BrokerID: brokerID}
	}

	bs.mu.Lock()
	ls.mu.Lock()
	if err := e.claimable(bs, ls, brokerID); err != nil {
		ls.mu.Unlock()
		bs.mu.Unlock()
		return entity.Capture{}, err
	}
	if err := e.limiter.Check(bs.broker); err != nil {
		ls.mu.Unlock()
		bs.mu.Unlock()
		e.metrics.CaptureRejected("rate_limit")
		return entity.Capture{}, err
	}

	now := e.now()
	ls.claiming = true
	epoch := ls.claimEpoch
	captured := ls.lead
	captured.Status = entity.LeadCaptured
	captured.CapturedAt = &now
	c := entity.NewCapture(captured, brokerID, now)
	ls.mu.Unlock()
	bs.mu.Unlock()

	err := e.journal.RecordCapture(ctx, captured, *c)

	bs.mu.Lock()
	ls.mu.Lock()
	if err != nil {
		if ls.claimEpoch == epoch {
			ls.claiming = false
		}
		ls.mu.Unlock()
		bs.mu.Unlock()
		return entity.Capture{}, &entity.TransientError{Op: "capture", Err: err}
	}

	if ls.claimEpoch != epoch || ls.lead.Status != entity.LeadAssigned || ls.lead.AssignedTo != brokerID {
		// a gravação já aconteceu: desfaz no banco e regrava o estado atual
		current := ls.lead
		e.outbox.push("capture.discard", func(ctx context.Context) error {
			return e.journal.DiscardCapture(ctx, c.ID, current)
		})
		ls.mu.Unlock()
		bs.mu.Unlock()
		e.metrics.CaptureRejected("not_assigned")
		e.log.Warn("captura revertida: atribuição desfeita durante a gravação", "lead_id", leadID, "broker_id", brokerID)
		return entity.Capture{}, &entity.NotAssignedError{LeadID: leadID, BrokerID: brokerID}
	}

	if err := e.ledger.Record(*c); err != nil {
		ls.claiming = false
		ls.mu.Unlock()
		bs.mu.Unlock()
		return entity.Capture{}, err
	}
	ls.lead = captured
	ls.claiming = false
	if bs.outstanding == leadID {
		bs.outstanding = ""
	}
	ls.mu.Unlock()
	bs.mu.Unlock()

	e.forgetLead(leadID)
	e.metrics.CaptureRecorded(captured.StoreID)
	e.log.Info("lead capturado", "lead_id", leadID, "broker_id", brokerID, "capture_id", c.ID)

	// corretor livre de novo: a roleta pode andar
	e.Trigger(captured.StoreID)

	out := *c
	out.Lead = &captured
	return out, nil
}

// claimable exige bs.mu e ls.mu.
func (e *Engine) claimable(bs *brokerState, ls *leadState, brokerID string) error {
	if ls.lead.Status == entity.LeadCaptured || ls.claiming {
		e.metrics.CaptureRejected("already_captured")
		return &entity.AlreadyCapturedError{LeadID: ls.lead.ID}
	}
	if ls.lead.Status != entity.LeadAssigned || ls.lead.AssignedTo != brokerID || bs.outstanding != ls.lead.ID {
		e.metrics.CaptureRejected("not_assigned")
		return &entity.NotAssignedError{LeadID: ls.lead.ID, BrokerID: brokerID}
	}
	return nil
}

// HandOffResult registra o retorno do CRM (SENT ou ERROR). A gravação é
// síncrona para o consumidor só confirmar a mensagem depois dela.
func (e *Engine) HandOffResult(ctx context.Context, captureID string, status entity.CaptureStatus, detail string) (entity.Capture, error) {
	now := e.now()

	c, ok := e.ledger.Get(captureID)
	if !ok {
		// já saiu da janela em memória: vai direto para o banco
		c = entity.Capture{ID: captureID}
	}
	c.Status = status
	c.Detail = detail
	if status == entity.CaptureSent {
		c.SentAt = &now
	}

	if err := e.journal.UpdateCaptureStatus(ctx, c); err != nil {
		return entity.Capture{}, &entity.TransientError{Op: "handoff", Err: err}
	}

	updated, err := e.ledger.UpdateStatus(captureID, status, now, detail)
	if err != nil && !errors.Is(err, entity.ErrCaptureNotFound) {
		return entity.Capture{}, err
	}
	if err == nil {
		c = updated
	}
	return c, nil
}

// Stats devolve as contagens de captura do corretor (hora, dia, total).
func (e *Engine) Stats(brokerID string) entity.CaptureStats {
	return e.ledger.Stats(brokerID, e.clock.Now())
}
