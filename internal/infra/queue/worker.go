package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/integration/kommo"
)

// CRMClient é o destino do hand-off (Kommo em produção).
type CRMClient interface {
	CreateLead(ctx context.Context, in kommo.HandOffInput) (int, error)
}

// ResultRecorder recebe o retorno do CRM; o engine da roleta implementa.
type ResultRecorder interface {
	HandOffResult(ctx context.Context, captureID string, status entity.CaptureStatus, detail string) (entity.Capture, error)
}

type HandOffObserver interface {
	HandOff(status entity.CaptureStatus)
	IntegrationError(service string)
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	CRM      CRMClient
	Results  ResultRecorder
	Observer HandOffObserver
	Log      *slog.Logger
}

func NewWorker(ch *amqp.Channel, crm CRMClient, results ResultRecorder, observer HandOffObserver, log *slog.Logger) *Worker {
	return &Worker{Channel: ch, CRM: crm, Results: results, Observer: observer, Log: log}
}

// Start consome até o contexto acabar ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack: confirmação manual
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("registrar consumidor RabbitMQ: %w", err)
	}

	w.Log.Info("worker de hand-off aguardando", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal do RabbitMQ fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload HandOffPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil || payload.CaptureID == "" {
		// mensagem podre: rejeita sem requeue para não travar a fila
		w.Log.Error("hand-off: payload inválido", "error", err)
		d.Nack(false, false)
		return
	}

	log := w.Log.With("capture_id", payload.CaptureID, "lead_id", payload.LeadID)

	kommoID, crmErr := w.CRM.CreateLead(ctx, toHandOffInput(payload))
	status, detail := entity.CaptureSent, "kommo:"+strconv.Itoa(kommoID)
	if crmErr != nil {
		status, detail = entity.CaptureError, crmErr.Error()
		if w.Observer != nil {
			w.Observer.IntegrationError("kommo")
		}
	}

	if _, err := w.Results.HandOffResult(ctx, payload.CaptureID, status, detail); err != nil {
		if crmErr != nil {
			// nada chegou ao CRM: pode tentar de novo
			log.Error("hand-off: falha ao registrar erro do CRM, devolvendo para a fila", "error", err)
			d.Nack(false, true)
			return
		}
		// o CRM já tem o lead; reenviar duplicaria. Vai para a DLQ para conciliação.
		log.Error("hand-off: lead enviado mas status não gravado", "error", err, "detail", detail)
		d.Nack(false, false)
		return
	}

	if w.Observer != nil {
		w.Observer.HandOff(status)
	}

	if crmErr != nil {
		log.Warn("hand-off: CRM recusou, enviando para a DLQ", "error", crmErr)
		d.Nack(false, false)
		return
	}

	log.Info("hand-off concluído", "detail", detail)
	d.Ack(false)
}

func toHandOffInput(p HandOffPayload) kommo.HandOffInput {
	in := kommo.HandOffInput{
		LeadID:      p.LeadID,
		Campaign:    p.Campaign,
		AdSet:       p.AdSet,
		IsHot:       p.IsHot,
		StoreName:   p.StoreName,
		BrokerName:  p.BrokerName,
		BrokerEmail: p.BrokerEmail,
	}

	// o payload é opaco; aproveita nome/telefone/email se vierem
	var contact struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if len(p.LeadData) > 0 && json.Unmarshal(p.LeadData, &contact) == nil {
		in.ContactName = contact.Name
		in.Phone = contact.Phone
		in.Email = contact.Email
	}
	return in
}
