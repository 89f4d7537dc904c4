package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandOffPayload é a captura confirmada a caminho do CRM.
type HandOffPayload struct {
	CaptureID   string          `json:"capture_id"`
	LeadID      string          `json:"lead_id"`
	BrokerID    string          `json:"broker_id"`
	BrokerName  string          `json:"broker_name"`
	BrokerEmail string          `json:"broker_email"`
	StoreID     string          `json:"store_id"`
	StoreName   string          `json:"store_name"`
	Campaign    string          `json:"campaign"`
	AdSet       string          `json:"ad_set"`
	IsHot       bool            `json:"is_hot"`
	CapturedAt  time.Time       `json:"captured_at"`
	LeadData    json.RawMessage `json:"lead_data,omitempty"`
}

type QueueProducerInterface interface {
	PublishHandOff(ctx context.Context, payload HandOffPayload) error
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishHandOff(ctx context.Context, payload HandOffPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.CaptureID,
			Timestamp:    payload.CapturedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
