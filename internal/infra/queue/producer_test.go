package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *capturingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func TestPublishHandOff(t *testing.T) {
	pub := &capturingPublisher{}
	p := &RabbitMQProducer{Ch: pub}

	require.NoError(t, p.PublishHandOff(context.Background(), samplePayload))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "c1", pub.msg.MessageId)

	var got HandOffPayload
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, samplePayload.LeadID, got.LeadID)
	assert.JSONEq(t, string(samplePayload.LeadData), string(got.LeadData))
}

func TestPublishHandOffError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &RabbitMQProducer{Ch: &capturingPublisher{err: boom}}
	assert.ErrorIs(t, p.PublishHandOff(context.Background(), samplePayload), boom)
}

type recordingTopology struct {
	queueArgs map[string]amqp.Table
	bindings  []string
}

func (r *recordingTopology) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (r *recordingTopology) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if r.queueArgs == nil {
		r.queueArgs = map[string]amqp.Table{}
	}
	r.queueArgs[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingTopology) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	r.bindings = append(r.bindings, exchange+"->"+name+":"+key)
	return nil
}

func TestSetupTopologyDeadLetters(t *testing.T) {
	top := &recordingTopology{}
	require.NoError(t, setupTopology(top))

	assert.Equal(t, DLXName, top.queueArgs[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, top.queueArgs[DLQName])
	assert.Contains(t, top.bindings, DLXName+"->"+DLQName+":"+RoutingKey)
	assert.Contains(t, top.bindings, ExchangeName+"->"+QueueName+":"+RoutingKey)
}
