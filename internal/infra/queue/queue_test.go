package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

// ============ TESTES DO PRODUCER ============

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

// TestPublishLeadCaptured - evento vai para a exchange de leads, persistente e sem dados de rede
func TestPublishLeadCaptured(t *testing.T) {
	pub := &fakePublisher{}
	lead := &entity.Lead{
		ID:        "lead-1",
		Name:      "João Silva",
		Email:     "joao@example.com",
		WhatsApp:  "(11) 99999-9999",
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8",
		UTMSource: "google",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	err := NewProducer(pub).PublishLeadCaptured(context.Background(), NewLeadCapturedEvent(lead))

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "lead-1", pub.msg.MessageId)

	var got LeadCapturedEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, "joao@example.com", got.Email)
	assert.Equal(t, "google", got.UTMSource)
	assert.NotContains(t, string(pub.msg.Body), "10.0.0.1")
	assert.NotContains(t, string(pub.msg.Body), "curl/8")
}

// TestPublishLeadCapturedError - falha do canal volta embrulhada
func TestPublishLeadCapturedError(t *testing.T) {
	pub := &fakePublisher{err: amqp.ErrClosed}

	err := NewProducer(pub).PublishLeadCaptured(context.Background(), LeadCapturedEvent{LeadID: "x"})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

// ============ TESTES DO WORKER ============

type ackRecorder struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

type fakeNotifier struct {
	events []LeadCapturedEvent
	err    error
}

func (f *fakeNotifier) NotifyNewLead(_ context.Context, e LeadCapturedEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.msgs, nil
}

func delivery(ack *ackRecorder, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

// TestWorkerAcksNotifiedLead - lead notificado recebe ack
func TestWorkerAcksNotifiedLead(t *testing.T) {
	ack := &ackRecorder{}
	notifier := &fakeNotifier{}
	w := NewWorker(nil, notifier)

	w.handle(context.Background(), delivery(ack, `{"lead_id":"l1","name":"A","email":"a@example.com"}`))

	assert.Equal(t, 1, ack.acked)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "l1", notifier.events[0].LeadID)
}

// TestWorkerSendsBadMessagesToDLQ - JSON inválido e falha de envio vão para a DLQ sem requeue
func TestWorkerSendsBadMessagesToDLQ(t *testing.T) {
	ack := &ackRecorder{}
	w := NewWorker(nil, &fakeNotifier{})
	w.handle(context.Background(), delivery(ack, `{quebrado`))
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)

	ack = &ackRecorder{}
	w = NewWorker(nil, &fakeNotifier{err: errors.New("smtp fora")})
	w.handle(context.Background(), delivery(ack, `{"lead_id":"l2"}`))
	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.acked)
}

// TestWorkerStopsWhenChannelCloses - Start retorna quando o canal de entregas fecha
func TestWorkerStopsWhenChannelCloses(t *testing.T) {
	msgs := make(chan amqp.Delivery, 1)
	ack := &ackRecorder{}
	msgs <- delivery(ack, `{"lead_id":"l3"}`)
	close(msgs)

	notifier := &fakeNotifier{}
	err := NewWorker(&fakeConsumer{msgs: msgs}, notifier).Start(context.Background(), QueueName)

	require.NoError(t, err)
	assert.Len(t, notifier.events, 1)
	assert.Equal(t, 1, ack.acked)
}
