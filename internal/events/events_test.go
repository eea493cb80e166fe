package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kangoro5/leather-walk/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() OrderPlaced {
	draft := domain.OrderDraft{
		OwnerID:       "u1",
		Lines:         []domain.OrderLine{{ProductID: "P1", Quantity: 3, PriceSnapshot: decimal.NewFromInt(12000)}},
		PaymentMethod: domain.PaymentMpesa,
		Subtotal:      decimal.NewFromInt(36000),
		ShippingCost:  decimal.NewFromInt(500),
		Total:         decimal.NewFromInt(36500),
	}
	return NewOrderPlaced("ev-1", &domain.Order{ID: "o-9"}, draft)
}

func TestNewOrderPlaced(t *testing.T) {
	ev := sampleEvent()

	assert.Equal(t, OrderPlacedType, ev.EventType)
	assert.Equal(t, "o-9", ev.OrderID)
	assert.Equal(t, "o-9", ev.Key())
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "Ksh", ev.Currency)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, 3, ev.Items[0].Quantity)
	assert.False(t, ev.PlacedAt.IsZero())

	noOrder := NewOrderPlaced("ev-2", nil, domain.OrderDraft{})
	assert.Equal(t, "ev-2", noOrder.Key())
	assert.NotNil(t, noOrder.Items)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o-9", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, OrderPlacedType, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, float64(36500), body["total_amount"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("leader not available")}
	p := NewKafkaPublisherWithWriter(w)

	err := p.Publish(context.Background(), sampleEvent())

	assert.ErrorContains(t, err, "leader not available")
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &mockChannel{}
	p, err := NewRabbitPublisher(ch)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))

	assert.Equal(t, []string{"ecommerce.events:topic"}, ch.declared)
	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, OrderPlacedRoutingKey, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), got.msg.DeliveryMode)
	assert.Equal(t, "ev-1", got.msg.MessageId)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_DeclareError(t *testing.T) {
	_, err := NewRabbitPublisher(&mockChannel{declareErr: errors.New("access refused")})

	assert.ErrorContains(t, err, "declare ecommerce.events")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
