package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type sent struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent   []sent
	fail   error
	calls  int
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sent{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func testOrder() domain.Order {
	return domain.Order{
		ID: "o1", UserID: "u1", Amount: 210, CreatedAt: 1700000000000,
		Items: []domain.OrderItem{{ProductID: "p1", Name: "Tee", Size: "M", Quantity: 2, Price: 100}},
	}
}

func TestPublishOrderPlaced(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch)

	require.NoError(t, p.PublishOrderPlaced(context.Background(), testOrder()))
	require.Len(t, ch.sent, 1)
	s := ch.sent[0]
	assert.Equal(t, EventsExchange, s.exchange)
	assert.Equal(t, OrderPlacedRoutingKey, s.key)
	assert.Equal(t, "application/json", s.msg.ContentType)
	assert.Equal(t, amqp.Persistent, s.msg.DeliveryMode)

	var ev OrderPlaced
	require.NoError(t, json.Unmarshal(s.msg.Body, &ev))
	assert.Equal(t, "OrderPlaced", ev.EventType)
	assert.Equal(t, "o1", ev.OrderID)
	assert.Equal(t, []OrderItem{{ProductID: "p1", Size: "M", Quantity: 2, Price: 100}}, ev.Items)
	assert.Equal(t, int64(1700000000000), ev.Timestamp.UnixMilli())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublishOrderPlaced_BreakerOpens(t *testing.T) {
	ch := &fakeChannel{fail: errors.New("channel closed")}
	p := newPublisher(ch)

	for i := 0; i < 3; i++ {
		assert.Error(t, p.PublishOrderPlaced(context.Background(), testOrder()))
	}
	err := p.PublishOrderPlaced(context.Background(), testOrder())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, ch.calls, "open breaker must not touch the channel")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), testOrder()))
	assert.NoError(t, p.Close())
}
