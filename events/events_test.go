package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cinema-kiosk/model"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testOrder() model.Order {
	return model.Order{
		ID:        "order-1",
		Film:      "flow",
		Seats:     []model.SeatID{{Row: 3, Col: 4}, {Row: 3, Col: 5}},
		Total:     64,
		CreatedAt: time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC),
	}
}

func TestOrderConfirmed_FromOrder(t *testing.T) {
	event := OrderConfirmed(testOrder())
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, []string{"3-4", "3-5"}, event.Seats)
	assert.Equal(t, []string{"C4", "C5"}, event.SeatLabels)
	assert.Equal(t, 64.0, event.Total)
}

func TestAMQPPublisher_DeclaresAndPublishes(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{StageChangedQueue, OrderConfirmedQueue}, ch.declared)

	require.NoError(t, p.OrderConfirmed(context.Background(), OrderConfirmed(testOrder())))
	require.NoError(t, p.StageChanged(context.Background(), StageChangedEvent{From: "payment", To: "confirm"}))

	require.Len(t, ch.published, 2)
	first := ch.published[0]
	assert.Equal(t, OrderConfirmedQueue, first.key)
	assert.Equal(t, "application/json", first.msg.ContentType)
	assert.Equal(t, amqp.Persistent, first.msg.DeliveryMode)

	var decoded OrderConfirmedEvent
	require.NoError(t, json.Unmarshal(first.msg.Body, &decoded))
	assert.Equal(t, "order-1", decoded.OrderID)
	assert.Equal(t, StageChangedQueue, ch.published[1].key)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_Errors(t *testing.T) {
	_, err := newAMQPPublisher(&fakeChannel{declareErr: errors.New("access refused")})
	assert.ErrorContains(t, err, "access refused")

	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch)
	require.NoError(t, err)
	ch.publishErr = amqp.ErrClosed
	err = p.StageChanged(context.Background(), StageChangedEvent{From: "config", To: "movie"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.OrderConfirmed(context.Background(), OrderConfirmed(testOrder())))
	entries := logs.FilterMessage("order confirmed event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "order-1", entries[0].ContextMap()["order_id"])
}

type failingPublisher struct{ NopPublisher }

func (failingPublisher) StageChanged(context.Context, StageChangedEvent) error {
	return errors.New("broker down")
}

func TestTee(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tee := Tee{failingPublisher{}, NewLogPublisher(zap.New(core))}

	err := tee.StageChanged(context.Background(), StageChangedEvent{From: "seat", To: "payment"})
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, 1, logs.FilterMessage("stage changed event").Len(), "later publishers still run")
	assert.NoError(t, tee.OrderConfirmed(context.Background(), OrderConfirmed(testOrder())))
	assert.NoError(t, tee.Close())
}
