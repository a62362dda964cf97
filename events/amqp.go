package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends events as persistent JSON messages to durable queues
// on the default exchange.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   amqpChannel
	now  func() time.Time
}

// DialAMQP connects to the broker at url and declares the event queues.
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	p, err := newAMQPPublisher(ch)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel) (*AMQPPublisher, error) {
	for _, queue := range []string{StageChangedQueue, OrderConfirmedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("rabbitmq: queue declare %s failed: %w", queue, err)
		}
	}
	return &AMQPPublisher{ch: ch, now: time.Now}, nil
}

func (p *AMQPPublisher) StageChanged(ctx context.Context, event StageChangedEvent) error {
	return p.publish(ctx, StageChangedQueue, event)
}

func (p *AMQPPublisher) OrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error {
	return p.publish(ctx, OrderConfirmedQueue, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish to %s failed: %w", queue, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
