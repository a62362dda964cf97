// Package events publishes kiosk workflow events to interested consumers.
// Publishing failures are returned for logging; they never stop the kiosk.
package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"cinema-kiosk/model"
)

const (
	StageChangedQueue   = "kiosk.stage_changed"
	OrderConfirmedQueue = "kiosk.order_confirmed"
)

type StageChangedEvent struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrderConfirmedEvent struct {
	OrderID     string    `json:"order_id"`
	Film        string    `json:"film"`
	Seats       []string  `json:"seats"`
	SeatLabels  []string  `json:"seat_labels"`
	Total       float64   `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// OrderConfirmed builds the event for a committed order.
func OrderConfirmed(order model.Order) OrderConfirmedEvent {
	seats := make([]string, 0, len(order.Seats))
	for _, id := range order.Seats {
		seats = append(seats, id.String())
	}
	return OrderConfirmedEvent{
		OrderID:     order.ID,
		Film:        order.Film,
		Seats:       seats,
		SeatLabels:  order.SeatLabels(),
		Total:       order.Total,
		ConfirmedAt: order.CreatedAt.UTC(),
	}
}

type Publisher interface {
	StageChanged(ctx context.Context, event StageChangedEvent) error
	OrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) StageChanged(context.Context, StageChangedEvent) error     { return nil }
func (NopPublisher) OrderConfirmed(context.Context, OrderConfirmedEvent) error { return nil }
func (NopPublisher) Close() error                                              { return nil }

// LogPublisher writes every event to a zap logger.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) StageChanged(_ context.Context, event StageChangedEvent) error {
	p.log.Info("stage changed event",
		zap.String("from", event.From),
		zap.String("to", event.To),
		zap.Time("at", event.ChangedAt),
	)
	return nil
}

func (p *LogPublisher) OrderConfirmed(_ context.Context, event OrderConfirmedEvent) error {
	p.log.Info("order confirmed event",
		zap.String("order_id", event.OrderID),
		zap.String("film", event.Film),
		zap.Strings("seats", event.SeatLabels),
		zap.Float64("total", event.Total),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// Tee fans events out to several publishers, joining their errors.
type Tee []Publisher

func (t Tee) StageChanged(ctx context.Context, event StageChangedEvent) error {
	var errs []error
	for _, p := range t {
		errs = append(errs, p.StageChanged(ctx, event))
	}
	return errors.Join(errs...)
}

func (t Tee) OrderConfirmed(ctx context.Context, event OrderConfirmedEvent) error {
	var errs []error
	for _, p := range t {
		errs = append(errs, p.OrderConfirmed(ctx, event))
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, p := range t {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
