package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cinema-kiosk/model"
	"cinema-kiosk/seating"
)

// Payment is a payment round-trip in flight. It completes exactly once.
type Payment struct {
	OrderID   string
	CreatedAt time.Time
	Delay     time.Duration
}

func (n *Navigator) IsPaymentPending() bool {
	return n.pending != nil
}

// Pending returns the payment in flight, if any.
func (n *Navigator) Pending() *Payment {
	return n.pending
}

// BeginPayment starts the payment for the current selection and shows the
// loading indicator. A second call while one is pending returns
// ErrPaymentInFlight and has no other effect.
func (n *Navigator) BeginPayment() (*Payment, error) {
	if n.pending != nil {
		return nil, ErrPaymentInFlight
	}
	if n.current != StagePayment {
		return nil, fmt.Errorf("%w: payment starts from %s, not %s", ErrNavigationBlocked, StagePayment, n.current)
	}
	if n.grid == nil || len(n.grid.Selection()) == 0 {
		return nil, seating.ErrEmptySelection
	}
	p := &Payment{
		OrderID:   n.newID(),
		CreatedAt: n.now(),
		Delay:     n.delay,
	}
	n.pending = p
	n.notifier.ShowLoading("Processing payment")
	n.log.Info("payment started",
		zap.String("order_id", p.OrderID),
		zap.Int("seats", len(n.grid.Selection())),
	)
	return p, nil
}

// CompletePayment commits the selection as an order and moves to the
// confirmation stage. The loading indicator is hidden on every path.
func (n *Navigator) CompletePayment(p *Payment) (model.Order, error) {
	if p == nil || p != n.pending {
		return model.Order{}, ErrUnknownPayment
	}
	defer n.notifier.HideLoading()
	n.pending = nil

	film, _ := n.selectedFilm()
	order, err := n.grid.Commit(p.OrderID, film, p.CreatedAt)
	if err != nil {
		n.notifier.Notify(LevelError, "payment failed: "+err.Error())
		n.log.Error("payment failed", zap.String("order_id", p.OrderID), zap.Error(err))
		return model.Order{}, fmt.Errorf("complete payment %s: %w", p.OrderID, err)
	}
	n.lastOrder = &order
	n.log.Info("order confirmed",
		zap.String("order_id", order.ID),
		zap.Strings("seats", order.SeatLabels()),
		zap.Float64("total", order.Total),
	)
	for _, fn := range n.onOrder {
		fn(order)
	}
	n.enter(StageConfirm)
	n.notifier.Notify(LevelInfo, fmt.Sprintf("Order %s confirmed", shortID(order.ID)))
	return order, nil
}

// abortPayment drops a pending payment without committing it.
func (n *Navigator) abortPayment(p *Payment) {
	if p == nil || p != n.pending {
		return
	}
	n.pending = nil
	n.notifier.HideLoading()
	n.log.Warn("payment aborted", zap.String("order_id", p.OrderID))
}

// PayAndWait runs both payment phases, waiting out the simulated delay.
func (n *Navigator) PayAndWait(ctx context.Context) (model.Order, error) {
	p, err := n.BeginPayment()
	if err != nil {
		return model.Order{}, err
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		n.abortPayment(p)
		return model.Order{}, ctx.Err()
	case <-timer.C:
		return n.CompletePayment(p)
	}
}

func (n *Navigator) selectedFilm() (string, bool) {
	if n.films == nil {
		return "", false
	}
	return n.films.SelectedFilm()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
