package booking

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinema-kiosk/model"
	"cinema-kiosk/seating"
)

var (
	ErrNavigationBlocked = errors.New("navigation blocked")
	ErrPaymentInFlight   = errors.New("payment already in progress")
	ErrUnknownPayment    = errors.New("payment is not pending")
)

const DefaultPaymentDelay = 2 * time.Second

// Navigator is the booking state machine. Like the grid it drives, it is
// owned by a single event loop.
type Navigator struct {
	grid      *seating.Grid
	films     FilmSource
	notifier  Notifier
	log       *zap.Logger
	current   Stage
	history   []Stage
	hooks     map[Stage]func()
	listeners []func(from, to Stage)
	onOrder   []func(model.Order)
	delay     time.Duration
	now       func() time.Time
	newID     func() string
	pending   *Payment
	lastOrder *model.Order
}

type Option func(*Navigator)

func WithNotifier(n Notifier) Option {
	return func(nav *Navigator) {
		if n != nil {
			nav.notifier = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(nav *Navigator) {
		if log != nil {
			nav.log = log
		}
	}
}

// WithStageHook runs fn every time the workflow enters stage.
func WithStageHook(stage Stage, fn func()) Option {
	return func(nav *Navigator) {
		nav.hooks[stage] = fn
	}
}

// WithStageListener is called after every stage change.
func WithStageListener(fn func(from, to Stage)) Option {
	return func(nav *Navigator) {
		nav.listeners = append(nav.listeners, fn)
	}
}

// WithOrderListener is called with every committed order.
func WithOrderListener(fn func(model.Order)) Option {
	return func(nav *Navigator) {
		nav.onOrder = append(nav.onOrder, fn)
	}
}

func WithPaymentDelay(d time.Duration) Option {
	return func(nav *Navigator) {
		nav.delay = max(0, d)
	}
}

func WithClock(now func() time.Time) Option {
	return func(nav *Navigator) {
		nav.now = now
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(nav *Navigator) {
		nav.newID = fn
	}
}

func New(grid *seating.Grid, films FilmSource, opts ...Option) *Navigator {
	nav := &Navigator{
		grid:     grid,
		films:    films,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
		current:  StageConfig,
		history:  []Stage{StageConfig},
		hooks:    make(map[Stage]func()),
		delay:    DefaultPaymentDelay,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(nav)
	}
	return nav
}

func (n *Navigator) Current() Stage {
	return n.current
}

func (n *Navigator) Grid() *seating.Grid {
	return n.grid
}

// SetGrid swaps the grid after a hall change.
func (n *Navigator) SetGrid(grid *seating.Grid) {
	n.grid = grid
}

// History lists visited stages, oldest first.
func (n *Navigator) History() []Stage {
	return slices.Clone(n.history)
}

func (n *Navigator) Steps() []Step {
	return StepsFor(n.current)
}

func (n *Navigator) LastOrder() (model.Order, bool) {
	if n.lastOrder == nil {
		return model.Order{}, false
	}
	return *n.lastOrder, true
}

func (n *Navigator) CanAdvanceTo(target Stage) bool {
	return n.blockReason(target) == ""
}

func (n *Navigator) blockReason(target Stage) string {
	switch {
	case !target.Valid():
		return fmt.Sprintf("unknown stage %s", target)
	case n.pending != nil:
		return "payment in progress"
	case target <= n.current:
		return ""
	case target != n.current+1:
		return fmt.Sprintf("complete %s first", (n.current + 1).Title())
	}
	switch target {
	case StageSeat:
		if n.films == nil {
			return "choose a film first"
		}
		if _, ok := n.films.SelectedFilm(); !ok {
			return "choose a film first"
		}
	case StagePayment:
		if n.grid == nil || !n.grid.SelectionFull() {
			tickets := 0
			if n.grid != nil {
				tickets = n.grid.Tickets()
			}
			return fmt.Sprintf("select %d seats first", tickets)
		}
	case StageConfirm:
		return "confirm the payment first"
	}
	return ""
}

// GoTo moves to target when the guards allow it. A blocked move emits a
// warning and returns an error wrapping ErrNavigationBlocked.
func (n *Navigator) GoTo(target Stage) error {
	if reason := n.blockReason(target); reason != "" {
		n.notifier.Notify(LevelWarning, reason)
		n.log.Warn("navigation blocked",
			zap.Stringer("from", n.current),
			zap.Stringer("to", target),
			zap.String("reason", reason),
		)
		return fmt.Errorf("%w: %s to %s: %s", ErrNavigationBlocked, n.current, target, reason)
	}
	if target == n.current {
		return nil
	}
	n.enter(target)
	return nil
}

func (n *Navigator) Next() error {
	return n.GoTo(n.current + 1)
}

// Back moves one stage back. It does nothing on the first stage.
func (n *Navigator) Back() error {
	if n.current == StageConfig {
		return nil
	}
	return n.GoTo(n.current - 1)
}

// Reset returns to the first stage and forgets the selection and history.
func (n *Navigator) Reset() error {
	if n.pending != nil {
		n.notifier.Notify(LevelWarning, "payment in progress")
		return fmt.Errorf("%w: reset: payment in progress", ErrNavigationBlocked)
	}
	if n.grid != nil {
		n.grid.ClearSelection()
	}
	from := n.current
	n.history = nil
	n.enter(StageConfig)
	n.log.Info("workflow reset", zap.Stringer("from", from))
	return nil
}

func (n *Navigator) enter(to Stage) {
	from := n.current
	if n.grid != nil {
		// the selection starts empty on the seat stage and is dropped when
		// the user leaves the workflow before it
		if (to < StageSeat && from >= StageSeat) || (to == StageSeat && from < StageSeat) {
			n.grid.ClearSelection()
		}
	}
	n.current = to
	n.history = append(n.history, to)
	n.notifier.StepsChanged(n.Steps())
	if hook := n.hooks[to]; hook != nil {
		hook()
	}
	for _, fn := range n.listeners {
		fn(from, to)
	}
	n.log.Info("stage changed", zap.Stringer("from", from), zap.Stringer("to", to))
}
