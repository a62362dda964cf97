// Package kiosk ties the seat grid, the layout and the booking workflow
// together behind a single input entry point.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"cinema-kiosk/booking"
	"cinema-kiosk/events"
	"cinema-kiosk/layout"
	"cinema-kiosk/logger"
	"cinema-kiosk/model"
	"cinema-kiosk/render"
	"cinema-kiosk/seating"
	"cinema-kiosk/store"
)

const storeTimeout = 3 * time.Second

var (
	ErrNotAllowed   = errors.New("not available at this stage")
	ErrUnknownFilm  = errors.New("unknown film")
	ErrUnknownEvent = errors.New("unknown input event")
)

type Settings struct {
	Hall         model.HallConfig
	Tickets      int
	Width        float64
	Height       float64
	Curvature    float64
	PaymentDelay time.Duration
	Films        []model.Film
}

type Option func(*Kiosk)

func WithStore(s store.SnapshotStore) Option {
	return func(k *Kiosk) {
		k.store = s
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(k *Kiosk) {
		if p != nil {
			k.pub = p
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(k *Kiosk) {
		if log != nil {
			k.log = log
		}
	}
}

// WithNavigatorOptions passes extra options to the booking navigator.
func WithNavigatorOptions(opts ...booking.Option) Option {
	return func(k *Kiosk) {
		k.navOpts = append(k.navOpts, opts...)
	}
}

// Kiosk is the state of one kiosk session. It is driven from a single
// goroutine.
type Kiosk struct {
	hall      model.HallConfig
	grid      *seating.Grid
	nav       *booking.Navigator
	layout    layout.Layout
	width     float64
	height    float64
	curvature float64
	labels    render.Labels
	films     []model.Film
	film      string
	box       *inbox
	store     store.SnapshotStore
	sold      map[string]map[string]model.SeatStatus
	pub       events.Publisher
	log       *zap.Logger
	navOpts   []booking.Option
}

func New(settings Settings, opts ...Option) *Kiosk {
	k := &Kiosk{
		hall:      settings.Hall,
		width:     settings.Width,
		height:    settings.Height,
		curvature: settings.Curvature,
		labels:    render.DefaultLabels(),
		films:     settings.Films,
		box:       &inbox{},
		sold:      make(map[string]map[string]model.SeatStatus),
		pub:       events.NopPublisher{},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.grid = seating.NewGrid(k.hall, seating.WithTickets(settings.Tickets))
	navOpts := []booking.Option{
		booking.WithNotifier(k.box),
		booking.WithLogger(k.log),
		booking.WithPaymentDelay(settings.PaymentDelay),
		booking.WithStageListener(k.stageChanged),
		booking.WithOrderListener(k.orderConfirmed),
		booking.WithStageHook(booking.StageSeat, k.refreshSold),
	}
	k.nav = booking.New(k.grid, k, append(navOpts, k.navOpts...)...)
	k.box.steps = k.nav.Steps()
	k.relayout()
	return k
}

// SelectedFilm implements booking.FilmSource.
func (k *Kiosk) SelectedFilm() (string, bool) {
	return k.film, k.film != ""
}

func (k *Kiosk) Film() (model.Film, bool) {
	for _, film := range k.films {
		if film.Id == k.film {
			return film, true
		}
	}
	return model.Film{}, false
}

func (k *Kiosk) Films() []model.Film {
	return k.films
}

// SetFilms replaces the catalog. An empty list is ignored. A chosen film
// that is no longer listed is dropped only before seats are picked.
func (k *Kiosk) SetFilms(films []model.Film) {
	if len(films) == 0 {
		return
	}
	k.films = films
	if _, ok := k.findFilm(k.film); !ok && k.nav.Current() <= booking.StageMovie {
		k.film = ""
	}
}

func (k *Kiosk) Hall() model.HallConfig {
	return k.hall
}

func (k *Kiosk) Grid() *seating.Grid {
	return k.grid
}

func (k *Kiosk) Navigator() *booking.Navigator {
	return k.nav
}

func (k *Kiosk) Stage() booking.Stage {
	return k.nav.Current()
}

func (k *Kiosk) Steps() []booking.Step {
	return k.box.steps
}

// Loading reports whether the payment indicator is showing.
func (k *Kiosk) Loading() bool {
	return k.box.loading
}

func (k *Kiosk) Layout() layout.Layout {
	return k.layout
}

func (k *Kiosk) Labels() render.Labels {
	return k.labels
}

// Render draws the current chart on s.
func (k *Kiosk) Render(s render.Surface) {
	render.Render(s, k.layout, k.grid.Statuses(), k.labels)
}

// RecentOrders lists the latest orders kept by the store.
func (k *Kiosk) RecentOrders(ctx context.Context) ([]model.Order, error) {
	if k.store == nil {
		return nil, nil
	}
	return k.store.RecentOrders(ctx)
}

// HandleInput applies one input event. Errors are recoverable: they come
// with a notice in the result and leave the state unchanged.
func (k *Kiosk) HandleInput(ev Event) (Result, error) {
	res, err := k.dispatch(ev)
	res.Notices = append(k.box.drain(), res.Notices...)
	if err != nil {
		k.log.Debug("input rejected", zap.String("event", fmt.Sprintf("%T", ev)), zap.Error(err))
	}
	return res, err
}

func (k *Kiosk) dispatch(ev Event) (Result, error) {
	switch e := ev.(type) {
	case PointerEvent:
		if k.nav.Current() != booking.StageSeat {
			return Result{}, nil
		}
		id, ok := layout.HitTest(k.layout, e.X, e.Y)
		if !ok {
			return Result{}, nil
		}
		return k.toggle(id)

	case ToggleSeatEvent:
		if k.nav.Current() != booking.StageSeat {
			return k.notAllowed("seat selection")
		}
		return k.toggle(e.Seat)

	case StepClickEvent:
		return k.navigate(k.nav.GoTo(e.Stage))

	case NextEvent:
		return k.navigate(k.nav.Next())

	case BackEvent:
		return k.navigate(k.nav.Back())

	case ResizeEvent:
		k.width, k.height = e.Width, e.Height
		k.relayout()
		return Result{Redraw: true}, nil

	case SetTicketsEvent:
		if k.nav.Current() != booking.StageConfig {
			return k.notAllowed("changing tickets")
		}
		k.grid.SetTickets(e.Count)
		return Result{Redraw: true}, nil

	case SetHallEvent:
		if k.nav.Current() != booking.StageConfig {
			return k.notAllowed("changing hall")
		}
		k.hall = e.Hall
		k.rebuildGrid()
		return Result{Redraw: true}, nil

	case ChooseFilmEvent:
		return k.chooseFilm(e.FilmID)

	case AutoSelectEvent:
		if k.nav.Current() != booking.StageSeat {
			return k.notAllowed("auto select")
		}
		if _, err := k.grid.AutoSelect(); err != nil {
			return k.seatError(err)
		}
		return Result{Redraw: true}, nil

	case ConfirmPaymentEvent:
		p, err := k.nav.BeginPayment()
		if errors.Is(err, booking.ErrPaymentInFlight) {
			return Result{}, nil
		}
		if err != nil {
			return Result{Notices: []Notice{{Level: booking.LevelWarning, Message: err.Error()}}}, err
		}
		return Result{Payment: p}, nil

	case PaymentCompleteEvent:
		order, err := k.nav.CompletePayment(e.Payment)
		if errors.Is(err, booking.ErrUnknownPayment) {
			return Result{}, nil
		}
		if err != nil {
			return Result{Redraw: true}, err
		}
		return Result{Redraw: true, Order: &order}, nil

	case ResetEvent:
		return k.navigate(k.nav.Reset())

	case ToggleNumbersEvent:
		k.labels.SeatNumbers = !k.labels.SeatNumbers
		return Result{Redraw: true}, nil

	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (k *Kiosk) toggle(id model.SeatID) (Result, error) {
	if err := k.grid.Toggle(id); err != nil {
		return k.seatError(err)
	}
	return Result{Redraw: true, Seat: &id}, nil
}

func (k *Kiosk) navigate(err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Redraw: true}, nil
}

func (k *Kiosk) notAllowed(action string) (Result, error) {
	msg := fmt.Sprintf("%s is not available in the %s step", action, k.nav.Current().Title())
	return Result{Notices: []Notice{{Level: booking.LevelWarning, Message: msg}}}, fmt.Errorf("%s: %w", action, ErrNotAllowed)
}

func (k *Kiosk) seatError(err error) (Result, error) {
	var msg string
	switch {
	case errors.Is(err, seating.ErrInvalidState):
		msg = "That seat is not available"
	case errors.Is(err, seating.ErrCapacityExceeded):
		msg = fmt.Sprintf("You can pick up to %d seats", k.grid.Tickets())
	case errors.Is(err, seating.ErrNoSeatsAvailable):
		msg = fmt.Sprintf("No block of %d seats together is free", k.grid.Tickets())
	case errors.Is(err, seating.ErrSeatNotFound):
		msg = "No such seat"
	default:
		msg = err.Error()
	}
	return Result{Notices: []Notice{{Level: booking.LevelWarning, Message: msg}}}, err
}

func (k *Kiosk) chooseFilm(id string) (Result, error) {
	if k.nav.Current() != booking.StageMovie {
		return k.notAllowed("choosing a film")
	}
	film, ok := k.findFilm(id)
	if !ok {
		return Result{Notices: []Notice{{Level: booking.LevelWarning, Message: "Unknown film"}}}, fmt.Errorf("%w: %q", ErrUnknownFilm, id)
	}
	k.film = film.Id
	k.rebuildGrid()
	return Result{
		Redraw:  true,
		Notices: []Notice{{Level: booking.LevelInfo, Message: film.Title + " selected"}},
	}, nil
}

func (k *Kiosk) findFilm(id string) (model.Film, bool) {
	for _, film := range k.films {
		if film.Id == id {
			return film, true
		}
	}
	return model.Film{}, false
}

// rebuildGrid replaces the grid for the current hall and film, restoring
// the film's sold seats. Any selection is dropped.
func (k *Kiosk) rebuildGrid() {
	hall := k.hall
	if film, ok := k.Film(); ok && film.Price > 0 {
		hall.Price = film.Price
	}
	grid := seating.NewGrid(hall, seating.WithTickets(k.grid.Tickets()))
	k.restoreSold(grid)
	k.grid = grid
	k.nav.SetGrid(grid)
	k.relayout()
}

// restoreSold marks the film's sold seats on grid: those in the store and
// those sold by this kiosk, which survive a missing or failing store.
func (k *Kiosk) restoreSold(grid *seating.Grid) {
	key := k.snapshotKey()
	if key == "" {
		return
	}
	session := k.sold[key]
	merged := make(map[string]model.SeatStatus, len(session))
	maps.Copy(merged, k.loadSnapshot())
	for id, status := range session {
		if status == model.SeatSold {
			merged[id] = status
		}
	}
	if err := grid.Restore(merged); err != nil {
		k.log.Warn("snapshot restore failed", zap.String("key", key), zap.Error(err))
		if err := grid.Restore(session); err != nil {
			k.log.Warn("session restore failed", zap.String("key", key), zap.Error(err))
		}
	}
	k.sold[key] = grid.Snapshot()
}

// refreshSold picks up seats sold elsewhere since the film was chosen.
// It runs on entering the seat stage and leaves a kept selection alone.
func (k *Kiosk) refreshSold() {
	if len(k.grid.Selection()) > 0 {
		return
	}
	k.restoreSold(k.grid)
}

func (k *Kiosk) relayout() {
	k.layout = k.LayoutFor(k.width, k.height)
}

// LayoutFor lays out the current hall on a width x height canvas without
// changing the kiosk's own layout.
func (k *Kiosk) LayoutFor(width, height float64) layout.Layout {
	return layout.ForHall(k.grid.Hall(), width, height, k.curvature)
}

func (k *Kiosk) snapshotKey() string {
	if k.film == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s_%d", k.film, k.hall.Name, k.hall.Capacity())
}

func (k *Kiosk) loadSnapshot() map[string]model.SeatStatus {
	key := k.snapshotKey()
	if k.store == nil || key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	snapshot, err := k.store.LoadSnapshot(ctx, key)
	if err != nil {
		k.log.Warn("snapshot load failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return snapshot
}

func (k *Kiosk) stageChanged(from, to booking.Stage) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	err := k.pub.StageChanged(ctx, events.StageChangedEvent{
		From:      from.String(),
		To:        to.String(),
		ChangedAt: time.Now().UTC(),
	})
	if err != nil {
		k.log.Warn("publish stage change failed", zap.Stringer("stage", to), zap.Error(err))
	}
}

func (k *Kiosk) orderConfirmed(order model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if key := k.snapshotKey(); key != "" {
		k.sold[key] = k.grid.Snapshot()
	}
	if k.store != nil {
		if key := k.snapshotKey(); key != "" {
			if err := k.store.SaveSnapshot(ctx, key, k.grid.Snapshot()); err != nil {
				k.log.Warn("snapshot save failed", zap.String("key", key), zap.Error(err))
			}
		}
		if err := k.store.RememberOrder(ctx, order); err != nil {
			k.log.Warn("order save failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	if err := k.pub.OrderConfirmed(ctx, events.OrderConfirmed(order)); err != nil {
		k.log.Warn("publish order failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}
