// Package seating owns the seat grid of one auditorium: seat status, the
// active selection and the orders committed from it.
package seating

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"cinema-kiosk/model"
)

var (
	ErrInvalidState     = errors.New("seat is not in a selectable state")
	ErrCapacityExceeded = errors.New("ticket count reached")
	ErrEmptySelection   = errors.New("no seats selected")
	ErrNoSeatsAvailable = errors.New("no adjacent seats available")
	ErrSeatNotFound     = errors.New("seat not found")
)

// Grid holds every seat of a hall and the selection of the active user.
// It is not safe for concurrent use; the kiosk drives it from a single
// event loop.
type Grid struct {
	hall      model.HallConfig
	seats     map[model.SeatID]*model.Seat
	selection []model.SeatID
	tickets   int
}

type Option func(*Grid)

// WithSold pre-seeds seats as sold. Unknown ids are ignored.
func WithSold(ids ...model.SeatID) Option {
	return func(g *Grid) {
		for _, id := range ids {
			if seat, ok := g.seats[id]; ok {
				seat.Status = model.SeatSold
			}
		}
	}
}

func WithTickets(count int) Option {
	return func(g *Grid) {
		g.tickets = max(0, count)
	}
}

// NewGrid builds the seats of hall. A hall with a non-positive row or seat
// count yields an empty grid.
func NewGrid(hall model.HallConfig, opts ...Option) *Grid {
	g := &Grid{
		hall:  hall,
		seats: make(map[model.SeatID]*model.Seat),
	}
	if hall.Valid() {
		for row := 1; row <= hall.Rows; row++ {
			for col := 1; col <= hall.SeatsInRow(row); col++ {
				id := model.SeatID{Row: row, Col: col}
				g.seats[id] = &model.Seat{ID: id, Status: model.SeatAvailable, Price: hall.Price}
			}
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grid) Hall() model.HallConfig {
	return g.hall
}

func (g *Grid) Rows() int {
	if len(g.seats) == 0 {
		return 0
	}
	return g.hall.Rows
}

func (g *Grid) SeatsInRow(row int) int {
	if len(g.seats) == 0 {
		return 0
	}
	return g.hall.SeatsInRow(row)
}

func (g *Grid) Len() int {
	return len(g.seats)
}

func (g *Grid) Seat(id model.SeatID) (model.Seat, bool) {
	seat, ok := g.seats[id]
	if !ok {
		return model.Seat{}, false
	}
	return *seat, true
}

func (g *Grid) Status(id model.SeatID) (model.SeatStatus, bool) {
	seat, ok := g.seats[id]
	if !ok {
		return "", false
	}
	return seat.Status, true
}

// Statuses returns a copy of every seat status, keyed by seat id.
func (g *Grid) Statuses() map[model.SeatID]model.SeatStatus {
	out := make(map[model.SeatID]model.SeatStatus, len(g.seats))
	for id, seat := range g.seats {
		out[id] = seat.Status
	}
	return out
}

// Count returns how many seats currently have the given status.
func (g *Grid) Count(status model.SeatStatus) int {
	n := 0
	for _, seat := range g.seats {
		if seat.Status == status {
			n++
		}
	}
	return n
}

func (g *Grid) Tickets() int {
	return g.tickets
}

// SetTickets changes the requested ticket count. A selection larger than the
// new count is released.
func (g *Grid) SetTickets(count int) {
	g.tickets = max(0, count)
	if len(g.selection) > g.tickets {
		g.ClearSelection()
	}
}

// Selection returns the selected seats in selection order.
func (g *Grid) Selection() []model.SeatID {
	return slices.Clone(g.selection)
}

func (g *Grid) SelectionFull() bool {
	return g.tickets > 0 && len(g.selection) == g.tickets
}

func (g *Grid) TotalPrice() float64 {
	total := 0.0
	for _, id := range g.selection {
		total += g.seats[id].Price
	}
	return total
}

func (g *Grid) Select(id model.SeatID) error {
	seat, ok := g.seats[id]
	if !ok {
		return fmt.Errorf("select %s: %w", id, ErrSeatNotFound)
	}
	if seat.Status != model.SeatAvailable {
		return fmt.Errorf("select %s (%s): %w", id, seat.Status, ErrInvalidState)
	}
	if len(g.selection) >= g.tickets {
		return fmt.Errorf("select %s: %w (%d)", id, ErrCapacityExceeded, g.tickets)
	}
	seat.Status = model.SeatSelected
	g.selection = append(g.selection, id)
	return nil
}

// Deselect releases a selected seat. Seats in any other state are left alone.
func (g *Grid) Deselect(id model.SeatID) {
	seat, ok := g.seats[id]
	if !ok || seat.Status != model.SeatSelected {
		return
	}
	seat.Status = model.SeatAvailable
	if i := slices.Index(g.selection, id); i >= 0 {
		g.selection = slices.Delete(g.selection, i, i+1)
	}
}

// Toggle selects an available seat or releases a selected one.
func (g *Grid) Toggle(id model.SeatID) error {
	if status, ok := g.Status(id); ok && status == model.SeatSelected {
		g.Deselect(id)
		return nil
	}
	return g.Select(id)
}

func (g *Grid) ClearSelection() {
	for _, id := range g.selection {
		g.seats[id].Status = model.SeatAvailable
	}
	g.selection = nil
}

// Commit sells every selected seat and returns the order summary.
func (g *Grid) Commit(orderID string, film string, at time.Time) (model.Order, error) {
	if len(g.selection) == 0 {
		return model.Order{}, ErrEmptySelection
	}
	order := model.Order{
		ID:        orderID,
		Film:      film,
		Seats:     slices.Clone(g.selection),
		Total:     g.TotalPrice(),
		CreatedAt: at,
	}
	for _, id := range g.selection {
		g.seats[id].Status = model.SeatSold
	}
	g.selection = nil
	return order, nil
}
