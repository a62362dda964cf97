package seating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinema-kiosk/model"
)

func seat(row, col int) model.SeatID {
	return model.SeatID{Row: row, Col: col}
}

func TestNewGrid_BuildsEverySeat(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 5, SeatsPerRow: 10, Price: 20})

	assert.Equal(t, 50, g.Len())
	s, ok := g.Seat(seat(5, 10))
	require.True(t, ok)
	assert.Equal(t, model.SeatAvailable, s.Status)
	assert.Equal(t, 20.0, s.Price)
	_, ok = g.Seat(seat(6, 1))
	assert.False(t, ok)
}

func TestNewGrid_VaryingRows(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 3, RowSeats: []int{6, 8, 10}})

	assert.Equal(t, 24, g.Len())
	assert.Equal(t, 6, g.SeatsInRow(1))
	assert.Equal(t, 10, g.SeatsInRow(3))
}

func TestNewGrid_NonPositiveCountsGiveEmptyGrid(t *testing.T) {
	for _, hall := range []model.HallConfig{
		{Rows: 0, SeatsPerRow: 10},
		{Rows: 4, SeatsPerRow: 0},
		{Rows: -1, SeatsPerRow: 5},
		{Rows: 2, RowSeats: []int{4, 0}},
	} {
		g := NewGrid(hall)
		assert.Zero(t, g.Len(), "hall %+v", hall)
		assert.Zero(t, g.Rows())
	}
}

func TestSelectDeselect_RoundTrip(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 5, SeatsPerRow: 10, Price: 12.5}, WithTickets(2))

	require.NoError(t, g.Select(seat(2, 3)))
	status, _ := g.Status(seat(2, 3))
	assert.Equal(t, model.SeatSelected, status)
	assert.Equal(t, []model.SeatID{seat(2, 3)}, g.Selection())
	assert.Equal(t, 12.5, g.TotalPrice())

	g.Deselect(seat(2, 3))
	status, _ = g.Status(seat(2, 3))
	assert.Equal(t, model.SeatAvailable, status)
	assert.Empty(t, g.Selection())
	assert.Zero(t, g.TotalPrice())
}

func TestDeselect_NoopUnlessSelected(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 2, SeatsPerRow: 2}, WithTickets(1), WithSold(seat(1, 1)))

	g.Deselect(seat(1, 1))
	g.Deselect(seat(1, 2))
	g.Deselect(seat(9, 9))

	status, _ := g.Status(seat(1, 1))
	assert.Equal(t, model.SeatSold, status)
	status, _ = g.Status(seat(1, 2))
	assert.Equal(t, model.SeatAvailable, status)
}

func TestSelect_CapacityExceededDoesNotMutate(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 3, SeatsPerRow: 5}, WithTickets(2))
	require.NoError(t, g.Select(seat(1, 1)))
	require.NoError(t, g.Select(seat(1, 2)))
	before := g.Statuses()

	err := g.Select(seat(1, 3))

	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, g.Statuses())
	assert.Equal(t, []model.SeatID{seat(1, 1), seat(1, 2)}, g.Selection())
}

func TestSelect_RejectsSoldSelectedAndUnknown(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 3, SeatsPerRow: 5}, WithTickets(3), WithSold(seat(2, 2)))

	assert.ErrorIs(t, g.Select(seat(2, 2)), ErrInvalidState)
	require.NoError(t, g.Select(seat(2, 3)))
	assert.ErrorIs(t, g.Select(seat(2, 3)), ErrInvalidState)
	assert.ErrorIs(t, g.Select(seat(4, 1)), ErrSeatNotFound)
	assert.Len(t, g.Selection(), 1)
}

func TestToggle(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 1, SeatsPerRow: 3}, WithTickets(1))

	require.NoError(t, g.Toggle(seat(1, 2)))
	assert.True(t, g.SelectionFull())
	require.NoError(t, g.Toggle(seat(1, 2)))
	assert.Empty(t, g.Selection())
}

func TestSetTickets_ReleasesOversizedSelection(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 1, SeatsPerRow: 5}, WithTickets(3))
	require.NoError(t, g.Select(seat(1, 1)))
	require.NoError(t, g.Select(seat(1, 2)))

	g.SetTickets(4)
	assert.Len(t, g.Selection(), 2)

	g.SetTickets(1)
	assert.Empty(t, g.Selection())
	assert.Equal(t, 5, g.Count(model.SeatAvailable))
}

func TestCommit_ScenarioFiveByTen(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 5, SeatsPerRow: 10, Price: 30}, WithTickets(2))
	require.NoError(t, g.Select(seat(3, 4)))
	require.NoError(t, g.Select(seat(3, 5)))
	at := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	order, err := g.Commit("order-1", "film-1", at)

	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, []model.SeatID{seat(3, 4), seat(3, 5)}, order.Seats)
	assert.Equal(t, 60.0, order.Total)
	assert.Equal(t, at, order.CreatedAt)
	for _, id := range order.Seats {
		status, _ := g.Status(id)
		assert.Equal(t, model.SeatSold, status)
	}
	assert.Empty(t, g.Selection())
	assert.ErrorIs(t, g.Select(seat(3, 4)), ErrInvalidState)
}

func TestCommit_EmptySelection(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 2, SeatsPerRow: 2}, WithTickets(1))

	_, err := g.Commit("order", "", time.Now())

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, 4, g.Count(model.SeatAvailable))
}

func TestCommit_OrderDoesNotAliasSelection(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 1, SeatsPerRow: 4}, WithTickets(2))
	require.NoError(t, g.Select(seat(1, 1)))
	order, err := g.Commit("a", "", time.Now())
	require.NoError(t, err)

	require.NoError(t, g.Select(seat(1, 2)))

	assert.Equal(t, []model.SeatID{seat(1, 1)}, order.Seats)
}
