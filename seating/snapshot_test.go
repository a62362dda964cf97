package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinema-kiosk/model"
)

func TestSnapshotRestore(t *testing.T) {
	hall := model.HallConfig{Rows: 3, SeatsPerRow: 4}
	src := NewGrid(hall, WithTickets(1), WithSold(seat(1, 1), seat(3, 4)))
	require.NoError(t, src.Select(seat(2, 2)))

	snap := src.Snapshot()
	assert.Len(t, snap, 12)
	assert.Equal(t, model.SeatSold, snap["3-4"])
	assert.Equal(t, model.SeatSelected, snap["2-2"])

	dst := NewGrid(hall, WithTickets(1))
	require.NoError(t, dst.Restore(snap))

	status, _ := dst.Status(seat(1, 1))
	assert.Equal(t, model.SeatSold, status)
	status, _ = dst.Status(seat(2, 2))
	assert.Equal(t, model.SeatAvailable, status)
	assert.Empty(t, dst.Selection())
}

func TestRestore_RejectsMalformedEntries(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 2, SeatsPerRow: 2}, WithSold(seat(1, 1)))

	err := g.Restore(map[string]model.SeatStatus{"1-2": "reserved"})
	require.Error(t, err)
	err = g.Restore(map[string]model.SeatStatus{"x": model.SeatSold})
	require.Error(t, err)

	status, _ := g.Status(seat(1, 1))
	assert.Equal(t, model.SeatSold, status)
}

func TestRestore_SkipsSeatsOutsideHall(t *testing.T) {
	g := NewGrid(model.HallConfig{Rows: 2, SeatsPerRow: 2})

	require.NoError(t, g.Restore(map[string]model.SeatStatus{"9-9": model.SeatSold, "2-1": model.SeatSold}))

	assert.Equal(t, 1, g.Count(model.SeatSold))
}
