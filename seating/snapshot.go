package seating

import (
	"fmt"

	"cinema-kiosk/model"
)

// Snapshot flattens seat statuses into a seat-id string to status map, the
// record the persistence layer stores.
func (g *Grid) Snapshot() map[string]model.SeatStatus {
	out := make(map[string]model.SeatStatus, len(g.seats))
	for id, seat := range g.seats {
		out[id.String()] = seat.Status
	}
	return out
}

// Restore applies a snapshot taken from a grid of the same hall. Sold seats
// come back sold; selected seats come back available because a selection
// never outlives its session. Ids outside the hall are skipped. The grid is
// left unchanged when the snapshot holds a malformed entry.
func (g *Grid) Restore(snapshot map[string]model.SeatStatus) error {
	sold := make([]model.SeatID, 0, len(snapshot))
	for key, status := range snapshot {
		if !status.Valid() {
			return fmt.Errorf("restore seat %s: unknown status %q", key, status)
		}
		id, err := model.ParseSeatID(key)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		if status == model.SeatSold {
			sold = append(sold, id)
		}
	}
	g.ClearSelection()
	for _, seat := range g.seats {
		seat.Status = model.SeatAvailable
	}
	WithSold(sold...)(g)
	return nil
}
