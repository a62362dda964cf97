package layout

import (
	"math"

	"cinema-kiosk/model"
)

// HitTest returns the seat nearest to (x, y) if the point falls within the
// seat's drawn radius. Equidistant seats resolve to the lowest row, then the
// lowest column.
func HitTest(l Layout, x, y float64) (model.SeatID, bool) {
	best, bestDist := model.SeatID{}, math.Inf(1)
	for _, id := range l.order {
		p := l.seats[id]
		if d := math.Hypot(p.X-x, p.Y-y); d < bestDist {
			best, bestDist = id, d
		}
	}
	if bestDist > l.SeatRadius {
		return model.SeatID{}, false
	}
	return best, true
}
