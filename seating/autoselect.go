package seating

import (
	"fmt"
	"math"
	"sort"

	"cinema-kiosk/model"
)

// AutoSelect picks count adjacent free seats in one row, as close to the
// middle of the hall as possible. Rows are tried from the hall's centre row
// outward; within the first row that has room, the block whose midpoint is
// nearest the row midpoint wins. Seats selected by the active user count as
// free.
func AutoSelect(g *Grid, count int) ([]model.SeatID, bool) {
	if g == nil || count <= 0 {
		return nil, false
	}
	for _, row := range rowsFromCentre(g.Rows()) {
		if start, ok := bestRunInRow(g, row, count); ok {
			ids := make([]model.SeatID, 0, count)
			for col := start; col < start+count; col++ {
				ids = append(ids, model.SeatID{Row: row, Col: col})
			}
			return ids, true
		}
	}
	return nil, false
}

// AutoSelect replaces the current selection with the block chosen by
// AutoSelect for the requested ticket count. The grid is untouched when no
// block fits.
func (g *Grid) AutoSelect() ([]model.SeatID, error) {
	if g.tickets <= 0 {
		return nil, fmt.Errorf("auto select: %w (%d)", ErrCapacityExceeded, g.tickets)
	}
	ids, ok := AutoSelect(g, g.tickets)
	if !ok {
		return nil, fmt.Errorf("auto select %d: %w", g.tickets, ErrNoSeatsAvailable)
	}
	g.ClearSelection()
	for _, id := range ids {
		g.seats[id].Status = model.SeatSelected
	}
	g.selection = append(g.selection, ids...)
	return ids, nil
}

func rowsFromCentre(rows int) []int {
	order := make([]int, 0, rows)
	for row := 1; row <= rows; row++ {
		order = append(order, row)
	}
	centre := float64(rows+1) / 2
	sort.SliceStable(order, func(i, j int) bool {
		di := math.Abs(float64(order[i]) - centre)
		dj := math.Abs(float64(order[j]) - centre)
		if di != dj {
			return di < dj
		}
		return order[i] < order[j]
	})
	return order
}

func bestRunInRow(g *Grid, row int, count int) (int, bool) {
	n := g.SeatsInRow(row)
	if n < count {
		return 0, false
	}
	mid := float64(n+1) / 2
	best, bestDist := 0, math.Inf(1)
	run := 0
	for col := 1; col <= n+1; col++ {
		if col <= n && isFree(g, model.SeatID{Row: row, Col: col}) {
			run++
			continue
		}
		if run >= count {
			runStart := col - run
			for start := runStart; start+count-1 < col; start++ {
				centre := float64(start) + float64(count-1)/2
				if dist := math.Abs(centre - mid); dist < bestDist {
					best, bestDist = start, dist
				}
			}
		}
		run = 0
	}
	return best, best > 0
}

func isFree(g *Grid, id model.SeatID) bool {
	status, ok := g.Status(id)
	return ok && status != model.SeatSold
}
