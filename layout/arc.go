// Package layout places the seats of an auditorium on concentric arcs that
// fan out from the screen, and maps pointer coordinates back to seats.
package layout

import (
	"math"

	"cinema-kiosk/model"
)

// Unit-space geometry: neighbouring seats in a row are one unit apart
// (chord), rows are one unit apart radially. Everything is scaled to the
// canvas at the end.
const (
	seatRadiusUnits = 0.4
	labelGapUnits   = 1.0
	screenBand      = 0.12
	sideMargin      = 0.04
	bottomMargin    = 0.04
	maxSpan         = math.Pi / 2
)

type Position struct {
	X     float64
	Y     float64
	Angle float64
}

type Layout struct {
	Width      float64
	Height     float64
	SeatRadius float64
	Screen     Position

	seats      map[model.SeatID]Position
	order      []model.SeatID
	rowAnchors map[int]Position
}

// Compute lays out rows on arcs whose radius grows from the front row (row 1,
// nearest the screen at the top of the canvas) to the back. Seats in a row
// are spread symmetrically about the vertical axis at x = width/2.
// curvature is clamped to [0, 1]; 0 gives straight rows and 1 gives the
// widest row a quarter-circle span at the front radius.
//
// A non-positive row count, seat count or canvas size yields an empty layout.
func Compute(rows int, seatsInRow func(row int) int, width, height, curvature float64) Layout {
	empty := Layout{Width: width, Height: height}
	if rows <= 0 || seatsInRow == nil || width <= 0 || height <= 0 {
		return empty
	}
	counts := make([]int, rows+1)
	widest := 0
	for row := 1; row <= rows; row++ {
		n := seatsInRow(row)
		if n <= 0 {
			return empty
		}
		counts[row] = n
		widest = max(widest, n)
	}

	curvature = math.Max(0, math.Min(1, curvature))
	frontRadius := 0.0
	if curvature > 0 {
		frontRadius = math.Max(1, float64(widest-1)/(curvature*maxSpan))
	}

	unit := make(map[model.SeatID]Position)
	anchors := make(map[int]Position, rows)
	order := make([]model.SeatID, 0, rows*widest)
	for row := 1; row <= rows; row++ {
		n := counts[row]
		place := rowPlacer(row, frontRadius)
		for col := 1; col <= n; col++ {
			id := model.SeatID{Row: row, Col: col}
			unit[id] = place(float64(col) - float64(n+1)/2)
			order = append(order, id)
		}
		anchors[row] = place(1 - float64(n+1)/2 - labelGapUnits)
	}

	halfWidth, minY, maxY := 0.0, math.Inf(1), math.Inf(-1)
	for _, p := range unit {
		halfWidth = math.Max(halfWidth, math.Abs(p.X))
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	for _, p := range anchors {
		halfWidth = math.Max(halfWidth, math.Abs(p.X))
	}
	spanW := 2 * (halfWidth + 0.5)
	spanH := maxY - minY + 1

	top := screenBand * height
	availW := width * (1 - 2*sideMargin)
	availH := height - top - bottomMargin*height
	scale := math.Min(availW/spanW, availH/spanH)
	if scale <= 0 || math.IsNaN(scale) {
		return empty
	}
	offsetY := top + (availH-spanH*scale)/2

	toCanvas := func(p Position) Position {
		return Position{
			X:     width/2 + p.X*scale,
			Y:     offsetY + (p.Y-minY+0.5)*scale,
			Angle: p.Angle,
		}
	}

	l := Layout{
		Width:      width,
		Height:     height,
		SeatRadius: seatRadiusUnits * scale,
		Screen:     Position{X: width / 2, Y: top / 2},
		seats:      make(map[model.SeatID]Position, len(unit)),
		order:      order,
		rowAnchors: make(map[int]Position, rows),
	}
	for id, p := range unit {
		l.seats[id] = toCanvas(p)
	}
	for row, p := range anchors {
		l.rowAnchors[row] = toCanvas(p)
	}
	return l
}

// ForHall computes the layout of a hall configuration.
func ForHall(hall model.HallConfig, width, height, curvature float64) Layout {
	if !hall.Valid() {
		return Layout{Width: width, Height: height}
	}
	return Compute(hall.Rows, hall.SeatsInRow, width, height, curvature)
}

// rowPlacer returns a function mapping a signed seat offset from the row
// centre (in seats) to a unit-space position. With a zero front radius rows
// are straight.
func rowPlacer(row int, frontRadius float64) func(offset float64) Position {
	depth := float64(row - 1)
	if frontRadius == 0 {
		return func(offset float64) Position {
			return Position{X: offset, Y: depth}
		}
	}
	radius := frontRadius + depth
	step := 2 * math.Asin(1/(2*radius))
	return func(offset float64) Position {
		theta := offset * step
		return Position{
			X:     radius * math.Sin(theta),
			Y:     radius*math.Cos(theta) - frontRadius,
			Angle: theta,
		}
	}
}

// Pitch is the canvas distance between neighbouring seats.
func (l Layout) Pitch() float64 {
	return l.SeatRadius / seatRadiusUnits
}

func (l Layout) Len() int {
	return len(l.order)
}

func (l Layout) Empty() bool {
	return len(l.order) == 0
}

// Seats returns seat ids row by row, front row first.
func (l Layout) Seats() []model.SeatID {
	return append([]model.SeatID(nil), l.order...)
}

func (l Layout) Position(id model.SeatID) (Position, bool) {
	p, ok := l.seats[id]
	return p, ok
}

// RowAnchor is where the row label goes, one seat pitch before the first
// seat of the row.
func (l Layout) RowAnchor(row int) (Position, bool) {
	p, ok := l.rowAnchors[row]
	return p, ok
}

func (l Layout) Rows() int {
	return len(l.rowAnchors)
}
