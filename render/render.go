// Package render paints a seat layout onto a drawing surface.
package render

import (
	"image/color"
	"strconv"

	"cinema-kiosk/layout"
	"cinema-kiosk/model"
)

// Surface is the minimal 2-D canvas the seat chart needs. Coordinates are
// the layout's; text is centred on (x, y).
type Surface interface {
	Clear()
	FillCircle(x, y, r float64, c color.Color)
	DrawText(x, y float64, text string, c color.Color)
}

var (
	ColorAvailable = color.RGBA{R: 0x2e, G: 0xa0, B: 0x43, A: 0xff}
	ColorSelected  = color.RGBA{R: 0xf2, G: 0xc9, B: 0x4c, A: 0xff}
	ColorSold      = color.RGBA{R: 0xd6, G: 0x45, B: 0x45, A: 0xff}
	ColorLabel     = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	ColorSeatText  = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	ColorCanvas    = color.RGBA{R: 0x1c, G: 0x1c, B: 0x22, A: 0xff}
)

// StatusColor maps a seat status to its fill colour. Unknown statuses are
// drawn as available.
func StatusColor(status model.SeatStatus) color.RGBA {
	switch status {
	case model.SeatSelected:
		return ColorSelected
	case model.SeatSold:
		return ColorSold
	default:
		return ColorAvailable
	}
}

type Labels struct {
	Row         func(row int) string
	SeatNumbers bool
	Screen      string
}

func DefaultLabels() Labels {
	return Labels{Row: model.RowLabel, SeatNumbers: true, Screen: "SCREEN"}
}

// Render clears the surface and draws every seat of l, coloured by its
// status, with row labels and, optionally, seat numbers. Seats missing from
// statuses are drawn as available. An empty layout leaves a blank surface.
func Render(s Surface, l layout.Layout, statuses map[model.SeatID]model.SeatStatus, labels Labels) {
	s.Clear()
	if l.Empty() {
		return
	}
	if labels.Screen != "" {
		s.DrawText(l.Screen.X, l.Screen.Y, labels.Screen, ColorLabel)
	}
	rowLabel := labels.Row
	if rowLabel == nil {
		rowLabel = strconv.Itoa
	}
	for row := 1; row <= l.Rows(); row++ {
		if anchor, ok := l.RowAnchor(row); ok {
			s.DrawText(anchor.X, anchor.Y, rowLabel(row), ColorLabel)
		}
	}
	for _, id := range l.Seats() {
		p, _ := l.Position(id)
		s.FillCircle(p.X, p.Y, l.SeatRadius, StatusColor(statuses[id]))
		if labels.SeatNumbers {
			s.DrawText(p.X, p.Y, strconv.Itoa(id.Col), ColorSeatText)
		}
	}
}
