package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cinema-kiosk/layout"
	"cinema-kiosk/model"
)

// minCellPitch is the seat pitch, in canvas units, below which seats on a
// TermSurface bleed into each other.
const minCellPitch = 2

// TermSurface draws on a grid of terminal cells. A cell is one unit wide and
// two units tall, so a layout computed for CanvasSize(cols, rows) keeps its
// proportions on screen.
type TermSurface struct {
	cols  int
	rows  int
	cells [][]termCell
}

type termCell struct {
	ch      rune
	fg      string
	bg      string
	reverse bool
}

func NewTermSurface(cols, rows int) *TermSurface {
	s := &TermSurface{cols: max(0, cols), rows: max(0, rows)}
	s.cells = make([][]termCell, s.rows)
	for i := range s.cells {
		s.cells[i] = make([]termCell, s.cols)
	}
	s.Clear()
	return s
}

// CanvasSize is the layout canvas matching a cols x rows terminal area.
func CanvasSize(cols, rows int) (float64, float64) {
	return float64(cols), float64(rows) * 2
}

// CellCentre maps a terminal cell (e.g. a mouse event) into canvas space.
func CellCentre(col, row int) (float64, float64) {
	return float64(col) + 0.5, float64(row)*2 + 1
}

// CellOf is the terminal cell holding canvas point (x, y).
func CellOf(x, y float64) (int, int) {
	return int(math.Floor(x)), int(math.Floor(y / 2))
}

// Readable reports whether every seat of l gets cells of its own on a
// TermSurface: seats at least two cells apart, no two centres in one cell.
func Readable(l layout.Layout) bool {
	if l.Empty() {
		return true
	}
	if l.Pitch() < minCellPitch {
		return false
	}
	seen := make(map[[2]int]bool, l.Len())
	for _, id := range l.Seats() {
		p, _ := l.Position(id)
		col, row := CellOf(p.X, p.Y)
		if seen[[2]int{col, row}] {
			return false
		}
		seen[[2]int{col, row}] = true
	}
	return true
}

// CellTarget maps a clicked cell to the canvas point to hit-test. A cell
// holding a seat centre targets that seat exactly; any other cell targets
// its own centre.
func CellTarget(l layout.Layout, col, row int) (float64, float64) {
	x, y := CellCentre(col, row)
	var best model.SeatID
	bestDist := math.Inf(1)
	for _, id := range l.Seats() {
		p, _ := l.Position(id)
		if c, r := CellOf(p.X, p.Y); c != col || r != row {
			continue
		}
		d := math.Hypot(p.X-x, p.Y-y)
		if d < bestDist || (d == bestDist && id.Less(best)) {
			best, bestDist = id, d
		}
	}
	if math.IsInf(bestDist, 1) {
		return x, y
	}
	p, _ := l.Position(best)
	return p.X, p.Y
}

func (s *TermSurface) Clear() {
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c] = termCell{ch: ' '}
		}
	}
}

func (s *TermSurface) FillCircle(x, y, r float64, c color.Color) {
	bg := hexColor(c)
	for row := 0; row < s.rows; row++ {
		cy := float64(row)*2 + 1
		for col := 0; col < s.cols; col++ {
			cx := float64(col) + 0.5
			if math.Hypot(cx-x, cy-y) <= r {
				s.cells[row][col] = termCell{ch: ' ', bg: bg}
			}
		}
	}
	// small seats still get the cell under their centre
	if col, row, ok := s.cellAt(x, y); ok {
		s.cells[row][col] = termCell{ch: ' ', bg: bg}
	}
}

func (s *TermSurface) DrawText(x, y float64, text string, c color.Color) {
	runes := []rune(text)
	if len(runes) == 0 {
		return
	}
	row := int(math.Floor(y / 2))
	if row < 0 || row >= s.rows {
		return
	}
	start := int(math.Round(x - float64(len(runes))/2))
	fg := hexColor(c)
	for i, ch := range runes {
		col := start + i
		if col < 0 || col >= s.cols {
			continue
		}
		cell := &s.cells[row][col]
		cell.ch = ch
		cell.fg = fg
	}
}

// Mark draws the cell under (x, y) in reverse video, used for the keyboard
// cursor.
func (s *TermSurface) Mark(x, y float64) {
	if col, row, ok := s.cellAt(x, y); ok {
		s.cells[row][col].reverse = true
	}
}

func (s *TermSurface) cellAt(x, y float64) (int, int, bool) {
	col, row := CellOf(x, y)
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return 0, 0, false
	}
	return col, row, true
}

// String renders the cells with lipgloss colours, one line per row.
func (s *TermSurface) String() string {
	return s.Region(0, 0, s.cols, s.rows)
}

// Region renders the cols x rows block of cells whose top-left cell is
// (col, row). Cells off the surface come out blank.
func (s *TermSurface) Region(col, row, cols, rows int) string {
	lines := make([]string, 0, max(0, rows))
	blank := termCell{ch: ' '}
	cells := make([]termCell, max(0, cols))
	for r := row; r < row+rows; r++ {
		for i := range cells {
			c := col + i
			if r < 0 || r >= s.rows || c < 0 || c >= s.cols {
				cells[i] = blank
				continue
			}
			cells[i] = s.cells[r][c]
		}
		lines = append(lines, styledLine(cells))
	}
	return strings.Join(lines, "\n")
}

func styledLine(row []termCell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		for j < len(row) && sameStyle(row[i], row[j]) {
			j++
		}
		var run strings.Builder
		for _, cell := range row[i:j] {
			run.WriteRune(cell.ch)
		}
		b.WriteString(cellStyle(row[i]).Render(run.String()))
		i = j
	}
	return b.String()
}

// Plain returns the characters only, without styling.
func (s *TermSurface) Plain() string {
	lines := make([]string, 0, s.rows)
	for _, row := range s.cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteRune(cell.ch)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b termCell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.reverse == b.reverse
}

func cellStyle(cell termCell) lipgloss.Style {
	style := lipgloss.NewStyle()
	if cell.fg != "" {
		style = style.Foreground(lipgloss.Color(cell.fg))
	}
	if cell.bg != "" {
		style = style.Background(lipgloss.Color(cell.bg))
	}
	if cell.reverse {
		style = style.Reverse(true)
	}
	return style
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
