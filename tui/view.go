package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cinema-kiosk/booking"
	"cinema-kiosk/model"
	"cinema-kiosk/render"
	"cinema-kiosk/seating"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	stepSeparator = " › "
)

// Rows of the fixed header: title, meta, steps, hints, blank.
const (
	headerStepsRow = 2
	headerRows     = 5
)

var (
	levelInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	levelWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	levelErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	stepCompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stepActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	stepPendingStyle   = lipgloss.NewStyle().Faint(true)

	receiptBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (m appModel) View() string {
	header := m.headerView()
	switch m.kiosk.Stage() {
	case booking.StageConfig:
		return header + "\n\n" + m.configView()
	case booking.StageMovie:
		if m.loadingFilms {
			return header + "\n\n" + m.loadingView("Loading films")
		}
		return header + "\n\n" + m.filmList.View() + "\n" + m.toastView()
	case booking.StageSeat:
		return header + "\n\n" + m.seatMapView()
	case booking.StagePayment:
		return header + "\n\n" + m.paymentView()
	case booking.StageConfirm:
		return header + "\n\n" + m.confirmView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Cinema Kiosk")
	hall := m.kiosk.Hall()
	sub := []string{
		fmt.Sprintf("Hall: %s (%d seats)", hall.Name, hall.Capacity()),
		fmt.Sprintf("Tickets: %d", m.kiosk.Grid().Tickets()),
	}
	if film, ok := m.kiosk.Film(); ok {
		sub = append(sub, "Film: "+film.Title)
	}
	meta := lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • esc back • 1-5 jump to step"
	switch m.kiosk.Stage() {
	case booking.StageConfig:
		hints = "q quit • -/+ tickets • tab switch hall • enter choose film"
	case booking.StageMovie:
		hints = "ctrl+c quit • esc back • type to filter • enter select"
	case booking.StageSeat:
		hints = "q quit • esc back • arrows move • space toggle • a auto-select • n toggle numbers • enter pay"
	case booking.StagePayment:
		hints = "q quit • esc back • enter confirm payment"
	case booking.StageConfirm:
		hints = "q quit • enter new booking"
	}
	return title + "\n" + meta + "\n" + m.stepsView() + "\n" + hint(hints)
}

func (m appModel) stepsView() string {
	steps := m.kiosk.Steps()
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		label := stepLabel(step)
		switch step.State {
		case booking.StepCompleted:
			parts = append(parts, stepCompletedStyle.Render(label))
		case booking.StepActive:
			parts = append(parts, stepActiveStyle.Render(label))
		default:
			parts = append(parts, stepPendingStyle.Render(label))
		}
	}
	return strings.Join(parts, hint(stepSeparator))
}

func stepLabel(step booking.Step) string {
	switch step.State {
	case booking.StepCompleted:
		return "✓ " + step.Stage.Title()
	case booking.StepActive:
		return "● " + step.Stage.Title()
	default:
		return "○ " + step.Stage.Title()
	}
}

// stepAt maps a column on the steps line to the step drawn there.
func stepAt(steps []booking.Step, x int) (booking.Stage, bool) {
	pos := 0
	sep := lipgloss.Width(stepSeparator)
	for _, step := range steps {
		w := lipgloss.Width(stepLabel(step))
		if x >= pos && x < pos+w {
			return step.Stage, true
		}
		pos += w + sep
	}
	return 0, false
}

func (m appModel) stepsRow() int {
	return headerStepsRow
}

func (m appModel) chartTop() int {
	return headerRows
}

func (m appModel) chartCols() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m appModel) chartRows() int {
	height := m.height
	if height <= 0 {
		height = defaultHeight
	}
	return max(minChart, height-m.chartTop()-footerRows)
}

func (m appModel) configView() string {
	grid := m.kiosk.Grid()
	hall := m.kiosk.Hall()
	var b strings.Builder
	fmt.Fprintf(&b, "Tickets: %s\n", lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", grid.Tickets())))
	fmt.Fprintf(&b, "Hall:    %s • %d rows • %d seats • %s per seat\n", hall.Name, hall.Rows, hall.Capacity(), formatPrice(hall.Price))
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("Choose between %d and %d tickets.", minTickets, maxTickets)))
	return b.String() + "\n" + m.toastView()
}

func (m appModel) seatMapView() string {
	l := m.kiosk.Layout()
	surface := render.NewTermSurface(int(l.Width), int(l.Height/2))
	m.kiosk.Render(surface)
	if p, ok := l.Position(m.cursor); ok {
		surface.Mark(p.X, p.Y)
	}
	ox, oy := m.viewport()
	chart := surface.Region(ox, oy, m.chartCols(), m.chartRows())

	grid := m.kiosk.Grid()
	legend := "Legend: green available • yellow selected • red sold • reverse is the cursor"
	if m.kiosk.Labels().SeatNumbers {
		legend += " • numbers are seat labels"
	}
	available := grid.Count(model.SeatAvailable)
	total := grid.Len()
	percent := float64(available) / float64(max(1, total)) * 100
	counts := fmt.Sprintf("Cursor: %s • Selected: %d/%d • Available: %d • Pairs: %d • Sold: %d • Total: %d • %.0f%% available • %s",
		m.cursor.Label(), len(grid.Selection()), grid.Tickets(), available, countAdjacentPairs(grid),
		grid.Count(model.SeatSold), total, percent, formatPrice(grid.TotalPrice()))
	return chart + "\n" + hint(legend) + "\n" + hint(counts) + "\n" + m.toastView()
}

func (m appModel) paymentView() string {
	var b strings.Builder
	b.WriteString(m.receiptView("ORDER SUMMARY", m.summaryLines()))
	b.WriteString("\n\n")
	if m.kiosk.Loading() {
		b.WriteString(m.loadingView("Processing payment"))
	} else {
		b.WriteString(hint("Press enter to pay."))
	}
	return b.String() + "\n" + m.toastView()
}

func (m appModel) confirmView() string {
	order, ok := m.kiosk.Navigator().LastOrder()
	if !ok {
		return hint("No order yet.")
	}
	lines := []string{
		"Order: " + order.ID,
		"Film:  " + m.filmTitle(order.Film),
		"Seats: " + strings.Join(order.SeatLabels(), ", "),
		"Total: " + formatPrice(order.Total),
	}
	return m.receiptView("ENJOY THE SHOW", lines) + "\n\n" + m.toastView()
}

func (m appModel) summaryLines() []string {
	grid := m.kiosk.Grid()
	labels := make([]string, 0, len(grid.Selection()))
	for _, id := range grid.Selection() {
		labels = append(labels, id.Label())
	}
	film, _ := m.kiosk.SelectedFilm()
	return []string{
		"Film:    " + m.filmTitle(film),
		"Seats:   " + strings.Join(labels, ", "),
		fmt.Sprintf("Tickets: %d", grid.Tickets()),
		"Total:   " + formatPrice(grid.TotalPrice()),
	}
}

func (m appModel) filmTitle(id string) string {
	for _, film := range m.kiosk.Films() {
		if film.Id == id {
			return film.Title
		}
	}
	return id
}

// receiptView draws lines inside a rounded box with title on the top edge.
func (m appModel) receiptView(title string, lines []string) string {
	width := max(10, len(title)+4)
	for _, line := range lines {
		width = max(width, lipgloss.Width(line)+4)
	}
	block := boxBlock(width, title)
	var b strings.Builder
	b.WriteString(receiptBorderStyle.Render(block.top))
	b.WriteString("\n")
	b.WriteString(receiptBorderStyle.Render(block.mid))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(receiptBorderStyle.Render("│ "))
		b.WriteString(line)
		b.WriteString(strings.Repeat(" ", width-4-lipgloss.Width(line)))
		b.WriteString(receiptBorderStyle.Render(" │"))
		b.WriteString("\n")
	}
	b.WriteString(receiptBorderStyle.Render(block.bot))
	return b.String()
}

func (m appModel) loadingView(title string) string {
	return fmt.Sprintf("%s %s", m.spinner.View(), title)
}

func (m appModel) toastView() string {
	parts := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		switch t.level {
		case booking.LevelError:
			parts = append(parts, levelErrorStyle.Render(t.text))
		case booking.LevelWarning:
			parts = append(parts, levelWarningStyle.Render(t.text))
		default:
			parts = append(parts, levelInfoStyle.Render(t.text))
		}
	}
	return strings.Join(parts, " • ")
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func countAdjacentPairs(grid *seating.Grid) int {
	cols := map[int][]int{}
	for id, status := range grid.Statuses() {
		if status != model.SeatAvailable {
			continue
		}
		cols[id.Row] = append(cols[id.Row], id.Col)
	}
	return countAdjacentPairsFromCols(cols)
}

func countAdjacentPairsFromCols(cols map[int][]int) int {
	count := 0
	for _, list := range cols {
		if len(list) == 0 {
			continue
		}
		sort.Ints(list)
		for i := 0; i < len(list)-1; {
			if list[i]+1 == list[i+1] {
				count++
				i += 2
				continue
			}
			i++
		}
	}
	return count
}

type block struct {
	top string
	mid string
	bot string
}

// boxBlock returns the top of a rounded box: a border line, a centred
// label line and the closing border.
func boxBlock(width int, label string) block {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return block{top: border, mid: mid, bot: bottom}
}
