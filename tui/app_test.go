package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinema-kiosk/booking"
	"cinema-kiosk/kiosk"
	"cinema-kiosk/model"
	"cinema-kiosk/render"
	"cinema-kiosk/seating"
	"cinema-kiosk/service"
	"cinema-kiosk/store"
)

var testFilms = []model.Film{
	{Id: "dune", Title: "Dune"},
	{Id: "flow", Title: "Flow"},
}

func newTestModel(t *testing.T) appModel {
	t.Helper()
	k := kiosk.New(kiosk.Settings{
		Hall:      model.SmallHall,
		Tickets:   2,
		Curvature: 0.5,
		Films:     testFilms,
	}, kiosk.WithStore(store.NewMemoryStore()))
	m := New(k, nil, nil).(appModel)
	return send(t, m, tea.WindowSizeMsg{Width: 200, Height: 80})
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(appModel)
}

func keys(t *testing.T, m appModel, names ...string) appModel {
	t.Helper()
	for _, name := range names {
		m = send(t, m, keyMsg(name))
	}
	return m
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func toSeatStage(t *testing.T, m appModel) appModel {
	t.Helper()
	m = keys(t, m, "enter", "enter")
	if got := m.kiosk.Stage(); got != booking.StageSeat {
		t.Fatalf("expected seat stage, got %s", got)
	}
	return m
}

func TestBookingFlowByKeyboard(t *testing.T) {
	m := toSeatStage(t, newTestModel(t))
	if film, ok := m.kiosk.Film(); !ok || film.Id != "dune" {
		t.Fatalf("expected first film to be chosen, got %+v", film)
	}

	m = keys(t, m, "a", "enter")
	if got := m.kiosk.Stage(); got != booking.StagePayment {
		t.Fatalf("expected payment stage, got %s", got)
	}

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(appModel)
	if cmd == nil {
		t.Fatal("expected payment command")
	}
	if !m.kiosk.Loading() {
		t.Fatal("expected loading indicator while paying")
	}
	if !strings.Contains(m.View(), "Processing payment") {
		t.Fatal("expected processing message in view")
	}

	m = send(t, m, paymentDoneMsg{payment: m.kiosk.Navigator().Pending()})
	if got := m.kiosk.Stage(); got != booking.StageConfirm {
		t.Fatalf("expected confirm stage, got %s", got)
	}
	order, ok := m.kiosk.Navigator().LastOrder()
	if !ok || len(order.Seats) != 2 {
		t.Fatalf("expected an order with 2 seats, got %+v", order)
	}
	view := m.View()
	if !strings.Contains(view, "ENJOY THE SHOW") || !strings.Contains(view, "E5, E6") {
		t.Fatalf("expected receipt in view, got %q", view)
	}

	m = keys(t, m, "enter")
	if got := m.kiosk.Stage(); got != booking.StageConfig {
		t.Fatalf("expected config stage after new booking, got %s", got)
	}
}

func TestConfigKeys(t *testing.T) {
	m := newTestModel(t)

	m = keys(t, m, "+", "+")
	if got := m.kiosk.Grid().Tickets(); got != 4 {
		t.Fatalf("expected 4 tickets, got %d", got)
	}
	m = keys(t, m, "-", "-", "-", "-", "-")
	if got := m.kiosk.Grid().Tickets(); got != minTickets {
		t.Fatalf("expected tickets clamped to %d, got %d", minTickets, got)
	}

	m = keys(t, m, "tab")
	if got := m.kiosk.Hall().Name; got != model.LargeHall.Name {
		t.Fatalf("expected large hall, got %q", got)
	}
	if want := (model.SeatID{Row: 8, Col: 10}); m.cursor != want {
		t.Fatalf("expected cursor reset to %v, got %v", want, m.cursor)
	}
	m = keys(t, m, "tab")
	if got := m.kiosk.Hall().Name; got != model.SmallHall.Name {
		t.Fatalf("expected small hall, got %q", got)
	}
}

func TestSeatCursor(t *testing.T) {
	m := toSeatStage(t, newTestModel(t))
	if want := (model.SeatID{Row: 5, Col: 5}); m.cursor != want {
		t.Fatalf("expected cursor at %v, got %v", want, m.cursor)
	}

	m = keys(t, m, "right", "space")
	sel := m.kiosk.Grid().Selection()
	if len(sel) != 1 || sel[0] != (model.SeatID{Row: 5, Col: 6}) {
		t.Fatalf("expected E6 selected, got %v", sel)
	}

	for range 12 {
		m = keys(t, m, "up")
	}
	if m.cursor.Row != 1 {
		t.Fatalf("expected cursor clamped to row 1, got %d", m.cursor.Row)
	}

	m = keys(t, m, "space")
	if got := len(m.kiosk.Grid().Selection()); got != 2 {
		t.Fatalf("expected 2 seats selected, got %d", got)
	}
	m = keys(t, m, "down", "space")
	if got := len(m.kiosk.Grid().Selection()); got != 2 {
		t.Fatalf("expected selection to stay at capacity, got %d", got)
	}
	if len(m.toasts) == 0 {
		t.Fatal("expected a capacity notice")
	}
}

func TestMouseClickTogglesSeat(t *testing.T) {
	m := toSeatStage(t, newTestModel(t))
	target := model.SeatID{Row: 3, Col: 4}
	p, ok := m.kiosk.Layout().Position(target)
	if !ok {
		t.Fatal("expected seat in layout")
	}

	click := clickAt(m, p.X, p.Y)
	m = send(t, m, click)
	sel := m.kiosk.Grid().Selection()
	if len(sel) != 1 || sel[0] != target {
		t.Fatalf("expected %v selected, got %v", target, sel)
	}
	if m.cursor != target {
		t.Fatalf("expected cursor to follow click, got %v", m.cursor)
	}

	m = send(t, m, click)
	if got := len(m.kiosk.Grid().Selection()); got != 0 {
		t.Fatalf("expected second click to deselect, got %d seats", got)
	}
}

// clickAt is a left click on the screen cell showing canvas point (x, y).
func clickAt(m appModel, x, y float64) tea.MouseMsg {
	col, row := render.CellOf(x, y)
	ox, oy := m.viewport()
	return tea.MouseMsg{
		X:      col - ox,
		Y:      row - oy + m.chartTop(),
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
}

func TestMouseReachesEveryLargeHallSeat(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = keys(t, m, "tab")
	m = toSeatStage(t, m)
	l := m.kiosk.Layout()
	if !render.Readable(l) {
		t.Fatalf("expected a readable chart, pitch %.2f", l.Pitch())
	}

	seats := l.Seats()
	if len(seats) != model.LargeHall.Capacity() {
		t.Fatalf("expected %d seats, got %d", model.LargeHall.Capacity(), len(seats))
	}
	for _, id := range seats {
		m.cursor = id
		p, _ := l.Position(id)
		click := clickAt(m, p.X, p.Y)
		if click.X < 0 || click.X >= 80 || click.Y < m.chartTop() || click.Y >= m.chartTop()+m.chartRows() {
			t.Fatalf("seat %s drawn off screen at %d,%d", id, click.X, click.Y)
		}
		m = send(t, m, click)
		if sel := m.kiosk.Grid().Selection(); len(sel) != 1 || sel[0] != id {
			t.Fatalf("click on seat %s selected %v", id, sel)
		}
		m = send(t, m, click)
		if sel := m.kiosk.Grid().Selection(); len(sel) != 0 {
			t.Fatalf("second click on seat %s left %v selected", id, sel)
		}
	}
}

func TestSeatMapViewFollowsCursor(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = keys(t, m, "tab")
	m = toSeatStage(t, m)

	m.cursor = model.SeatID{Row: 1, Col: 1}
	if _, oy := m.viewport(); oy != 0 {
		t.Fatalf("expected front row at the top, got offset %d", oy)
	}
	m.cursor = model.SeatID{Row: 15, Col: 20}
	if _, oy := m.viewport(); oy == 0 {
		t.Fatal("expected the chart to scroll to the back row")
	}
	if got := strings.Count(m.View(), "\n") + 1; got != 24 {
		t.Fatalf("expected view to fill the window, got %d lines", got)
	}
}

func TestMouseClickOnStep(t *testing.T) {
	m := toSeatStage(t, newTestModel(t))
	steps := m.kiosk.Steps()
	x := lipgloss.Width(stepLabel(steps[0])) + lipgloss.Width(stepSeparator)

	m = send(t, m, tea.MouseMsg{X: x, Y: m.stepsRow(), Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := m.kiosk.Stage(); got != booking.StageMovie {
		t.Fatalf("expected film stage, got %s", got)
	}
}

func TestStepAt(t *testing.T) {
	steps := booking.StepsFor(booking.StageSeat)
	first := lipgloss.Width(stepLabel(steps[0]))

	if stage, ok := stepAt(steps, 0); !ok || stage != booking.StageConfig {
		t.Fatalf("expected config at 0, got %s %v", stage, ok)
	}
	if _, ok := stepAt(steps, first); ok {
		t.Fatal("expected separator to miss")
	}
	if _, ok := stepAt(steps, 500); ok {
		t.Fatal("expected past the end to miss")
	}
}

func TestBlockedStepShowsToastUntilExpired(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(keyMsg("3"))
	m = next.(appModel)
	if got := m.kiosk.Stage(); got != booking.StageConfig {
		t.Fatalf("expected to stay in config, got %s", got)
	}
	if len(m.toasts) != 1 || m.toasts[0].level != booking.LevelWarning {
		t.Fatalf("expected one warning toast, got %+v", m.toasts)
	}
	if cmd == nil {
		t.Fatal("expected expiry command")
	}

	m = send(t, m, toastExpiredMsg{id: m.toasts[0].id})
	if len(m.toasts) != 0 {
		t.Fatalf("expected toast to expire, got %+v", m.toasts)
	}
}

func TestFilmFilterAndEsc(t *testing.T) {
	m := keys(t, newTestModel(t), "enter", "f", "l")
	if got := m.filmList.FilterValue(); got != "fl" {
		t.Fatalf("expected filter value %q, got %q", "fl", got)
	}
	m = keys(t, m, "backspace")
	if got := m.filmList.FilterValue(); got != "f" {
		t.Fatalf("expected filter value %q, got %q", "f", got)
	}

	m = keys(t, m, "esc")
	if got := m.filmList.FilterValue(); got != "" {
		t.Fatalf("expected filter cleared, got %q", got)
	}
	if got := m.kiosk.Stage(); got != booking.StageMovie {
		t.Fatalf("expected esc to clear the filter first, got %s", got)
	}
	m = keys(t, m, "esc")
	if got := m.kiosk.Stage(); got != booking.StageConfig {
		t.Fatalf("expected esc to go back, got %s", got)
	}
}

func TestFilmsMsgReplacesCatalog(t *testing.T) {
	k := kiosk.New(kiosk.Settings{Hall: model.SmallHall, Tickets: 2, Films: testFilms})
	m := New(k, service.NewClient(nil, "http://127.0.0.1:0"), nil).(appModel)
	if !m.loadingFilms {
		t.Fatal("expected films to be loading")
	}
	if m.Init() == nil {
		t.Fatal("expected fetch command")
	}

	m = send(t, m, filmsMsg{films: []model.Film{{Id: "conclave", Title: "Conclave"}}})
	if m.loadingFilms {
		t.Fatal("expected loading to finish")
	}
	if got := len(m.filmList.Items()); got != 1 {
		t.Fatalf("expected 1 film item, got %d", got)
	}
}

func TestResizeRelaysOut(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	w, h := render.CanvasSize(120, 40-headerRows-footerRows)
	if got := m.kiosk.Layout(); got.Width != w || got.Height != h {
		t.Fatalf("expected layout %vx%v, got %vx%v", w, h, got.Width, got.Height)
	}
}

func TestSeatMapView(t *testing.T) {
	m := toSeatStage(t, newTestModel(t))
	view := m.View()
	if !strings.Contains(view, "Legend") || !strings.Contains(view, "Available: 100") {
		t.Fatalf("expected legend and counts, got %q", view)
	}
	if got := strings.Count(view, "\n") + 1; got != 80 {
		t.Fatalf("expected view to fill the window, got %d lines", got)
	}
}

func TestCountAdjacentPairs(t *testing.T) {
	grid := seating.NewGrid(model.SmallHall, seating.WithSold(model.SeatID{Row: 1, Col: 2}))
	if got := countAdjacentPairs(grid); got != 49 {
		t.Fatalf("expected 49 pairs, got %d", got)
	}
}

func TestBoxBlockWidth(t *testing.T) {
	b := boxBlock(4, "SCREEN")
	if lipgloss.Width(b.top) != 10 || lipgloss.Width(b.mid) != 10 {
		t.Fatalf("expected minimum width 10, got %q %q", b.top, b.mid)
	}
	if !strings.Contains(b.mid, " SCREEN ") {
		t.Fatalf("expected label in block, got %q", b.mid)
	}
}
