package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"cinema-kiosk/booking"
	"cinema-kiosk/kiosk"
	"cinema-kiosk/layout"
	"cinema-kiosk/logger"
	"cinema-kiosk/model"
	"cinema-kiosk/render"
	"cinema-kiosk/service"
)

const (
	toastTTL   = 3 * time.Second
	minTickets = 1
	maxTickets = 10
	footerRows = 3
	minChart   = 4

	maxCanvasGrowth = 32
)

var hallPresets = []model.HallConfig{model.SmallHall, model.LargeHall}

type appModel struct {
	kiosk  *kiosk.Kiosk
	client *service.Client
	log    *zap.Logger

	width  int
	height int

	filmList     list.Model
	loadingFilms bool

	cursor model.SeatID

	toasts    []toast
	nextToast int

	spinner spinner.Model
}

type toast struct {
	id    int
	level booking.Level
	text  string
}

type filmsMsg struct {
	films []model.Film
	err   error
}

type paymentDoneMsg struct {
	payment *booking.Payment
}

type toastExpiredMsg struct {
	id int
}

// New builds the kiosk UI. client may be nil, in which case the films the
// kiosk was created with are used as they are.
func New(k *kiosk.Kiosk, client *service.Client, log *zap.Logger) tea.Model {
	if log == nil {
		log = logger.Nop()
	}
	m := appModel{
		kiosk:        k,
		client:       client,
		log:          log,
		loadingFilms: client != nil,
	}
	m.filmList = newList("Choose a film")
	m.filmList.SetItems(buildFilmItems(k.Films()))
	m.resetCursor()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return tea.Batch(m.fetchFilmsCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m.apply(m.resizeEvent())

	case tea.KeyMsg:
		if m.kiosk.Stage() == booking.StageMovie && m.handleFilterInput(msg) {
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
		// fallthrough to component update

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoading() {
			return m, cmd
		}
		return m, nil

	case filmsMsg:
		m.loadingFilms = false
		if msg.err != nil {
			m.log.Warn("catalog unavailable, using built-in films", zap.Error(msg.err))
		}
		m.kiosk.SetFilms(msg.films)
		m.filmList.SetItems(buildFilmItems(m.kiosk.Films()))
		return m, nil

	case paymentDoneMsg:
		return m.apply(kiosk.PaymentCompleteEvent{Payment: msg.payment})

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.kiosk.Stage() == booking.StageMovie {
		m.filmList, cmd = m.filmList.Update(msg)
	}
	return m, cmd
}

// apply feeds one input to the kiosk and turns the result into UI effects.
func (m appModel) apply(ev kiosk.Event) (appModel, tea.Cmd) {
	res, err := m.kiosk.HandleInput(ev)
	var cmds []tea.Cmd
	for _, notice := range res.Notices {
		cmds = append(cmds, m.pushToast(notice.Level, notice.Message))
	}
	if err != nil && len(res.Notices) == 0 {
		cmds = append(cmds, m.pushToast(booking.LevelError, err.Error()))
	}
	if res.Payment != nil {
		cmds = append(cmds, m.spinner.Tick, paymentCmd(res.Payment))
	}
	if _, ok := ev.(kiosk.SetHallEvent); ok && err == nil {
		m.resetCursor()
		if _, err := m.kiosk.HandleInput(m.resizeEvent()); err != nil {
			m.log.Warn("resize failed", zap.Error(err))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) pushToast(level booking.Level, text string) tea.Cmd {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, level: level, text: text})
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func paymentCmd(p *booking.Payment) tea.Cmd {
	return tea.Tick(p.Delay, func(time.Time) tea.Msg {
		return paymentDoneMsg{payment: p}
	})
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	stage := m.kiosk.Stage()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "esc":
		if stage == booking.StageMovie && (m.filmList.SettingFilter() || m.filmList.IsFiltered()) {
			m.filmList.ResetFilter()
			return m, nil, true
		}
		m, cmd := m.apply(kiosk.BackEvent{})
		return m, cmd, true
	case "1", "2", "3", "4", "5":
		target := booking.Stage(msg.String()[0] - '1')
		m, cmd := m.apply(kiosk.StepClickEvent{Stage: target})
		return m, cmd, true
	case "n":
		m, cmd := m.apply(kiosk.ToggleNumbersEvent{})
		return m, cmd, true
	case "r":
		m, cmd := m.apply(kiosk.ResetEvent{})
		return m, cmd, true
	}

	switch stage {
	case booking.StageConfig:
		switch msg.String() {
		case "+", "=", "right", "l":
			m, cmd := m.apply(kiosk.SetTicketsEvent{Count: min(maxTickets, m.kiosk.Grid().Tickets()+1)})
			return m, cmd, true
		case "-", "left", "h":
			m, cmd := m.apply(kiosk.SetTicketsEvent{Count: max(minTickets, m.kiosk.Grid().Tickets()-1)})
			return m, cmd, true
		case "tab":
			m, cmd := m.apply(kiosk.SetHallEvent{Hall: nextHall(m.kiosk.Hall())})
			return m, cmd, true
		case "enter":
			m, cmd := m.apply(kiosk.NextEvent{})
			return m, cmd, true
		}

	case booking.StageMovie:
		if msg.Type == tea.KeyEnter {
			item, ok := m.filmList.SelectedItem().(filmItem)
			if !ok {
				return m, nil, true
			}
			m, cmd := m.apply(kiosk.ChooseFilmEvent{FilmID: item.film.Id})
			if _, chosen := m.kiosk.SelectedFilm(); !chosen {
				return m, cmd, true
			}
			m, next := m.apply(kiosk.NextEvent{})
			return m, tea.Batch(cmd, next), true
		}

	case booking.StageSeat:
		switch msg.String() {
		case "up", "k":
			m.moveCursor(-1, 0)
			return m, nil, true
		case "down", "j":
			m.moveCursor(1, 0)
			return m, nil, true
		case "left", "h":
			m.moveCursor(0, -1)
			return m, nil, true
		case "right", "l":
			m.moveCursor(0, 1)
			return m, nil, true
		case " ", "x":
			m, cmd := m.apply(kiosk.ToggleSeatEvent{Seat: m.cursor})
			return m, cmd, true
		case "a":
			m, cmd := m.apply(kiosk.AutoSelectEvent{})
			if sel := m.kiosk.Grid().Selection(); len(sel) > 0 {
				m.cursor = sel[0]
			}
			return m, cmd, true
		case "enter":
			m, cmd := m.apply(kiosk.NextEvent{})
			return m, cmd, true
		}

	case booking.StagePayment:
		if msg.Type == tea.KeyEnter {
			m, cmd := m.apply(kiosk.ConfirmPaymentEvent{})
			return m, cmd, true
		}

	case booking.StageConfirm:
		if msg.Type == tea.KeyEnter {
			m, cmd := m.apply(kiosk.ResetEvent{})
			return m, cmd, true
		}
	}
	return m, nil, false
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Y == m.stepsRow() {
		if stage, ok := stepAt(m.kiosk.Steps(), msg.X); ok {
			return m.apply(kiosk.StepClickEvent{Stage: stage})
		}
		return m, nil
	}
	if m.kiosk.Stage() != booking.StageSeat {
		return m, nil
	}
	row := msg.Y - m.chartTop()
	if row < 0 || row >= m.chartRows() {
		return m, nil
	}
	ox, oy := m.viewport()
	x, y := render.CellTarget(m.kiosk.Layout(), msg.X+ox, row+oy)
	m, cmd := m.apply(kiosk.PointerEvent{X: x, Y: y})
	if sel := m.kiosk.Grid().Selection(); len(sel) > 0 {
		m.cursor = sel[len(sel)-1]
	}
	return m, cmd
}

func (m *appModel) moveCursor(dRow, dCol int) {
	grid := m.kiosk.Grid()
	row := clamp(m.cursor.Row+dRow, 1, grid.Rows())
	col := clamp(m.cursor.Col+dCol, 1, grid.SeatsInRow(row))
	m.cursor = model.SeatID{Row: row, Col: col}
}

func (m *appModel) resetCursor() {
	grid := m.kiosk.Grid()
	row := (grid.Rows() + 1) / 2
	m.cursor = model.SeatID{Row: row, Col: (grid.SeatsInRow(row) + 1) / 2}
}

func (m appModel) resizeEvent() kiosk.ResizeEvent {
	w, h := render.CanvasSize(m.canvasCells())
	return kiosk.ResizeEvent{Width: w, Height: h}
}

// canvasCells sizes the chart canvas in terminal cells. It starts from the
// visible chart area and grows until every seat has cells of its own; the
// view then scrolls to keep the cursor in sight.
func (m appModel) canvasCells() (int, int) {
	cols, rows := m.chartCols(), m.chartRows()
	l := m.layoutFor(cols, rows)
	for i := 0; i < maxCanvasGrowth && !render.Readable(l); i++ {
		taller := rows + max(1, rows/8)
		if grown := m.layoutFor(cols, taller); grown.Pitch() > l.Pitch() {
			rows, l = taller, grown
			continue
		}
		cols += max(1, cols/8)
		l = m.layoutFor(cols, rows)
	}
	return cols, rows
}

func (m appModel) layoutFor(cols, rows int) layout.Layout {
	return m.kiosk.LayoutFor(render.CanvasSize(cols, rows))
}

// viewport is the canvas cell drawn at the chart's top-left corner.
func (m appModel) viewport() (int, int) {
	l := m.kiosk.Layout()
	p, ok := l.Position(m.cursor)
	if !ok {
		return 0, 0
	}
	col, row := render.CellOf(p.X, p.Y)
	cols, rows := int(l.Width), int(l.Height/2)
	ox := clamp(col-m.chartCols()/2, 0, cols-m.chartCols())
	oy := clamp(row-m.chartRows()/2, 0, rows-m.chartRows())
	return ox, oy
}

func (m *appModel) resizeList() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.filmList.SetSize(m.width, max(6, m.height-m.chartTop()-1))
}

func (m appModel) isLoading() bool {
	return m.loadingFilms || m.kiosk.Loading()
}

func (m appModel) fetchFilmsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		films, err := service.LoadCatalog(ctx, client)
		return filmsMsg{films: films, err: err}
	}
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	if !m.filmList.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.filmList.SetFilterText(m.filmList.FilterValue() + string(msg.Runes))
		return true
	case tea.KeySpace:
		m.filmList.SetFilterText(m.filmList.FilterValue() + " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		value := m.filmList.FilterValue()
		if value == "" {
			return false
		}
		if value = trimLastRune(value); value == "" {
			m.filmList.ResetFilter()
		} else {
			m.filmList.SetFilterText(value)
		}
		return true
	default:
		return false
	}
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func nextHall(current model.HallConfig) model.HallConfig {
	for i, hall := range hallPresets {
		if hall.Name == current.Name {
			return hallPresets[(i+1)%len(hallPresets)]
		}
	}
	return hallPresets[0]
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(hi, v))
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

type filmItem struct {
	film model.Film
}

func (f filmItem) Title() string {
	return f.film.Title
}

func (f filmItem) Description() string {
	parts := []string{}
	if f.film.OriginalTitle != "" && f.film.OriginalTitle != f.film.Title {
		parts = append(parts, f.film.OriginalTitle)
	}
	if f.film.Duration != "" {
		parts = append(parts, f.film.Duration)
	}
	if f.film.ContentRating != "" {
		parts = append(parts, "Rated "+f.film.ContentRating)
	}
	if f.film.Price > 0 {
		parts = append(parts, formatPrice(f.film.Price))
	}
	return strings.Join(parts, " • ")
}

func (f filmItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{f.film.Title, f.film.OriginalTitle, f.film.ContentRating}, " "))
}

func buildFilmItems(films []model.Film) []list.Item {
	items := make([]list.Item, 0, len(films))
	for _, film := range films {
		items = append(items, filmItem{film: film})
	}
	return items
}

func formatPrice(price float64) string {
	if price <= 0 {
		return "-"
	}
	return fmt.Sprintf("R$ %.2f", price)
}
