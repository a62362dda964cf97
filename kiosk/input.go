package kiosk

import (
	"cinema-kiosk/booking"
	"cinema-kiosk/model"
)

// Event is an input delivered to HandleInput.
type Event interface {
	event()
}

// PointerEvent is a click on the seat chart in canvas coordinates.
type PointerEvent struct {
	X, Y float64
}

// ToggleSeatEvent selects or releases a seat by id (keyboard cursor).
type ToggleSeatEvent struct {
	Seat model.SeatID
}

// StepClickEvent is a click on a step indicator.
type StepClickEvent struct {
	Stage booking.Stage
}

type NextEvent struct{}

type BackEvent struct{}

// ResizeEvent changes the canvas the chart is laid out on.
type ResizeEvent struct {
	Width, Height float64
}

type SetTicketsEvent struct {
	Count int
}

type SetHallEvent struct {
	Hall model.HallConfig
}

type ChooseFilmEvent struct {
	FilmID string
}

type AutoSelectEvent struct{}

type ConfirmPaymentEvent struct{}

// PaymentCompleteEvent is delivered once the payment delay has elapsed.
type PaymentCompleteEvent struct {
	Payment *booking.Payment
}

type ResetEvent struct{}

type ToggleNumbersEvent struct{}

func (PointerEvent) event()         {}
func (ToggleSeatEvent) event()      {}
func (StepClickEvent) event()       {}
func (NextEvent) event()            {}
func (BackEvent) event()            {}
func (ResizeEvent) event()          {}
func (SetTicketsEvent) event()      {}
func (SetHallEvent) event()         {}
func (ChooseFilmEvent) event()      {}
func (AutoSelectEvent) event()      {}
func (ConfirmPaymentEvent) event()  {}
func (PaymentCompleteEvent) event() {}
func (ResetEvent) event()           {}
func (ToggleNumbersEvent) event()   {}

// Notice is a transient message for the user.
type Notice struct {
	Level   booking.Level
	Message string
}

// Result tells the driver what an input changed.
type Result struct {
	Redraw  bool
	Notices []Notice
	// Payment is set when a payment started; the driver delivers a
	// PaymentCompleteEvent after Payment.Delay.
	Payment *booking.Payment
	Order   *model.Order
	Seat    *model.SeatID
}

// inbox collects what the navigator emits during one input.
type inbox struct {
	notices []Notice
	loading bool
	steps   []booking.Step
}

func (b *inbox) Notify(level booking.Level, message string) {
	b.notices = append(b.notices, Notice{Level: level, Message: message})
}

func (b *inbox) ShowLoading(string) {
	b.loading = true
}

func (b *inbox) HideLoading() {
	b.loading = false
}

func (b *inbox) StepsChanged(steps []booking.Step) {
	b.steps = steps
}

func (b *inbox) drain() []Notice {
	notices := b.notices
	b.notices = nil
	return notices
}
