// Package booking drives the kiosk workflow: the ordered booking stages,
// the guards between them and the simulated payment round-trip.
package booking

import "fmt"

type Stage int

const (
	StageConfig Stage = iota
	StageMovie
	StageSeat
	StagePayment
	StageConfirm
)

var stageNames = [...]string{"config", "movie", "seat", "payment", "confirm"}

// Stages returns every stage in workflow order.
func Stages() []Stage {
	return []Stage{StageConfig, StageMovie, StageSeat, StagePayment, StageConfirm}
}

func (s Stage) Valid() bool {
	return s >= StageConfig && s <= StageConfirm
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Title is the label shown on the step indicator.
func (s Stage) Title() string {
	switch s {
	case StageConfig:
		return "Tickets"
	case StageMovie:
		return "Film"
	case StageSeat:
		return "Seats"
	case StagePayment:
		return "Payment"
	case StageConfirm:
		return "Done"
	default:
		return s.String()
	}
}

type StepState int

const (
	StepPending StepState = iota
	StepActive
	StepCompleted
)

func (s StepState) String() string {
	switch s {
	case StepActive:
		return "active"
	case StepCompleted:
		return "completed"
	default:
		return "pending"
	}
}

// Step is one entry of the step indicator.
type Step struct {
	Stage Stage
	State StepState
}

// StepsFor marks stages before current completed and current active.
func StepsFor(current Stage) []Step {
	stages := Stages()
	steps := make([]Step, 0, len(stages))
	for _, stage := range stages {
		state := StepPending
		switch {
		case stage < current:
			state = StepCompleted
		case stage == current:
			state = StepActive
		}
		steps = append(steps, Step{Stage: stage, State: state})
	}
	return steps
}
