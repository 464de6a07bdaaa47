// Package observer defines the training lifecycle hooks and the observers
// shipped with the engine.
//
// The driver dispatches every event to every registered observer strictly in
// registration order. Observers receive an Env: a read-only snapshot of the
// training state, the record for the event, a view of committed history and
// a Control through which they may change the learning rate or ask the run
// to stop. Observers never hold a reference to the estimator.
package observer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/schedule"
)

// Event identifies a lifecycle point.
type Event int

const (
	TrainBegin Event = iota
	EpochBegin
	BatchBegin
	BatchEnd
	EpochEnd
	TrainEnd
)

func (e Event) String() string {
	switch e {
	case TrainBegin:
		return "TrainBegin"
	case EpochBegin:
		return "EpochBegin"
	case BatchBegin:
		return "BatchBegin"
	case BatchEnd:
		return "BatchEnd"
	case EpochEnd:
		return "EpochEnd"
	case TrainEnd:
		return "TrainEnd"
	default:
		return "Unknown"
	}
}

// Observer is implemented by everything the driver notifies. Embed Base to
// get no-op defaults for the hooks an observer does not need.
type Observer interface {
	Name() string
	OnTrainBegin(env *Env) error
	OnEpochBegin(env *Env) error
	OnBatchBegin(env *Env) error
	OnBatchEnd(env *Env) error
	OnEpochEnd(env *Env) error
	OnTrainEnd(env *Env) error
}

// Base implements every hook as a no-op.
type Base struct{}

func (Base) OnTrainBegin(*Env) error { return nil }
func (Base) OnEpochBegin(*Env) error { return nil }
func (Base) OnBatchBegin(*Env) error { return nil }
func (Base) OnBatchEnd(*Env) error   { return nil }
func (Base) OnEpochEnd(*Env) error   { return nil }
func (Base) OnTrainEnd(*Env) error   { return nil }

// Objective evaluates the full training objective, regularization
// included, at arbitrary parameters.
type Objective interface {
	Cost(theta mat.Vector) (float64, error)
	Gradient(theta mat.Vector) (*mat.VecDense, error)
}

// Env is the context handed to an observer for one event.
type Env struct {
	Event Event

	// State is a copy of the training state when the event was raised.
	State training.Snapshot

	// Record is the record for BatchEnd and EpochEnd. It is empty for
	// other events.
	Record training.LogRecord

	// History shows records committed before this event. The record
	// being dispatched is never part of it.
	History training.HistoryView

	Meta      schedule.Meta
	Objective Objective
	Control   *Control
}

// Epoch is shorthand for env.State.Epoch.
func (e *Env) Epoch() int { return e.State.Epoch }
