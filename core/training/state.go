package training

import (
	"gonum.org/v1/gonum/mat"
)

// Status is the driver's run state.
type Status int

const (
	NotStarted Status = iota
	Running
	Converged
	EarlyStopped
	Exhausted
	Finished
	Failed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Converged:
		return "Converged"
	case EarlyStopped:
		return "EarlyStopped"
	case Exhausted:
		return "Exhausted"
	case Finished:
		return "Finished"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further epochs will run.
func (s Status) Terminal() bool {
	switch s {
	case Converged, EarlyStopped, Exhausted, Finished, Failed:
		return true
	}
	return false
}

// State is the mutable optimisation state owned by the driver.
type State struct {
	Epoch        int
	Batch        int
	TotalEpochs  int
	Theta        *mat.VecDense
	LearningRate float64
	Status       Status
	StopReason   string

	// Outcome is the status reached before TrainEnd moved the run to
	// Finished or Failed.
	Outcome Status
}

// NewState returns a NotStarted state with theta copied.
func NewState(totalEpochs int, theta mat.Vector, learningRate float64) *State {
	return &State{
		TotalEpochs:  totalEpochs,
		Theta:        cloneVec(theta),
		LearningRate: learningRate,
		Status:       NotStarted,
	}
}

// Snapshot is a read-only copy of State handed to observers.
type Snapshot struct {
	Epoch        int
	Batch        int
	TotalEpochs  int
	LearningRate float64
	Status       Status
	StopReason   string
	Outcome      Status

	theta *mat.VecDense
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Epoch:        s.Epoch,
		Batch:        s.Batch,
		TotalEpochs:  s.TotalEpochs,
		LearningRate: s.LearningRate,
		Status:       s.Status,
		StopReason:   s.StopReason,
		Outcome:      s.Outcome,
	}
	if s.Theta != nil {
		snap.theta = cloneVec(s.Theta)
	}
	return snap
}

// Theta returns a copy of the parameters at the time of the snapshot.
func (s Snapshot) Theta() *mat.VecDense {
	if s.theta == nil {
		return nil
	}
	return cloneVec(s.theta)
}
