package observer

import (
	"math"

	"github.com/YuminosukeSato/descent/performance"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/schedule"
)

// LearningRate drives Control's learning rate from a schedule.
//
// Fixed schedules set the rate at every EpochBegin. Adaptive schedules are
// updated at EpochEnd with the finished epoch's record, so the new rate is
// visible to observers registered after this one and applies from the next
// epoch on.
type LearningRate struct {
	Base
	schedule schedule.Schedule
	resolved schedule.Resolved
}

// NewLearningRate wraps s.
func NewLearningRate(s schedule.Schedule) *LearningRate {
	return &LearningRate{schedule: s}
}

func (o *LearningRate) Name() string { return "LearningRate(" + o.schedule.Name() + ")" }

// Resolved returns the resolved schedule, or nil before TrainBegin.
func (o *LearningRate) Resolved() schedule.Resolved { return o.resolved }

func (o *LearningRate) OnTrainBegin(env *Env) error {
	r, err := o.schedule.Resolve(env.Meta)
	if err != nil {
		return err
	}
	o.resolved = r
	env.Control.SetLearningRate(r.Initial())
	return nil
}

func (o *LearningRate) OnEpochBegin(env *Env) error {
	if o.resolved == nil {
		return errors.WithStack(errors.ErrNotResolved)
	}
	if _, ok := o.resolved.(schedule.Adaptive); ok {
		return nil
	}
	env.Control.SetLearningRate(o.clamp(o.resolved.Rate(env.Epoch())))
	return nil
}

func (o *LearningRate) OnEpochEnd(env *Env) error {
	a, ok := o.resolved.(schedule.Adaptive)
	if !ok {
		return nil
	}
	rate, err := a.Update(env.Epoch(), env.Record, env.Control.LearningRate())
	if err != nil {
		return err
	}
	env.Control.SetLearningRate(o.clamp(rate))
	return nil
}

func (o *LearningRate) clamp(rate float64) float64 {
	return math.Max(o.resolved.Min(), rate)
}

// Tracker returns the performance tracker of an adaptive schedule, or nil.
func (o *LearningRate) Tracker() *performance.Tracker {
	if t, ok := o.resolved.(interface{ Tracker() *performance.Tracker }); ok {
		return t.Tracker()
	}
	return nil
}
