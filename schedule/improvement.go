package schedule

import (
	"math"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/performance"
)

// Improvement multiplies the current rate by the decay factor whenever a
// performance tracker reports that the monitored metric stalled for
// patience epochs.
type Improvement struct{ p Params }

// NewImprovement returns an improvement schedule. Defaults: factor 0.5,
// metric train_cost, epsilon 1e-4, patience 10.
func NewImprovement(opts ...Option) *Improvement {
	defaults := []Option{
		WithMetric(training.KeyTrainCost),
		WithEpsilon(performance.DefaultEpsilon),
		WithPatience(performance.DefaultPatience),
	}
	return &Improvement{p: newParams(0.5, append(defaults, opts...))}
}

func (s *Improvement) Name() string { return "Improvement" }

func (s *Improvement) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor()); err != nil {
		return nil, err
	}
	tracker, err := performance.NewTracker(s.p.Metric,
		performance.WithEpsilon(s.p.Epsilon),
		performance.WithPatience(s.p.Patience),
		performance.WithHigherIsBetter(meta.Scorer.HigherIsBetter),
	)
	if err != nil {
		return nil, err
	}
	return &improvement{
		initial: s.p.Initial,
		min:     s.p.Min,
		factor:  s.p.DecayFactor,
		rate:    s.p.Initial,
		tracker: tracker,
	}, nil
}

type improvement struct {
	initial float64
	min     float64
	factor  float64
	rate    float64
	tracker *performance.Tracker
}

func (r *improvement) Name() string     { return "Improvement" }
func (r *improvement) Initial() float64 { return r.initial }
func (r *improvement) Min() float64     { return r.min }

// Rate returns the rate most recently produced by Update, ignoring epoch.
func (r *improvement) Rate(epoch int) float64 {
	if epoch <= 0 {
		return r.initial
	}
	return r.rate
}

func (r *improvement) Update(epoch int, rec training.LogRecord, current float64) (float64, error) {
	r.rate = current
	triggered, err := r.tracker.Evaluate(epoch, rec)
	if err != nil {
		return current, err
	}
	if triggered {
		r.rate = math.Max(r.min, current*r.factor)
	}
	return r.rate, nil
}

// Tracker exposes the underlying tracker for reporting.
func (r *improvement) Tracker() *performance.Tracker { return r.tracker }
