// Package performance decides whether a monitored training metric has
// stopped improving. Learning-rate schedules and early stopping both build
// on Tracker.
package performance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Metrics a Tracker can monitor. MetricTheta monitors ‖θₜ − θₜ₋₁‖₂.
var Metrics = []string{
	training.KeyTrainCost,
	training.KeyTrainScore,
	training.KeyValCost,
	training.KeyValScore,
	training.KeyGradientNorm,
	training.KeyTheta,
}

const (
	DefaultEpsilon  = 1e-4
	DefaultPatience = 10
)

// CriticalPoint captures the state at an epoch where the tracker flipped
// between improving and stalled.
type CriticalPoint struct {
	Epoch    int
	Value    float64
	Theta    *mat.VecDense
	Gradient *mat.VecDense
}

// Tracker maintains the best value of one metric and counts consecutive
// epochs without a relative improvement of at least epsilon.
type Tracker struct {
	metric         string
	epsilon        float64
	patience       int
	higherIsBetter bool

	hasBest    bool
	best       float64
	bestEpoch  int
	bestRecord training.LogRecord
	count      int
	stalled    bool
	critical   []CriticalPoint
	prevTheta  *mat.VecDense
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEpsilon sets the relative improvement threshold, in (0, 1].
func WithEpsilon(eps float64) Option {
	return func(t *Tracker) { t.epsilon = eps }
}

// WithPatience sets how many non-improving epochs trigger, at least 1.
func WithPatience(p int) Option {
	return func(t *Tracker) { t.patience = p }
}

// WithHigherIsBetter sets the polarity for train_score and val_score.
// Cost metrics ignore it.
func WithHigherIsBetter(b bool) Option {
	return func(t *Tracker) { t.higherIsBetter = b }
}

// NewTracker validates its configuration and returns a fresh tracker.
func NewTracker(metric string, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		metric:   metric,
		epsilon:  DefaultEpsilon,
		patience: DefaultPatience,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := ValidateMetric(metric); err != nil {
		return nil, err
	}
	if math.IsNaN(t.epsilon) || t.epsilon <= 0 || t.epsilon > 1 {
		return nil, errors.NewConfigurationError("epsilon", "must be in (0, 1]", t.epsilon)
	}
	if t.patience < 1 {
		return nil, errors.NewConfigurationError("patience", "must be >= 1", t.patience)
	}
	if training.IsCostMetric(metric) {
		t.higherIsBetter = false
	}
	return t, nil
}

// ValidateMetric checks that name is a metric a Tracker can monitor.
func ValidateMetric(name string) error {
	for _, m := range Metrics {
		if m == name {
			return nil
		}
	}
	return errors.NewConfigurationError("metric", "must be one of train_cost, train_score, val_cost, val_score, gradient_norm, theta", name)
}

// Evaluate feeds the epoch's record to the tracker. It returns true exactly
// when the non-improvement count reaches patience; the count then restarts
// so later plateaus trigger again. A record without the monitored metric is
// ignored.
func (t *Tracker) Evaluate(epoch int, rec training.LogRecord) (bool, error) {
	value, ok, err := t.value(rec)
	if err != nil || !ok {
		return false, err
	}

	if !t.hasBest || t.improved(value) {
		t.setBest(epoch, value, rec)
		t.count = 0
		t.stalled = false
		return false, nil
	}

	// One critical point per transition: the trigger also marks the start
	// of the plateau when patience is 1.
	t.stalled = true
	t.count++
	if t.count >= t.patience {
		t.count = 0
		t.addCritical(epoch, value, rec)
		return true, nil
	} else if t.count == 1 {
		t.addCritical(epoch, value, rec)
	}
	return false, nil
}

// improved is the sign-safe form of value < best·(1−ε) for costs and
// value > best·(1+ε) for scores.
func (t *Tracker) improved(value float64) bool {
	margin := t.epsilon * math.Abs(t.best)
	if t.higherIsBetter {
		return value > t.best+margin
	}
	return value < t.best-margin
}

func (t *Tracker) value(rec training.LogRecord) (float64, bool, error) {
	if t.metric != training.KeyTheta {
		v, ok := rec.Scalar(t.metric)
		return v, ok, nil
	}

	theta, ok := rec.Vector(training.KeyTheta)
	if !ok {
		return 0, false, nil
	}
	prev := t.prevTheta
	t.prevTheta = theta
	if prev == nil {
		// nothing to difference against yet
		return 0, false, nil
	}
	if prev.Len() != theta.Len() {
		return 0, false, errors.NewDataShapeError("Tracker.Evaluate", []int{prev.Len()}, []int{theta.Len()})
	}
	return floats.Distance(theta.RawVector().Data, prev.RawVector().Data, 2), true, nil
}

func (t *Tracker) setBest(epoch int, value float64, rec training.LogRecord) {
	t.hasBest = true
	t.best = value
	t.bestEpoch = epoch
	t.bestRecord = rec
}

func (t *Tracker) addCritical(epoch int, value float64, rec training.LogRecord) {
	cp := CriticalPoint{Epoch: epoch, Value: value}
	cp.Theta, _ = rec.Vector(training.KeyTheta)
	cp.Gradient, _ = rec.Vector(training.KeyGradient)
	t.critical = append(t.critical, cp)
}

// Metric returns the monitored metric.
func (t *Tracker) Metric() string { return t.metric }

// Epsilon returns the relative improvement threshold.
func (t *Tracker) Epsilon() float64 { return t.epsilon }

// Patience returns the trigger threshold.
func (t *Tracker) Patience() int { return t.patience }

// HigherIsBetter reports the polarity in use.
func (t *Tracker) HigherIsBetter() bool { return t.higherIsBetter }

// BestValue returns the best value seen so far.
func (t *Tracker) BestValue() (float64, bool) { return t.best, t.hasBest }

// BestEpoch returns the epoch of the best value, 0 before any value.
func (t *Tracker) BestEpoch() int { return t.bestEpoch }

// BestRecord returns the record the best value came from.
func (t *Tracker) BestRecord() (training.LogRecord, bool) { return t.bestRecord, t.hasBest }

// NonImprovementCount returns the current count of stalled epochs.
func (t *Tracker) NonImprovementCount() int { return t.count }

// Stabilized reports whether the last evaluated epoch did not improve.
func (t *Tracker) Stabilized() bool { return t.stalled }

// CriticalPoints returns a copy of the recorded critical points.
func (t *Tracker) CriticalPoints() []CriticalPoint {
	return append([]CriticalPoint(nil), t.critical...)
}

// Reset clears all state but keeps the configuration.
func (t *Tracker) Reset() {
	t.hasBest = false
	t.best = 0
	t.bestEpoch = 0
	t.bestRecord = training.LogRecord{}
	t.count = 0
	t.stalled = false
	t.critical = nil
	t.prevTheta = nil
}
