package observer

import (
	"fmt"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/performance"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
)

// EarlyStop ends training once the monitored metric has not improved for
// patience consecutive epochs. Stalls in gradient_norm or theta are
// reported as convergence, stalls in any other metric as an early stop.
type EarlyStop struct {
	Base
	metric   string
	epsilon  float64
	patience int
	tracker  *performance.Tracker
	logger   log.Logger
}

// EarlyStopOption configures an EarlyStop.
type EarlyStopOption func(*EarlyStop)

// WithStopMetric sets the monitored metric. Default val_score.
func WithStopMetric(metric string) EarlyStopOption {
	return func(e *EarlyStop) { e.metric = metric }
}

// WithStopEpsilon sets the relative improvement threshold.
func WithStopEpsilon(eps float64) EarlyStopOption {
	return func(e *EarlyStop) { e.epsilon = eps }
}

// WithStopPatience sets how many stalled epochs end the run.
func WithStopPatience(n int) EarlyStopOption {
	return func(e *EarlyStop) { e.patience = n }
}

// NewEarlyStop validates its options and returns the observer.
func NewEarlyStop(opts ...EarlyStopOption) (*EarlyStop, error) {
	e := &EarlyStop{
		metric:   training.KeyValScore,
		epsilon:  performance.DefaultEpsilon,
		patience: performance.DefaultPatience,
		logger:   log.GetLoggerWithName("observer.early_stop"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := performance.ValidateMetric(e.metric); err != nil {
		return nil, err
	}
	if !(e.epsilon > 0 && e.epsilon <= 1) {
		return nil, errors.NewConfigurationError("epsilon", "must be in (0, 1]", e.epsilon)
	}
	if e.patience < 1 {
		return nil, errors.NewConfigurationError("patience", "must be at least 1", e.patience)
	}
	return e, nil
}

func (e *EarlyStop) Name() string { return "EarlyStop" }

// Metric returns the monitored metric.
func (e *EarlyStop) Metric() string { return e.metric }

// Patience returns how many stalled epochs end the run.
func (e *EarlyStop) Patience() int { return e.patience }

// Tracker returns the tracker of the current run, or nil before TrainBegin.
func (e *EarlyStop) Tracker() *performance.Tracker { return e.tracker }

func (e *EarlyStop) OnTrainBegin(env *Env) error {
	t, err := performance.NewTracker(e.metric,
		performance.WithEpsilon(e.epsilon),
		performance.WithPatience(e.patience),
		performance.WithHigherIsBetter(env.Meta.Scorer.HigherIsBetter),
	)
	if err != nil {
		return err
	}
	e.tracker = t
	return nil
}

func (e *EarlyStop) OnEpochEnd(env *Env) error {
	triggered, err := e.tracker.Evaluate(env.Epoch(), env.Record)
	if err != nil || !triggered {
		return err
	}
	best, _ := e.tracker.BestValue()
	reason := fmt.Sprintf("%s did not improve for %d epochs (best %.6g at epoch %d)",
		e.metric, e.patience, best, e.tracker.BestEpoch())

	e.logger.Info("Stopping early",
		log.EpochKey, env.Epoch(),
		log.MetricKey, e.metric,
		log.BestValueKey, best,
	)
	if e.metric == training.KeyGradientNorm || e.metric == training.KeyTheta {
		env.Control.Converge(reason)
	} else {
		env.Control.Stop(reason)
	}
	return nil
}
