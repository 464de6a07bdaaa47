package config

import (
	"github.com/YuminosukeSato/descent/descent"
	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/schedule"
)

// BuildRegularizer returns the configured penalty, or Nil.
func (c *Config) BuildRegularizer() (regularizer.Regularizer, error) {
	if c.Regularizer == nil {
		return regularizer.NewNil(), nil
	}
	return regularizer.New(c.Regularizer.Type, c.Regularizer.Alpha, c.Regularizer.Ratio)
}

// BuildSchedule returns the configured schedule, or nil for a constant
// learning rate.
func (c *Config) BuildSchedule() (schedule.Schedule, error) {
	sc := c.Schedule
	if sc == nil {
		return nil, nil
	}
	opts := []schedule.Option{schedule.WithInitial(c.LearningRate)}
	if sc.Initial != nil {
		opts = append(opts, schedule.WithInitial(*sc.Initial))
	}
	if sc.Min != nil {
		opts = append(opts, schedule.WithMin(*sc.Min))
	}
	if sc.DecayFactor.Optimal {
		opts = append(opts, schedule.WithOptimalDecay())
	} else if sc.DecayFactor.Set {
		opts = append(opts, schedule.WithDecayFactor(sc.DecayFactor.Value))
	}
	if sc.DecaySteps != nil {
		opts = append(opts, schedule.WithDecaySteps(*sc.DecaySteps))
	}
	if sc.Power != nil {
		opts = append(opts, schedule.WithPower(*sc.Power))
	}
	if sc.Staircase {
		opts = append(opts, schedule.WithStaircase(true))
	}
	if sc.Metric != "" {
		opts = append(opts, schedule.WithMetric(sc.Metric))
	}
	if sc.Epsilon != nil {
		opts = append(opts, schedule.WithEpsilon(*sc.Epsilon))
	}
	if sc.Patience != nil {
		opts = append(opts, schedule.WithPatience(*sc.Patience))
	}
	return schedule.New(sc.Type, opts...)
}

// BuildObservers returns the observers enabled in the file, in the order
// early stop, gradient check, progress.
func (c *Config) BuildObservers() ([]observer.Observer, error) {
	var obs []observer.Observer
	if es := c.EarlyStop; es != nil {
		var opts []observer.EarlyStopOption
		if es.Metric != "" {
			opts = append(opts, observer.WithStopMetric(es.Metric))
		}
		if es.Patience != nil {
			opts = append(opts, observer.WithStopPatience(*es.Patience))
		}
		if es.Epsilon != nil {
			opts = append(opts, observer.WithStopEpsilon(*es.Epsilon))
		}
		o, err := observer.NewEarlyStop(opts...)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if gc := c.GradientCheck; gc != nil {
		var opts []observer.GradientCheckOption
		if gc.Interval != nil {
			opts = append(opts, observer.WithCheckInterval(*gc.Interval))
		}
		if gc.Tolerance != nil {
			opts = append(opts, observer.WithCheckTolerance(*gc.Tolerance))
		}
		o, err := observer.NewGradientCheck(opts...)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if p := c.Progress; p != nil {
		var opts []observer.ProgressOption
		if p.Checkpoint != nil {
			if *p.Checkpoint < 1 {
				return nil, errors.NewConfigurationError("checkpoint", "must be at least 1", *p.Checkpoint)
			}
			opts = append(opts, observer.WithCheckpoint(*p.Checkpoint))
		}
		obs = append(obs, observer.NewProgress(opts...))
	}
	return obs, nil
}

// TrainerOptions converts the file into descent options. Validation data
// is not part of the file and must be added by the caller.
func (c *Config) TrainerOptions() ([]descent.Option, error) {
	reg, err := c.BuildRegularizer()
	if err != nil {
		return nil, err
	}
	sched, err := c.BuildSchedule()
	if err != nil {
		return nil, err
	}
	obs, err := c.BuildObservers()
	if err != nil {
		return nil, err
	}

	opts := []descent.Option{
		descent.WithEpochs(c.Epochs),
		descent.WithBatchSize(c.BatchSize),
		descent.WithLearningRate(c.LearningRate),
		descent.WithRandomState(c.Seed),
		descent.WithRegularizer(reg),
		descent.WithObservers(obs...),
	}
	if c.Shuffle != nil {
		opts = append(opts, descent.WithShuffle(*c.Shuffle))
	}
	if sched != nil {
		opts = append(opts, descent.WithSchedule(sched))
	}
	return opts, nil
}
