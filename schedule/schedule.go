// Package schedule provides learning-rate schedules.
//
// A Schedule is configuration only. Resolve validates it against the run's
// metadata, which is known only when training begins, and returns a
// Resolved schedule that computes rates. Epochs are 1-indexed; Rate(0)
// returns the initial rate.
package schedule

import (
	"math"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/metrics"
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Meta carries what a schedule may depend on besides its own parameters.
type Meta struct {
	TotalEpochs int
	Scorer      metrics.Scorer
}

// Schedule is a configured, unresolved learning-rate schedule.
type Schedule interface {
	Name() string
	Resolve(meta Meta) (Resolved, error)
}

// Resolved is a schedule whose parameters are frozen.
// Rate never returns less than Min.
type Resolved interface {
	Name() string
	Rate(epoch int) float64
	Initial() float64
	Min() float64
}

// Adaptive is a Resolved schedule that reacts to epoch results. Update is
// called once per epoch after the epoch's record is complete and returns
// the rate for the following epoch.
type Adaptive interface {
	Resolved
	Update(epoch int, rec training.LogRecord, current float64) (float64, error)
}

// Defaults shared by the schedules.
const (
	DefaultInitial    = 0.1
	DefaultMin        = 1e-4
	DefaultDecaySteps = 100
	DefaultPower      = 1.0
)

// Params holds every tunable a schedule may read. Each constructor sets
// its own defaults; options for fields a schedule does not use are ignored.
type Params struct {
	Initial      float64
	Min          float64
	DecayFactor  float64
	OptimalDecay bool
	DecaySteps   int
	Power        float64
	Staircase    bool

	Metric   string
	Epsilon  float64
	Patience int
}

// Option configures Params.
type Option func(*Params)

// WithInitial sets the initial learning rate, in (0, 1).
func WithInitial(v float64) Option { return func(p *Params) { p.Initial = v } }

// WithMin sets the minimum learning rate, in (0, 1) and not above initial.
func WithMin(v float64) Option { return func(p *Params) { p.Min = v } }

// WithDecayFactor sets the decay factor, in [0, 1).
func WithDecayFactor(v float64) Option {
	return func(p *Params) {
		p.DecayFactor = v
		p.OptimalDecay = false
	}
}

// WithOptimalDecay asks TimeDecay to derive its factor from the run length.
func WithOptimalDecay() Option { return func(p *Params) { p.OptimalDecay = true } }

// WithDecaySteps sets the number of decay steps, at least 1.
func WithDecaySteps(n int) Option { return func(p *Params) { p.DecaySteps = n } }

// WithPower sets the polynomial power, in (0, 1].
func WithPower(v float64) Option { return func(p *Params) { p.Power = v } }

// WithStaircase makes ExponentialStepDecay use integer exponents.
func WithStaircase(b bool) Option { return func(p *Params) { p.Staircase = b } }

// WithMetric sets the metric Improvement monitors.
func WithMetric(m string) Option { return func(p *Params) { p.Metric = m } }

// WithEpsilon sets Improvement's relative improvement threshold, in (0, 1].
func WithEpsilon(v float64) Option { return func(p *Params) { p.Epsilon = v } }

// WithPatience sets how many stalled epochs trigger Improvement's decay.
func WithPatience(n int) Option { return func(p *Params) { p.Patience = n } }

func newParams(decayFactor float64, opts []Option) Params {
	p := Params{
		Initial:     DefaultInitial,
		Min:         DefaultMin,
		DecayFactor: decayFactor,
		DecaySteps:  DefaultDecaySteps,
		Power:       DefaultPower,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Params) validateBase(meta Meta) error {
	if meta.TotalEpochs < 1 {
		return errors.NewConfigurationError("epochs", "must be >= 1", meta.TotalEpochs)
	}
	if !openUnit(p.Initial) {
		return errors.NewConfigurationError("initial_learning_rate", "must be in (0, 1)", p.Initial)
	}
	if !openUnit(p.Min) {
		return errors.NewConfigurationError("min_learning_rate", "must be in (0, 1)", p.Min)
	}
	if p.Min > p.Initial {
		return errors.NewConfigurationError("min_learning_rate", "must not exceed initial_learning_rate", p.Min)
	}
	return nil
}

func (p Params) validateDecayFactor() error {
	if math.IsNaN(p.DecayFactor) || p.DecayFactor < 0 || p.DecayFactor >= 1 {
		return errors.NewConfigurationError("decay_factor", "must be in [0, 1)", p.DecayFactor)
	}
	return nil
}

func (p Params) validateDecaySteps() error {
	if p.DecaySteps < 1 {
		return errors.NewConfigurationError("decay_steps", "must be >= 1", p.DecaySteps)
	}
	return nil
}

func (p Params) validatePower() error {
	if math.IsNaN(p.Power) || p.Power <= 0 || p.Power > 1 {
		return errors.NewConfigurationError("power", "must be in (0, 1]", p.Power)
	}
	return nil
}

func openUnit(v float64) bool {
	return v > 0 && v < 1
}

// resolved carries the frozen base parameters and the clamping rule.
type resolved struct {
	name    string
	initial float64
	min     float64
	fn      func(epoch float64) float64
}

func (r *resolved) Name() string     { return r.name }
func (r *resolved) Initial() float64 { return r.initial }
func (r *resolved) Min() float64     { return r.min }

func (r *resolved) Rate(epoch int) float64 {
	if epoch <= 0 {
		return r.initial
	}
	return math.Max(r.min, r.fn(float64(epoch)))
}

func newResolved(name string, p Params, fn func(epoch float64) float64) *resolved {
	return &resolved{name: name, initial: p.Initial, min: p.Min, fn: fn}
}
