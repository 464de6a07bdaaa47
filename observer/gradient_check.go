package observer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
)

// Gradient check defaults.
const (
	DefaultCheckInterval  = 10
	DefaultCheckTolerance = 1e-4
	DefaultCheckStep      = 1e-6
)

// GradientCheck compares the analytic gradient of the training objective
// with a central finite-difference estimate every interval epochs. A
// relative error above tolerance fails the run.
type GradientCheck struct {
	Base
	interval  int
	tolerance float64
	step      float64
	logger    log.Logger

	checks  int
	maxSeen float64
}

// GradientCheckOption configures a GradientCheck.
type GradientCheckOption func(*GradientCheck)

// WithCheckInterval runs the check every n epochs.
func WithCheckInterval(n int) GradientCheckOption {
	return func(g *GradientCheck) { g.interval = n }
}

// WithCheckTolerance sets the largest accepted relative error.
func WithCheckTolerance(tol float64) GradientCheckOption {
	return func(g *GradientCheck) { g.tolerance = tol }
}

// WithCheckStep sets the finite-difference step.
func WithCheckStep(h float64) GradientCheckOption {
	return func(g *GradientCheck) { g.step = h }
}

// NewGradientCheck validates its options and returns the observer.
func NewGradientCheck(opts ...GradientCheckOption) (*GradientCheck, error) {
	g := &GradientCheck{
		interval:  DefaultCheckInterval,
		tolerance: DefaultCheckTolerance,
		step:      DefaultCheckStep,
		logger:    log.GetLoggerWithName("observer.gradient_check"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.interval < 1 {
		return nil, errors.NewConfigurationError("interval", "must be at least 1", g.interval)
	}
	if !(g.tolerance > 0) {
		return nil, errors.NewConfigurationError("tolerance", "must be positive", g.tolerance)
	}
	if !(g.step > 0) {
		return nil, errors.NewConfigurationError("step", "must be positive", g.step)
	}
	return g, nil
}

func (g *GradientCheck) Name() string { return "GradientCheck" }

// Checks returns how many checks have run.
func (g *GradientCheck) Checks() int { return g.checks }

// MaxRelativeError returns the largest relative error observed.
func (g *GradientCheck) MaxRelativeError() float64 { return g.maxSeen }

func (g *GradientCheck) OnTrainBegin(env *Env) error {
	if env.Objective == nil {
		return errors.New("gradient check requires an objective")
	}
	g.checks, g.maxSeen = 0, 0
	return nil
}

func (g *GradientCheck) OnEpochEnd(env *Env) error {
	if env.Epoch()%g.interval != 0 {
		return nil
	}
	theta := env.State.Theta()
	relErr, err := g.check(env.Objective, theta)
	if err != nil {
		return err
	}
	g.checks++
	g.maxSeen = math.Max(g.maxSeen, relErr)
	g.logger.Debug("Gradient checked", log.EpochKey, env.Epoch(), log.RelativeErrorKey, relErr)
	if relErr > g.tolerance {
		return errors.NewValueError("GradientCheck",
			fmt.Sprintf("relative error %.3g exceeds tolerance %.3g at epoch %d", relErr, g.tolerance, env.Epoch()))
	}
	return nil
}

// RelativeError returns ‖a−n‖ / (‖a‖+‖n‖), or 0 when both are
// numerically zero.
func RelativeError(analytic, numeric []float64) float64 {
	den := floats.Norm(analytic, 2) + floats.Norm(numeric, 2)
	return errors.SafeDivide(floats.Distance(analytic, numeric, 2), den)
}

func (g *GradientCheck) check(obj Objective, theta *mat.VecDense) (float64, error) {
	analytic, err := obj.Gradient(theta)
	if err != nil {
		return 0, err
	}

	var costErr error
	cost := func(x []float64) float64 {
		c, err := obj.Cost(mat.NewVecDense(len(x), x))
		if err != nil && costErr == nil {
			costErr = err
		}
		return c
	}
	x := append([]float64(nil), theta.RawVector().Data...)
	numeric := fd.Gradient(nil, cost, x, &fd.Settings{Formula: fd.Central, Step: g.step})
	if costErr != nil {
		return 0, costErr
	}
	return RelativeError(mat.Col(nil, 0, analytic), numeric), nil
}
