package schedule

import (
	"math"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Constant keeps the initial rate for the whole run.
type Constant struct{ p Params }

// NewConstant returns a constant schedule.
func NewConstant(opts ...Option) *Constant {
	return &Constant{p: newParams(0, opts)}
}

func (s *Constant) Name() string { return "Constant" }

func (s *Constant) Resolve(meta Meta) (Resolved, error) {
	if err := s.p.validateBase(meta); err != nil {
		return nil, err
	}
	initial := s.p.Initial
	return newResolved(s.Name(), s.p, func(float64) float64 { return initial }), nil
}

// StepDecay multiplies the rate by the decay factor every step_len epochs,
// where step_len = total // min(decay_steps, total).
type StepDecay struct{ p Params }

// NewStepDecay returns a step decay schedule. Defaults: factor 0.5,
// 10 decay steps.
func NewStepDecay(opts ...Option) *StepDecay {
	return &StepDecay{p: newParams(0.5, append([]Option{WithDecaySteps(10)}, opts...))}
}

func (s *StepDecay) Name() string { return "StepDecay" }

func (s *StepDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor(), s.p.validateDecaySteps()); err != nil {
		return nil, err
	}
	stepLen := float64(meta.TotalEpochs / min(s.p.DecaySteps, meta.TotalEpochs))
	initial, f := s.p.Initial, s.p.DecayFactor
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial * math.Pow(f, math.Floor(epoch/stepLen))
	}), nil
}

// TimeDecay is initial/(1+b·epoch). With WithOptimalDecay, b is
// 1 − (initial−min)/total.
type TimeDecay struct{ p Params }

// NewTimeDecay returns a time decay schedule. The factor defaults to optimal.
func NewTimeDecay(opts ...Option) *TimeDecay {
	return &TimeDecay{p: newParams(0, append([]Option{WithOptimalDecay()}, opts...))}
}

func (s *TimeDecay) Name() string { return "TimeDecay" }

func (s *TimeDecay) Resolve(meta Meta) (Resolved, error) {
	if err := s.p.validateBase(meta); err != nil {
		return nil, err
	}
	p := s.p
	if p.OptimalDecay {
		// min == initial would make the optimal factor exactly 1.
		if p.Min >= p.Initial {
			return nil, errors.NewConfigurationError("min_learning_rate",
				"must be below initial_learning_rate when decay_factor is optimal", p.Min)
		}
		p.DecayFactor = 1 - (p.Initial-p.Min)/float64(meta.TotalEpochs)
	}
	if err := p.validateDecayFactor(); err != nil {
		return nil, err
	}
	initial, b := p.Initial, p.DecayFactor
	return newResolved(s.Name(), p, func(epoch float64) float64 {
		return initial / (1 + b*epoch)
	}), nil
}

// SqrtTimeDecay is initial/(1+b·√epoch).
type SqrtTimeDecay struct{ p Params }

// NewSqrtTimeDecay returns a square-root time decay schedule. Default factor 0.5.
func NewSqrtTimeDecay(opts ...Option) *SqrtTimeDecay {
	return &SqrtTimeDecay{p: newParams(0.5, opts)}
}

func (s *SqrtTimeDecay) Name() string { return "SqrtTimeDecay" }

func (s *SqrtTimeDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor()); err != nil {
		return nil, err
	}
	initial, b := s.p.Initial, s.p.DecayFactor
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial / (1 + b*math.Sqrt(epoch))
	}), nil
}

// ExponentialDecay is initial·exp(−b·epoch).
type ExponentialDecay struct{ p Params }

// NewExponentialDecay returns an exponential decay schedule. Default factor 0.1.
func NewExponentialDecay(opts ...Option) *ExponentialDecay {
	return &ExponentialDecay{p: newParams(0.1, opts)}
}

func (s *ExponentialDecay) Name() string { return "ExponentialDecay" }

func (s *ExponentialDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor()); err != nil {
		return nil, err
	}
	initial, b := s.p.Initial, s.p.DecayFactor
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial * math.Exp(-b*epoch)
	}), nil
}

// ExponentialStepDecay is initial·f^(epoch/step_len), with an integer
// exponent when staircase is set.
type ExponentialStepDecay struct{ p Params }

// NewExponentialStepDecay returns an exponential step decay schedule.
// Default factor 0.96.
func NewExponentialStepDecay(opts ...Option) *ExponentialStepDecay {
	return &ExponentialStepDecay{p: newParams(0.96, opts)}
}

func (s *ExponentialStepDecay) Name() string { return "ExponentialStepDecay" }

func (s *ExponentialStepDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor(), s.p.validateDecaySteps()); err != nil {
		return nil, err
	}
	stepLen := float64(meta.TotalEpochs / min(s.p.DecaySteps, meta.TotalEpochs))
	initial, f, staircase := s.p.Initial, s.p.DecayFactor, s.p.Staircase
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		exp := epoch / stepLen
		if staircase {
			exp = math.Floor(exp)
		}
		return initial * math.Pow(f, exp)
	}), nil
}

// PolynomialDecay is initial·(1 − min(epoch,total)/total)^power.
type PolynomialDecay struct{ p Params }

// NewPolynomialDecay returns a polynomial decay schedule. Default power 1.
func NewPolynomialDecay(opts ...Option) *PolynomialDecay {
	return &PolynomialDecay{p: newParams(0, opts)}
}

func (s *PolynomialDecay) Name() string { return "PolynomialDecay" }

func (s *PolynomialDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validatePower()); err != nil {
		return nil, err
	}
	total := float64(meta.TotalEpochs)
	initial, power := s.p.Initial, s.p.Power
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial * math.Pow(1-math.Min(epoch, total)/total, power)
	}), nil
}

// PolynomialStepDecay decays from initial to min over d = min(decay_steps,
// total) epochs: (initial−min)·(1 − min(epoch,d)/d)^power + min.
type PolynomialStepDecay struct{ p Params }

// NewPolynomialStepDecay returns a polynomial step decay schedule.
func NewPolynomialStepDecay(opts ...Option) *PolynomialStepDecay {
	return &PolynomialStepDecay{p: newParams(0, opts)}
}

func (s *PolynomialStepDecay) Name() string { return "PolynomialStepDecay" }

func (s *PolynomialStepDecay) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validatePower(), s.p.validateDecaySteps()); err != nil {
		return nil, err
	}
	d := float64(min(s.p.DecaySteps, meta.TotalEpochs))
	initial, lo, power := s.p.Initial, s.p.Min, s.p.Power
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return (initial-lo)*math.Pow(1-math.Min(epoch, d)/d, power) + lo
	}), nil
}

// PowerSchedule is initial/(1+epoch/decay_steps)^power.
type PowerSchedule struct{ p Params }

// NewPowerSchedule returns a power schedule.
func NewPowerSchedule(opts ...Option) *PowerSchedule {
	return &PowerSchedule{p: newParams(0, opts)}
}

func (s *PowerSchedule) Name() string { return "PowerSchedule" }

func (s *PowerSchedule) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validatePower(), s.p.validateDecaySteps()); err != nil {
		return nil, err
	}
	steps := float64(s.p.DecaySteps)
	initial, power := s.p.Initial, s.p.Power
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial / math.Pow(1+epoch/steps, power)
	}), nil
}

// BottouSchedule is initial·(1+initial·b·epoch)^−1.
type BottouSchedule struct{ p Params }

// NewBottouSchedule returns Bottou's schedule. Default factor 0.5.
func NewBottouSchedule(opts ...Option) *BottouSchedule {
	return &BottouSchedule{p: newParams(0.5, opts)}
}

func (s *BottouSchedule) Name() string { return "BottouSchedule" }

func (s *BottouSchedule) Resolve(meta Meta) (Resolved, error) {
	if err := firstErr(s.p.validateBase(meta), s.p.validateDecayFactor()); err != nil {
		return nil, err
	}
	initial, b := s.p.Initial, s.p.DecayFactor
	return newResolved(s.Name(), s.p, func(epoch float64) float64 {
		return initial / (1 + initial*b*epoch)
	}), nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
