package schedule

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

var constructors = map[string]func(...Option) Schedule{
	"constant":               func(o ...Option) Schedule { return NewConstant(o...) },
	"step_decay":             func(o ...Option) Schedule { return NewStepDecay(o...) },
	"time_decay":             func(o ...Option) Schedule { return NewTimeDecay(o...) },
	"sqrt_time_decay":        func(o ...Option) Schedule { return NewSqrtTimeDecay(o...) },
	"exponential_decay":      func(o ...Option) Schedule { return NewExponentialDecay(o...) },
	"exponential_step_decay": func(o ...Option) Schedule { return NewExponentialStepDecay(o...) },
	"polynomial_decay":       func(o ...Option) Schedule { return NewPolynomialDecay(o...) },
	"polynomial_step_decay":  func(o ...Option) Schedule { return NewPolynomialStepDecay(o...) },
	"power":                  func(o ...Option) Schedule { return NewPowerSchedule(o...) },
	"bottou":                 func(o ...Option) Schedule { return NewBottouSchedule(o...) },
	"improvement":            func(o ...Option) Schedule { return NewImprovement(o...) },
}

// New builds a schedule by its configuration name, e.g. "step_decay".
func New(name string, opts ...Option) (Schedule, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, errors.NewConfigurationError("schedule", "must be one of "+strings.Join(Names(), ", "), name)
	}
	return ctor(opts...), nil
}

// Names returns the configuration names of all schedules.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
