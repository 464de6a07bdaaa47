// Package config loads YAML training configurations and turns them into
// trainer options, a task and observers.
package config

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Config is the root of a training configuration file.
type Config struct {
	Task         string  `yaml:"task"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`
	Shuffle      *bool   `yaml:"shuffle,omitempty"`
	Scaling      string  `yaml:"scaling"`

	// Scorer replaces the regression task's r2 score. Classification is
	// always scored by accuracy.
	Scorer string `yaml:"scorer,omitempty"`

	// ValidationFraction holds out a share of the training rows when no
	// validation file is given.
	ValidationFraction float64 `yaml:"validation_fraction"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Regularizer   *RegularizerConfig   `yaml:"regularizer,omitempty"`
	Schedule      *ScheduleConfig      `yaml:"schedule,omitempty"`
	EarlyStop     *EarlyStopConfig     `yaml:"early_stop,omitempty"`
	GradientCheck *GradientCheckConfig `yaml:"gradient_check,omitempty"`
	Progress      *ProgressConfig      `yaml:"progress,omitempty"`
}

// RegularizerConfig selects the penalty. Ratio is used by elasticnet only.
type RegularizerConfig struct {
	Type  string  `yaml:"type"`
	Alpha float64 `yaml:"alpha"`
	Ratio float64 `yaml:"ratio"`
}

// ScheduleConfig selects a learning-rate schedule. Nil fields leave the
// schedule's own default in place; present values are passed through and
// validated, so an explicit zero is an error rather than a default.
type ScheduleConfig struct {
	Type        string      `yaml:"type"`
	Initial     *float64    `yaml:"initial,omitempty"`
	Min         *float64    `yaml:"min,omitempty"`
	DecayFactor DecayFactor `yaml:"decay_factor"`
	DecaySteps  *int        `yaml:"decay_steps,omitempty"`
	Power       *float64    `yaml:"power,omitempty"`
	Staircase   bool        `yaml:"staircase"`

	// Improvement schedule only.
	Metric   string   `yaml:"metric"`
	Epsilon  *float64 `yaml:"epsilon,omitempty"`
	Patience *int     `yaml:"patience,omitempty"`
}

// EarlyStopConfig enables the early-stop observer.
type EarlyStopConfig struct {
	Metric   string   `yaml:"metric"`
	Patience *int     `yaml:"patience,omitempty"`
	Epsilon  *float64 `yaml:"epsilon,omitempty"`
}

// GradientCheckConfig enables the gradient-check observer.
type GradientCheckConfig struct {
	Interval  *int     `yaml:"interval,omitempty"`
	Tolerance *float64 `yaml:"tolerance,omitempty"`
}

// ProgressConfig enables progress logging every Checkpoint epochs.
type ProgressConfig struct {
	Checkpoint *int `yaml:"checkpoint,omitempty"`
}

// DecayFactor is either a number or the word "optimal".
type DecayFactor struct {
	Value   float64
	Optimal bool
	Set     bool
}

// UnmarshalYAML accepts a float or "optimal".
func (d *DecayFactor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.NewConfigurationError("decay_factor", "must be a number or \"optimal\"", node.Value)
	}
	if node.Value == "optimal" {
		*d = DecayFactor{Optimal: true, Set: true}
		return nil
	}
	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return errors.NewConfigurationError("decay_factor", "must be a number or \"optimal\"", node.Value)
	}
	*d = DecayFactor{Value: v, Set: true}
	return nil
}

// MarshalYAML writes the factor back in the form it was read.
func (d DecayFactor) MarshalYAML() (interface{}, error) {
	switch {
	case d.Optimal:
		return "optimal", nil
	case d.Set:
		return d.Value, nil
	}
	return nil, nil
}
