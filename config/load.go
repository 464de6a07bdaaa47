package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/descent/descent"
	"github.com/YuminosukeSato/descent/metrics"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
	"github.com/YuminosukeSato/descent/preprocessing"
	"github.com/YuminosukeSato/descent/schedule"
	"github.com/YuminosukeSato/descent/task"
)

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Task:         "regression",
		Epochs:       descent.DefaultEpochs,
		LearningRate: descent.DefaultLearningRate,
		Scaling:      "standard",
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.WithStack(err)
}

// Validate checks every section. Schedules are resolved against the
// configured epochs so that range errors surface before training.
func (c *Config) Validate() error {
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return errors.NewConfigurationError("log_format", "must be json or console", c.LogFormat)
	}
	if _, err := preprocessing.New(c.Scaling); err != nil {
		return err
	}
	if c.ValidationFraction < 0 || c.ValidationFraction >= 1 {
		return errors.NewConfigurationError("validation_fraction", "must be in [0, 1)", c.ValidationFraction)
	}
	tk, err := c.BuildTask()
	if err != nil {
		return err
	}
	if c.Schedule != nil {
		s, err := c.BuildSchedule()
		if err != nil {
			return err
		}
		if _, err := s.Resolve(schedule.Meta{TotalEpochs: c.Epochs, Scorer: tk.Scorer()}); err != nil {
			return err
		}
	}
	opts, err := c.TrainerOptions()
	if err != nil {
		return err
	}
	_, err = descent.New(opts...)
	return err
}

// BuildTask returns the configured task with its scorer applied.
func (c *Config) BuildTask() (task.Task, error) {
	tk, err := task.New(c.Task)
	if err != nil || c.Scorer == "" {
		return tk, err
	}
	s, err := metrics.ScorerByName(c.Scorer)
	if err != nil {
		return nil, err
	}
	lin, ok := tk.(*task.LinearRegression)
	switch {
	case !ok && s.Name != tk.Scorer().Name:
		return nil, errors.NewConfigurationError("scorer", "classification is scored by accuracy", c.Scorer)
	case !ok:
		return tk, nil
	case s.Name == metrics.AccuracyScorer.Name:
		return nil, errors.NewConfigurationError("scorer", "accuracy applies to classification only", c.Scorer)
	}
	return lin.WithScorer(s), nil
}
