package observer

import (
	"time"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/pkg/log"
)

// Progress logs epoch metrics every checkpoint epochs and a summary line
// when training ends.
type Progress struct {
	Base
	checkpoint int
	logger     log.Logger
	start      time.Time
}

// ProgressOption configures a Progress observer.
type ProgressOption func(*Progress)

// WithCheckpoint logs every n epochs. Values below 1 mean every epoch.
func WithCheckpoint(n int) ProgressOption {
	return func(p *Progress) { p.checkpoint = n }
}

// WithProgressLogger replaces the default logger.
func WithProgressLogger(l log.Logger) ProgressOption {
	return func(p *Progress) { p.logger = l }
}

// NewProgress returns a Progress observer logging every epoch by default.
func NewProgress(opts ...ProgressOption) *Progress {
	p := &Progress{checkpoint: 1}
	for _, opt := range opts {
		opt(p)
	}
	if p.checkpoint < 1 {
		p.checkpoint = 1
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("observer.progress")
	}
	return p
}

func (p *Progress) Name() string { return "Progress" }

// recordFields maps record keys to log attribute keys.
var recordFields = []struct{ record, attr string }{
	{training.KeyTrainCost, log.TrainCostKey},
	{training.KeyTrainScore, log.TrainScoreKey},
	{training.KeyValCost, log.ValCostKey},
	{training.KeyValScore, log.ValScoreKey},
	{training.KeyGradientNorm, log.GradientNormKey},
	{training.KeyLearningRate, log.LearningRateKey},
}

func (p *Progress) OnTrainBegin(env *Env) error {
	p.start = time.Now()
	p.logger.Info("Training started", log.TotalEpochsKey, env.State.TotalEpochs)
	return nil
}

func (p *Progress) OnEpochEnd(env *Env) error {
	epoch := env.Epoch()
	if epoch%p.checkpoint != 0 && epoch != env.State.TotalEpochs {
		return nil
	}
	fields := []any{log.EpochKey, epoch}
	for _, f := range recordFields {
		if v, ok := env.Record.Scalar(f.record); ok {
			fields = append(fields, f.attr, v)
		}
	}
	p.logger.Info("Epoch finished", fields...)
	return nil
}

func (p *Progress) OnTrainEnd(env *Env) error {
	fields := []any{
		log.EpochKey, env.State.Epoch,
		log.StatusKey, env.State.Outcome.String(),
		log.DurationMsKey, time.Since(p.start).Milliseconds(),
	}
	if env.State.StopReason != "" {
		fields = append(fields, log.StopReasonKey, env.State.StopReason)
	}
	p.logger.Info("Training finished", fields...)
	return nil
}
