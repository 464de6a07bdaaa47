package report

import (
	"io"

	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/performance"
)

// Reporter writes a Summary when training ends. It does no I/O before
// TrainEnd.
type Reporter struct {
	observer.Base
	w        io.Writer
	task     string
	plotPath string
	sources  []observer.Observer
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithTask sets the task name shown in the summary.
func WithTask(name string) ReporterOption {
	return func(r *Reporter) { r.task = name }
}

// WithPlot also saves the learning curve to path.
func WithPlot(path string) ReporterOption {
	return func(r *Reporter) { r.plotPath = path }
}

// WithTrackersFrom includes the critical points of observers that expose a
// performance tracker.
func WithTrackersFrom(obs ...observer.Observer) ReporterOption {
	return func(r *Reporter) { r.sources = append(r.sources, obs...) }
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Name() string { return "Reporter" }

func (r *Reporter) OnTrainEnd(env *observer.Env) error {
	run := Run{
		Task:           r.task,
		Scorer:         env.Meta.Scorer.Name,
		HigherIsBetter: env.Meta.Scorer.HigherIsBetter,
		Status:         env.State.Outcome,
		StopReason:     env.State.StopReason,
		Epochs:         env.History.EpochsCompleted(),
		Theta:          env.State.Theta(),
		Duration:       env.History.Duration(),
		History:        env.History,
		Trackers:       make(map[string]*performance.Tracker),
	}
	for _, o := range r.sources {
		if t, ok := o.(interface{ Tracker() *performance.Tracker }); ok && t.Tracker() != nil {
			run.Trackers[o.Name()] = t.Tracker()
		}
	}
	if err := Summary(r.w, run); err != nil {
		return err
	}
	if r.plotPath != "" {
		return LearningCurve(run, r.plotPath)
	}
	return nil
}
