package descent

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/metrics"
	"github.com/YuminosukeSato/descent/performance"
)

// Result is the frozen outcome of a run.
type Result struct {
	Task   string
	Scorer metrics.Scorer
	Theta  *mat.VecDense
	Epochs int

	// Status is Converged, EarlyStopped or Exhausted for completed runs
	// and Failed when the run aborted.
	Status     training.Status
	StopReason string
	StoppedBy  string

	History  *training.History
	Duration time.Duration

	// Trackers holds the performance trackers of the run's observers,
	// keyed by observer name.
	Trackers map[string]*performance.Tracker
}

// CriticalPoints returns the critical points of every tracker in
// observer-name order.
func (r *Result) CriticalPoints() map[string][]performance.CriticalPoint {
	out := make(map[string][]performance.CriticalPoint, len(r.Trackers))
	for name, t := range r.Trackers {
		out[name] = t.CriticalPoints()
	}
	return out
}

// Final returns the last epoch value of key.
func (r *Result) Final(key string) (float64, bool) {
	if r.History == nil {
		return 0, false
	}
	return r.History.View().LastEpoch(key)
}
