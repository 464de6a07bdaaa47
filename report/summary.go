// Package report renders the outcome of a training run as a text summary
// and as learning-curve plots.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/descent"
	"github.com/YuminosukeSato/descent/performance"
)

// Run is everything a report needs about a finished training run.
type Run struct {
	Task           string
	Scorer         string
	HigherIsBetter bool
	Status         training.Status
	StopReason     string
	Epochs         int
	Theta          *mat.VecDense
	Duration       time.Duration
	History        training.HistoryView
	Trackers       map[string]*performance.Tracker
}

// FromResult adapts a descent.Result.
func FromResult(res *descent.Result) Run {
	run := Run{
		Task:           res.Task,
		Scorer:         res.Scorer.Name,
		HigherIsBetter: res.Scorer.HigherIsBetter,
		Status:         res.Status,
		StopReason:     res.StopReason,
		Epochs:         res.Epochs,
		Theta:          res.Theta,
		Duration:       res.Duration,
		Trackers:       res.Trackers,
	}
	if res.History != nil {
		run.History = res.History.View()
	}
	return run
}

var summaryMetrics = []string{
	training.KeyTrainCost,
	training.KeyTrainScore,
	training.KeyValCost,
	training.KeyValScore,
	training.KeyGradientNorm,
}

// Summary writes the optimization summary, the final and best value of
// every recorded metric, the critical points of each tracker and the
// fitted parameters.
func Summary(w io.Writer, run Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	section(tw, "Optimization Summary")
	fmt.Fprintf(tw, "Task\t%s\n", run.Task)
	fmt.Fprintf(tw, "Status\t%s\n", run.Status)
	if run.StopReason != "" {
		fmt.Fprintf(tw, "Stop reason\t%s\n", run.StopReason)
	}
	fmt.Fprintf(tw, "Epochs\t%d\n", run.Epochs)
	fmt.Fprintf(tw, "Batches\t%d\n", run.History.BatchesCompleted())
	fmt.Fprintf(tw, "Duration\t%s\n", run.Duration.Round(time.Microsecond))

	section(tw, "Performance")
	fmt.Fprintln(tw, "Metric\tFinal\tBest\tBest epoch")
	for _, key := range summaryMetrics {
		values, ok := run.History.Epoch(key)
		if !ok || len(values) == 0 {
			continue
		}
		name := key
		if training.IsScoreMetric(key) && run.Scorer != "" {
			name = fmt.Sprintf("%s (%s)", key, run.Scorer)
		}
		best := bestIndex(values, training.IsScoreMetric(key) && run.HigherIsBetter)
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%d\n", name, values[len(values)-1], values[best], best+1)
	}

	if len(run.Trackers) > 0 {
		section(tw, "Critical Points")
		fmt.Fprintln(tw, "Observer\tMetric\tEpoch\tValue")
		for _, name := range sortedNames(run.Trackers) {
			t := run.Trackers[name]
			for _, cp := range t.CriticalPoints() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.6g\n", name, t.Metric(), cp.Epoch, cp.Value)
			}
		}
	}

	if run.Theta != nil && run.Theta.Len() > 0 {
		section(tw, "Parameters")
		fmt.Fprintf(tw, "Intercept\t%.6g\n", run.Theta.AtVec(0))
		for i := 1; i < run.Theta.Len(); i++ {
			fmt.Fprintf(tw, "θ%d\t%.6g\n", i, run.Theta.AtVec(i))
		}
	}
	return tw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

func bestIndex(values []float64, higherIsBetter bool) int {
	if higherIsBetter {
		return floats.MaxIdx(values)
	}
	return floats.MinIdx(values)
}

func sortedNames(m map[string]*performance.Tracker) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
