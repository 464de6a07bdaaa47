package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// ScoreFunc computes a metric from true and predicted values.
type ScoreFunc func(yTrue, yPred mat.Vector) (float64, error)

// Scorer describes a metric and its direction. Trackers monitoring a
// train_score or val_score key use HigherIsBetter to decide what counts as
// an improvement.
type Scorer struct {
	Name           string
	HigherIsBetter bool
	Func           ScoreFunc
}

// Score applies the scorer.
func (s Scorer) Score(yTrue, yPred mat.Vector) (float64, error) {
	if s.Func == nil {
		return 0, errors.NewValueError("Scorer.Score", "scorer "+s.Name+" has no function")
	}
	return s.Func(yTrue, yPred)
}

// Better reports whether a is strictly better than b.
func (s Scorer) Better(a, b float64) bool {
	if s.HigherIsBetter {
		return a > b
	}
	return a < b
}

var (
	R2Scorer       = Scorer{Name: "r2", HigherIsBetter: true, Func: R2Score}
	MSEScorer      = Scorer{Name: "mse", HigherIsBetter: false, Func: MSE}
	RMSEScorer     = Scorer{Name: "rmse", HigherIsBetter: false, Func: RMSE}
	MAEScorer      = Scorer{Name: "mae", HigherIsBetter: false, Func: MAE}
	AccuracyScorer = Scorer{Name: "accuracy", HigherIsBetter: true, Func: Accuracy}

	ExplainedVarianceScorer = Scorer{Name: "explained_variance", HigherIsBetter: true, Func: ExplainedVarianceScore}
)

var scorers = map[string]Scorer{
	R2Scorer.Name:       R2Scorer,
	MSEScorer.Name:      MSEScorer,
	RMSEScorer.Name:     RMSEScorer,
	MAEScorer.Name:      MAEScorer,
	AccuracyScorer.Name: AccuracyScorer,

	ExplainedVarianceScorer.Name: ExplainedVarianceScorer,
}

// ScorerByName looks up a built-in scorer.
func ScorerByName(name string) (Scorer, error) {
	s, ok := scorers[name]
	if !ok {
		return Scorer{}, errors.NewConfigurationError("scorer", "unknown scorer, expected one of "+joinNames(), name)
	}
	return s, nil
}

// ScorerNames returns the built-in scorer names in sorted order.
func ScorerNames() []string {
	names := make([]string, 0, len(scorers))
	for n := range scorers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func joinNames() string {
	out := ""
	for i, n := range ScorerNames() {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
