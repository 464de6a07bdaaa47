package task

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/metrics"
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// LogisticRegression is binary classification with labels 0 and 1.
// Cost is the mean cross entropy of σ(Xθ); Predict returns labels.
type LogisticRegression struct {
	threshold float64
}

// NewLogisticRegression returns a logistic task thresholding at 0.5.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{threshold: 0.5}
}

func (t *LogisticRegression) Name() string { return "LogisticRegression" }

func (t *LogisticRegression) Scorer() metrics.Scorer { return metrics.AccuracyScorer }

// PredictProba returns P(y=1) for every row of X.
func (t *LogisticRegression) PredictProba(X mat.Matrix, theta mat.Vector) (*mat.VecDense, error) {
	z, err := linear("LogisticRegression.PredictProba", X, theta)
	if err != nil {
		return nil, err
	}
	for i := 0; i < z.Len(); i++ {
		z.SetVec(i, sigmoid(z.AtVec(i)))
	}
	return z, nil
}

func (t *LogisticRegression) Predict(X mat.Matrix, theta mat.Vector) (*mat.VecDense, error) {
	p, err := t.PredictProba(X, theta)
	if err != nil {
		return nil, err
	}
	for i := 0; i < p.Len(); i++ {
		if p.AtVec(i) >= t.threshold {
			p.SetVec(i, 1)
		} else {
			p.SetVec(i, 0)
		}
	}
	return p, nil
}

func (t *LogisticRegression) Cost(X mat.Matrix, y, theta mat.Vector) (float64, error) {
	if err := checkTargets("LogisticRegression.Cost", X, y); err != nil {
		return 0, err
	}
	p, err := t.PredictProba(X, theta)
	if err != nil {
		return 0, err
	}
	return metrics.BinaryLogLoss(y, p)
}

func (t *LogisticRegression) Gradient(X mat.Matrix, y, theta mat.Vector) (*mat.VecDense, error) {
	if err := checkTargets("LogisticRegression.Gradient", X, y); err != nil {
		return nil, err
	}
	if err := checkBinary(y); err != nil {
		return nil, err
	}
	p, err := t.PredictProba(X, theta)
	if err != nil {
		return nil, err
	}
	return residualGradient(X, y, p), nil
}

func checkBinary(y mat.Vector) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError("LogisticRegression", "labels must be 0 or 1")
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + errors.StabilizeExp(-z))
	}
	e := errors.StabilizeExp(z)
	return e / (1 + e)
}
