package task

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/metrics"
)

// LinearRegression is least squares: ŷ = Xθ, cost ½·mean((ŷ−y)²).
type LinearRegression struct {
	scorer metrics.Scorer
}

// NewLinearRegression returns a linear regression task scored with R².
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{scorer: metrics.R2Scorer}
}

// WithScorer returns a copy of the task using s.
func (t *LinearRegression) WithScorer(s metrics.Scorer) *LinearRegression {
	return &LinearRegression{scorer: s}
}

func (t *LinearRegression) Name() string { return "LinearRegression" }

func (t *LinearRegression) Scorer() metrics.Scorer { return t.scorer }

func (t *LinearRegression) Predict(X mat.Matrix, theta mat.Vector) (*mat.VecDense, error) {
	return linear("LinearRegression.Predict", X, theta)
}

func (t *LinearRegression) Cost(X mat.Matrix, y, theta mat.Vector) (float64, error) {
	if err := checkTargets("LinearRegression.Cost", X, y); err != nil {
		return 0, err
	}
	yHat, err := linear("LinearRegression.Cost", X, theta)
	if err != nil {
		return 0, err
	}
	mse, err := metrics.MSE(y, yHat)
	if err != nil {
		return 0, err
	}
	return 0.5 * mse, nil
}

func (t *LinearRegression) Gradient(X mat.Matrix, y, theta mat.Vector) (*mat.VecDense, error) {
	if err := checkTargets("LinearRegression.Gradient", X, y); err != nil {
		return nil, err
	}
	yHat, err := linear("LinearRegression.Gradient", X, theta)
	if err != nil {
		return nil, err
	}
	return residualGradient(X, y, yHat), nil
}
