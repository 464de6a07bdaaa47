package linear_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/model"
	"github.com/YuminosukeSato/descent/task"
)

// GDRegressor is least-squares linear regression fitted by gradient
// descent. Score is R².
type GDRegressor struct {
	gd
}

var _ model.Regressor = (*GDRegressor)(nil)

// NewGDRegressor returns an unfitted regressor.
func NewGDRegressor(opts ...Option) *GDRegressor {
	return &GDRegressor{gd: newGD("GDRegressor", task.NewLinearRegression(), opts)}
}

// Fit trains the regressor. X must not contain a bias column.
func (r *GDRegressor) Fit(X mat.Matrix, y mat.Vector) error {
	return r.fit(X, y)
}

// Predict returns Xθ.
func (r *GDRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	Xb, err := r.design(X, "Predict")
	if err != nil {
		return nil, err
	}
	return r.task.Predict(Xb, r.theta)
}

// Score returns the R² of the predictions on X.
func (r *GDRegressor) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yHat, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return r.task.Scorer().Score(y, yHat)
}
