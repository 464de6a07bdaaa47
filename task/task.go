// Package task defines the learning problems the descent driver optimizes.
//
// A Task is stateless: it maps a design matrix, targets and parameters to
// predictions, cost and gradient. Design matrices are expected to carry a
// leading column of ones (see AddBias) so that theta[0] is the intercept.
package task

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/metrics"
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Task is a differentiable learning objective.
type Task interface {
	Name() string
	Predict(X mat.Matrix, theta mat.Vector) (*mat.VecDense, error)
	Cost(X mat.Matrix, y, theta mat.Vector) (float64, error)
	Gradient(X mat.Matrix, y, theta mat.Vector) (*mat.VecDense, error)
	Scorer() metrics.Scorer
}

// New returns the task registered under name.
func New(name string) (Task, error) {
	switch name {
	case "regression", "linear", "linear_regression":
		return NewLinearRegression(), nil
	case "classification", "logistic", "logistic_regression":
		return NewLogisticRegression(), nil
	}
	return nil, errors.NewConfigurationError("task", "must be regression or classification", name)
}

// AddBias returns X with a leading column of ones.
func AddBias(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			out.Set(i, j+1, X.At(i, j))
		}
	}
	return out
}

// linear returns Xθ after checking shapes.
func linear(op string, X mat.Matrix, theta mat.Vector) (*mat.VecDense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if theta.Len() != c {
		return nil, errors.NewDimensionError(op, c, theta.Len(), 1)
	}
	z := mat.NewVecDense(r, nil)
	z.MulVec(X, theta)
	return z, nil
}

func checkTargets(op string, X mat.Matrix, y mat.Vector) error {
	r, _ := X.Dims()
	if y.Len() != r {
		return errors.NewDataShapeError(op, []int{r}, []int{y.Len()})
	}
	return nil
}

// residualGradient returns Xᵀ(ŷ−y)/m.
func residualGradient(X mat.Matrix, y, yHat mat.Vector) *mat.VecDense {
	r, c := X.Dims()
	res := mat.NewVecDense(r, nil)
	res.SubVec(yHat, y)
	g := mat.NewVecDense(c, nil)
	g.MulVec(X.T(), res)
	g.ScaleVec(1/float64(r), g)
	return g
}
