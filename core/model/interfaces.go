// Package model provides the estimator interfaces, fitted-state tracking and
// weight export shared by the gradient-descent estimators.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the task's default score on (X, y): R² for
	// regressors, accuracy for classifiers.
	Score(X mat.Matrix, y mat.Vector) (float64, error)
}

// Estimator is a model that can be fitted.
type Estimator interface {
	Fitter
	IsFitted() bool
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
	Scorer
	LinearModel
}

// Classifier combines interfaces for binary classification models.
type Classifier interface {
	Estimator
	Predictor
	Scorer
	LinearModel

	// PredictProba returns the probability of the positive class.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)

	// Classes returns the two labels seen during fitting, negative first.
	Classes() []float64
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// WeightExporter is implemented by models whose fitted parameters can be
// exported as ModelWeights.
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
}
