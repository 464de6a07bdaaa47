// Package descent is a gradient-descent training toolkit for linear and
// logistic models, built on gonum.
//
// A training run is driven by descent.Trainer. Every epoch it updates the
// parameter vector θ over full or mini batches, records costs, scores and
// gradient norms, and hands control to a list of observers that can change
// the learning rate or stop the run.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/descent/schedule"
//	    "github.com/YuminosukeSato/descent/sklearn/linear_model"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewVecDense(4, []float64{3, 5, 7, 9})
//
//	    reg := linear_model.NewGDRegressor(
//	        linear_model.WithEpochs(500),
//	        linear_model.WithLearningRate(0.05),
//	        linear_model.WithSchedule(schedule.NewStepDecay()),
//	    )
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(reg.Coef(), reg.Intercept())
//	}
//
// # Packages
//
//   - descent: the trainer, its options and the run Result
//   - observer: lifecycle hooks, learning-rate control, early stopping,
//     progress logging and gradient checking
//   - schedule: learning-rate schedules (step, time, exponential,
//     polynomial, power, Bottou and improvement based)
//   - regularizer: L1, L2 and ElasticNet penalties
//   - task: linear and logistic regression costs and gradients
//   - performance: the metric tracker behind early stopping
//   - metrics: regression and classification metrics and scorers
//   - preprocessing: standard and min-max scaling
//   - report: text summaries and learning-curve plots
//   - config: YAML training configuration
//   - sklearn/linear_model: GDRegressor and GDClassifier estimators
//   - core/training: history, log records and run state
//   - core/model: estimator interfaces and weight persistence
//
// The gdtrain command trains a model from a CSV file and a YAML
// configuration.
package descent
