package descent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/schedule"
	"github.com/YuminosukeSato/descent/task"
)

// line returns samples of y = 1 + 2x on [0, 1] with optional noise.
func line(noise []float64) (*mat.Dense, *mat.VecDense) {
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	X := task.AddBias(mat.NewDense(len(xs), 1, xs))
	y := mat.NewVecDense(len(xs), nil)
	for i, x := range xs {
		v := 1 + 2*x
		if noise != nil {
			v += noise[i]
		}
		y.SetVec(i, v)
	}
	return X, y
}

func newTrainer(t *testing.T, opts ...Option) *Trainer {
	t.Helper()
	tr, err := New(opts...)
	require.NoError(t, err)
	return tr
}

func TestFitLinearRegression(t *testing.T) {
	X, y := line(nil)
	tr := newTrainer(t, WithEpochs(2000), WithLearningRate(0.1))

	res, err := tr.Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	assert.Equal(t, training.Exhausted, res.Status)
	assert.Equal(t, 2000, res.Epochs)
	assert.InDelta(t, 1.0, res.Theta.AtVec(0), 1e-3)
	assert.InDelta(t, 2.0, res.Theta.AtVec(1), 1e-3)

	score, ok := res.Final(training.KeyTrainScore)
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-6)
	assert.Equal(t, "LinearRegression", res.Task)
	assert.Empty(t, res.Trackers)
}

func TestFitLogisticRegression(t *testing.T) {
	X := task.AddBias(mat.NewDense(6, 1, []float64{-3, -2, -1, 1, 2, 3}))
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})
	tr := newTrainer(t, WithEpochs(200), WithLearningRate(0.5))

	res, err := tr.Fit(task.NewLogisticRegression(), X, y)
	require.NoError(t, err)

	acc, ok := res.Final(training.KeyTrainScore)
	require.True(t, ok)
	assert.Equal(t, 1.0, acc)
	assert.Greater(t, res.Theta.AtVec(1), 0.0)
}

func TestHistoryLengthMatchesEpochs(t *testing.T) {
	X, y := line(nil)
	const epochs = 7
	res, err := newTrainer(t, WithEpochs(epochs)).Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	view := res.History.View()
	costs, ok := view.Epoch(training.KeyTrainCost)
	require.True(t, ok)
	assert.Len(t, costs, epochs)
	assert.Equal(t, epochs, res.History.EpochsCompleted())
	assert.Equal(t, epochs, res.History.BatchesCompleted())

	_, ok = view.Epoch(training.KeyValCost)
	assert.False(t, ok)
	_, ok = view.Epoch(training.KeyValScore)
	assert.False(t, ok)

	thetas, ok := view.EpochVectors(training.KeyTheta)
	require.True(t, ok)
	assert.Len(t, thetas, epochs)
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))
}

func TestValidationMetrics(t *testing.T) {
	X, y := line(nil)
	Xv, yv := line([]float64{0.1, 0, 0, 0, -0.1})
	res, err := newTrainer(t, WithEpochs(5), WithValidation(Xv, yv)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	for _, key := range []string{training.KeyValCost, training.KeyValScore} {
		vals, ok := res.History.View().Epoch(key)
		require.True(t, ok, key)
		assert.Len(t, vals, 5)
	}
}

func TestStepDecayRateAtEpoch55(t *testing.T) {
	X, y := line(nil)
	s := schedule.NewStepDecay(
		schedule.WithInitial(0.1),
		schedule.WithDecayFactor(0.5),
		schedule.WithDecaySteps(10),
	)
	res, err := newTrainer(t, WithEpochs(100), WithSchedule(s)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	rates, ok := res.History.View().Epoch(training.KeyLearningRate)
	require.True(t, ok)
	require.Len(t, rates, 100)
	assert.InDelta(t, 0.1*math.Pow(0.5, 5), rates[54], 1e-15)
	assert.InDelta(t, 0.1, rates[0], 1e-15)
	for i := 1; i < len(rates); i++ {
		assert.LessOrEqual(t, rates[i], rates[i-1])
	}
}

// A constant cost stalls every epoch after the first. The improvement
// schedule halves the rate at the end of epoch 2 and again at epoch 3; the
// recorder sees each change in the same epoch only when it runs after the
// schedule observer.
func TestObserverOrderThroughFit(t *testing.T) {
	X := task.AddBias(mat.NewDense(4, 1, nil))
	y := mat.NewVecDense(4, []float64{1, -1, 1, -1})

	tests := []struct {
		name          string
		recorderFirst bool
		want          []float64
	}{
		{"recorder after schedule", false, []float64{0.1, 0.05, 0.025}},
		{"recorder before schedule", true, []float64{0.1, 0.1, 0.05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := observer.NewLearningRate(schedule.NewImprovement(
				schedule.WithInitial(0.1),
				schedule.WithDecayFactor(0.5),
				schedule.WithPatience(1),
			))
			var rates []float64
			recorder := &observer.Funcs{
				ObserverName: "recorder",
				EpochEnd: func(env *observer.Env) error {
					rates = append(rates, env.Control.LearningRate())
					return nil
				},
			}
			obs := []observer.Observer{lr, recorder}
			if tt.recorderFirst {
				obs = []observer.Observer{recorder, lr}
			}

			res, err := newTrainer(t, WithEpochs(3), WithLearningRate(0.1), WithObservers(obs...)).
				Fit(task.NewLinearRegression(), X, y)
			require.NoError(t, err)
			costs, ok := res.History.View().Epoch(training.KeyTrainCost)
			require.True(t, ok)
			assert.Equal(t, costs[0], costs[2])
			assert.InDeltaSlice(t, tt.want, rates, 1e-12)
		})
	}
}

func TestMiniBatches(t *testing.T) {
	X, y := line(nil)
	res, err := newTrainer(t, WithEpochs(3), WithBatchSize(2), WithRandomState(42)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	assert.Equal(t, 9, res.History.BatchesCompleted())
	sizes, ok := res.History.View().Batch(training.KeyBatchSize)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 2, 1, 2, 2, 1, 2, 2, 1}, sizes)
	batches, _ := res.History.View().Batch(training.KeyBatch)
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3, 1, 2, 3}, batches)
}

func TestMiniBatchesReproducible(t *testing.T) {
	X, y := line([]float64{0.1, -0.2, 0.3, -0.1, 0})
	fit := func() *mat.VecDense {
		res, err := newTrainer(t, WithEpochs(20), WithBatchSize(2), WithRandomState(7)).
			Fit(task.NewLinearRegression(), X, y)
		require.NoError(t, err)
		return res.Theta
	}
	assert.True(t, mat.Equal(fit(), fit()))
}

func TestEarlyStopEndsRun(t *testing.T) {
	X, y := line([]float64{0.3, -0.3, 0.2, -0.2, 0})
	es, err := observer.NewEarlyStop(
		observer.WithStopMetric(training.KeyTrainCost),
		observer.WithStopPatience(3),
		observer.WithStopEpsilon(0.01),
	)
	require.NoError(t, err)

	res, err := newTrainer(t, WithEpochs(5000), WithLearningRate(0.1), WithObservers(es)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	assert.Equal(t, training.EarlyStopped, res.Status)
	assert.Equal(t, "EarlyStop", res.StoppedBy)
	assert.NotEmpty(t, res.StopReason)
	assert.Less(t, res.Epochs, 5000)
	require.Contains(t, res.Trackers, "EarlyStop")
	assert.NotEmpty(t, res.CriticalPoints()["EarlyStop"])
}

func TestConvergenceWarningWhenExhausted(t *testing.T) {
	var warnings []error
	errors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer errors.SetZerologWarnFunc(nil)

	X, y := line(nil)
	es, err := observer.NewEarlyStop(observer.WithStopMetric(training.KeyValCost))
	require.NoError(t, err)

	res, err := newTrainer(t, WithEpochs(5), WithObservers(es)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)
	assert.Equal(t, training.Exhausted, res.Status)

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(warnings[0], &cw))
	assert.Equal(t, 5, cw.Epochs)
}

func TestObserverStop(t *testing.T) {
	X, y := line(nil)
	stopper := &observer.Funcs{
		ObserverName: "stopper",
		EpochEnd: func(env *observer.Env) error {
			if env.Epoch() == 3 {
				env.Control.Converge("enough")
			}
			return nil
		},
	}
	res, err := newTrainer(t, WithEpochs(10), WithObservers(stopper)).
		Fit(task.NewLinearRegression(), X, y)
	require.NoError(t, err)

	assert.Equal(t, training.Converged, res.Status)
	assert.Equal(t, 3, res.Epochs)
	assert.Equal(t, "enough", res.StopReason)
	assert.Equal(t, "stopper", res.StoppedBy)
}

func TestObserverFailureStillEndsTraining(t *testing.T) {
	tests := []struct {
		name     string
		epochEnd func(*observer.Env) error
	}{
		{"error", func(env *observer.Env) error {
			if env.Epoch() == 2 {
				return errors.New("observer failed")
			}
			return nil
		}},
		{"panic", func(env *observer.Env) error {
			if env.Epoch() == 2 {
				panic("observer failed")
			}
			return nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := line(nil)
			var ended bool
			var endStatus training.Status
			obs := &observer.Funcs{
				ObserverName: "faulty",
				EpochEnd:     tt.epochEnd,
				TrainEnd: func(env *observer.Env) error {
					ended = true
					endStatus = env.State.Outcome
					return nil
				},
			}
			res, err := newTrainer(t, WithEpochs(10), WithObservers(obs)).
				Fit(task.NewLinearRegression(), X, y)
			require.Error(t, err)

			var oe *errors.ObserverError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, "faulty", oe.Observer)
			assert.Equal(t, "EpochEnd", oe.Event)
			assert.True(t, ended)
			assert.Equal(t, training.Failed, endStatus)

			require.NotNil(t, res)
			assert.Equal(t, training.Failed, res.Status)
			// epoch 2 was recorded by BlackBox before the faulty observer ran
			assert.Equal(t, 2, res.Epochs)
		})
	}
}

func TestTrainEndErrorIsSecondary(t *testing.T) {
	X, y := line(nil)
	obs := &observer.Funcs{
		ObserverName: "faulty",
		EpochBegin:   func(*observer.Env) error { return errors.New("first failure") },
		TrainEnd:     func(*observer.Env) error { return errors.New("cleanup failure") },
	}
	_, err := newTrainer(t, WithEpochs(3), WithObservers(obs)).
		Fit(task.NewLinearRegression(), X, y)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failure")
	assert.NotContains(t, err.Error(), "cleanup failure")
}

func TestTrainEndErrorFailsRun(t *testing.T) {
	X, y := line(nil)
	obs := &observer.Funcs{
		ObserverName: "faulty",
		TrainEnd:     func(*observer.Env) error { return errors.New("cleanup failure") },
	}
	res, err := newTrainer(t, WithEpochs(3), WithObservers(obs)).
		Fit(task.NewLinearRegression(), X, y)
	require.Error(t, err)
	assert.Equal(t, training.Failed, res.Status)
	assert.Equal(t, 3, res.Epochs)
}

func TestNumericalInstability(t *testing.T) {
	X, y := line(nil)
	y.SetVec(2, math.NaN())
	res, err := newTrainer(t, WithEpochs(3)).Fit(task.NewLinearRegression(), X, y)
	require.Error(t, err)

	var ne *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ne))
	assert.Equal(t, training.Failed, res.Status)
	assert.Zero(t, res.Epochs)
}

func TestInvalidScheduleFailsBeforeFirstEpoch(t *testing.T) {
	X, y := line(nil)
	res, err := newTrainer(t, WithEpochs(3), WithSchedule(schedule.NewStepDecay(schedule.WithDecayFactor(1.5)))).
		Fit(task.NewLinearRegression(), X, y)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.Zero(t, res.Epochs)
}

func TestRegularizationShrinksTheta(t *testing.T) {
	X, y := line(nil)
	fit := func(r regularizer.Regularizer) *mat.VecDense {
		res, err := newTrainer(t, WithEpochs(1000), WithLearningRate(0.1), WithRegularizer(r)).
			Fit(task.NewLinearRegression(), X, y)
		require.NoError(t, err)
		return res.Theta
	}
	l2, err := regularizer.NewL2(1.0)
	require.NoError(t, err)

	plain := fit(regularizer.NewNil())
	shrunk := fit(l2)
	assert.Less(t, math.Abs(shrunk.AtVec(1)), math.Abs(plain.AtVec(1)))
}

func TestNewValidation(t *testing.T) {
	Xv, _ := line(nil)
	tests := []struct {
		name  string
		opt   Option
		param string
	}{
		{"zero epochs", WithEpochs(0), "epochs"},
		{"negative batch", WithBatchSize(-1), "batch_size"},
		{"zero learning rate", WithLearningRate(0), "learning_rate"},
		{"half validation", WithValidation(Xv, nil), "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			var ce *errors.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.param, ce.ParamName)
		})
	}
}

func TestFitShapeErrors(t *testing.T) {
	X, y := line(nil)
	tr := newTrainer(t, WithEpochs(1))

	_, err := tr.Fit(task.NewLinearRegression(), X, mat.NewVecDense(3, nil))
	var se *errors.DataShapeError
	assert.True(t, errors.As(err, &se))

	tr = newTrainer(t, WithEpochs(1), WithInitialTheta(mat.NewVecDense(3, nil)))
	_, err = tr.Fit(task.NewLinearRegression(), X, y)
	assert.True(t, errors.As(err, &se))

	Xv := task.AddBias(X)
	tr = newTrainer(t, WithEpochs(1), WithValidation(Xv, y))
	_, err = tr.Fit(task.NewLinearRegression(), X, y)
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}
