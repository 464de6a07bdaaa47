package descent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/pkg/log"
	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/schedule"
)

// Defaults.
const (
	DefaultEpochs       = 1000
	DefaultLearningRate = 0.01
)

// Option configures a Trainer.
type Option func(*Trainer)

// WithEpochs sets the number of epochs to run.
func WithEpochs(n int) Option {
	return func(t *Trainer) { t.epochs = n }
}

// WithBatchSize sets the mini-batch size. Zero means full batch.
func WithBatchSize(n int) Option {
	return func(t *Trainer) { t.batchSize = n }
}

// WithLearningRate sets the constant learning rate used when no schedule
// is configured.
func WithLearningRate(eta float64) Option {
	return func(t *Trainer) { t.learningRate = eta }
}

// WithSchedule drives the learning rate from s. The schedule observer is
// registered ahead of the observers given with WithObservers; register an
// observer.LearningRate yourself to control its position.
func WithSchedule(s schedule.Schedule) Option {
	return func(t *Trainer) { t.schedule = s }
}

// WithRegularizer adds a penalty to the objective.
func WithRegularizer(r regularizer.Regularizer) Option {
	return func(t *Trainer) { t.regularizer = r }
}

// WithObservers appends observers in dispatch order.
func WithObservers(obs ...observer.Observer) Option {
	return func(t *Trainer) { t.observers = append(t.observers, obs...) }
}

// WithValidation evaluates val_cost and val_score on X, y every epoch.
func WithValidation(X mat.Matrix, y mat.Vector) Option {
	return func(t *Trainer) { t.xVal, t.yVal = X, y }
}

// WithInitialTheta starts from theta instead of zeros.
func WithInitialTheta(theta mat.Vector) Option {
	return func(t *Trainer) { t.theta0 = theta }
}

// WithRandomState seeds mini-batch shuffling.
func WithRandomState(seed int64) Option {
	return func(t *Trainer) { t.seed = seed }
}

// WithShuffle toggles shuffling of mini-batches each epoch.
func WithShuffle(shuffle bool) Option {
	return func(t *Trainer) { t.shuffle = shuffle }
}

// WithLogger replaces the trainer's logger.
func WithLogger(l log.Logger) Option {
	return func(t *Trainer) { t.logger = l }
}
