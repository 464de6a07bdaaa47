// Package linear_model provides scikit-learn style estimators trained by the
// descent engine.
package linear_model

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/model"
	"github.com/YuminosukeSato/descent/descent"
	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/schedule"
	"github.com/YuminosukeSato/descent/task"
)

// params holds the hyperparameters shared by the GD estimators.
type params struct {
	epochs       int
	batchSize    int
	learningRate float64
	randomState  int64
	shuffle      bool

	schedule    schedule.Schedule
	regularizer regularizer.Regularizer
	observers   []observer.Observer

	earlyStop          bool
	stopMetric         string
	stopPatience       int
	stopEpsilon        float64
	validationFraction float64

	checkpoint int
}

// Option is a functional option for GDRegressor and GDClassifier.
type Option func(*params)

// WithEpochs sets the number of epochs.
func WithEpochs(n int) Option {
	return func(p *params) { p.epochs = n }
}

// WithBatchSize sets the mini-batch size; zero trains on the full batch.
func WithBatchSize(n int) Option {
	return func(p *params) { p.batchSize = n }
}

// WithLearningRate sets the constant learning rate.
func WithLearningRate(eta float64) Option {
	return func(p *params) { p.learningRate = eta }
}

// WithSchedule replaces the constant learning rate with s.
func WithSchedule(s schedule.Schedule) Option {
	return func(p *params) { p.schedule = s }
}

// WithRegularizer sets the penalty.
func WithRegularizer(r regularizer.Regularizer) Option {
	return func(p *params) { p.regularizer = r }
}

// WithObservers appends observers after the estimator's own.
func WithObservers(obs ...observer.Observer) Option {
	return func(p *params) { p.observers = append(p.observers, obs...) }
}

// WithRandomState seeds shuffling and the validation split.
func WithRandomState(seed int64) Option {
	return func(p *params) { p.randomState = seed }
}

// WithShuffle toggles per-epoch shuffling of mini-batches.
func WithShuffle(shuffle bool) Option {
	return func(p *params) { p.shuffle = shuffle }
}

// WithEarlyStopping stops training when metric stalls for patience epochs.
func WithEarlyStopping(metric string, patience int, epsilon float64) Option {
	return func(p *params) {
		p.earlyStop = true
		p.stopMetric = metric
		p.stopPatience = patience
		p.stopEpsilon = epsilon
	}
}

// WithValidationFraction holds out a fraction of the training rows to
// compute val_cost and val_score.
func WithValidationFraction(f float64) Option {
	return func(p *params) { p.validationFraction = f }
}

// WithProgress logs metrics every checkpoint epochs.
func WithProgress(checkpoint int) Option {
	return func(p *params) { p.checkpoint = checkpoint }
}

func defaultParams() params {
	return params{
		epochs:       descent.DefaultEpochs,
		learningRate: descent.DefaultLearningRate,
		shuffle:      true,
		regularizer:  regularizer.NewNil(),
	}
}

// gd is the state shared by the estimators.
type gd struct {
	name     string
	p        params
	state    *model.StateManager
	theta    *mat.VecDense
	result   *descent.Result
	imported *model.ModelWeights // private copy kept by ImportWeights
	task     task.Task
	logger   log.Logger
}

func newGD(name string, t task.Task, opts []Option) gd {
	p := defaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return gd{
		name:   name,
		p:      p,
		state:  model.NewStateManager(),
		task:   t,
		logger: log.GetLoggerWithName(name),
	}
}

// fit trains on X (without bias column) and targets y already encoded for
// the task.
func (g *gd) fit(X mat.Matrix, y mat.Vector) error {
	if X == nil || y == nil {
		return errors.WithStack(errors.ErrEmptyData)
	}
	m, n := X.Dims()
	if m == 0 || n == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if y.Len() != m {
		return errors.NewDataShapeError(g.name+".Fit", []int{m}, []int{y.Len()})
	}
	if g.p.validationFraction < 0 || g.p.validationFraction >= 1 {
		return errors.NewConfigurationError("validation_fraction", "must be in [0, 1)", g.p.validationFraction)
	}

	Xb := task.AddBias(X)
	var Xtr, Xval *mat.Dense
	var ytr, yval *mat.VecDense
	if g.p.validationFraction > 0 {
		Xtr, ytr, Xval, yval = split(Xb, y, g.p.validationFraction, g.p.randomState)
	} else {
		Xtr, ytr = Xb, mat.VecDenseCopyOf(y)
	}

	opts := []descent.Option{
		descent.WithEpochs(g.p.epochs),
		descent.WithBatchSize(g.p.batchSize),
		descent.WithLearningRate(g.p.learningRate),
		descent.WithRandomState(g.p.randomState),
		descent.WithShuffle(g.p.shuffle),
		descent.WithRegularizer(g.p.regularizer),
		descent.WithLogger(g.logger),
	}
	if g.p.schedule != nil {
		opts = append(opts, descent.WithSchedule(g.p.schedule))
	}
	if Xval != nil {
		opts = append(opts, descent.WithValidation(Xval, yval))
	}
	if g.p.earlyStop {
		es, err := observer.NewEarlyStop(
			observer.WithStopMetric(g.p.stopMetric),
			observer.WithStopPatience(g.p.stopPatience),
			observer.WithStopEpsilon(g.p.stopEpsilon),
		)
		if err != nil {
			return err
		}
		opts = append(opts, descent.WithObservers(es))
	}
	if g.p.checkpoint > 0 {
		opts = append(opts, descent.WithObservers(observer.NewProgress(
			observer.WithCheckpoint(g.p.checkpoint),
			observer.WithProgressLogger(g.logger),
		)))
	}
	opts = append(opts, descent.WithObservers(g.p.observers...))

	trainer, err := descent.New(opts...)
	if err != nil {
		return err
	}

	g.state.Reset()
	g.imported = nil
	res, err := trainer.Fit(g.task, Xtr, ytr)
	g.result = res
	if err != nil {
		return errors.Wrapf(err, "%s.Fit", g.name)
	}

	g.theta = res.Theta
	g.state.SetDimensions(n, m)
	g.state.SetEpochs(res.Epochs)
	g.state.SetFitted()
	return nil
}

// split shuffles rows with seed and holds out frac of them.
func split(X *mat.Dense, y mat.Vector, frac float64, seed int64) (*mat.Dense, *mat.VecDense, *mat.Dense, *mat.VecDense) {
	m, n := X.Dims()
	nVal := int(float64(m) * frac)
	if nVal < 1 {
		nVal = 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(m)

	take := func(idx []int) (*mat.Dense, *mat.VecDense) {
		Xs := mat.NewDense(len(idx), n, nil)
		ys := mat.NewVecDense(len(idx), nil)
		for i, r := range idx {
			Xs.SetRow(i, X.RawRowView(r))
			ys.SetVec(i, y.AtVec(r))
		}
		return Xs, ys
	}
	Xtr, ytr := take(perm[nVal:])
	Xval, yval := take(perm[:nVal])
	return Xtr, ytr, Xval, yval
}

// design validates X against the fitted state and adds the bias column.
func (g *gd) design(X mat.Matrix, method string) (*mat.Dense, error) {
	if err := g.state.RequireFitted(g.name, method); err != nil {
		return nil, err
	}
	_, n := X.Dims()
	if err := g.state.RequireFeatures(g.name+"."+method, n); err != nil {
		return nil, err
	}
	return task.AddBias(X), nil
}

// IsFitted reports whether Fit has succeeded.
func (g *gd) IsFitted() bool { return g.state.IsFitted() }

// Coef returns the fitted coefficients without the intercept.
func (g *gd) Coef() []float64 {
	if g.theta == nil {
		return nil
	}
	out := make([]float64, g.theta.Len()-1)
	for i := range out {
		out[i] = g.theta.AtVec(i + 1)
	}
	return out
}

// Intercept returns the fitted intercept.
func (g *gd) Intercept() float64 {
	if g.theta == nil {
		return 0
	}
	return g.theta.AtVec(0)
}

// Theta returns a copy of the fitted parameters, intercept first.
func (g *gd) Theta() *mat.VecDense {
	if g.theta == nil {
		return nil
	}
	return mat.VecDenseCopyOf(g.theta)
}

// Result returns the outcome of the last Fit, including failed ones.
func (g *gd) Result() *descent.Result { return g.result }

// GetParams returns the hyperparameters.
func (g *gd) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"epochs":              g.p.epochs,
		"batch_size":          g.p.batchSize,
		"learning_rate":       g.p.learningRate,
		"random_state":        g.p.randomState,
		"shuffle":             g.p.shuffle,
		"regularizer":         g.p.regularizer.Name(),
		"early_stopping":      g.p.earlyStop,
		"validation_fraction": g.p.validationFraction,
	}
	if g.p.schedule != nil {
		params["schedule"] = g.p.schedule.Name()
	}
	if g.p.earlyStop {
		params["stop_metric"] = g.p.stopMetric
		params["stop_patience"] = g.p.stopPatience
		params["stop_epsilon"] = g.p.stopEpsilon
	}
	return params
}

// ExportWeights returns the fitted parameters with run metadata.
func (g *gd) ExportWeights() (*model.ModelWeights, error) {
	if err := g.state.RequireFitted(g.name, "ExportWeights"); err != nil {
		return nil, err
	}
	if g.result == nil && g.imported != nil {
		return g.imported.Clone(), nil
	}
	mw := model.NewModelWeights(g.name, g.theta)
	mw.Hyperparameters = g.GetParams()
	if g.result != nil {
		mw.Metadata["epochs"] = g.result.Epochs
		mw.Metadata["status"] = g.result.Status.String()
		if c, ok := g.result.Final("train_cost"); ok {
			mw.Metadata["train_cost"] = c
		}
	}
	return mw, nil
}

// ImportWeights restores fitted parameters exported by ExportWeights.
func (g *gd) ImportWeights(mw *model.ModelWeights) error {
	if mw == nil {
		return errors.NewValueError(g.name+".ImportWeights", "weights are nil")
	}
	if err := mw.Validate(); err != nil {
		return err
	}
	if mw.ModelType != g.name {
		return errors.NewValueError(g.name+".ImportWeights", "weights were exported by "+mw.ModelType)
	}
	g.imported = mw.Clone()
	g.theta = g.imported.Theta()
	g.result = nil
	g.state.SetState(model.ModelState{
		Fitted:    true,
		NFeatures: len(mw.Coefficients),
		NEpochs:   metadataInt(mw.Metadata["epochs"]),
	})
	return nil
}

// metadataInt reads an integer written by ExportWeights, before or after a
// JSON round trip.
func metadataInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
