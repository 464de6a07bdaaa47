// Package descent runs batch and mini-batch gradient descent over a task,
// notifying an ordered list of observers at every lifecycle point.
//
// A run moves NotStarted → Running → Converged | EarlyStopped | Exhausted
// and is then Finished, or Failed if a task, numerical check or observer
// returned an error. TrainEnd is dispatched once in either case.
package descent

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/training"
	"github.com/YuminosukeSato/descent/observer"
	"github.com/YuminosukeSato/descent/performance"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/pkg/log"
	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/schedule"
	"github.com/YuminosukeSato/descent/task"
)

// Trainer holds the configuration of a gradient-descent run. It keeps no
// state between calls to Fit.
type Trainer struct {
	epochs       int
	batchSize    int
	learningRate float64
	seed         int64
	shuffle      bool

	schedule    schedule.Schedule
	regularizer regularizer.Regularizer
	observers   []observer.Observer

	xVal   mat.Matrix
	yVal   mat.Vector
	theta0 mat.Vector

	logger log.Logger
}

// New validates opts and returns a Trainer.
func New(opts ...Option) (*Trainer, error) {
	t := &Trainer{
		epochs:       DefaultEpochs,
		learningRate: DefaultLearningRate,
		shuffle:      true,
		regularizer:  regularizer.NewNil(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.GetLoggerWithName("descent")
	}
	if t.regularizer == nil {
		t.regularizer = regularizer.NewNil()
	}

	if t.epochs < 1 {
		return nil, errors.NewConfigurationError("epochs", "must be at least 1", t.epochs)
	}
	if t.batchSize < 0 {
		return nil, errors.NewConfigurationError("batch_size", "must not be negative", t.batchSize)
	}
	if !(t.learningRate > 0) {
		return nil, errors.NewConfigurationError("learning_rate", "must be positive", t.learningRate)
	}
	if (t.xVal == nil) != (t.yVal == nil) {
		return nil, errors.NewConfigurationError("validation", "X and y must both be set", nil)
	}
	return t, nil
}

// Epochs returns the configured number of epochs.
func (t *Trainer) Epochs() int { return t.epochs }

// run is the per-Fit state.
type run struct {
	t       *Trainer
	task    task.Task
	X       mat.Matrix
	y       mat.Vector
	state   *training.State
	control *observer.Control
	box     *observer.BlackBox
	list    *observer.List
	meta    schedule.Meta
	obj     *objective
	logger  log.Logger
}

// Fit minimizes the task's objective on X, y. X must already contain the
// bias column. A Result is returned together with any error so that
// partial history is available after a failure.
func (t *Trainer) Fit(tk task.Task, X mat.Matrix, y mat.Vector) (*Result, error) {
	theta, err := t.validate(X, y)
	if err != nil {
		return nil, err
	}

	r := &run{
		t:       t,
		task:    tk,
		X:       X,
		y:       y,
		state:   training.NewState(t.epochs, theta, t.learningRate),
		control: observer.NewControl(t.learningRate),
		box:     observer.NewBlackBox(),
		meta:    schedule.Meta{TotalEpochs: t.epochs, Scorer: tk.Scorer()},
		obj:     &objective{task: tk, reg: t.regularizer, X: X, y: y},
		logger:  t.logger.With(log.ModelNameKey, tk.Name()),
	}
	r.list = observer.NewList(r.box)
	if t.schedule != nil {
		r.list.Add(observer.NewLearningRate(t.schedule))
	}
	for _, o := range t.observers {
		r.list.Add(o)
	}

	m, n := X.Dims()
	r.logger.Debug("Training started",
		log.SamplesKey, m,
		log.FeaturesKey, n,
		log.BatchSizeKey, t.batchSize,
		log.TotalEpochsKey, t.epochs,
		log.RegularizationKey, t.regularizer.Name(),
	)

	return r.execute()
}

func (t *Trainer) validate(X mat.Matrix, y mat.Vector) (*mat.VecDense, error) {
	if X == nil || y == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	m, n := X.Dims()
	if m == 0 || n == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if y.Len() != m {
		return nil, errors.NewDataShapeError("Trainer.Fit", []int{m}, []int{y.Len()})
	}
	if t.xVal != nil {
		vm, vn := t.xVal.Dims()
		if vn != n {
			return nil, errors.NewDimensionError("Trainer.Fit", n, vn, 1)
		}
		if t.yVal.Len() != vm {
			return nil, errors.NewDataShapeError("Trainer.Fit", []int{vm}, []int{t.yVal.Len()})
		}
	}
	if t.theta0 == nil {
		return mat.NewVecDense(n, nil), nil
	}
	if t.theta0.Len() != n {
		return nil, errors.NewDataShapeError("Trainer.Fit", []int{n}, []int{t.theta0.Len()})
	}
	return mat.VecDenseCopyOf(t.theta0), nil
}

func (r *run) env(e observer.Event, rec training.LogRecord) *observer.Env {
	return &observer.Env{
		Event:     e,
		State:     r.state.Snapshot(),
		Record:    rec,
		History:   r.box.History().View(),
		Meta:      r.meta,
		Objective: r.obj,
		Control:   r.control,
	}
}

func (r *run) execute() (*Result, error) {
	r.state.Status = training.Running
	err := r.list.Dispatch(r.env(observer.TrainBegin, training.LogRecord{}))
	if err == nil {
		err = r.loop()
	}

	if err != nil {
		r.state.Status = training.Failed
		r.state.StopReason = err.Error()
	} else if r.state.Status == training.Running {
		r.state.Status = training.Exhausted
		r.warnIfNotConverged()
	}
	r.state.Outcome = r.state.Status

	if endErr := r.list.DispatchAll(r.env(observer.TrainEnd, training.LogRecord{})); endErr != nil {
		if err == nil {
			err = endErr
			r.state.Outcome = training.Failed
			r.state.StopReason = endErr.Error()
		} else {
			err = errors.WithSecondaryError(err, endErr)
		}
	}

	if err != nil {
		r.state.Status = training.Failed
		r.logger.Error("Training failed", err,
			log.EpochKey, r.state.Epoch,
			log.BatchKey, r.state.Batch,
		)
	} else {
		r.state.Status = training.Finished
	}
	return r.result(), err
}

func (r *run) loop() error {
	b := newBatcher(r.X, r.y, r.t.batchSize, r.t.shuffle, r.t.seed)
	for epoch := 1; epoch <= r.t.epochs; epoch++ {
		r.state.Epoch = epoch
		r.state.Batch = 0
		r.state.LearningRate = r.control.LearningRate()
		if err := r.list.Dispatch(r.env(observer.EpochBegin, training.LogRecord{})); err != nil {
			return err
		}

		for i, bt := range b.epoch() {
			r.state.Batch = i + 1
			r.state.LearningRate = r.control.LearningRate()
			if err := r.list.Dispatch(r.env(observer.BatchBegin, training.LogRecord{})); err != nil {
				return err
			}
			rec, err := r.step(bt)
			if err != nil {
				return err
			}
			if err := r.list.Dispatch(r.env(observer.BatchEnd, rec)); err != nil {
				return err
			}
		}

		rec, err := r.epochRecord()
		if err != nil {
			return err
		}
		if err := r.list.Dispatch(r.env(observer.EpochEnd, rec)); err != nil {
			return err
		}

		if r.control.StopRequested() {
			r.state.Status = r.control.StopStatus()
			r.state.StopReason = r.control.StopReason()
			r.logger.Info("Training stopped",
				log.EpochKey, epoch,
				log.StatusKey, r.state.Status.String(),
				log.ObserverKey, r.control.StoppedBy(),
				log.StopReasonKey, r.state.StopReason,
			)
			return nil
		}
	}
	return nil
}

// step applies one update θ ← θ − η·∇ on a batch and returns its record.
func (r *run) step(bt batch) (training.LogRecord, error) {
	theta := r.state.Theta
	epoch := r.state.Epoch
	eta := r.state.LearningRate

	c, err := cost(r.task, r.t.regularizer, bt.X, bt.y, theta)
	if err != nil {
		return training.LogRecord{}, err
	}
	if err := errors.CheckScalar("batch cost", c, epoch); err != nil {
		return training.LogRecord{}, err
	}
	g, err := gradient(r.task, r.t.regularizer, bt.X, bt.y, theta)
	if err != nil {
		return training.LogRecord{}, err
	}
	if err := errors.CheckVector("batch gradient", g, epoch); err != nil {
		return training.LogRecord{}, err
	}

	theta.AddScaledVec(theta, -eta, g)

	rows, _ := bt.X.Dims()
	return training.NewRecordBuilder().
		Scalar(training.KeyEpoch, float64(epoch)).
		Scalar(training.KeyBatch, float64(r.state.Batch)).
		Scalar(training.KeyBatchSize, float64(rows)).
		Scalar(training.KeyLearningRate, eta).
		Scalar(training.KeyTrainCost, c).
		Scalar(training.KeyGradientNorm, mat.Norm(g, 2)).
		Vector(training.KeyTheta, theta).
		Vector(training.KeyGradient, g).
		Build(), nil
}

// epochRecord evaluates the objective on the full training data and, when
// configured, on the validation data with θ at the end of the epoch.
func (r *run) epochRecord() (training.LogRecord, error) {
	theta := r.state.Theta
	epoch := r.state.Epoch

	c, err := r.obj.Cost(theta)
	if err != nil {
		return training.LogRecord{}, err
	}
	if err := errors.CheckScalar("train cost", c, epoch); err != nil {
		return training.LogRecord{}, err
	}
	g, err := r.obj.Gradient(theta)
	if err != nil {
		return training.LogRecord{}, err
	}
	if err := errors.CheckVector("gradient", g, epoch); err != nil {
		return training.LogRecord{}, err
	}

	b := training.NewRecordBuilder().
		Scalar(training.KeyEpoch, float64(epoch)).
		Scalar(training.KeyLearningRate, r.state.LearningRate).
		Scalar(training.KeyTrainCost, c).
		Scalar(training.KeyGradientNorm, mat.Norm(g, 2)).
		Vector(training.KeyTheta, theta).
		Vector(training.KeyGradient, g)

	scorer := r.task.Scorer()
	if scorer.Func != nil {
		s, err := r.score(r.X, r.y, theta)
		if err != nil {
			return training.LogRecord{}, err
		}
		b.Scalar(training.KeyTrainScore, s)
	}

	if r.t.xVal != nil {
		vc, err := cost(r.task, r.t.regularizer, r.t.xVal, r.t.yVal, theta)
		if err != nil {
			return training.LogRecord{}, err
		}
		b.Scalar(training.KeyValCost, vc)
		if scorer.Func != nil {
			vs, err := r.score(r.t.xVal, r.t.yVal, theta)
			if err != nil {
				return training.LogRecord{}, err
			}
			b.Scalar(training.KeyValScore, vs)
		}
	}
	return b.Build(), nil
}

func (r *run) score(X mat.Matrix, y, theta mat.Vector) (float64, error) {
	yHat, err := r.task.Predict(X, theta)
	if err != nil {
		return 0, err
	}
	return r.task.Scorer().Score(y, yHat)
}

// warnIfNotConverged raises a ConvergenceWarning when a stopping observer
// was configured but never fired.
func (r *run) warnIfNotConverged() {
	for _, o := range r.list.Observers() {
		if _, ok := o.(*observer.EarlyStop); ok {
			errors.Warn(errors.NewConvergenceWarning(r.task.Name(), r.t.epochs,
				fmt.Sprintf("%s did not trigger; consider more epochs or a larger learning rate", o.Name())))
			return
		}
	}
}

func (r *run) result() *Result {
	hist := r.box.History()
	res := &Result{
		Task:       r.task.Name(),
		Scorer:     r.task.Scorer(),
		Theta:      mat.VecDenseCopyOf(r.state.Theta),
		Epochs:     hist.EpochsCompleted(),
		Status:     r.state.Outcome,
		StopReason: r.state.StopReason,
		StoppedBy:  r.control.StoppedBy(),
		History:    hist,
		Duration:   hist.Duration(),
		Trackers:   make(map[string]*performance.Tracker),
	}
	for _, o := range r.list.Observers() {
		if tr, ok := o.(interface{ Tracker() *performance.Tracker }); ok && tr.Tracker() != nil {
			res.Trackers[o.Name()] = tr.Tracker()
		}
	}
	return res
}
