// Standard attribute keys for training runs.
//
// Keys follow a hierarchical naming convention ("training.epoch",
// "metrics.train_cost") so that logs from the driver, the observers and the
// CLI can be filtered the same way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator or task.
	// Examples: "GDRegressor", "LinearRegression"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "descent", "observer.progress", "config"
	ComponentKey = "ml.component"

	// ObserverKey names the observer involved in a dispatch.
	ObserverKey = "observer.name"

	// EventKey names the lifecycle event being dispatched.
	EventKey = "observer.event"
)

// Data shape.
const (
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	BatchSizeKey = "data.batch_size"
)

// Training progress and metrics.
const (
	EpochKey        = "training.epoch"
	BatchKey        = "training.batch"
	StatusKey       = "training.status"
	TotalEpochsKey  = "training.total_epochs"
	StopReasonKey   = "training.stop_reason"
	DurationMsKey   = "perf.duration_ms"
	TrainCostKey    = "metrics.train_cost"
	TrainScoreKey   = "metrics.train_score"
	ValCostKey      = "metrics.val_cost"
	ValScoreKey     = "metrics.val_score"
	GradientNormKey = "metrics.gradient_norm"

	// MetricKey names the metric a tracker or early stop monitors.
	MetricKey = "metrics.monitored"

	// BestValueKey is the best value a tracker has seen so far.
	BestValueKey = "metrics.best"

	// RelativeErrorKey is the gradient check's analytic vs numeric error.
	RelativeErrorKey = "metrics.gradient_relative_error"
)

// Hyperparameters.
const (
	LearningRateKey   = "hyperparams.learning_rate"
	ScheduleKey       = "hyperparams.schedule"
	RegularizationKey = "hyperparams.regularization"
	RandomSeedKey     = "config.random_seed"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidConfig     = "INVALID_CONFIGURATION"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorNumerical         = "NUMERICAL_INSTABILITY"
)
