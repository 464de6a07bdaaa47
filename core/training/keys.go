package training

// Record keys. Scalar keys hold float64 values, vector keys hold copies of
// parameter-sized vectors.
const (
	KeyEpoch        = "epoch"
	KeyBatch        = "batch"
	KeyBatchSize    = "batch_size"
	KeyLearningRate = "learning_rate"
	KeyTrainCost    = "train_cost"
	KeyTrainScore   = "train_score"
	KeyValCost      = "val_cost"
	KeyValScore     = "val_score"
	KeyGradientNorm = "gradient_norm"

	KeyTheta    = "theta"
	KeyGradient = "gradient"
)

// IsCostMetric reports whether lower values of the metric are better
// regardless of the scorer.
func IsCostMetric(key string) bool {
	switch key {
	case KeyTrainCost, KeyValCost, KeyGradientNorm, KeyTheta:
		return true
	}
	return false
}

// IsScoreMetric reports whether the metric's direction is given by the
// task scorer.
func IsScoreMetric(key string) bool {
	return key == KeyTrainScore || key == KeyValScore
}
