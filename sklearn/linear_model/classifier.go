package linear_model

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/core/model"
	"github.com/YuminosukeSato/descent/pkg/errors"
	"github.com/YuminosukeSato/descent/task"
)

// GDClassifier is binary logistic regression fitted by gradient descent.
// Any two label values are accepted; the smaller one is the negative class.
type GDClassifier struct {
	gd
	logistic *task.LogisticRegression
	classes  []float64
}

var _ model.Classifier = (*GDClassifier)(nil)

// NewGDClassifier returns an unfitted classifier.
func NewGDClassifier(opts ...Option) *GDClassifier {
	lr := task.NewLogisticRegression()
	return &GDClassifier{gd: newGD("GDClassifier", lr, opts), logistic: lr}
}

// Fit trains the classifier. y must contain exactly two distinct labels.
func (c *GDClassifier) Fit(X mat.Matrix, y mat.Vector) error {
	if y == nil {
		return errors.WithStack(errors.ErrEmptyData)
	}
	classes := uniqueLabels(y)
	if len(classes) != 2 {
		return errors.NewValueError("GDClassifier.Fit", "exactly two classes are required")
	}

	encoded := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		if y.AtVec(i) == classes[1] {
			encoded.SetVec(i, 1)
		}
	}
	if err := c.fit(X, encoded); err != nil {
		return err
	}
	c.classes = classes
	return nil
}

// Classes returns the two labels seen in Fit, negative first.
func (c *GDClassifier) Classes() []float64 {
	return append([]float64(nil), c.classes...)
}

// PredictProba returns the probability of the positive class.
func (c *GDClassifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	Xb, err := c.design(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	return c.logistic.PredictProba(Xb, c.theta)
}

// Predict returns the predicted labels in the original encoding.
func (c *GDClassifier) Predict(X mat.Matrix) (*mat.VecDense, error) {
	Xb, err := c.design(X, "Predict")
	if err != nil {
		return nil, err
	}
	pred, err := c.logistic.Predict(Xb, c.theta)
	if err != nil {
		return nil, err
	}
	for i := 0; i < pred.Len(); i++ {
		pred.SetVec(i, c.label(pred.AtVec(i)))
	}
	return pred, nil
}

// Score returns the accuracy of the predictions on X.
func (c *GDClassifier) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yHat, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	return c.task.Scorer().Score(y, yHat)
}

func (c *GDClassifier) label(encoded float64) float64 {
	if len(c.classes) != 2 {
		return encoded
	}
	if encoded == 1 {
		return c.classes[1]
	}
	return c.classes[0]
}

func uniqueLabels(y mat.Vector) []float64 {
	seen := make(map[float64]struct{})
	for i := 0; i < y.Len(); i++ {
		seen[y.AtVec(i)] = struct{}{}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// ExportWeights adds the class labels to the exported metadata.
func (c *GDClassifier) ExportWeights() (*model.ModelWeights, error) {
	mw, err := c.gd.ExportWeights()
	if err != nil {
		return nil, err
	}
	mw.Metadata["classes"] = c.Classes()
	return mw, nil
}

// ImportWeights restores parameters and class labels. Weights without
// labels are assumed to use 0 and 1.
func (c *GDClassifier) ImportWeights(mw *model.ModelWeights) error {
	if err := c.gd.ImportWeights(mw); err != nil {
		return err
	}
	c.classes = []float64{0, 1}
	switch v := mw.Metadata["classes"].(type) {
	case []float64:
		if len(v) == 2 {
			c.classes = append([]float64(nil), v...)
		}
	case []interface{}:
		if len(v) == 2 {
			a, ok1 := v[0].(float64)
			b, ok2 := v[1].(float64)
			if ok1 && ok2 {
				c.classes = []float64{a, b}
			}
		}
	}
	return nil
}
