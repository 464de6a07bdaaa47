package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

func TestStateManager(t *testing.T) {
	sm := NewStateManager()

	err := sm.RequireFitted("GDRegressor", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	sm.SetDimensions(3, 100)
	sm.SetEpochs(42)
	sm.SetFitted()

	assert.NoError(t, sm.RequireFitted("GDRegressor", "Predict"))
	assert.NoError(t, sm.RequireFeatures("Predict", 3))

	err = sm.RequireFeatures("Predict", 4)
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 3, dim.Expected)
	assert.Equal(t, 4, dim.Got)

	assert.Equal(t, ModelState{Fitted: true, NFeatures: 3, NSamples: 100, NEpochs: 42}, sm.GetState())

	sm.Reset()
	assert.False(t, sm.IsFitted())
	assert.Equal(t, 0, sm.Epochs())
}

func TestModelWeightsFromTheta(t *testing.T) {
	theta := mat.NewVecDense(3, []float64{0.5, 2, -1})
	mw := NewModelWeights("GDRegressor", theta)

	assert.True(t, mw.IsFitted)
	assert.Equal(t, 0.5, mw.Intercept)
	assert.Equal(t, []float64{2, -1}, mw.Coefficients)
	assert.NoError(t, mw.Validate())
	assert.True(t, mat.Equal(theta, mw.Theta()))

	clone := mw.Clone()
	clone.Coefficients[0] = 99
	assert.Equal(t, 2.0, mw.Coefficients[0], "clone must not share coefficient storage")
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights ModelWeights
		wantErr bool
	}{
		{"valid", ModelWeights{ModelType: "GDClassifier", Version: WeightsVersion, Coefficients: []float64{1}, IsFitted: true}, false},
		{"missing type", ModelWeights{Version: WeightsVersion}, true},
		{"missing version", ModelWeights{ModelType: "GDClassifier"}, true},
		{"fitted without coefficients", ModelWeights{ModelType: "x", Version: "1", IsFitted: true}, true},
		{"unfitted with coefficients", ModelWeights{ModelType: "x", Version: "1", Coefficients: []float64{1}}, true},
		{"feature name count mismatch", ModelWeights{ModelType: "x", Version: "1", Coefficients: []float64{1}, Features: []string{"a", "b"}, IsFitted: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeightsJSONFile(t *testing.T) {
	mw := NewModelWeights("GDRegressor", mat.NewVecDense(2, []float64{1, 3}))
	mw.Hyperparameters["epochs"] = 100
	mw.Metadata["status"] = "Converged"

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, SaveWeights(mw, path))

	loaded, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, mw.Coefficients, loaded.Coefficients)
	assert.Equal(t, mw.Intercept, loaded.Intercept)
	assert.Equal(t, "Converged", loaded.Metadata["status"])
	assert.Equal(t, 100.0, loaded.Hyperparameters["epochs"])
}
