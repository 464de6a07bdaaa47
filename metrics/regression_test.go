package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

func TestRegressionMetrics(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -1, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2, -1, 4, 6})
	// residuals 1, 0, -2, 1

	tests := []struct {
		name string
		fn   ScoreFunc
		want float64
	}{
		{"mse", MSE, 6.0 / 4},
		{"rmse", RMSE, math.Sqrt(6.0 / 4)},
		{"mae", MAE, 4.0 / 4},
		// mean 2.75, total sum of squares 34.75
		{"r2", R2Score, 1 - 6/34.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			// a perfect fit is the best value of every regression metric
			best, err := tt.fn(yTrue, yTrue)
			require.NoError(t, err)
			s, err := ScorerByName(tt.name)
			require.NoError(t, err)
			assert.False(t, s.Better(got, best))
		})
	}
}

func TestRegressionShapeErrors(t *testing.T) {
	short := mat.NewVecDense(2, []float64{1, 2})
	long := mat.NewVecDense(3, []float64{1, 2, 3})

	for _, fn := range []ScoreFunc{MSE, RMSE, MAE, R2Score, ExplainedVarianceScore} {
		_, err := fn(long, short)
		var de *errors.DimensionError
		require.True(t, errors.As(err, &de), "got %v", err)
		assert.Equal(t, 3, de.Expected)
		assert.Equal(t, 2, de.Got)

		_, err = fn(nil, nil)
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve), "got %v", err)

		var empty *mat.VecDense
		_, err = fn(empty, short)
		assert.True(t, errors.As(err, &ve), "got %v", err)
	}
}

func TestR2ConstantTarget(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{5, 5, 5})
	yPred := mat.NewVecDense(3, []float64{5, 5, 5})

	// no variance to explain, even for a perfect fit
	_, err := R2Scorer.Score(yTrue, yPred)
	assert.Error(t, err)
	_, err = ExplainedVarianceScorer.Score(yTrue, yPred)
	assert.Error(t, err)

	// error metrics are still defined
	got, err := MSEScorer.Score(yTrue, yPred)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestR2BelowZero(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	// worse than predicting the mean
	got, err := R2Score(yTrue, mat.NewVecDense(3, []float64{3, 2, 1}))
	require.NoError(t, err)
	assert.InDelta(t, -3.0, got, 1e-12)

	mean, err := R2Score(yTrue, mat.NewVecDense(3, []float64{2, 2, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mean, 1e-12)
	assert.True(t, R2Scorer.Better(mean, got))
}

func TestScorerPolarity(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	near := mat.NewVecDense(4, []float64{1.1, 2, 3, 3.9})
	far := mat.NewVecDense(4, []float64{2, 1, 4, 2})

	for _, name := range []string{"r2", "explained_variance", "mse", "rmse", "mae"} {
		t.Run(name, func(t *testing.T) {
			s, err := ScorerByName(name)
			require.NoError(t, err)
			good, err := s.Score(yTrue, near)
			require.NoError(t, err)
			bad, err := s.Score(yTrue, far)
			require.NoError(t, err)

			assert.True(t, s.Better(good, bad))
			assert.False(t, s.Better(bad, good))
			assert.Equal(t, s.HigherIsBetter, good > bad)
		})
	}
}

func BenchmarkMSE(b *testing.B) {
	n := 1000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.5)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
