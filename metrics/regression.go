// Package metrics provides the regression and classification metrics used
// as task scorers and reported at the end of a training run.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// vecLen はnilポインタを含むベクトルの長さを安全に返す
func vecLen(v mat.Vector) int {
	if v == nil {
		return 0
	}
	if vd, ok := v.(*mat.VecDense); ok && vd == nil {
		return 0
	}
	return v.Len()
}

// checkPair は入力ベクトルの空・長さ不一致を検証する
func checkPair(op string, yTrue, yPred mat.Vector) (int, error) {
	n := vecLen(yTrue)
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if m := vecLen(yPred); m != n {
		return 0, errors.NewDimensionError(op, n, m, 0)
	}
	return n, nil
}

// toSlice はベクトルをスライスにコピーする
func toSlice(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// residuals は yTrue - yPred を返す
func residuals(yTrue, yPred mat.Vector) []float64 {
	r := toSlice(yTrue)
	floats.Sub(r, toSlice(yPred))
	return r
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r := residuals(yTrue, yPred)
	return floats.Dot(r, r) / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(residuals(yTrue, yPred), 1) / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	if _, err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	y := toSlice(yTrue)
	mean := stat.Mean(y, nil)

	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}

	r := residuals(yTrue, yPred)
	return 1 - floats.Dot(r, r)/tss, nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
// 1 - Var(yTrue - yPred) / Var(yTrue)
func ExplainedVarianceScore(yTrue, yPred mat.Vector) (float64, error) {
	if _, err := checkPair("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}

	_, varY := stat.PopMeanVariance(toSlice(yTrue), nil)
	if varY == 0 {
		return 0, errors.Newf("ExplainedVarianceScore: no variance in yTrue")
	}
	_, varR := stat.PopMeanVariance(residuals(yTrue, yPred), nil)
	return 1 - varR/varY, nil
}
