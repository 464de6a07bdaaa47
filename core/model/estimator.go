package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は1列の目的変数
	Fit(X mat.Matrix, y mat.Vector) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// LinearModel は勾配降下で学習された線形モデルのインターフェース
type LinearModel interface {
	// Coef は学習された係数（切片を除く）を返す
	Coef() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}
