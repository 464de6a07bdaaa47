// Package regularizer provides the penalty terms added to a task's cost and
// gradient. Element 0 of θ is the bias and is never penalised.
package regularizer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// Regularizer computes a penalty and its gradient over θ.
// Gradient returns a vector of θ's length whose element 0 is zero.
type Regularizer interface {
	Name() string
	Cost(theta mat.Vector) float64
	Gradient(theta mat.Vector) *mat.VecDense
}

// Nil applies no penalty.
type Nil struct{}

// NewNil returns the no-op regularizer.
func NewNil() Nil { return Nil{} }

func (Nil) Name() string { return "None" }

func (Nil) Cost(mat.Vector) float64 { return 0 }

func (Nil) Gradient(theta mat.Vector) *mat.VecDense {
	return mat.NewVecDense(theta.Len(), nil)
}

// L1 is the lasso penalty α·Σ|θᵢ|.
type L1 struct {
	alpha float64
}

// NewL1 returns an L1 regularizer. alpha must be positive.
func NewL1(alpha float64) (*L1, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	return &L1{alpha: alpha}, nil
}

func (r *L1) Name() string   { return "Lasso (L1)" }
func (r *L1) Alpha() float64 { return r.alpha }

func (r *L1) Cost(theta mat.Vector) float64 {
	return r.alpha * absSum(theta)
}

func (r *L1) Gradient(theta mat.Vector) *mat.VecDense {
	g := mat.NewVecDense(theta.Len(), nil)
	for i := 1; i < theta.Len(); i++ {
		g.SetVec(i, r.alpha*sign(theta.AtVec(i)))
	}
	return g
}

// L2 is the ridge penalty α/2·Σθᵢ², whose gradient is α·θ.
type L2 struct {
	alpha float64
}

// NewL2 returns an L2 regularizer. alpha must be positive.
func NewL2(alpha float64) (*L2, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	return &L2{alpha: alpha}, nil
}

func (r *L2) Name() string   { return "Ridge (L2)" }
func (r *L2) Alpha() float64 { return r.alpha }

func (r *L2) Cost(theta mat.Vector) float64 {
	return r.alpha / 2 * sqSum(theta)
}

func (r *L2) Gradient(theta mat.Vector) *mat.VecDense {
	g := mat.NewVecDense(theta.Len(), nil)
	for i := 1; i < theta.Len(); i++ {
		g.SetVec(i, r.alpha*theta.AtVec(i))
	}
	return g
}

// ElasticNet mixes L1 and L2 by ratio:
// α·(r·Σ|θᵢ| + (1−r)/2·Σθᵢ²).
type ElasticNet struct {
	alpha float64
	ratio float64
}

// NewElasticNet returns an elastic-net regularizer. alpha must be positive
// and ratio in [0, 1].
func NewElasticNet(alpha, ratio float64) (*ElasticNet, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return nil, errors.NewConfigurationError("ratio", "must be in [0, 1]", ratio)
	}
	return &ElasticNet{alpha: alpha, ratio: ratio}, nil
}

func (r *ElasticNet) Name() string   { return "ElasticNet (L1_L2)" }
func (r *ElasticNet) Alpha() float64 { return r.alpha }
func (r *ElasticNet) Ratio() float64 { return r.ratio }

func (r *ElasticNet) Cost(theta mat.Vector) float64 {
	return r.alpha * (r.ratio*absSum(theta) + (1-r.ratio)/2*sqSum(theta))
}

func (r *ElasticNet) Gradient(theta mat.Vector) *mat.VecDense {
	g := mat.NewVecDense(theta.Len(), nil)
	for i := 1; i < theta.Len(); i++ {
		t := theta.AtVec(i)
		g.SetVec(i, r.alpha*(r.ratio*sign(t)+(1-r.ratio)*t))
	}
	return g
}

// New builds a regularizer by name: "none", "l1", "l2" or "elasticnet".
func New(name string, alpha, ratio float64) (Regularizer, error) {
	switch name {
	case "", "none", "nil":
		return NewNil(), nil
	case "l1", "lasso":
		return NewL1(alpha)
	case "l2", "ridge":
		return NewL2(alpha)
	case "elasticnet", "l1_l2":
		return NewElasticNet(alpha, ratio)
	default:
		return nil, errors.NewConfigurationError("regularizer", "must be one of none, l1, l2, elasticnet", name)
	}
}

func validateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || alpha <= 0 {
		return errors.NewConfigurationError("alpha", "must be > 0", alpha)
	}
	return nil
}

// absSum is Σ|θᵢ| over i ≥ 1.
func absSum(theta mat.Vector) float64 {
	var s float64
	for i := 1; i < theta.Len(); i++ {
		s += math.Abs(theta.AtVec(i))
	}
	return s
}

// sqSum is Σθᵢ² over i ≥ 1.
func sqSum(theta mat.Vector) float64 {
	var s float64
	for i := 1; i < theta.Len(); i++ {
		t := theta.AtVec(i)
		s += t * t
	}
	return s
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
