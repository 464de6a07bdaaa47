package descent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/regularizer"
	"github.com/YuminosukeSato/descent/task"
)

// objective is a task's cost plus the regularizer's penalty on fixed data.
type objective struct {
	task task.Task
	reg  regularizer.Regularizer
	X    mat.Matrix
	y    mat.Vector
}

func (o *objective) Cost(theta mat.Vector) (float64, error) {
	return cost(o.task, o.reg, o.X, o.y, theta)
}

func (o *objective) Gradient(theta mat.Vector) (*mat.VecDense, error) {
	return gradient(o.task, o.reg, o.X, o.y, theta)
}

func cost(tk task.Task, reg regularizer.Regularizer, X mat.Matrix, y, theta mat.Vector) (float64, error) {
	c, err := tk.Cost(X, y, theta)
	if err != nil {
		return 0, err
	}
	return c + reg.Cost(theta), nil
}

func gradient(tk task.Task, reg regularizer.Regularizer, X mat.Matrix, y, theta mat.Vector) (*mat.VecDense, error) {
	g, err := tk.Gradient(X, y, theta)
	if err != nil {
		return nil, err
	}
	g.AddVec(g, reg.Gradient(theta))
	return g, nil
}
