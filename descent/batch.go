package descent

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// batcher splits rows of X, y into mini-batches.
type batcher struct {
	X       mat.Matrix
	y       mat.Vector
	size    int
	shuffle bool
	rng     *rand.Rand
}

type batch struct {
	X mat.Matrix
	y mat.Vector
}

func newBatcher(X mat.Matrix, y mat.Vector, size int, shuffle bool, seed int64) *batcher {
	m, _ := X.Dims()
	if size <= 0 || size > m {
		size = m
	}
	return &batcher{X: X, y: y, size: size, shuffle: shuffle, rng: rand.New(rand.NewSource(seed))}
}

// epoch returns the batches for one pass over the data. A full batch
// reuses X and y without copying.
func (b *batcher) epoch() []batch {
	m, n := b.X.Dims()
	if b.size == m {
		return []batch{{X: b.X, y: b.y}}
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	if b.shuffle {
		b.rng.Shuffle(m, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	batches := make([]batch, 0, (m+b.size-1)/b.size)
	for start := 0; start < m; start += b.size {
		end := min(start+b.size, m)
		rows := end - start
		Xb := mat.NewDense(rows, n, nil)
		yb := mat.NewVecDense(rows, nil)
		for i, idx := range order[start:end] {
			for j := 0; j < n; j++ {
				Xb.Set(i, j, b.X.At(idx, j))
			}
			yb.SetVec(i, b.y.AtVec(idx))
		}
		batches = append(batches, batch{X: Xb, y: yb})
	}
	return batches
}
