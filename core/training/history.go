package training

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// series is an append-only set of per-key sequences.
type series struct {
	count   int
	scalars map[string][]float64
	vectors map[string][]*mat.VecDense
}

func newSeries() series {
	return series{
		scalars: make(map[string][]float64),
		vectors: make(map[string][]*mat.VecDense),
	}
}

func (s *series) append(r LogRecord) {
	for k, v := range r.scalars {
		s.scalars[k] = append(s.scalars[k], v)
	}
	for k, v := range r.vectors {
		s.vectors[k] = append(s.vectors[k], v)
	}
	s.count++
}

// History accumulates epoch-level and batch-level records. A key that never
// appeared in a record has no sequence at all.
//
// History has a single writer. Everyone else reads it through a HistoryView.
type History struct {
	epochs  series
	batches series

	Start time.Time
	End   time.Time
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{epochs: newSeries(), batches: newSeries()}
}

// AppendEpoch commits an epoch-level record.
func (h *History) AppendEpoch(r LogRecord) { h.epochs.append(r) }

// AppendBatch commits a batch-level record.
func (h *History) AppendBatch(r LogRecord) { h.batches.append(r) }

// EpochsCompleted returns the number of committed epoch records.
func (h *History) EpochsCompleted() int { return h.epochs.count }

// BatchesCompleted returns the number of committed batch records.
func (h *History) BatchesCompleted() int { return h.batches.count }

// Duration returns End − Start, or zero before the run has ended.
func (h *History) Duration() time.Duration {
	if h.End.IsZero() {
		return 0
	}
	return h.End.Sub(h.Start)
}

// View returns a read-only view bounded to what has been committed so far.
// Records appended later are not visible through it.
func (h *History) View() HistoryView {
	return HistoryView{
		h:       h,
		epochs:  h.epochs.count,
		batches: h.batches.count,
		lens:    lengths(h.epochs.scalars),
		vlens:   vlengths(h.epochs.vectors),
		blens:   lengths(h.batches.scalars),
	}
}

// HistoryView is a read-only window onto a History. Per-key lengths are
// captured when the view is taken since keys may appear in only some records.
type HistoryView struct {
	h       *History
	epochs  int
	batches int
	lens    map[string]int
	vlens   map[string]int
	blens   map[string]int
}

// Duration returns the duration of the underlying history.
func (v HistoryView) Duration() time.Duration {
	if v.h == nil {
		return 0
	}
	return v.h.Duration()
}

// EpochsCompleted returns the number of epoch records visible in the view.
func (v HistoryView) EpochsCompleted() int { return v.epochs }

// BatchesCompleted returns the number of batch records visible in the view.
func (v HistoryView) BatchesCompleted() int { return v.batches }

// Epoch returns a copy of the epoch-level sequence for key.
func (v HistoryView) Epoch(key string) ([]float64, bool) {
	n, ok := v.lens[key]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v.h.epochs.scalars[key][:n]...), true
}

// Batch returns a copy of the batch-level sequence for key.
func (v HistoryView) Batch(key string) ([]float64, bool) {
	n, ok := v.blens[key]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v.h.batches.scalars[key][:n]...), true
}

// EpochVectors returns copies of the epoch-level vector sequence for key.
func (v HistoryView) EpochVectors(key string) ([]*mat.VecDense, bool) {
	n, ok := v.vlens[key]
	if !ok {
		return nil, false
	}
	seq := v.h.epochs.vectors[key]
	out := make([]*mat.VecDense, n)
	for i := 0; i < n; i++ {
		out[i] = cloneVec(seq[i])
	}
	return out, true
}

// LastEpoch returns the most recent committed epoch value for key.
func (v HistoryView) LastEpoch(key string) (float64, bool) {
	n, ok := v.lens[key]
	if !ok || n == 0 {
		return 0, false
	}
	return v.h.epochs.scalars[key][n-1], true
}

// EpochKeys returns the scalar keys present at epoch level.
func (v HistoryView) EpochKeys() []string {
	keys := make(map[string]float64, len(v.lens))
	for k := range v.lens {
		keys[k] = 0
	}
	return sortedKeys(keys)
}

func lengths(m map[string][]float64) map[string]int {
	out := make(map[string]int, len(m))
	for k, seq := range m {
		out[k] = len(seq)
	}
	return out
}

func vlengths(m map[string][]*mat.VecDense) map[string]int {
	out := make(map[string]int, len(m))
	for k, seq := range m {
		out[k] = len(seq)
	}
	return out
}
