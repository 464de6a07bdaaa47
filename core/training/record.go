package training

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// LogRecord is an immutable snapshot of the quantities observed at one
// lifecycle point. Keys that were not computed are absent; callers query
// presence rather than receiving zero values.
type LogRecord struct {
	scalars map[string]float64
	vectors map[string]*mat.VecDense
}

// RecordBuilder accumulates fields for a LogRecord.
type RecordBuilder struct {
	scalars map[string]float64
	vectors map[string]*mat.VecDense
}

// NewRecordBuilder returns an empty builder.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		scalars: make(map[string]float64),
		vectors: make(map[string]*mat.VecDense),
	}
}

// Scalar sets a scalar field.
func (b *RecordBuilder) Scalar(key string, v float64) *RecordBuilder {
	b.scalars[key] = v
	return b
}

// Vector sets a vector field. The vector is copied.
func (b *RecordBuilder) Vector(key string, v mat.Vector) *RecordBuilder {
	if v == nil {
		return b
	}
	b.vectors[key] = cloneVec(v)
	return b
}

// Build freezes the builder into a LogRecord. The builder must not be
// reused afterwards.
func (b *RecordBuilder) Build() LogRecord {
	r := LogRecord{scalars: b.scalars, vectors: b.vectors}
	b.scalars, b.vectors = nil, nil
	return r
}

// Scalar returns the scalar stored under key.
func (r LogRecord) Scalar(key string) (float64, bool) {
	v, ok := r.scalars[key]
	return v, ok
}

// Vector returns a copy of the vector stored under key.
func (r LogRecord) Vector(key string) (*mat.VecDense, bool) {
	v, ok := r.vectors[key]
	if !ok {
		return nil, false
	}
	return cloneVec(v), true
}

// Has reports whether key is present as either a scalar or a vector.
func (r LogRecord) Has(key string) bool {
	if _, ok := r.scalars[key]; ok {
		return true
	}
	_, ok := r.vectors[key]
	return ok
}

// Epoch returns the epoch the record belongs to, 0 if absent.
func (r LogRecord) Epoch() int {
	return int(r.scalars[KeyEpoch])
}

// Batch returns the batch index within the epoch, 0 if absent.
func (r LogRecord) Batch() int {
	return int(r.scalars[KeyBatch])
}

// ScalarKeys returns the scalar keys in sorted order.
func (r LogRecord) ScalarKeys() []string {
	return sortedKeys(r.scalars)
}

// VectorKeys returns the vector keys in sorted order.
func (r LogRecord) VectorKeys() []string {
	keys := make([]string, 0, len(r.vectors))
	for k := range r.vectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneVec(v mat.Vector) *mat.VecDense {
	if v.Len() == 0 {
		return &mat.VecDense{}
	}
	out := mat.NewVecDense(v.Len(), nil)
	out.CopyVec(v)
	return out
}
