package observer

import (
	"time"

	"github.com/YuminosukeSato/descent/core/training"
)

// BlackBox records every batch and epoch record into a History. The driver
// registers it ahead of all user observers.
type BlackBox struct {
	Base
	history *training.History
	now     func() time.Time
}

// NewBlackBox returns a BlackBox with an empty history.
func NewBlackBox() *BlackBox {
	return &BlackBox{history: training.NewHistory(), now: time.Now}
}

func (b *BlackBox) Name() string { return "BlackBox" }

// History returns the accumulated history.
func (b *BlackBox) History() *training.History { return b.history }

func (b *BlackBox) OnTrainBegin(*Env) error {
	b.history = training.NewHistory()
	b.history.Start = b.now()
	return nil
}

func (b *BlackBox) OnBatchEnd(env *Env) error {
	b.history.AppendBatch(env.Record)
	return nil
}

func (b *BlackBox) OnEpochEnd(env *Env) error {
	b.history.AppendEpoch(env.Record)
	return nil
}

func (b *BlackBox) OnTrainEnd(*Env) error {
	b.history.End = b.now()
	return nil
}
