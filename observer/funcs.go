package observer

// Funcs adapts plain functions into an Observer. Nil fields are no-ops.
type Funcs struct {
	ObserverName string
	TrainBegin   func(*Env) error
	EpochBegin   func(*Env) error
	BatchBegin   func(*Env) error
	BatchEnd     func(*Env) error
	EpochEnd     func(*Env) error
	TrainEnd     func(*Env) error
}

func (f *Funcs) Name() string {
	if f.ObserverName == "" {
		return "Funcs"
	}
	return f.ObserverName
}

func (f *Funcs) OnTrainBegin(env *Env) error { return call(f.TrainBegin, env) }
func (f *Funcs) OnEpochBegin(env *Env) error { return call(f.EpochBegin, env) }
func (f *Funcs) OnBatchBegin(env *Env) error { return call(f.BatchBegin, env) }
func (f *Funcs) OnBatchEnd(env *Env) error   { return call(f.BatchEnd, env) }
func (f *Funcs) OnEpochEnd(env *Env) error   { return call(f.EpochEnd, env) }
func (f *Funcs) OnTrainEnd(env *Env) error   { return call(f.TrainEnd, env) }

func call(fn func(*Env) error, env *Env) error {
	if fn == nil {
		return nil
	}
	return fn(env)
}
