package observer

import (
	"github.com/YuminosukeSato/descent/pkg/errors"
)

// List is an ordered set of observers.
type List struct {
	observers []Observer
}

// NewList returns a list dispatching to observers in the given order.
func NewList(observers ...Observer) *List {
	l := &List{}
	for _, o := range observers {
		l.Add(o)
	}
	return l
}

// Add appends an observer. Nil observers are ignored.
func (l *List) Add(o Observer) {
	if o != nil {
		l.observers = append(l.observers, o)
	}
}

// Len returns the number of observers.
func (l *List) Len() int { return len(l.observers) }

// Observers returns the observers in dispatch order.
func (l *List) Observers() []Observer {
	return append([]Observer(nil), l.observers...)
}

// Dispatch delivers env.Event to each observer in order and stops at the
// first failure. Errors and panics are returned as ObserverError.
func (l *List) Dispatch(env *Env) error {
	for _, o := range l.observers {
		if err := l.call(o, env); err != nil {
			return err
		}
	}
	return nil
}

// DispatchAll delivers env.Event to every observer even when some fail.
// The first failure is returned with later ones attached as secondary
// errors.
func (l *List) DispatchAll(env *Env) error {
	var first error
	for _, o := range l.observers {
		if err := l.call(o, env); err != nil {
			if first == nil {
				first = err
			} else {
				first = errors.WithSecondaryError(first, err)
			}
		}
	}
	return first
}

func (l *List) call(o Observer, env *Env) error {
	if env.Control != nil {
		env.Control.current = o.Name()
	}
	op := o.Name() + ".On" + env.Event.String()
	err := errors.SafeExecute(op, func() error {
		return hook(o, env.Event)(env)
	})
	if err != nil {
		return errors.NewObserverError(o.Name(), env.Event.String(), err)
	}
	return nil
}

func hook(o Observer, e Event) func(*Env) error {
	switch e {
	case TrainBegin:
		return o.OnTrainBegin
	case EpochBegin:
		return o.OnEpochBegin
	case BatchBegin:
		return o.OnBatchBegin
	case BatchEnd:
		return o.OnBatchEnd
	case EpochEnd:
		return o.OnEpochEnd
	default:
		return o.OnTrainEnd
	}
}
