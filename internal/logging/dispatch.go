package logging

import (
	"fmt"
	"slices"
)

type deliveryMode int

const (
	deliverLog deliveryMode = iota
	deliverRaw
)

// SinkError records a failure raised by a sink during op.
type SinkError struct {
	Sink string
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Sink, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking sink.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// dispatchLocked normalizes items and delivers them to every sink in order.
func (l *Logger) dispatchLocked(items []any, mode deliveryMode) {
	l.ensureInitializedLocked()
	items = normalizeItems(items)
	op := "log"
	if mode == deliverRaw {
		op = "raw"
	}
	for _, ns := range l.sinks {
		payload := slices.Clone(items)
		l.deliverLocked(ns, op, func(s Sink) error {
			if mode == deliverRaw {
				if raw, ok := s.(RawSink); ok {
					return raw.LogRaw(payload...)
				}
			}
			return s.Log(payload...)
		})
	}
}

// deliverLocked runs fn against an enabled sink and reroutes any error or
// panic to the fallback sink.
func (l *Logger) deliverLocked(ns namedSink, op string, fn func(Sink) error) {
	err := protect(func() error {
		if !sinkEnabled(ns.sink) {
			return nil
		}
		return fn(ns.sink)
	})
	if err != nil {
		l.reportFailureLocked(&SinkError{Sink: ns.name, Op: op, Err: err})
	}
}

// reportFailureLocked renders err through a fresh fallback sink. A failing
// fallback is ignored.
func (l *Logger) reportFailureLocked(err error) {
	_ = protect(func() error {
		if l.fallback == nil {
			return nil
		}
		fb := l.fallback()
		if fb == nil {
			return nil
		}
		return fb.Log("Logger", NewErrorObject(err))
	})
}

// ensureInitializedLocked installs StandardOut when no registry has ever been
// established.
func (l *Logger) ensureInitializedLocked() {
	if l.established {
		return
	}
	l.established = true
	factory, ok := l.registry.Lookup(StandardOut)
	if !ok {
		factory = newConsoleFactory
	}
	var sink Sink
	err := protect(func() error {
		var ferr error
		sink, ferr = factory(l.ownerLocked())
		return ferr
	})
	if err != nil || sink == nil {
		sink = NewConsole(l.output)
	}
	l.sinks = []namedSink{{name: StandardOut, sink: sink}}
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
