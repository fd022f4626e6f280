package monitor

import (
	"gita/internal/port"
)

// nopObserver discards every event.
type nopObserver struct{}

var _ port.Observer = nopObserver{}

func (nopObserver) Metric(string, float64, map[string]any) {}
func (nopObserver) Error(string, error, map[string]any)    {}

// Nop returns an observer that drops everything.
func Nop() port.Observer {
	return nopObserver{}
}

// safeObserver shields callers from a misbehaving sink.
type safeObserver struct {
	next port.Observer
}

// Safe wraps o so that panics inside it are swallowed. A nil o yields Nop.
func Safe(o port.Observer) port.Observer {
	if o == nil {
		return Nop()
	}
	if s, ok := o.(safeObserver); ok {
		return s
	}
	return safeObserver{next: o}
}

func (s safeObserver) Metric(name string, value float64, fields map[string]any) {
	defer func() { _ = recover() }()
	s.next.Metric(name, value, fields)
}

func (s safeObserver) Error(sessionID string, err error, fields map[string]any) {
	defer func() { _ = recover() }()
	s.next.Error(sessionID, err, fields)
}
