package testing

import (
	"errors"

	"github.com/LeJamon/goAMM/internal/core/events"
)

// Result is the outcome of a submitted operation.
type Result struct {
	// Op names the operation, used in failure messages.
	Op string

	// Value is what the engine call returned besides the error.
	Value any

	// Err is the engine error, nil on success.
	Err error

	// Events holds the events the operation published.
	Events []events.Event
}

// Success reports whether the operation committed.
func (r Result) Success() bool {
	return r.Err == nil
}

// Is reports whether the operation failed with target.
func (r Result) Is(target error) bool {
	return errors.Is(r.Err, target)
}

// Kinds returns the kinds of the published events in order.
func (r Result) Kinds() []events.Kind {
	out := make([]events.Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind()
	}
	return out
}

// Uint64 returns Value as a uint64, or 0 when it is something else.
func (r Result) Uint64() uint64 {
	v, _ := r.Value.(uint64)
	return v
}

// Amounts returns Value as a []uint64, or nil when it is something else.
func (r Result) Amounts() []uint64 {
	v, _ := r.Value.([]uint64)
	return v
}
