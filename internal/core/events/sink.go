package events

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=mock_events/mock_sink.go -package=mock_events github.com/LeJamon/goAMM/internal/core/events Sink

// Sink receives the events of each committed engine operation, in order.
type Sink interface {
	Emit(ctx context.Context, evs []Event) error
	Close() error
}

// Record is the serialised form written by the file and SQL sinks.
type Record struct {
	Kind      Kind      `json:"kind"`
	PoolID    uint32    `json:"pool_id"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   Event     `json:"payload"`
}

// NewRecord wraps e with its kind and timestamp.
func NewRecord(e Event, at time.Time) Record {
	return Record{Kind: e.Kind(), PoolID: e.Pool(), EmittedAt: at.UTC(), Payload: e}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(context.Context, []Event) error { return nil }
func (Nop) Close() error                        { return nil }

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, evs []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evs...)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind()
	}
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans every batch out to several sinks concurrently.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Emit(ctx context.Context, evs []Event) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error {
			return s.Emit(gctx, evs)
		})
	}
	return g.Wait()
}

func (m *Multi) Close() error {
	var g errgroup.Group
	for _, s := range m.sinks {
		g.Go(s.Close)
	}
	return g.Wait()
}
