package trace

import (
	"errors"
	"sync"

	"morphtest/internal/core"
	"morphtest/internal/lookup"
)

// Sink is the minimal interface producers depend on.
//
// Record must be inert: it must not panic and returns no error. Callers must
// assume Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// SafeRecord records an event and swallows panics from a buggy sink.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder is a concurrency-safe in-memory collector. Ordering is computed
// after collection, so lock contention never changes the trace.
//
// Recorder also implements core.Observer.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// CaseResolved records the verdict of one case.
func (r *Recorder) CaseResolved(_ int, res core.CaseResult, state core.CaseState) {
	SafeRecord(r, CaseEvent(res, state))
}

// CaseEvent converts a verdict into its trace event.
func CaseEvent(res core.CaseResult, state core.CaseState) Event {
	e := Event{
		Suite:     res.Suite,
		Case:      res.Name,
		Direction: string(res.Direction),
		Outputs:   res.Actual,
	}
	switch state {
	case core.CasePassed:
		e.Kind = EventCasePassed
	case core.CaseErrored:
		e.Kind = EventCaseErrored
		e.Reason = "BatchError"
	default:
		e.Kind = EventCaseFailed
		switch {
		case len(res.Missing()) > 0 && len(res.Unexpected()) > 0:
			e.Reason = "MissingAndUnexpected"
		case len(res.Missing()) > 0:
			e.Reason = "Missing"
		default:
			e.Reason = "Unexpected"
		}
	}
	return e
}

// BackendEvent records that the backend serving suite failed validation. The
// reason is the lookup error class, never the message, so traces stay stable
// across machines.
func BackendEvent(suite string, err error) Event {
	e := Event{Kind: EventBackendRejected, Suite: suite, Reason: "Unknown"}
	var le *lookup.Error
	if errors.As(err, &le) && le != nil {
		e.Reason = string(le.Class)
	}
	return e
}

// Snapshot returns a point-in-time copy of all recorded events.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Trace builds a canonical RunTrace from the recorded events. The result is
// independent of the recorder.
func (r *Recorder) Trace(planHash string) RunTrace {
	tr := RunTrace{PlanHash: planHash, Events: r.Snapshot()}
	tr.Canonicalize()
	return tr
}
