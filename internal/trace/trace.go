// Package trace records the canonical verdict trace of a run.
//
// A trace holds one event per resolved case plus the plan hash of the cases
// that were scheduled. Its canonical bytes are independent of scheduling:
// events are sorted and encoded as RFC 8785 JSON, so two runs with the same
// verdicts hash identically.
package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// RunTrace is the canonical record of one run's verdicts.
//
// It must not contain timestamps, durations, process IDs or error text:
// anything that differs between two runs with the same outcome.
type RunTrace struct {
	PlanHash string  `json:"planHash"`
	Events   []Event `json:"events"`
}

// EventKind is the stable discriminator of an Event. The values are part of
// the canonical bytes; do not rename.
type EventKind string

const (
	EventCasePassed      EventKind = "CasePassed"
	EventCaseFailed      EventKind = "CaseFailed"
	EventCaseErrored     EventKind = "CaseErrored"
	EventBackendRejected EventKind = "BackendRejected"
)

// Event is a single logical verdict.
type Event struct {
	Kind EventKind `json:"kind"`

	// Suite and Case identify the case. Backend events carry only Suite.
	Suite     string `json:"suite,omitempty"`
	Case      string `json:"case,omitempty"`
	Direction string `json:"direction,omitempty"`

	// Reason is a stable reason code, e.g. "Missing", "Unexpected" or "BatchError".
	Reason string `json:"reason,omitempty"`

	// Outputs are the actual outputs, sorted. Empty is omitted.
	Outputs []string `json:"outputs,omitempty"`
}

// Validate checks basic invariants and returns a descriptive error.
func (t *RunTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.PlanHash == "" {
		return errors.New("planHash is required")
	}
	for i, e := range t.Events {
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if isCaseEvent(e.Kind) && e.Case == "" {
			return fmt.Errorf("events[%d].case is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

func isCaseEvent(kind EventKind) bool {
	switch kind {
	case EventCasePassed, EventCaseFailed, EventCaseErrored:
		return true
	default:
		return false
	}
}

// Canonicalize normalizes and sorts the trace into its canonical form.
//
// Events are sorted by (suite, case, direction, kindOrder, reason, outputs).
// Outputs are copied and sorted; empty ones become nil.
func (t *RunTrace) Canonicalize() {
	if t == nil {
		return
	}
	for i := range t.Events {
		if len(t.Events[i].Outputs) == 0 {
			t.Events[i].Outputs = nil
			continue
		}
		out := make([]string, len(t.Events[i].Outputs))
		copy(out, t.Events[i].Outputs)
		sort.Strings(out)
		t.Events[i].Outputs = out
	}

	sort.SliceStable(t.Events, func(i, j int) bool {
		a, b := t.Events[i], t.Events[j]
		if a.Suite != b.Suite {
			return a.Suite < b.Suite
		}
		if a.Case != b.Case {
			return a.Case < b.Case
		}
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return lessStrings(a.Outputs, b.Outputs)
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventBackendRejected:
		return 10
	case EventCasePassed:
		return 20
	case EventCaseFailed:
		return 30
	case EventCaseErrored:
		return 40
	default:
		return 1000
	}
}

func lessStrings(a, b []string) bool {
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// CanonicalJSON returns the RFC 8785 encoding of the canonicalized trace.
// The receiver is not modified.
func (t RunTrace) CanonicalJSON() ([]byte, error) {
	c := RunTrace{PlanHash: t.PlanHash, Events: make([]Event, len(t.Events))}
	copy(c.Events, t.Events)
	c.Canonicalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return cyberphone.Transform(raw)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t RunTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}
