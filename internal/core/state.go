package core

import "fmt"

// CaseState is the runtime state of one case within a run.
type CaseState string

const (
	CasePending CaseState = "PENDING"
	CasePassed  CaseState = "PASSED"
	CaseFailed  CaseState = "FAILED"
	CaseErrored CaseState = "ERRORED"
)

// IsTerminal reports whether the state is a verdict.
func IsTerminal(s CaseState) bool {
	switch s {
	case CasePassed, CaseFailed, CaseErrored:
		return true
	default:
		return false
	}
}

// CaseStates holds one state per case, index-aligned with the case list.
type CaseStates []CaseState

// NewCaseStates returns n pending states.
func NewCaseStates(n int) CaseStates {
	s := make(CaseStates, n)
	for i := range s {
		s[i] = CasePending
	}
	return s
}

// Transition performs a validated transition for case i.
//
// The caller supplies the expected prior state (from) to make double
// resolution observable. The state is changed if and only if the transition
// is valid.
func (s CaseStates) Transition(i int, from, to CaseState) error {
	if i < 0 || i >= len(s) {
		return fmt.Errorf("unknown case index %d", i)
	}
	if cur := s[i]; cur != from {
		return fmt.Errorf("invalid transition for case %d: expected %s, got %s", i, from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for case %d: %s -> %s", i, from, to)
	}
	s[i] = to
	return nil
}

func isAllowedTransition(from, to CaseState) bool {
	return from == CasePending && IsTerminal(to)
}

// Pending returns the indices still pending.
func (s CaseStates) Pending() []int {
	var out []int
	for i, st := range s {
		if st == CasePending {
			out = append(out, i)
		}
	}
	return out
}
