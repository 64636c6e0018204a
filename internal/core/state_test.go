package core

import "testing"

func TestCaseStates_Transitions_ValidAndInvalid(t *testing.T) {
	states := NewCaseStates(2)

	if err := states.Transition(0, CasePending, CasePassed); err != nil {
		t.Fatalf("expected valid transition, got %v", err)
	}

	// A resolved case never transitions again.
	if err := states.Transition(0, CasePassed, CaseFailed); err == nil {
		t.Fatalf("expected error")
	}
	if err := states.Transition(0, CasePending, CaseFailed); err == nil {
		t.Fatalf("expected error for stale prior state")
	}

	// PENDING -> PENDING is not a resolution.
	if err := states.Transition(1, CasePending, CasePending); err == nil {
		t.Fatalf("expected error")
	}
	if err := states.Transition(1, CasePending, CaseErrored); err != nil {
		t.Fatalf("expected valid transition, got %v", err)
	}

	if err := states.Transition(2, CasePending, CasePassed); err == nil {
		t.Fatalf("expected error for unknown index")
	}
	if p := states.Pending(); len(p) != 0 {
		t.Fatalf("expected no pending cases, got %v", p)
	}
}
