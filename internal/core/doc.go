// Package core defines the test-case model and turns lookup results into
// verdicts.
//
// # Core Types
//
// TestCase: one input in one direction with the set of acceptable outputs.
// CaseResult: the verdict for one TestCase, or the error that prevented one.
// Summary: case and expectation counts plus the ordered CaseResults.
//
// A case is compared under one of two policies: exact set equality, or
// subset (every expected output present, extra outputs allowed). Subset is
// only used for analysis with extra analyses ignored.
//
// Runner splits cases by direction, sends each direction as one batch to a
// Backend and maps the results back onto the input case order. A failed
// batch fails every case of that direction with the error text; the other
// direction is unaffected.
package core
