package core

import "morphtest/internal/lookup"

// Policy decides when actual outputs satisfy the expected ones.
type Policy int

const (
	// PolicyExact passes iff actual and expected are equal as sets.
	PolicyExact Policy = iota
	// PolicySubset passes iff every expected output is present.
	PolicySubset
)

func (p Policy) String() string {
	switch p {
	case PolicyExact:
		return "exact"
	case PolicySubset:
		return "subset"
	default:
		return "unknown"
	}
}

// PolicyFor returns the policy for a direction. Generation is always exact;
// analysis is a subset check only when extra analyses are ignored.
func PolicyFor(dir Direction, ignoreExtraAnalyses bool) Policy {
	if dir == Analyze && ignoreExtraAnalyses {
		return PolicySubset
	}
	return PolicyExact
}

// Pass compares expected against actual under p.
func Pass(p Policy, expected []string, actual lookup.ResultSet) bool {
	want := lookup.NewResultSet(expected...)
	for e := range want {
		if !actual.Has(e) {
			return false
		}
	}
	if p == PolicySubset {
		return true
	}
	return actual.Len() == want.Len()
}

// CountExpectations checks each distinct expected output independently for
// membership in actual.
func CountExpectations(expected []string, actual lookup.ResultSet) (passed, total int) {
	for e := range lookup.NewResultSet(expected...) {
		total++
		if actual.Has(e) {
			passed++
		}
	}
	return passed, total
}
