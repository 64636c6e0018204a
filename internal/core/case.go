package core

import (
	"fmt"
	"strings"
)

// Direction says which way a query goes through the transducer.
type Direction string

const (
	// Generate maps a lexical form to surface forms.
	Generate Direction = "generate"
	// Analyze maps a surface form to lexical analyses.
	Analyze Direction = "analyze"
)

// ParseDirection accepts the canonical names and the short forms used on the
// command line.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generate", "gen", "lexical":
		return Generate, nil
	case "analyze", "analyse", "morph", "surface":
		return Analyze, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// TestCase is one query with its acceptable outputs.
type TestCase struct {
	// Name is "<group>: <input>" and is used only for reporting.
	Name string `json:"name" yaml:"name"`

	Direction Direction `json:"direction" yaml:"direction"`

	// Input is sent to the lookup tool trimmed.
	Input string `json:"input" yaml:"input"`

	// Expect is compared as a set; order and duplicates are irrelevant.
	Expect []string `json:"expect" yaml:"expect"`

	// Suite names the file the case came from. Set by RunSuites.
	Suite string `json:"suite,omitempty" yaml:"-"`
}

// Group returns the part of the case name before the first ": ".
func (c TestCase) Group() string { return GroupOf(c.Name) }

// GroupOf returns the group part of a case name, or the whole name when it
// has no group.
func GroupOf(name string) string {
	if i := strings.Index(name, ": "); i >= 0 {
		return name[:i]
	}
	return name
}

// Suite is an ordered list of cases loaded from one test file.
type Suite struct {
	Name  string     `json:"name" yaml:"name"`
	Cases []TestCase `json:"cases" yaml:"cases"`
}

// CaseResult is the verdict for one TestCase.
//
// When Error is set the case failed without a comparison and Actual is empty.
type CaseResult struct {
	Suite     string    `json:"suite,omitempty"`
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
	Input     string    `json:"input"`
	Expected  []string  `json:"expected"`
	Actual    []string  `json:"actual"`
	Error     string    `json:"error,omitempty"`
	Passed    bool      `json:"passed"`

	// Expectation-level counts for this case.
	ExpectationsPassed int `json:"expectations_passed"`
	ExpectationsTotal  int `json:"expectations_total"`
}

// Missing returns the expected outputs absent from Actual, in Expected order.
func (r CaseResult) Missing() []string {
	have := make(map[string]struct{}, len(r.Actual))
	for _, a := range r.Actual {
		have[a] = struct{}{}
	}
	var out []string
	for _, e := range dedupe(r.Expected) {
		if _, ok := have[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// Unexpected returns the actual outputs that were not expected.
func (r CaseResult) Unexpected() []string {
	want := make(map[string]struct{}, len(r.Expected))
	for _, e := range r.Expected {
		want[e] = struct{}{}
	}
	var out []string
	for _, a := range r.Actual {
		if _, ok := want[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// Summary aggregates case results in input order.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`

	TotalExpectations  int `json:"total_expectations"`
	PassedExpectations int `json:"passed_expectations"`
	FailedExpectations int `json:"failed_expectations"`

	Cases []CaseResult `json:"cases"`
}

// Add appends r and updates the counters.
func (s *Summary) Add(r CaseResult) {
	s.Cases = append(s.Cases, r)
	s.Total++
	if r.Passed {
		s.Passed++
	} else {
		s.Failed++
	}
	s.TotalExpectations += r.ExpectationsTotal
	s.PassedExpectations += r.ExpectationsPassed
	s.FailedExpectations += r.ExpectationsTotal - r.ExpectationsPassed
}

// Merge appends every case of o.
func (s *Summary) Merge(o Summary) {
	for _, r := range o.Cases {
		s.Add(r)
	}
}

// AllPassed reports whether no case failed.
func (s Summary) AllPassed() bool { return s.Failed == 0 }

// dedupe keeps the first occurrence of each value.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
