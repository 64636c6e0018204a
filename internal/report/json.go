package report

import (
	"encoding/json"
	"io"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"morphtest/internal/core"
)

type jsonCounts struct {
	Total              int `json:"total"`
	Passed             int `json:"passed"`
	Failed             int `json:"failed"`
	TotalExpectations  int `json:"total_expectations"`
	PassedExpectations int `json:"passed_expectations"`
	FailedExpectations int `json:"failed_expectations"`
}

type jsonDocument struct {
	Suites []core.SuiteSummary `json:"suites"`
	Total  jsonCounts          `json:"total"`
}

// JSON writes every suite and the overall counts as one canonical JSON
// document followed by a newline. Hide options do not apply.
func JSON(w io.Writer, suites []core.SuiteSummary) error {
	b, err := MarshalJSON(suites)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// MarshalJSON returns the RFC 8785 encoding of suites. Absent lists are
// encoded as [] rather than null.
func MarshalJSON(suites []core.SuiteSummary) ([]byte, error) {
	doc := jsonDocument{Suites: make([]core.SuiteSummary, len(suites))}
	for i, s := range suites {
		cases := make([]core.CaseResult, len(s.Summary.Cases))
		for j, c := range s.Summary.Cases {
			c.Expected = nonNil(c.Expected)
			c.Actual = nonNil(c.Actual)
			cases[j] = c
		}
		s.Summary.Cases = cases
		doc.Suites[i] = s
	}
	t := Total(suites)
	doc.Total = jsonCounts{
		Total: t.Total, Passed: t.Passed, Failed: t.Failed,
		TotalExpectations:  t.TotalExpectations,
		PassedExpectations: t.PassedExpectations,
		FailedExpectations: t.FailedExpectations,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return cyberphone.Transform(raw)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
