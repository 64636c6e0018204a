package lookup

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Line
	}{
		{"data", "bar+V\tb1", Line{Kind: LineData, Query: "bar+V", Result: "b1"}},
		{"trimmed columns", "  bar+V \t b1  ", Line{Kind: LineData, Query: "bar+V", Result: "b1"}},
		{"weight column", "bar+V\tb1\t0.000000", Line{Kind: LineData, Query: "bar+V", Result: "b1"}},
		{"blank", "   ", Line{Kind: LineBlank}},
		{"empty", "", Line{Kind: LineBlank}},
		{"comment", "! loading transducer", Line{Kind: LineIgnored}},
		{"hash comment", "# info", Line{Kind: LineIgnored}},
		{"no tab", "warning: something", Line{Kind: LineIgnored}},
		{"bang with tab is data", "!x\t!y", Line{Kind: LineData, Query: "!x", Result: "!y"}},
		{"hash with tab is data", "#a\tb", Line{Kind: LineData, Query: "#a", Result: "b"}},
		{"inf marker", "a\t+inf", Line{Kind: LineData, Query: "a", NoResult: true}},
		{"unknown echo in third column", "a+?\tx\ta+?", Line{Kind: LineData, Query: "a+?", NoResult: true}},
		{"unknown suffix without echo column", "foo\tfoo+?\tinf", Line{Kind: LineData, Query: "foo", Result: "foo+?"}},
		{"third column without marker", "a\tx\ta", Line{Kind: LineData, Query: "a", Result: "x"}},
		{"epsilon", "a\t@", Line{Kind: LineData, Query: "a", NoResult: true}},
		{"empty result", "a\t", Line{Kind: LineData, Query: "a", NoResult: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.raw)
			if got != tt.want {
				t.Fatalf("ParseLine(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeBatch_TrimsAndTerminates(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBatch(&buf, []string{" bar+V", "baz+V \t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "bar+V\nbaz+V\n" {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestDecodeAll_MixedOrder(t *testing.T) {
	out := "baz+V\tb3\nbar+V\tb1\nbaz+V\tb2\n"
	got, err := DecodeAll([]string{"bar+V", "baz+V"}, strings.NewReader(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResults(t, got, [][]string{{"b1"}, {"b2", "b3"}})
}

func TestDecodeAll_Deduplicates(t *testing.T) {
	out := "a\tx\na\tx\n\na\tx\n"
	got, err := DecodeAll([]string{"a"}, strings.NewReader(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResults(t, got, [][]string{{"x"}})
}

func TestDecodeAll_NoResultIsEmptyNotError(t *testing.T) {
	got, err := DecodeAll([]string{"a"}, strings.NewReader("a\t+inf\n\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResults(t, got, [][]string{{}})
}

func TestCollector_DuplicateQueriesShareResults(t *testing.T) {
	c := NewCollector([]string{"a", "b", "a"})
	c.Feed("a\tx")
	if c.AllObserved() {
		t.Fatalf("b has not been answered yet")
	}
	c.Feed("b\ty")
	if !c.AllObserved() {
		t.Fatalf("expected all queries observed")
	}
	res := c.Results()
	assertResults(t, res, [][]string{{"x"}, {"y"}, {"x"}})

	// Results are independent copies.
	res[0].Add("mutated")
	if res[2].Has("mutated") {
		t.Fatalf("duplicate query slots must not alias")
	}
}

func TestCollector_IgnoresForeignQueries(t *testing.T) {
	c := NewCollector([]string{"a"})
	c.Feed("other\tz")
	if c.AllObserved() {
		t.Fatalf("a line for another query must not count")
	}
	if m := c.Missing(); len(m) != 1 || m[0] != "a" {
		t.Fatalf("unexpected missing list %v", m)
	}
}

func TestCollector_Terminated(t *testing.T) {
	c := NewCollector([]string{"a", "b"})
	c.Feed("a\tx")
	c.Feed("")
	if c.Terminated() {
		t.Fatalf("only one block closed")
	}
	c.Feed("b\ty")
	c.Feed("")
	if !c.Terminated() {
		t.Fatalf("expected both blocks closed")
	}
}
