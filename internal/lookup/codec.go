package lookup

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBytes bounds a single output line from the lookup tool.
const maxLineBytes = 1024 * 1024

const (
	markerNoResult = "+inf"
	markerUnknown  = "+?"
	markerEpsilon  = "@"
)

// LineKind classifies one line of lookup tool output.
type LineKind int

const (
	// LineIgnored covers comments, diagnostics and lines without a result column.
	LineIgnored LineKind = iota
	// LineBlank is an empty line. Tools print one after the results of each query.
	LineBlank
	// LineData carries a query and either a result or a no-result marker.
	LineData
)

// Line is the decoded form of one output line.
type Line struct {
	Kind   LineKind
	Query  string
	Result string
	// NoResult is set when the line answers Query without contributing a result.
	NoResult bool
}

// ParseLine decodes one raw output line.
//
// Format: query TAB result [TAB weight-or-echo]. Lines starting with '!' or '#'
// are diagnostics unless they contain a tab, since both characters are valid
// linguistic symbols at the start of a form.
func ParseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Line{Kind: LineBlank}
	}
	hasTab := strings.Contains(raw, "\t")
	if (strings.HasPrefix(trimmed, "!") || strings.HasPrefix(trimmed, "#")) && !hasTab {
		return Line{Kind: LineIgnored}
	}
	if !hasTab {
		return Line{Kind: LineIgnored}
	}

	cols := strings.Split(raw, "\t")
	query := strings.TrimSpace(cols[0])
	result := strings.TrimSpace(cols[1])
	line := Line{Kind: LineData, Query: query}

	switch {
	case result == markerNoResult:
		line.NoResult = true
	case len(cols) >= 3 && transductionFailed(query, strings.TrimSpace(cols[2])):
		line.NoResult = true
	case result == "" || result == markerEpsilon:
		line.NoResult = true
	default:
		line.Result = result
	}
	return line
}

// transductionFailed recognizes the "unknown form" answer: a third column
// that echoes the query and carries the "+?" marker.
func transductionFailed(query, third string) bool {
	return third == query && strings.Contains(third, markerUnknown)
}

// EncodeBatch writes every query, trimmed and newline-terminated.
func EncodeBatch(w io.Writer, queries []string) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	for _, q := range queries {
		if _, err := bw.WriteString(strings.TrimSpace(q)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Collector accumulates decoded lines for one batch and reassembles them in
// query order. Lines may arrive interleaved or out of order; lines for queries
// outside the batch are dropped.
type Collector struct {
	queries     []string
	slot        map[string]int
	sets        []ResultSet
	seen        []bool
	unseen      int
	terminators int
}

// NewCollector prepares a collector for queries. Duplicate queries share one slot.
func NewCollector(queries []string) *Collector {
	c := &Collector{
		queries: queries,
		slot:    make(map[string]int, len(queries)),
	}
	for _, q := range queries {
		key := strings.TrimSpace(q)
		if _, ok := c.slot[key]; ok {
			continue
		}
		c.slot[key] = len(c.sets)
		c.sets = append(c.sets, NewResultSet())
		c.seen = append(c.seen, false)
	}
	c.unseen = len(c.sets)
	return c
}

// Feed decodes raw and records it.
func (c *Collector) Feed(raw string) Line {
	line := ParseLine(raw)
	switch line.Kind {
	case LineBlank:
		c.terminators++
	case LineData:
		i, ok := c.slot[line.Query]
		if !ok {
			return line
		}
		if !c.seen[i] {
			c.seen[i] = true
			c.unseen--
		}
		if !line.NoResult {
			c.sets[i].Add(line.Result)
		}
	}
	return line
}

// AllObserved reports whether every query has at least one data line.
func (c *Collector) AllObserved() bool { return c.unseen == 0 }

// Terminated reports whether the tool has closed one block per query written.
func (c *Collector) Terminated() bool {
	return len(c.queries) > 0 && c.terminators >= len(c.queries)
}

// Missing returns the queries that have not been answered yet, in batch order.
func (c *Collector) Missing() []string {
	var out []string
	for _, q := range c.queries {
		key := strings.TrimSpace(q)
		if !c.seen[c.slot[key]] {
			out = append(out, key)
		}
	}
	return out
}

// Results returns one independent ResultSet per query, index-aligned with the batch.
func (c *Collector) Results() []ResultSet {
	out := make([]ResultSet, len(c.queries))
	for i, q := range c.queries {
		out[i] = c.sets[c.slot[strings.TrimSpace(q)]].Clone()
	}
	return out
}

// DecodeAll reads r to EOF and returns results for queries.
func DecodeAll(queries []string, r io.Reader) ([]ResultSet, error) {
	c := NewCollector(queries)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		c.Feed(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c.Results(), nil
}
