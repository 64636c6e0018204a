package lookup

import "sort"

// ResultSet is the deduplicated set of outputs the lookup tool produced for one query.
//
// Order is never significant; Sorted gives a stable view for reporting.
type ResultSet map[string]struct{}

// NewResultSet builds a set from values, collapsing duplicates.
func NewResultSet(values ...string) ResultSet {
	s := make(ResultSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s ResultSet) Add(v string) { s[v] = struct{}{} }

func (s ResultSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s ResultSet) Len() int { return len(s) }

// Sorted returns the members in lexical order. The result is never nil.
func (s ResultSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s ResultSet) Clone() ResultSet {
	c := make(ResultSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}
