package suite

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"morphtest/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFile_TrimsKeysAndValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "suite.yaml", `
Config:
  hfst:
    Gen: /dev/null
Tests:
  Verb - sample:
    "gæljodh+V+TV+Ind+Prs+Pl2   ": "   gæljoejidie "
    "foo+V": [ "bar  ", "  baz" ]
`)
	l, err := LoadFile(path, Options{Backend: BackendHFST})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []core.TestCase{
		{Name: "Verb - sample: gæljodh+V+TV+Ind+Prs+Pl2", Direction: core.Generate, Input: "gæljodh+V+TV+Ind+Prs+Pl2", Expect: []string{"gæljoejidie"}},
		{Name: "Verb - sample: foo+V", Direction: core.Generate, Input: "foo+V", Expect: []string{"bar", "baz"}},
	}
	if !reflect.DeepEqual(l.Suite.Cases, want) {
		t.Fatalf("unexpected cases:\n got %#v\nwant %#v", l.Suite.Cases, want)
	}
	if l.Suite.Name != "suite.yaml" {
		t.Fatalf("unexpected suite name %q", l.Suite.Name)
	}
	if l.Lookup.LookupCommand != DefaultHFSTCommand || l.Lookup.GeneratorTransducer != "/dev/null" {
		t.Fatalf("unexpected lookup config %+v", l.Lookup)
	}
}

func TestParse_KeepsDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(`
Tests:
  Zeta:
    z+N: z
    a+N: a
  Alpha:
    b+N: b
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, c := range doc.Cases(false) {
		names = append(names, c.Name)
	}
	want := []string{"Zeta: z+N", "Zeta: a+N", "Alpha: b+N"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestDocumentCases_InverseAnalysis(t *testing.T) {
	doc, err := Parse([]byte(`
config:
  HFST: { gen: g.hfstol, MORPH: m.hfstol }
tests:
  Nouns:
    hus+N+Sg: hus
    hus+N+Pl: [hus, husa]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Config == nil || doc.Config.HFST == nil || doc.Config.HFST.Morph != "m.hfstol" {
		t.Fatalf("config keys must match case-insensitively: %+v", doc.Config)
	}

	cases := doc.Cases(true)
	var analyses []core.TestCase
	for _, c := range cases {
		if c.Direction == core.Analyze {
			analyses = append(analyses, c)
		}
	}
	want := []core.TestCase{
		{Name: "Nouns: hus", Direction: core.Analyze, Input: "hus", Expect: []string{"hus+N+Sg", "hus+N+Pl"}},
		{Name: "Nouns: husa", Direction: core.Analyze, Input: "husa", Expect: []string{"hus+N+Pl"}},
	}
	if !reflect.DeepEqual(analyses, want) {
		t.Fatalf("unexpected analysis cases:\n got %#v\nwant %#v", analyses, want)
	}
	if len(cases) != 4 || cases[0].Direction != core.Generate || cases[1].Direction != core.Generate {
		t.Fatalf("expected generation cases before analysis cases: %#v", cases)
	}
}

func TestParse_AliasesAndNulls(t *testing.T) {
	doc, err := Parse([]byte(`
Tests:
  G:
    a+N: &forms [x, y]
    b+N: *forms
    c+N:
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := doc.Groups[0].Entries
	if !reflect.DeepEqual(got[1].Expect, []string{"x", "y"}) {
		t.Fatalf("alias not resolved: %#v", got[1])
	}
	if got[2].Expect == nil || len(got[2].Expect) != 0 {
		t.Fatalf("null expectation must be empty, got %#v", got[2].Expect)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"no tests", "Config: {}\n", "missing Tests"},
		{"not a mapping", "- a\n- b\n", "expected a mapping"},
		{"nested map value", "Tests:\n  G:\n    a: {b: c}\n", "expected a string or a list"},
		{"empty", "", "empty document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestExpand_WalksDirectoriesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yml", "Tests: {}\n")
	writeFile(t, dir, "a.yaml", "Tests: {}\n")
	writeFile(t, dir, "sub/c.YAML", "Tests: {}\n")
	writeFile(t, dir, "notes.txt", "ignored")
	single := writeFile(t, t.TempDir(), "explicit.txt", "Tests: {}\n")

	files, err := Expand([]string{dir, single})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "sub", "c.YAML"),
		single,
	}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("expected %v, got %v", want, files)
	}

	if _, err := Expand([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestLoad_AnalyzerOverrideAddsAnalysisCases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yaml", "Config:\n  hfst:\n    Gen: g\nTests:\n  G:\n    a+N: a\n")

	loaded, err := Load([]string{dir}, Options{Overrides: Overrides{Analyzer: "m"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Suite.Cases) != 2 {
		t.Fatalf("expected generation and analysis cases, got %+v", loaded)
	}
	if loaded[0].Lookup.AnalyzerTransducer != "m" {
		t.Fatalf("override not applied: %+v", loaded[0].Lookup)
	}
}
