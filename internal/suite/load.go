// Package suite loads YAML test files into core suites and resolves which
// lookup tool and transducers each one runs against.
package suite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"morphtest/internal/core"
	"morphtest/internal/lookup"
)

// Document is a parsed suite file with its key order preserved.
type Document struct {
	Config *Config
	Groups []Group
}

// Group is one named block of the Tests mapping.
type Group struct {
	Name    string
	Entries []Entry
}

// Entry maps one lexical form to its expected surface forms.
type Entry struct {
	Input  string
	Expect []string
}

// Loaded is a suite together with its resolved backend.
type Loaded struct {
	Path    string
	Suite   core.Suite
	Backend Backend
	Lookup  lookup.Config
}

// Options control loading.
type Options struct {
	Backend   Backend
	Overrides Overrides
}

// Load expands paths and loads every suite file, in order.
func Load(paths []string, opts Options) ([]Loaded, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}
	out := make([]Loaded, 0, len(files))
	for _, f := range files {
		l, err := LoadFile(f, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// LoadFile loads one suite file.
func LoadFile(path string, opts Options) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Loaded{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	backend, cfg, err := Resolve(doc.Config, opts.Backend, opts.Overrides)
	if err != nil {
		return Loaded{}, fmt.Errorf("incomplete or ambiguous Config in %s: %w", path, err)
	}
	return Loaded{
		Path:    path,
		Suite:   core.Suite{Name: filepath.Base(path), Cases: doc.Cases(cfg.AnalyzerTransducer != "")},
		Backend: backend,
		Lookup:  cfg,
	}, nil
}

// Expand replaces directories by the *.yaml and *.yml files below them, in
// lexical order. Files are kept as given.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("test path: %w", err)
		}
		if !fi.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	return files, nil
}

// Parse decodes a suite document. Top-level and Config keys match
// case-insensitively; test keys and values are trimmed.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	top := deref(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping with Config and Tests", top.Line)
	}

	doc := &Document{}
	sawTests := false
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], deref(top.Content[i+1])
		switch strings.ToLower(key.Value) {
		case "config":
			cfg, err := parseConfig(val)
			if err != nil {
				return nil, err
			}
			doc.Config = cfg
		case "tests":
			groups, err := parseTests(val)
			if err != nil {
				return nil, err
			}
			doc.Groups = groups
			sawTests = true
		}
	}
	if !sawTests {
		return nil, fmt.Errorf("missing Tests")
	}
	return doc, nil
}

func parseConfig(n *yaml.Node) (*Config, error) {
	cfg := &Config{}
	if isNull(n) {
		return cfg, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: Config must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		section, err := parseToolConfig(val)
		if err != nil {
			return nil, fmt.Errorf("config.%s: %w", key.Value, err)
		}
		switch strings.ToLower(key.Value) {
		case "hfst":
			cfg.HFST = section
		case "foma":
			cfg.Foma = section
		case "xerox":
			cfg.Xerox = section
		}
	}
	return cfg, nil
}

func parseToolConfig(n *yaml.Node) (*ToolConfig, error) {
	tc := &ToolConfig{}
	if isNull(n) {
		return tc, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %s must be a string", val.Line, key.Value)
		}
		v := strings.TrimSpace(val.Value)
		if isNull(val) {
			v = ""
		}
		switch strings.ToLower(key.Value) {
		case "gen":
			tc.Gen = v
		case "morph":
			tc.Morph = v
		case "app":
			tc.App = v
		}
	}
	return tc, nil
}

func parseTests(n *yaml.Node) ([]Group, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: Tests must be a mapping of groups", n.Line)
	}
	groups := make([]Group, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, body := strings.TrimSpace(n.Content[i].Value), deref(n.Content[i+1])
		g := Group{Name: name}
		if isNull(body) {
			groups = append(groups, g)
			continue
		}
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: group %q must map inputs to expected forms", body.Line, name)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			input := strings.TrimSpace(body.Content[j].Value)
			expect, err := oneOrMany(deref(body.Content[j+1]))
			if err != nil {
				return nil, fmt.Errorf("group %q, input %q: %w", name, input, err)
			}
			g.Entries = append(g.Entries, Entry{Input: input, Expect: expect})
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// oneOrMany accepts a string or a list of strings. Values are trimmed and
// empty ones dropped.
func oneOrMany(n *yaml.Node) ([]string, error) {
	if isNull(n) {
		return []string{}, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(n.Value); v != "" {
			return []string{v}, nil
		}
		return []string{}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = deref(item)
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: expected a string", item.Line)
			}
			if v := strings.TrimSpace(item.Value); v != "" {
				out = append(out, v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: expected a string or a list of strings", n.Line)
	}
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// Cases returns the generation cases of every group followed, per group, by
// the inverse analysis cases when withAnalysis is set. An analysis case
// expects every lexical form of the group that generates its surface form.
func (d *Document) Cases(withAnalysis bool) []core.TestCase {
	var cases []core.TestCase
	for _, g := range d.Groups {
		for _, e := range g.Entries {
			cases = append(cases, core.TestCase{
				Name:      g.Name + ": " + e.Input,
				Direction: core.Generate,
				Input:     e.Input,
				Expect:    e.Expect,
			})
		}
		if !withAnalysis {
			continue
		}
		var surfaces []string
		lexical := map[string][]string{}
		for _, e := range g.Entries {
			for _, s := range e.Expect {
				if _, ok := lexical[s]; !ok {
					surfaces = append(surfaces, s)
				}
				lexical[s] = append(lexical[s], e.Input)
			}
		}
		for _, s := range surfaces {
			cases = append(cases, core.TestCase{
				Name:      g.Name + ": " + s,
				Direction: core.Analyze,
				Input:     s,
				Expect:    lexical[s],
			})
		}
	}
	return cases
}
