package suite

import (
	"fmt"
	"strings"

	"morphtest/internal/lookup"
)

// Backend names a family of lookup tools.
type Backend string

const (
	BackendAuto  Backend = "auto"
	BackendHFST  Backend = "hfst"
	BackendFoma  Backend = "foma"
	BackendXerox Backend = "xerox"
)

// Default lookup commands per backend.
const (
	DefaultHFSTCommand  = "hfst-optimised-lookup"
	DefaultFomaCommand  = "flookup"
	DefaultXeroxCommand = "lookup"
)

// ParseBackend accepts the backend names case-insensitively. Empty is auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendHFST, BackendFoma, BackendXerox:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, hfst, foma or xerox)", s)
	}
}

// ToolConfig is one backend section of a suite's Config block. Keys are
// matched case-insensitively by Parse.
type ToolConfig struct {
	Gen   string
	Morph string
	// App is the lookup command; only meaningful for xerox.
	App string
}

// Config is the Config block of a suite file.
type Config struct {
	HFST  *ToolConfig
	Foma  *ToolConfig
	Xerox *ToolConfig
}

// Overrides replace parts of the resolved configuration. Empty fields keep
// the suite's values.
type Overrides struct {
	Generator  string
	Analyzer   string
	LookupTool string
}

// Resolve picks the backend for cfg and returns the lookup configuration.
//
// Auto prefers hfst, then foma, then xerox, choosing the first whose Gen is
// set. An explicit choice requires that section unless the generator is
// overridden.
func Resolve(cfg *Config, prefer Backend, ov Overrides) (Backend, lookup.Config, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	chosen := prefer
	if chosen == "" || chosen == BackendAuto {
		switch {
		case cfg.HFST != nil && cfg.HFST.Gen != "":
			chosen = BackendHFST
		case cfg.Foma != nil && cfg.Foma.Gen != "":
			chosen = BackendFoma
		case cfg.Xerox != nil && cfg.Xerox.Gen != "":
			chosen = BackendXerox
		case ov.Generator != "":
			chosen = BackendHFST
		default:
			return "", lookup.Config{}, fmt.Errorf("config has neither hfst.Gen, foma.Gen nor xerox.Gen")
		}
	}

	var section *ToolConfig
	var command string
	switch chosen {
	case BackendHFST:
		section, command = cfg.HFST, DefaultHFSTCommand
	case BackendFoma:
		section, command = cfg.Foma, DefaultFomaCommand
	case BackendXerox:
		section, command = cfg.Xerox, DefaultXeroxCommand
		if section != nil && section.App != "" {
			command = section.App
		}
	default:
		return "", lookup.Config{}, fmt.Errorf("unknown backend %q", chosen)
	}
	if section == nil {
		section = &ToolConfig{}
	}

	out := lookup.Config{
		LookupCommand:       command,
		GeneratorTransducer: section.Gen,
		AnalyzerTransducer:  section.Morph,
	}
	if ov.Generator != "" {
		out.GeneratorTransducer = ov.Generator
	}
	if ov.Analyzer != "" {
		out.AnalyzerTransducer = ov.Analyzer
	}
	if ov.LookupTool != "" {
		out.LookupCommand = ov.LookupTool
	}
	if out.GeneratorTransducer == "" {
		return "", lookup.Config{}, fmt.Errorf("config.%s.Gen is missing", chosen)
	}
	return chosen, out, nil
}
