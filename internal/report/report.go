// Package report renders run summaries for people and machines.
//
// Human formats go to a terminal and honour the hide and colour options.
// The JSON format is RFC 8785 canonical and always complete. PDF output is a
// printable copy of the normal format.
package report

import (
	"fmt"
	"io"
	"strings"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
)

// Format selects how a summary is rendered on stdout.
type Format string

const (
	FormatNormal  Format = "normal"
	FormatCompact Format = "compact"
	FormatTerse   Format = "terse"
	FormatFinal   Format = "final"
	FormatJSON    Format = "json"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatNormal, FormatCompact, FormatTerse, FormatFinal, FormatJSON:
		return f, nil
	case "":
		return FormatNormal, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want normal, compact, terse, final or json)", s)
	}
}

// Options controls rendering. The zero value renders the normal format in
// English without colour.
type Options struct {
	Format     Format
	HideFails  bool
	HidePasses bool
	Color      bool

	// IgnoreExtraAnalyses hides unexpected analyses, which do not fail a case.
	IgnoreExtraAnalyses bool

	// Verbose adds expectation-level counts.
	Verbose bool

	// RunID is printed in the PDF header when set.
	RunID string

	Localizer *i18n.Localizer
}

func (o Options) localizer() *i18n.Localizer {
	if o.Localizer == nil {
		return i18n.English()
	}
	return o.Localizer
}

// Render writes suites to w in o.Format.
func Render(w io.Writer, suites []core.SuiteSummary, o Options) error {
	if o.Format == FormatJSON {
		return JSON(w, suites)
	}
	return Human(w, suites, o)
}

// Total merges the summaries of all suites in order.
func Total(suites []core.SuiteSummary) core.Summary {
	var total core.Summary
	for _, s := range suites {
		total.Merge(s.Summary)
	}
	return total
}
