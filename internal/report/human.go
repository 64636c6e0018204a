package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

type painter bool

func (p painter) paint(s string, codes ...string) string {
	if !p || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + ansiReset
}

func (p painter) pass(s string) string { return p.paint(s, ansiGreen) }
func (p painter) fail(s string) string { return p.paint(s, ansiBold, ansiRed) }
func (p painter) bold(s string) string { return p.paint(s, ansiBold) }

// Human writes one of the text formats.
func Human(w io.Writer, suites []core.SuiteSummary, o Options) error {
	bw := bufio.NewWriter(w)
	h := human{w: bw, o: o, loc: o.localizer(), p: painter(o.Color)}

	switch o.Format {
	case FormatFinal:
	case FormatTerse:
		for _, s := range suites {
			h.terse(s)
		}
	case FormatCompact:
		for _, s := range suites {
			h.compact(s)
		}
	default:
		for i, s := range suites {
			if i > 0 {
				fmt.Fprintln(bw)
			}
			h.normal(s)
		}
	}
	// A single normal suite already ends with its own totals.
	normal := o.Format == FormatNormal || o.Format == ""
	if !normal || len(suites) != 1 {
		if normal && len(suites) > 1 {
			fmt.Fprintln(bw)
		}
		h.totals(Total(suites))
	}
	return bw.Flush()
}

type human struct {
	w   io.Writer
	o   Options
	loc *i18n.Localizer
	p   painter
}

func (h human) visible(r core.CaseResult) bool {
	if r.Passed {
		return !h.o.HidePasses
	}
	return !h.o.HideFails
}

func (h human) normal(s core.SuiteSummary) {
	fmt.Fprintln(h.w, h.p.bold(h.loc.T(i18n.ReportSuite, s.Name)))
	for _, r := range s.Summary.Cases {
		if !h.visible(r) {
			continue
		}
		if r.Passed {
			fmt.Fprintf(h.w, "[%s] %s\n", h.p.pass(h.loc.T(i18n.ReportPass)), h.p.pass(r.Name))
			continue
		}
		fmt.Fprintf(h.w, "[%s] %s\n", h.p.fail(h.loc.T(i18n.ReportFail)), h.p.fail(r.Name))
		for _, d := range details(r, h.loc, h.o.IgnoreExtraAnalyses) {
			fmt.Fprintf(h.w, "  %s %s\n", h.p.bold(d.label), d.value)
		}
	}
	h.totals(s.Summary)
}

func (h human) compact(s core.SuiteSummary) {
	for _, r := range s.Summary.Cases {
		if !h.visible(r) {
			continue
		}
		if r.Passed {
			fmt.Fprintf(h.w, "[%s] %s\n", h.p.pass(h.loc.T(i18n.ReportPass)), r.Name)
		} else if r.Error != "" {
			fmt.Fprintf(h.w, "[%s] %s: %s\n", h.p.fail(h.loc.T(i18n.ReportFail)), r.Name, r.Error)
		} else {
			fmt.Fprintf(h.w, "[%s] %s: %s => %s\n", h.p.fail(h.loc.T(i18n.ReportFail)), r.Name, r.Input, list(r.Actual))
		}
	}
	fmt.Fprintln(h.w, h.suiteLine(s))
}

func (h human) terse(s core.SuiteSummary) {
	var b strings.Builder
	for _, r := range s.Summary.Cases {
		if r.Passed {
			b.WriteString(h.p.pass("."))
		} else {
			b.WriteString(h.p.fail("F"))
		}
	}
	fmt.Fprintf(h.w, "%s %s\n", b.String(), h.suiteLine(s))
}

func (h human) suiteLine(s core.SuiteSummary) string {
	line := h.loc.T(i18n.ReportSuiteLine, s.Name, s.Summary.Passed, s.Summary.Total)
	if s.Summary.Failed > 0 {
		return h.p.fail(line)
	}
	return h.p.pass(line)
}

func (h human) totals(sum core.Summary) {
	line := h.loc.T(i18n.ReportTotal, sum.Total, sum.Passed, sum.Failed)
	if sum.Failed > 0 {
		line = h.p.fail(line)
	} else {
		line = h.p.pass(line)
	}
	fmt.Fprintln(h.w, line)
	if h.o.Verbose {
		fmt.Fprintln(h.w, h.loc.T(i18n.ReportExpectations, sum.PassedExpectations, sum.TotalExpectations, sum.FailedExpectations))
	}
}

type detail struct {
	label string
	value string
}

// details lists the lines shown under a failing case. Labels are padded to a
// common width.
func details(r core.CaseResult, loc *i18n.Localizer, ignoreExtra bool) []detail {
	var out []detail
	out = append(out, detail{loc.T(i18n.ReportInput), r.Input})
	if r.Error != "" {
		out = append(out, detail{loc.T(i18n.ReportError), r.Error})
	} else {
		out = append(out,
			detail{loc.T(i18n.ReportExpected), list(r.Expected)},
			detail{loc.T(i18n.ReportActual), list(r.Actual)},
		)
		if m := r.Missing(); len(m) > 0 {
			out = append(out, detail{loc.T(i18n.ReportMissing), list(m)})
		}
		if u := r.Unexpected(); len(u) > 0 && !(ignoreExtra && r.Direction == core.Analyze) {
			out = append(out, detail{loc.T(i18n.ReportUnexpected), list(u)})
		}
	}
	width := 0
	for _, d := range out {
		width = max(width, len([]rune(d.label)))
	}
	for i := range out {
		out[i].label += strings.Repeat(" ", width-len([]rune(out[i].label))) + ":"
	}
	return out
}

func list(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}
