package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
	"morphtest/internal/report"
	"morphtest/internal/suite"
)

const (
	ExitSuccess           = 0
	ExitTestFailure       = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Invocation is the canonical description of one run. Nothing downstream
// reads flags or the environment.
type Invocation struct {
	// Paths are test files or directories, in command-line order.
	Paths []string

	Backend   suite.Backend
	Overrides suite.Overrides

	// Direction restricts the run to one direction; empty runs both.
	Direction core.Direction

	// Test is the block selection; TestSet distinguishes "--test ''" from no flag.
	Test    string
	TestSet bool

	Format              report.Format
	HideFails           bool
	HidePasses          bool
	Color               bool
	Silent              bool
	IgnoreExtraAnalyses bool
	Verbosity           int

	Serial      bool
	Workers     int
	Timeout     time.Duration
	IdleTimeout time.Duration
	NFC         bool

	TracePath string
	StateDir  string
	PDFPath   string
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// countFlag is a boolean flag that counts its occurrences.
type countFlag struct {
	n  *int
	by int
}

func (c countFlag) String() string {
	if c.n == nil {
		return "0"
	}
	return strconv.Itoa(*c.n)
}

func (c countFlag) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*c.n += c.by
	}
	return nil
}

func (c countFlag) IsBoolFlag() bool { return true }

// ParseInvocation parses command-line arguments (without argv[0]). Flags and
// paths may be interleaved. loc localizes conflict messages.
func ParseInvocation(args []string, loc *i18n.Localizer) (Invocation, error) {
	if loc == nil {
		loc = i18n.English()
	}
	fs := flag.NewFlagSet("morphtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var inv Invocation
	var backend, output string
	var surface, lexical, noColor, debug bool
	var timeout, idle time.Duration

	fs.StringVar(&backend, "backend", string(suite.BackendAuto), "Backend: auto|hfst|foma|xerox")
	fs.StringVar(&inv.Overrides.Generator, "generator", "", "Generator transducer, overrides the test file")
	fs.StringVar(&inv.Overrides.Analyzer, "analyser", "", "Analyser transducer, overrides the test file")
	fs.StringVar(&inv.Overrides.Analyzer, "analyzer", "", "Alias of --analyser")
	fs.StringVar(&inv.Overrides.LookupTool, "lookup-tool", "", "Lookup command, overrides the backend default")
	for _, name := range []string{"silent", "q"} {
		fs.BoolVar(&inv.Silent, name, false, "Print no report and suppress lookup stderr")
	}
	for _, name := range []string{"ignore-extra-analyses", "i"} {
		fs.BoolVar(&inv.IgnoreExtraAnalyses, name, false, "Analyses pass when every expected analysis is present")
	}
	for _, name := range []string{"color", "c"} {
		fs.BoolVar(&inv.Color, name, false, "Colour the report")
	}
	fs.BoolVar(&noColor, "no-color", false, "Never colour the report")
	fs.Var(countFlag{n: &inv.Verbosity, by: 1}, "v", "More logging (repeatable)")
	fs.Var(countFlag{n: &inv.Verbosity, by: 1}, "verbose", "More logging (repeatable)")
	fs.Var(countFlag{n: &inv.Verbosity, by: 2}, "vv", "Debug logging")
	fs.BoolVar(&debug, "debug", false, "Debug logging")
	for _, name := range []string{"surface", "s"} {
		fs.BoolVar(&surface, name, false, "Run analysis tests only")
	}
	for _, name := range []string{"lexical", "l"} {
		fs.BoolVar(&lexical, name, false, "Run generation tests only")
	}
	for _, name := range []string{"hide-fails", "f"} {
		fs.BoolVar(&inv.HideFails, name, false, "Hide failing cases")
	}
	for _, name := range []string{"hide-passes", "p"} {
		fs.BoolVar(&inv.HidePasses, name, false, "Hide passing cases")
	}
	for _, name := range []string{"test", "t"} {
		fs.Func(name, "Run one block by number, title or group; 0 or list lists blocks", func(s string) error {
			inv.Test, inv.TestSet = s, true
			return nil
		})
	}
	for _, name := range []string{"output", "o"} {
		fs.StringVar(&output, name, string(report.FormatNormal), "Report format: normal|compact|terse|final|json")
	}
	fs.BoolVar(&inv.Serial, "serial", false, "Start one lookup process per batch instead of a pool")
	fs.IntVar(&inv.Workers, "workers", 0, "Lookup processes per transducer (0 = number of CPUs)")
	fs.DurationVar(&timeout, "timeout", 0, "Upper bound for one batch (0 = default)")
	fs.DurationVar(&idle, "idle-timeout", 0, "Quiet period that ends a batch read (0 = default)")
	fs.BoolVar(&inv.NFC, "nfc", false, "Normalize inputs and expectations to NFC")
	fs.StringVar(&inv.TracePath, "trace", "", "Write the canonical verdict trace to this file")
	fs.StringVar(&inv.StateDir, "state-dir", "", "Persist run history under this directory")
	fs.StringVar(&inv.PDFPath, "report-pdf", "", "Also write a PDF report to this file")

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return Invocation{}, invalidInvocationf("%v", err)
		}
		if fs.NArg() == 0 {
			break
		}
		if p := strings.TrimSpace(fs.Arg(0)); p != "" {
			inv.Paths = append(inv.Paths, p)
		}
		rest = fs.Args()[1:]
	}
	if len(inv.Paths) == 0 {
		return Invocation{}, invalidInvocationf("at least one test file or directory is required")
	}

	var err error
	if inv.Backend, err = suite.ParseBackend(backend); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if inv.Format, err = report.ParseFormat(output); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}

	conflicts := []struct {
		a, b string
		aSet bool
		bSet bool
	}{
		{"--surface", "--lexical", surface, lexical},
		{"--hide-fails", "--hide-passes", inv.HideFails, inv.HidePasses},
		{"--color", "--no-color", inv.Color, noColor},
	}
	for _, c := range conflicts {
		if c.aSet && c.bSet {
			return Invocation{}, invalidInvocationf("%s", loc.T(i18n.ErrConflictingFlags, c.a, c.b))
		}
	}
	switch {
	case surface:
		inv.Direction = core.Analyze
	case lexical:
		inv.Direction = core.Generate
	}
	if debug && inv.Verbosity < 2 {
		inv.Verbosity = 2
	}

	if inv.Workers < 0 {
		return Invocation{}, invalidInvocationf("--workers must be >= 0 (got %d)", inv.Workers)
	}
	if timeout < 0 || idle < 0 {
		return Invocation{}, invalidInvocationf("timeouts must not be negative")
	}
	inv.Timeout, inv.IdleTimeout = timeout, idle
	return inv, nil
}

// ExitCode extracts a semantic exit code from a ParseInvocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
