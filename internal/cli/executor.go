package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
	"morphtest/internal/lookup"
	"morphtest/internal/report"
	"morphtest/internal/state"
	"morphtest/internal/suite"
	"morphtest/internal/trace"
)

// Streams are the process boundary handed to Execute.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer

	// Getenv reads locale variables. Defaults to os.Getenv.
	Getenv func(string) string
}

func (s Streams) withDefaults() Streams {
	if s.Stdout == nil {
		s.Stdout = io.Discard
	}
	if s.Stderr == nil {
		s.Stderr = io.Discard
	}
	if s.Getenv == nil {
		s.Getenv = os.Getenv
	}
	return s
}

// Backend is a validated lookup backend.
type Backend interface {
	core.Backend
	Validate(ctx context.Context) error
}

// Backends hands out one Backend per lookup configuration and owns every
// process they start.
type Backends interface {
	Backend(cfg lookup.Config) Backend
	Close() error
}

type pooledBackends struct {
	registry *lookup.Registry
}

func (p pooledBackends) Backend(cfg lookup.Config) Backend {
	return lookup.NewPooledBackend(cfg, p.registry)
}

func (p pooledBackends) Close() error { return p.registry.Close() }

type directBackends struct {
	opts lookup.Options
}

func (d directBackends) Backend(cfg lookup.Config) Backend {
	return lookup.NewDirectBackend(cfg, d.opts)
}

func (directBackends) Close() error { return nil }

type Result struct {
	ExitCode  int
	Suites    []core.SuiteSummary
	RunID     string
	TraceHash string
}

// Execute runs inv with the backend variant it selects.
func Execute(ctx context.Context, inv Invocation, streams Streams) (Result, error) {
	streams = streams.withDefaults()
	opts := lookupOptions(inv, newLogger(inv, streams.Stderr))
	var backends Backends = pooledBackends{registry: lookup.NewRegistry(opts)}
	if inv.Serial {
		backends = directBackends{opts: opts}
	}
	return ExecuteWithBackends(ctx, inv, streams, backends)
}

func newLogger(inv Invocation, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case inv.Verbosity >= 2:
		level = slog.LevelDebug
	case inv.Verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func lookupOptions(inv Invocation, log *slog.Logger) lookup.Options {
	return lookup.Options{
		Capacity:        inv.Workers,
		IdleTimeout:     inv.IdleTimeout,
		AbsoluteTimeout: inv.Timeout,
		Quiet:           inv.Silent,
		Logger:          log,
	}
}

// backendGroup is the suites sharing one lookup configuration.
type backendGroup struct {
	cfg     lookup.Config
	indices []int
	backend Backend
}

// ExecuteWithBackends maps a canonical Invocation to test execution.
//
// Responsibilities:
//   - Load, filter and select suites.
//   - Validate every backend before any batch work.
//   - Run suites sharing a backend together, groups concurrently.
//   - Render reports, the trace and run history.
//   - Translate outcomes to semantic exit codes, including panics.
func ExecuteWithBackends(ctx context.Context, inv Invocation, streams Streams, backends Backends) (res Result, execErr error) {
	res.ExitCode = ExitInternalError
	if backends == nil {
		return res, fmt.Errorf("nil backends")
	}
	defer backends.Close()

	streams = streams.withDefaults()
	loc := i18n.FromEnv(streams.Getenv)
	log := newLogger(inv, streams.Stderr)

	var rec *state.Recorder
	if inv.StateDir != "" {
		st, err := state.NewStore(inv.StateDir)
		if err != nil {
			res.ExitCode = ExitInvalidInvocation
			return res, err
		}
		rec = &state.Recorder{Store: st}
	}
	var run state.Run
	mode := state.ModePooled
	if inv.Serial {
		mode = state.ModeSerial
	}
	startRun := func(planHash string, names []string) {
		if rec == nil {
			return
		}
		r, err := rec.StartRun(state.Run{PlanHash: planHash, Mode: mode, Suites: names})
		if err != nil {
			log.Warn("run history unavailable", "error", err)
			rec = nil
			return
		}
		run = r
		res.RunID = r.RunID
	}
	recordFailure := func(err error) {
		if rec == nil || run.RunID == "" {
			return
		}
		if rerr := rec.RecordFailure(run, err); rerr != nil {
			log.Warn("recording failure", "error", rerr)
		}
	}

	recorder := trace.NewRecorder()
	var planHash string
	defer func() {
		if r := recover(); r != nil {
			res.ExitCode = ExitInternalError
			res.Suites = nil
			execErr = fmt.Errorf("panic: %v", r)
			recordFailure(&state.SystemFailureError{Code: "Panic", Message: execErr.Error(), Cause: execErr})
			// The trace file still reflects every verdict resolved before the panic.
			if planHash != "" {
				if _, terr := writeTrace(inv.TracePath, recorder.Trace(planHash)); terr != nil {
					log.Warn("writing trace", "error", terr)
				}
			}
		}
	}()

	loaded, err := suite.Load(inv.Paths, suite.Options{Backend: inv.Backend, Overrides: inv.Overrides})
	if err != nil {
		emptyPlan, _ := trace.PlanHash(nil)
		startRun(emptyPlan, []string{})
		recordFailure(&state.ConfigFailureError{Code: "InvalidSuite", Message: err.Error(), Cause: err})
		fmt.Fprintln(streams.Stderr, err)
		res.ExitCode = ExitConfigError
		return res, err
	}

	loaded = suite.FilterDirection(loaded, inv.Direction)
	if len(loaded) == 0 {
		err := errors.New(loc.T(i18n.ErrNoTestsAfterFilter))
		fmt.Fprintln(streams.Stderr, err)
		res.ExitCode = ExitInvalidInvocation
		return res, err
	}
	if inv.TestSet {
		blocks := suite.Blocks(loaded)
		if suite.IsListRequest(inv.Test) {
			printListing(streams.Stdout, blocks, loc)
			res.ExitCode = ExitSuccess
			return res, nil
		}
		chosen, err := suite.Choose(blocks, inv.Test, loc)
		if err != nil {
			fmt.Fprintln(streams.Stderr, err)
			printListing(streams.Stderr, blocks, loc)
			res.ExitCode = ExitInvalidInvocation
			return res, err
		}
		loaded = suite.Restrict(loaded, chosen)
	}

	suites := make([]core.Suite, len(loaded))
	names := make([]string, len(loaded))
	caseCount := 0
	for i, l := range loaded {
		suites[i] = l.Suite
		names[i] = l.Suite.Name
		caseCount += len(l.Suite.Cases)
	}
	planHash, err = trace.PlanHash(suites)
	if err != nil {
		return res, fmt.Errorf("plan hash: %w", err)
	}
	startRun(planHash, names)

	groups := groupByConfig(loaded)
	for _, g := range groups {
		g.backend = backends.Backend(g.cfg)
		if err := g.backend.Validate(ctx); err != nil {
			first := loaded[g.indices[0]].Suite.Name
			fmt.Fprintln(streams.Stderr, loc.T(i18n.ErrValidationFailed, err))
			recordFailure(&state.SuiteError{Suite: first, Err: err})
			trace.SafeRecord(recorder, trace.BackendEvent(first, err))
			if _, terr := writeTrace(inv.TracePath, recorder.Trace(planHash)); terr != nil {
				log.Warn("writing trace", "error", terr)
			}
			res.ExitCode = ExitConfigError
			return res, err
		}
	}

	if inv.Verbosity > 0 && !inv.Silent {
		fmt.Fprintln(streams.Stderr, loc.T(i18n.InfoStartingTests, caseCount, loc.T(modeKey(inv.Direction))))
	}
	log.Info("running suites", "suites", len(suites), "cases", caseCount, "groups", len(groups), "mode", mode)

	results := make([]core.SuiteSummary, len(loaded))
	var eg errgroup.Group
	var panicMu sync.Mutex
	var panicked any
	for _, g := range groups {
		g := g
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					panicked = r
					panicMu.Unlock()
				}
			}()
			runner := core.NewRunner(g.backend)
			runner.IgnoreExtraAnalyses = inv.IgnoreExtraAnalyses
			runner.Observer = recorder
			runner.Logger = log
			if inv.NFC {
				runner.Normalizer = core.NewNFCNormalizer()
			}
			part := make([]core.Suite, len(g.indices))
			for i, idx := range g.indices {
				part[i] = suites[idx]
			}
			for i, s := range runner.RunSuites(ctx, part) {
				results[g.indices[i]] = s
			}
			return nil
		})
	}
	_ = eg.Wait()
	if panicked != nil {
		panic(panicked)
	}
	res.Suites = results
	total := report.Total(results)

	if !inv.Silent {
		ropts := report.Options{
			Format:              inv.Format,
			HideFails:           inv.HideFails,
			HidePasses:          inv.HidePasses,
			Color:               inv.Color,
			IgnoreExtraAnalyses: inv.IgnoreExtraAnalyses,
			Verbose:             inv.Verbosity > 0,
			Localizer:           loc,
		}
		if err := report.Render(streams.Stdout, results, ropts); err != nil {
			return res, fmt.Errorf("render report: %w", err)
		}
	}
	if inv.PDFPath != "" {
		var buf bytes.Buffer
		ropts := report.Options{
			HideFails:           inv.HideFails,
			HidePasses:          inv.HidePasses,
			IgnoreExtraAnalyses: inv.IgnoreExtraAnalyses,
			RunID:               res.RunID,
			Localizer:           loc,
		}
		if err := report.PDF(&buf, results, ropts); err != nil {
			return res, err
		}
		if err := state.WriteFileAtomic(inv.PDFPath, buf.Bytes()); err != nil {
			return res, fmt.Errorf("write pdf report: %w", err)
		}
	}

	hash, err := writeTrace(inv.TracePath, recorder.Trace(planHash))
	if err != nil {
		return res, err
	}
	res.TraceHash = hash
	log.Info("verdict trace", "plan_hash", planHash, "trace_hash", hash)

	if rec != nil {
		counts := make([]state.SuiteCounts, len(results))
		for i, s := range results {
			counts[i] = state.SuiteCounts{Name: s.Name, Total: s.Summary.Total, Passed: s.Summary.Passed, Failed: s.Summary.Failed}
		}
		sum := state.Summary{Total: total.Total, Passed: total.Passed, Failed: total.Failed, Suites: counts, TraceHash: hash}
		if err := rec.FinishRun(run, sum); err != nil {
			log.Warn("recording summary", "error", err)
		}
	}

	if inv.Verbosity > 0 && !inv.Silent {
		fmt.Fprintln(streams.Stderr, loc.T(i18n.InfoFinished, total.Passed, total.Failed))
	}
	if total.AllPassed() {
		res.ExitCode = ExitSuccess
	} else {
		res.ExitCode = ExitTestFailure
	}
	return res, nil
}

// groupByConfig keeps the order in which configurations first appear.
func groupByConfig(loaded []suite.Loaded) []*backendGroup {
	var groups []*backendGroup
	byCfg := map[lookup.Config]*backendGroup{}
	for i, l := range loaded {
		g, ok := byCfg[l.Lookup]
		if !ok {
			g = &backendGroup{cfg: l.Lookup}
			byCfg[l.Lookup] = g
			groups = append(groups, g)
		}
		g.indices = append(g.indices, i)
	}
	return groups
}

func printListing(w io.Writer, blocks []suite.Block, loc *i18n.Localizer) {
	fmt.Fprintln(w, loc.T(i18n.AvailableTests))
	for _, line := range suite.Listing(blocks, loc) {
		fmt.Fprintln(w, line)
	}
}

func modeKey(dir core.Direction) string {
	switch dir {
	case core.Generate:
		return i18n.ModeGenerateOnly
	case core.Analyze:
		return i18n.ModeAnalyzeOnly
	default:
		return i18n.ModeAll
	}
}

// writeTrace writes the canonical trace when path is set and returns its hash.
func writeTrace(path string, tr trace.RunTrace) (string, error) {
	b, err := tr.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("trace: %w", err)
	}
	if path != "" {
		if err := state.WriteFileAtomic(path, b); err != nil {
			return "", fmt.Errorf("write trace: %w", err)
		}
	}
	return trace.ComputeTraceHash(b), nil
}
