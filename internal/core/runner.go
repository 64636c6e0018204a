package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"morphtest/internal/lookup"
)

// Backend answers one batch per direction. Results are index-aligned with
// the queries.
type Backend interface {
	Generate(ctx context.Context, queries []string) ([]lookup.ResultSet, error)
	Analyze(ctx context.Context, queries []string) ([]lookup.ResultSet, error)
}

// Observer is notified of every verdict, in case order.
type Observer interface {
	CaseResolved(index int, r CaseResult, state CaseState)
}

// Runner turns test cases into a Summary.
type Runner struct {
	// Backend performs the lookups.
	Backend Backend

	// IgnoreExtraAnalyses selects the subset policy for Analyze cases.
	IgnoreExtraAnalyses bool

	// Normalizer is applied to inputs and expectations before dispatch (optional).
	Normalizer Normalizer

	// Observer receives verdicts (optional).
	Observer Observer

	// Logger is optional.
	Logger *slog.Logger
}

// NewRunner creates a Runner with exact comparison for both directions.
func NewRunner(backend Backend) *Runner {
	return &Runner{Backend: backend}
}

type batchOutcome struct {
	results []lookup.ResultSet
	err     error
}

// Run resolves every case. It never fails as a whole: batch errors become
// per-case errors.
func (r *Runner) Run(ctx context.Context, cases []TestCase) Summary {
	log := r.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cases = r.normalize(cases)

	// Positions of each case within its direction's batch.
	var genIdx, anaIdx []int
	var genQ, anaQ []string
	pos := make([]int, len(cases))
	for i, c := range cases {
		switch c.Direction {
		case Generate:
			pos[i] = len(genQ)
			genIdx = append(genIdx, i)
			genQ = append(genQ, c.Input)
		case Analyze:
			pos[i] = len(anaQ)
			anaIdx = append(anaIdx, i)
			anaQ = append(anaQ, c.Input)
		}
	}

	// The directions use independent pools; neither aborts the other.
	var gen, ana batchOutcome
	var g errgroup.Group
	var mu sync.Mutex
	var panicked any
	spawn := func(fn func()) {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					mu.Lock()
					panicked = p
					mu.Unlock()
				}
			}()
			fn()
			return nil
		})
	}
	if len(genQ) > 0 {
		spawn(func() { gen = r.batch(ctx, log, Generate, genQ) })
	}
	if len(anaQ) > 0 {
		spawn(func() { ana = r.batch(ctx, log, Analyze, anaQ) })
	}
	_ = g.Wait()
	// A panicking backend is re-raised on the caller's goroutine.
	if panicked != nil {
		panic(panicked)
	}

	states := NewCaseStates(len(cases))
	var summary Summary
	summary.Cases = make([]CaseResult, 0, len(cases))
	for i, c := range cases {
		var res CaseResult
		var to CaseState
		switch c.Direction {
		case Generate:
			res, to = r.resolve(c, gen, pos[i])
		case Analyze:
			res, to = r.resolve(c, ana, pos[i])
		default:
			res, to = errored(c, fmt.Sprintf("unknown direction %q", c.Direction)), CaseErrored
		}
		if err := states.Transition(i, CasePending, to); err != nil {
			// Unreachable with one resolution per index.
			log.Error("case state", "case", c.Name, "error", err)
		}
		summary.Add(res)
		if r.Observer != nil {
			r.Observer.CaseResolved(i, res, to)
		}
	}
	if p := states.Pending(); len(p) > 0 {
		log.Error("cases left unresolved", "count", len(p))
	}
	log.Info("cases resolved",
		"total", summary.Total, "passed", summary.Passed, "failed", summary.Failed,
		"generate", len(genIdx), "analyze", len(anaIdx))
	return summary
}

// SuiteSummary is the outcome of one suite.
type SuiteSummary struct {
	Name    string  `json:"name"`
	Summary Summary `json:"summary"`
}

// RunSuites runs all suites as one batch per direction and splits the
// verdicts back per suite.
func (r *Runner) RunSuites(ctx context.Context, suites []Suite) []SuiteSummary {
	var all []TestCase
	for _, s := range suites {
		for _, c := range s.Cases {
			c.Suite = s.Name
			all = append(all, c)
		}
	}
	total := r.Run(ctx, all)

	out := make([]SuiteSummary, len(suites))
	next := 0
	for i, s := range suites {
		out[i].Name = s.Name
		for range s.Cases {
			out[i].Summary.Add(total.Cases[next])
			next++
		}
		if out[i].Summary.Cases == nil {
			out[i].Summary.Cases = []CaseResult{}
		}
	}
	return out
}

func (r *Runner) batch(ctx context.Context, log *slog.Logger, dir Direction, queries []string) batchOutcome {
	start := time.Now()
	var res []lookup.ResultSet
	var err error
	if r.Backend == nil {
		err = fmt.Errorf("no backend configured")
	} else if dir == Generate {
		res, err = r.Backend.Generate(ctx, queries)
	} else {
		res, err = r.Backend.Analyze(ctx, queries)
	}
	if err == nil && len(res) != len(queries) {
		err = fmt.Errorf("backend returned %d results for %d queries", len(res), len(queries))
	}
	if err != nil {
		log.Warn("batch failed", "direction", dir, "queries", len(queries), "error", err)
		return batchOutcome{err: err}
	}
	log.Debug("batch done", "direction", dir, "queries", len(queries), "elapsed", time.Since(start))
	return batchOutcome{results: res}
}

func (r *Runner) resolve(c TestCase, b batchOutcome, pos int) (CaseResult, CaseState) {
	if b.err != nil {
		return errored(c, fmt.Sprintf("Batch %s error: %v", c.Direction, b.err)), CaseErrored
	}
	actual := r.normalizeOutputs(b.results[pos])
	policy := PolicyFor(c.Direction, r.IgnoreExtraAnalyses)
	passed, total := CountExpectations(c.Expect, actual)
	res := CaseResult{
		Suite:              c.Suite,
		Name:               c.Name,
		Direction:          c.Direction,
		Input:              c.Input,
		Expected:           expectedOf(c),
		Actual:             actual.Sorted(),
		Passed:             Pass(policy, c.Expect, actual),
		ExpectationsPassed: passed,
		ExpectationsTotal:  total,
	}
	if res.Passed {
		return res, CasePassed
	}
	return res, CaseFailed
}

func errored(c TestCase, msg string) CaseResult {
	return CaseResult{
		Suite:             c.Suite,
		Name:              c.Name,
		Direction:         c.Direction,
		Input:             c.Input,
		Expected:          expectedOf(c),
		Actual:            []string{},
		Error:             msg,
		ExpectationsTotal: len(dedupe(c.Expect)),
	}
}

func expectedOf(c TestCase) []string {
	return dedupe(c.Expect)
}

func (r *Runner) normalizeOutputs(rs lookup.ResultSet) lookup.ResultSet {
	if r.Normalizer == nil {
		return rs
	}
	out := lookup.NewResultSet()
	for v := range rs {
		out.Add(r.Normalizer.Normalize(v))
	}
	return out
}

func (r *Runner) normalize(cases []TestCase) []TestCase {
	if r.Normalizer == nil {
		return cases
	}
	out := make([]TestCase, len(cases))
	for i, c := range cases {
		c.Input = r.Normalizer.Normalize(c.Input)
		exp := make([]string, len(c.Expect))
		for j, e := range c.Expect {
			exp[j] = r.Normalizer.Normalize(e)
		}
		c.Expect = exp
		out[i] = c
	}
	return out
}
