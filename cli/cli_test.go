package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	icl "morphtest/internal/cli"
)

// table answers both directions and closes every block with a blank line.
const tableTool = `while IFS= read -r q; do
  case "$q" in
    bar+V) printf 'bar+V\tb1\n\n' ;;
    baz+V) printf 'baz+V\tb2\nbaz+V\tb3\n\n' ;;
    b1) printf 'b1\tbar+V\n\n' ;;
    b2) printf 'b2\tbaz+V\n\n' ;;
    b3) printf 'b3\tbaz+V\nb3\tbaz+N\n\n' ;;
    *) printf '%s\t+inf\n\n' "$q" ;;
  esac
done
`

// mixedTool reads the whole chunk, then answers out of order without block
// terminators.
const mixedTool = `read a; read b
printf 'baz+V\tb3\nbar+V\tb1\nbaz+V\tb2\n'
cat >/dev/null
`

type fixture struct {
	dir   string
	tool  string
	suite string
}

func newFixture(t *testing.T, tool string, withAnalyser bool) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{dir: dir, tool: filepath.Join(dir, "lookup.sh"), suite: filepath.Join(dir, "verbs.yaml")}
	if err := os.WriteFile(f.tool, []byte("#!/bin/sh\n"+tool), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	fst := filepath.Join(dir, "model.hfstol")
	if err := os.WriteFile(fst, []byte("fst"), 0o644); err != nil {
		t.Fatalf("write transducer: %v", err)
	}
	cfg := "    Gen: " + fst + "\n"
	if withAnalyser {
		cfg += "    Morph: " + fst + "\n"
	}
	doc := "Config:\n  hfst:\n" + cfg + "Tests:\n  Verbs:\n    bar+V: b1\n    baz+V: [b2, b3]\n"
	if err := os.WriteFile(f.suite, []byte(doc), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}
	return f
}

func run(t *testing.T, env map[string]string, args ...string) (icl.Result, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	streams := icl.Streams{Stdout: &stdout, Stderr: &stderr, Getenv: func(k string) string { return env[k] }}
	res, _ := icl.Run(context.Background(), args, streams)
	return res, stdout.String(), stderr.String()
}

func TestEndToEnd_MixedOrderOutput(t *testing.T) {
	f := newFixture(t, mixedTool, false)
	for _, mode := range [][]string{{"--workers", "1"}, {"--serial"}} {
		t.Run(mode[0], func(t *testing.T) {
			args := append([]string{"--lookup-tool", f.tool, "--idle-timeout", "300ms", f.suite}, mode...)
			res, stdout, stderr := run(t, nil, args...)
			if res.ExitCode != icl.ExitSuccess {
				t.Fatalf("expected exit %d got %d\nstdout=%s\nstderr=%s", icl.ExitSuccess, res.ExitCode, stdout, stderr)
			}
			if !strings.Contains(stdout, "Total: 2, Passed: 2, Failed: 0") {
				t.Fatalf("unexpected report:\n%s", stdout)
			}
			s := res.Suites[0].Summary
			if s.Total != 2 || s.Passed != 2 || s.Failed != 0 {
				t.Fatalf("unexpected summary %+v", s)
			}
		})
	}
}

func TestAnalysis_IgnoreExtraAnalyses(t *testing.T) {
	f := newFixture(t, tableTool, true)

	res, stdout, _ := run(t, nil, "--lookup-tool", f.tool, "-o", "compact", f.suite)
	if res.ExitCode != icl.ExitTestFailure {
		t.Fatalf("expected exit %d got %d\n%s", icl.ExitTestFailure, res.ExitCode, stdout)
	}
	if !strings.Contains(stdout, "[FAIL] Verbs: b3: b3 => [baz+N, baz+V]") {
		t.Fatalf("expected the extra analysis to fail the case:\n%s", stdout)
	}
	if res.Suites[0].Summary.Total != 5 {
		t.Fatalf("expected 2 generation and 3 analysis cases, got %+v", res.Suites[0].Summary)
	}

	res, stdout, _ = run(t, nil, "--lookup-tool", f.tool, "-i", f.suite)
	if res.ExitCode != icl.ExitSuccess {
		t.Fatalf("expected exit %d got %d\n%s", icl.ExitSuccess, res.ExitCode, stdout)
	}
}

func TestDirectionFilters(t *testing.T) {
	f := newFixture(t, tableTool, true)

	res, _, _ := run(t, nil, "--lookup-tool", f.tool, "--lexical", f.suite)
	if res.ExitCode != icl.ExitSuccess || res.Suites[0].Summary.Total != 2 {
		t.Fatalf("--lexical: exit %d, %+v", res.ExitCode, res.Suites)
	}
	res, _, _ = run(t, nil, "--lookup-tool", f.tool, "--surface", "-i", f.suite)
	if res.ExitCode != icl.ExitSuccess || res.Suites[0].Summary.Total != 3 {
		t.Fatalf("--surface: exit %d, %+v", res.ExitCode, res.Suites)
	}
}

func TestDeterministicInvocation_IdenticalRunsIdenticalTraces(t *testing.T) {
	f := newFixture(t, tableTool, true)
	tracePath := filepath.Join(f.dir, "trace.json")
	args := []string{"--lookup-tool", f.tool, "--workers", "2", "--trace", tracePath, "-q", f.suite}

	res1, _, _ := run(t, nil, args...)
	tr1, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	res2, _, _ := run(t, nil, append([]string{"--serial"}, args...)...)
	tr2, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if res1.ExitCode != res2.ExitCode || res1.ExitCode != icl.ExitTestFailure {
		t.Fatalf("unexpected exit codes %d and %d", res1.ExitCode, res2.ExitCode)
	}
	if !bytes.Equal(tr1, tr2) || res1.TraceHash != res2.TraceHash {
		t.Fatalf("expected identical traces\n1=%s\n2=%s", tr1, tr2)
	}
}

func TestExitCodes(t *testing.T) {
	f := newFixture(t, tableTool, false)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"conflicting flags", []string{"-s", "-l", f.suite}, icl.ExitInvalidInvocation},
		{"no paths", []string{"-v"}, icl.ExitInvalidInvocation},
		{"unknown selection", []string{"--lookup-tool", f.tool, "-t", "Nouns", f.suite}, icl.ExitInvalidInvocation},
		{"missing lookup tool", []string{"--lookup-tool", filepath.Join(f.dir, "missing.sh"), f.suite}, icl.ExitConfigError},
		{"missing file", []string{filepath.Join(f.dir, "nope.yaml")}, icl.ExitConfigError},
		{"listing", []string{"-t", "list", f.suite}, icl.ExitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, stdout, stderr := run(t, nil, tt.args...)
			if res.ExitCode != tt.want {
				t.Fatalf("expected exit %d got %d\nstdout=%s\nstderr=%s", tt.want, res.ExitCode, stdout, stderr)
			}
		})
	}
}

func TestLocalizedReport(t *testing.T) {
	f := newFixture(t, tableTool, false)
	res, stdout, _ := run(t, map[string]string{"LANG": "nn_NO.UTF-8"}, "--lookup-tool", f.tool, "-o", "final", f.suite)
	if res.ExitCode != icl.ExitSuccess {
		t.Fatalf("expected exit %d got %d", icl.ExitSuccess, res.ExitCode)
	}
	if stdout != "Totalt: 2, Bestått: 2, Feila: 0\n" {
		t.Fatalf("unexpected report %q", stdout)
	}
}

func TestReportArtifacts(t *testing.T) {
	f := newFixture(t, tableTool, false)
	pdfPath := filepath.Join(f.dir, "report.pdf")
	stateDir := filepath.Join(f.dir, "state")

	res, stdout, _ := run(t, nil, "--lookup-tool", f.tool, "-o", "json", "--report-pdf", pdfPath, "--state-dir", stateDir, f.suite)
	if res.ExitCode != icl.ExitSuccess {
		t.Fatalf("expected exit %d got %d", icl.ExitSuccess, res.ExitCode)
	}
	if !strings.HasPrefix(stdout, `{"suites":[{"name":"verbs.yaml"`) || !strings.HasSuffix(stdout, `"total":{"failed":0,"failed_expectations":0,"passed":2,"passed_expectations":3,"total":2,"total_expectations":3}}`+"\n") {
		t.Fatalf("unexpected json report %s", stdout)
	}
	pdf, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("expected a pdf report (%v)", err)
	}
	for _, name := range []string{"run.json", "summary.json"} {
		if _, err := os.Stat(filepath.Join(stateDir, "runs", res.RunID, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}
