package lookup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// echoTool answers every query with "<query>.out" and closes the block.
const echoTool = `while IFS= read -r q; do
  printf '%s\t%s.out\n\n' "$q" "$q"
done
`

// writeTool writes a /bin/sh lookup tool into a temp dir and returns its path.
// The script receives the transducer path as $1.
func writeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookup-tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	return path
}

// writeTransducer creates a placeholder transducer file.
func writeTransducer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.hfstol")
	if err := os.WriteFile(path, []byte("fst"), 0o644); err != nil {
		t.Fatalf("write transducer: %v", err)
	}
	return path
}

func testOptions() Options {
	return Options{
		Capacity:        1,
		IdleTimeout:     500 * time.Millisecond,
		AbsoluteTimeout: 5 * time.Second,
		Quiet:           true,
	}
}

func newTestPool(t *testing.T, body string, opts Options) *Pool {
	t.Helper()
	p := NewPool(Key{Command: writeTool(t, body), Transducer: writeTransducer(t)}, opts)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func assertResults(t *testing.T, got []ResultSet, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d result sets, got %d", len(want), len(got))
	}
	for i := range want {
		g := got[i].Sorted()
		if len(g) != len(want[i]) {
			t.Fatalf("result %d: expected %v, got %v", i, want[i], g)
		}
		for j := range g {
			if g[j] != want[i][j] {
				t.Fatalf("result %d: expected %v, got %v", i, want[i], g)
			}
		}
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
