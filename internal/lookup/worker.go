package lookup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Key identifies the kind of worker a pool manages.
type Key struct {
	Command    string
	Transducer string
}

func (k Key) String() string { return k.Command + " " + k.Transducer }

// Worker is one running lookup tool bound to one transducer file.
//
// A Worker is not safe for concurrent use: the pool hands it to exactly one
// caller at a time.
type Worker struct {
	id   uint64
	key  Key
	opts Options
	log  *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	in     *bufio.Writer
	stdout io.ReadCloser

	// lines is fed by the reader goroutine and closed at EOF; readErr is
	// valid once lines is closed.
	lines   chan string
	readErr error

	exited  chan struct{}
	exitErr error

	done      chan struct{}
	closeOnce sync.Once

	// desynced is set when a batch ended with answers still outstanding;
	// late lines would be credited to the next batch.
	desynced bool
}

// resolveCommand checks that the command can be executed and the transducer
// exists, so spawn failures surface as STARTUP errors with a useful message.
func resolveCommand(key Key) (string, error) {
	if key.Command == "" {
		return "", startupErrorf("resolve", nil, "lookup command is empty")
	}
	path, err := exec.LookPath(key.Command)
	if err != nil {
		return "", startupErrorf("resolve", err, "lookup command %q not found or not executable; check that it is installed and in PATH", key.Command)
	}
	if key.Transducer == "" {
		return "", startupErrorf("resolve", nil, "transducer path is empty")
	}
	fi, err := os.Stat(key.Transducer)
	if err != nil {
		return "", startupErrorf("resolve", err, "transducer %q is not readable", key.Transducer)
	}
	if fi.IsDir() {
		return "", startupErrorf("resolve", nil, "transducer %q is a directory", key.Transducer)
	}
	return path, nil
}

// startWorker spawns `<command> <transducer>` with piped stdin/stdout.
func startWorker(key Key, opts Options, id uint64) (*Worker, error) {
	path, err := resolveCommand(key)
	if err != nil {
		return nil, err
	}

	// #nosec G204 -- the lookup command is operator configuration.
	cmd := exec.Command(path, key.Transducer)
	// Own process group so wrapper scripts die together with their children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if !opts.Quiet {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, startupErrorf("spawn", err, "stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, startupErrorf("spawn", err, "stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, startupErrorf("spawn", err, "failed to start %q", key.Command)
	}

	w := &Worker{
		id:     id,
		key:    key,
		opts:   opts,
		log:    opts.Logger.With("worker", id, "transducer", key.Transducer),
		cmd:    cmd,
		stdin:  stdin,
		in:     bufio.NewWriter(stdin),
		stdout: stdout,
		lines:  make(chan string, 256),
		exited: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.readLoop()
	go w.waitLoop()
	w.log.Debug("lookup worker started", "pid", cmd.Process.Pid)
	return w, nil
}

func (w *Worker) readLoop() {
	defer close(w.lines)
	sc := bufio.NewScanner(w.stdout)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		select {
		case w.lines <- sc.Text():
		case <-w.done:
			return
		}
	}
	w.readErr = sc.Err()
}

func (w *Worker) waitLoop() {
	_, err := w.cmd.Process.Wait()
	w.exitErr = err
	close(w.exited)
}

// ID is the pool-local sequence number of the worker.
func (w *Worker) ID() uint64 { return w.id }

// PID of the underlying process.
func (w *Worker) PID() int { return w.cmd.Process.Pid }

// Alive reports whether the underlying process has not exited.
func (w *Worker) Alive() bool {
	select {
	case <-w.exited:
		return false
	default:
		return true
	}
}

// InSync reports whether every batch so far ended with all of its queries
// answered. The pool never reuses a worker that is out of sync.
func (w *Worker) InSync() bool { return !w.desynced }

// drainStale discards lines left over from an earlier batch.
func (w *Worker) drainStale() int {
	n := 0
	for {
		select {
		case _, ok := <-w.lines:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// ProcessBatch writes queries to the tool and collects its answers.
//
// There is no end-of-batch marker in the protocol, so reading stops at the
// first of:
//   - every query answered and one result block closed per query
//   - every query answered and SettleWindow passed without another line
//   - IdleTimeout passed without a line, once the tool started answering
//   - AbsoluteTimeout, which is a TIMEOUT error
//
// The idle clock only starts with the first line, so a slow transducer load
// is bounded by AbsoluteTimeout alone. After an error, or an idle cutoff with
// unanswered queries, the worker's stream position is unknown: the pool
// discards it on release.
func (w *Worker) ProcessBatch(ctx context.Context, queries []string) ([]ResultSet, error) {
	col := NewCollector(queries)
	if len(queries) == 0 {
		return col.Results(), nil
	}
	if !w.Alive() {
		return nil, ioError("write", w.exitErr, "lookup process has exited")
	}
	if n := w.drainStale(); n > 0 {
		w.log.Debug("discarded stale output lines", "lines", n)
	}

	// Write concurrently with reading: a large chunk can fill both pipes
	// before the tool has seen the last query.
	writeDone := make(chan error, 1)
	go func() { writeDone <- EncodeBatch(w.in, queries) }()
	written := false

	absolute := time.NewTimer(w.opts.AbsoluteTimeout)
	defer absolute.Stop()

	// quiet is armed after the first line: IdleTimeout while answers are
	// outstanding, SettleWindow once every query has been seen.
	var quiet *time.Timer
	var quietC <-chan time.Time
	defer func() {
		if quiet != nil {
			quiet.Stop()
		}
	}()
	arm := func(d time.Duration) {
		if quiet == nil {
			quiet = time.NewTimer(d)
			quietC = quiet.C
			return
		}
		if !quiet.Stop() {
			select {
			case <-quiet.C:
			default:
			}
		}
		quiet.Reset(d)
	}
	complete := func() bool {
		return written && col.AllObserved() && (col.Terminated() || w.opts.SettleWindow < 0)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ioError("read", ctx.Err(), "batch cancelled")

		case err := <-writeDone:
			if err != nil {
				return nil, ioError("write", err, "writing queries to lookup process")
			}
			written = true
			writeDone = nil
			if complete() {
				return col.Results(), nil
			}

		case <-absolute.C:
			return nil, timeoutErrorf("read", "no complete response within %s (%d of %d queries unanswered)",
				w.opts.AbsoluteTimeout, len(col.Missing()), len(queries))

		case <-quietC:
			if !written {
				arm(w.opts.IdleTimeout)
				continue
			}
			if !col.AllObserved() {
				w.desynced = true
				w.log.Debug("idle window elapsed with unanswered queries", "missing", len(col.Missing()))
			}
			return col.Results(), nil

		case raw, ok := <-w.lines:
			if !ok {
				if written && col.AllObserved() {
					return col.Results(), nil
				}
				if w.readErr != nil {
					return nil, ioError("read", w.readErr, "reading lookup output")
				}
				return nil, ioError("read", nil, "lookup process closed its output")
			}
			col.Feed(raw)
			if complete() {
				return col.Results(), nil
			}
			if col.AllObserved() {
				arm(w.opts.SettleWindow)
				continue
			}
			arm(w.opts.IdleTimeout)
		}
	}
}

// Close kills the process group and releases the pipes. It is idempotent.
func (w *Worker) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.stdin.Close()
		if w.Alive() {
			if kerr := syscall.Kill(-w.cmd.Process.Pid, syscall.SIGKILL); kerr != nil {
				if perr := w.cmd.Process.Kill(); perr != nil && !errors.Is(perr, os.ErrProcessDone) {
					err = fmt.Errorf("kill lookup process %d: %w", w.cmd.Process.Pid, perr)
				}
			}
		}
		<-w.exited
		_ = w.stdout.Close()
		w.log.Debug("lookup worker stopped")
	})
	return err
}
