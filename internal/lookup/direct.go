package lookup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// DirectBackend runs one lookup process per batch: queries are written, stdin
// is closed and output is read to EOF. It keeps no state between batches.
type DirectBackend struct {
	cfg  Config
	opts Options
	log  *slog.Logger
}

func NewDirectBackend(cfg Config, opts Options) *DirectBackend {
	opts = opts.withDefaults()
	return &DirectBackend{cfg: cfg, opts: opts, log: opts.Logger}
}

func (b *DirectBackend) Generate(ctx context.Context, queries []string) ([]ResultSet, error) {
	key, err := b.cfg.generatorKey()
	if err != nil {
		return nil, err
	}
	return b.run(ctx, key, queries)
}

func (b *DirectBackend) Analyze(ctx context.Context, queries []string) ([]ResultSet, error) {
	key, err := b.cfg.analyzerKey()
	if err != nil {
		return nil, err
	}
	return b.run(ctx, key, queries)
}

// Validate checks the command and transducers without running a batch.
func (b *DirectBackend) Validate(ctx context.Context) error {
	keys, err := b.cfg.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := resolveCommand(key); err != nil {
			return err
		}
	}
	return nil
}

func (b *DirectBackend) run(ctx context.Context, key Key, queries []string) ([]ResultSet, error) {
	if len(queries) == 0 {
		return []ResultSet{}, nil
	}
	path, err := resolveCommand(key)
	if err != nil {
		return nil, err
	}

	var stdin bytes.Buffer
	if err := EncodeBatch(&stdin, queries); err != nil {
		return nil, ioError("write", err, "encoding queries")
	}

	runCtx, cancel := context.WithTimeout(ctx, b.opts.AbsoluteTimeout)
	defer cancel()

	// #nosec G204 -- the lookup command is operator configuration.
	cmd := exec.CommandContext(runCtx, path, key.Transducer)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(stdin.Bytes())
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if !b.opts.Quiet {
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	err = cmd.Run()
	if runCtx.Err() != nil && ctx.Err() == nil {
		return nil, timeoutErrorf("run", "lookup process did not finish within %s", b.opts.AbsoluteTimeout)
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, ioError("run", err, "lookup process failed")
		}
		return nil, ioError("run", err, "running lookup process")
	}
	b.log.Debug("direct batch finished", "transducer", key.Transducer, "queries", len(queries), "elapsed", time.Since(start))

	results, err := DecodeAll(queries, &stdout)
	if err != nil {
		return nil, ioError("read", err, "reading lookup output")
	}
	return results, nil
}
