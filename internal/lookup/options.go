package lookup

import (
	"io"
	"log/slog"
	"runtime"
	"time"
)

const (
	DefaultIdleTimeout     = 500 * time.Millisecond
	DefaultAbsoluteTimeout = 30 * time.Second
	DefaultSettleWindow    = 50 * time.Millisecond
)

// Options tune worker processes and pools.
type Options struct {
	// Capacity bounds the number of live workers per pool. <= 0 means DefaultCapacity().
	Capacity int

	// IdleTimeout ends a batch read when no line arrived for this long after
	// the tool started answering.
	IdleTimeout time.Duration

	// AbsoluteTimeout bounds one batch end to end. Exceeding it is a TIMEOUT error.
	AbsoluteTimeout time.Duration

	// SettleWindow is how long to keep reading once every query has been
	// answered but the tool has not closed all result blocks. Zero means
	// DefaultSettleWindow; a negative value stops at the first answer for the
	// last query.
	SettleWindow time.Duration

	// Quiet discards the tool's stderr instead of inheriting it.
	Quiet bool

	// Logger is optional.
	Logger *slog.Logger
}

// DefaultCapacity is the number of CPUs, at least 1.
func DefaultCapacity() int {
	return max(1, runtime.NumCPU())
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity()
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.AbsoluteTimeout <= 0 {
		o.AbsoluteTimeout = DefaultAbsoluteTimeout
	}
	if o.SettleWindow == 0 {
		o.SettleWindow = DefaultSettleWindow
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}
