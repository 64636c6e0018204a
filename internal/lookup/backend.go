package lookup

import (
	"context"
	"log/slog"
)

// Backend answers generate and analyze batches for one resolved configuration.
type Backend interface {
	Generate(ctx context.Context, queries []string) ([]ResultSet, error)
	Analyze(ctx context.Context, queries []string) ([]ResultSet, error)
	// Validate fails fast when the lookup command or a configured transducer
	// is unusable.
	Validate(ctx context.Context) error
}

// Config is the resolved backend configuration of a suite.
type Config struct {
	LookupCommand       string
	GeneratorTransducer string
	// AnalyzerTransducer is optional.
	AnalyzerTransducer string
}

func (c Config) generatorKey() (Key, error) {
	if c.GeneratorTransducer == "" {
		return Key{}, configErrorf("generator transducer not configured")
	}
	return Key{Command: c.LookupCommand, Transducer: c.GeneratorTransducer}, nil
}

func (c Config) analyzerKey() (Key, error) {
	if c.AnalyzerTransducer == "" {
		return Key{}, configErrorf("analyzer transducer not configured")
	}
	return Key{Command: c.LookupCommand, Transducer: c.AnalyzerTransducer}, nil
}

// PooledBackend keeps long-lived workers per transducer and dispatches
// batches across them.
type PooledBackend struct {
	cfg      Config
	registry *Registry
	log      *slog.Logger
}

// NewPooledBackend binds cfg to pools from registry. The registry owns the
// workers; closing it stops them.
func NewPooledBackend(cfg Config, registry *Registry) *PooledBackend {
	return &PooledBackend{
		cfg:      cfg,
		registry: registry,
		log:      registry.opts.withDefaults().Logger,
	}
}

func (b *PooledBackend) Generate(ctx context.Context, queries []string) ([]ResultSet, error) {
	key, err := b.cfg.generatorKey()
	if err != nil {
		return nil, err
	}
	return b.dispatch(ctx, key, queries)
}

func (b *PooledBackend) Analyze(ctx context.Context, queries []string) ([]ResultSet, error) {
	key, err := b.cfg.analyzerKey()
	if err != nil {
		return nil, err
	}
	return b.dispatch(ctx, key, queries)
}

func (b *PooledBackend) dispatch(ctx context.Context, key Key, queries []string) ([]ResultSet, error) {
	pool, err := b.registry.Pool(key)
	if err != nil {
		return nil, err
	}
	b.log.Debug("dispatching batch", "transducer", key.Transducer, "queries", len(queries), "capacity", pool.Capacity())
	return Dispatch(ctx, pool, queries)
}

// Validate spawns and discards one worker per configured transducer. A
// missing generator transducer is a CONFIG error.
func (b *PooledBackend) Validate(ctx context.Context) error {
	keys, err := b.cfg.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		pool, err := b.registry.Pool(key)
		if err != nil {
			return err
		}
		if err := pool.Validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// keys lists the distinct worker keys of c, generator first.
func (c Config) keys() ([]Key, error) {
	gen, err := c.generatorKey()
	if err != nil {
		return nil, err
	}
	keys := []Key{gen}
	if an, err := c.analyzerKey(); err == nil && an != gen {
		keys = append(keys, an)
	}
	return keys, nil
}
