package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Stats counts worker lifecycle events of a pool.
type Stats struct {
	Spawned   int
	Recycled  int
	Discarded int
	Idle      int
}

// Pool keeps up to Capacity live workers for one Key.
//
// Checkout blocks while Capacity leases are outstanding. An idle worker whose
// process has exited is closed and replaced on the next checkout.
type Pool struct {
	key  Key
	opts Options
	log  *slog.Logger

	slots chan struct{}

	mu     sync.Mutex
	idle   []*Worker
	closed bool
	nextID uint64
	stats  Stats
}

// NewPool creates an empty pool. Workers are spawned lazily.
func NewPool(key Key, opts Options) *Pool {
	opts = opts.withDefaults()
	return &Pool{
		key:   key,
		opts:  opts,
		log:   opts.Logger.With("pool", key.String()),
		slots: make(chan struct{}, opts.Capacity),
	}
}

func (p *Pool) Key() Key { return p.key }

func (p *Pool) Capacity() int { return p.opts.Capacity }

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Idle = len(p.idle)
	return s
}

// Checkout returns a lease on a live worker, spawning one if none is idle.
func (p *Pool) Checkout(ctx context.Context) (*Lease, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	w, err := p.take()
	if err != nil {
		<-p.slots
		return nil, err
	}
	return &Lease{pool: p, worker: w}, nil
}

func (p *Pool) take() (*Worker, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	var stale []*Worker
	for len(p.idle) > 0 {
		w := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if w.Alive() {
			p.mu.Unlock()
			closeAll(stale)
			return w, nil
		}
		stale = append(stale, w)
		p.stats.Recycled++
	}
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	closeAll(stale)
	for _, w := range stale {
		p.log.Info("recycling exited lookup worker", "worker", w.ID())
	}

	w, err := startWorker(p.key, p.opts, id)
	if err != nil {
		p.log.Error("lookup worker failed to start", "error", err)
		return nil, err
	}
	p.mu.Lock()
	p.stats.Spawned++
	p.mu.Unlock()
	return w, nil
}

func (p *Pool) put(w *Worker, discard bool) {
	discard = discard || !w.InSync()
	p.mu.Lock()
	if discard || p.closed || !w.Alive() {
		if discard {
			p.stats.Discarded++
		}
		p.mu.Unlock()
		_ = w.Close()
		<-p.slots
		return
	}
	p.idle = append(p.idle, w)
	p.mu.Unlock()
	<-p.slots
}

// Validate checks that a worker can be spawned for the pool's key. The
// worker is not kept.
func (p *Pool) Validate(ctx context.Context) error {
	lease, err := p.Checkout(ctx)
	if err != nil {
		return err
	}
	lease.Discard()
	return nil
}

// Close terminates all idle workers. Outstanding leases close their worker
// when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	return closeAll(idle)
}

func closeAll(ws []*Worker) error {
	var errs []error
	for _, w := range ws {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Lease is exclusive use of one worker until it is released.
type Lease struct {
	pool   *Pool
	worker *Worker
	once   sync.Once
}

func (l *Lease) Worker() *Worker { return l.worker }

// Return hands a healthy worker back to the pool.
func (l *Lease) Return() { l.Release(nil) }

// Discard terminates the worker instead of returning it.
func (l *Lease) Discard() { l.Release(errDiscarded) }

// Release returns the worker when err is nil and discards it otherwise.
// Only the first call has an effect.
func (l *Lease) Release(err error) {
	l.once.Do(func() {
		l.pool.put(l.worker, err != nil)
	})
}

var errDiscarded = errors.New("lookup: worker discarded")

// Registry holds one pool per Key so that suites sharing a transducer share
// their workers.
type Registry struct {
	opts Options

	mu     sync.Mutex
	pools  map[Key]*Pool
	closed bool
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, pools: make(map[Key]*Pool)}
}

// Pool returns the pool for key, creating it on first use.
func (r *Registry) Pool(key Key) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrPoolClosed
	}
	p, ok := r.pools[key]
	if !ok {
		p = NewPool(key, r.opts)
		r.pools[key] = p
	}
	return p, nil
}

// Close closes every pool.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	pools := r.pools
	r.pools = map[Key]*Pool{}
	r.mu.Unlock()

	var errs []error
	for _, p := range pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
