package labclient

import (
	"context"
	"sync"
)

// Generation discards responses that belong to superseded requests. Each
// Begin cancels the previous request's context; a result is only used when
// its ticket is still current.
type Generation struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one request started by Generation.Begin.
type Ticket struct {
	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
	gen    *Generation
}

// Begin starts a new generation, cancelling the request of the previous one.
func (g *Generation) Begin(parent context.Context) Ticket {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	g.cancel = cancel
	seq := g.seq
	g.mu.Unlock()

	return Ticket{ctx: ctx, cancel: cancel, seq: seq, gen: g}
}

// Stop cancels whatever request is in flight, e.g. when the owner goes away.
func (g *Generation) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.seq++
}

func (t Ticket) Context() context.Context { return t.ctx }

// Release cancels the ticket's context once its request has finished.
func (t Ticket) Release() { t.cancel() }

// Current reports whether no newer request has started since this one.
func (t Ticket) Current() bool {
	t.gen.mu.Lock()
	defer t.gen.mu.Unlock()
	return t.gen.seq == t.seq
}

// Latest runs fetch under a new ticket and returns ErrStale when a newer
// request started before it finished.
func Latest[T any](parent context.Context, g *Generation, fetch func(ctx context.Context) (T, error)) (T, error) {
	t := g.Begin(parent)
	defer t.Release()
	v, err := fetch(t.Context())
	if !t.Current() {
		var zero T
		return zero, ErrStale
	}
	return v, err
}
