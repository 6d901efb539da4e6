package debate

import (
	"context"
	"sync"
	"time"
)

// Poller runs a function on a fixed interval until its context is canceled.
// The function receives the poller's context so an in-flight request is
// aborted by Stop.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPoller creates a stopped poller.
func NewPoller(interval time.Duration, fn func(context.Context)) *Poller {
	return &Poller{interval: interval, fn: fn}
}

// Start begins ticking. The first call happens one interval after Start.
// Starting a running poller is a no-op.
func (p *Poller) Start(parent context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.loop(ctx, p.done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			p.fn(ctx)
		}
	}
}

// Stop cancels the poller's context. It does not wait for the goroutine to
// exit; use Done for that. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	p.running = false
}

// Running reports whether Start was called without a matching Stop.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Done returns a channel closed when the most recent loop has exited.
// It returns nil if the poller was never started.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
