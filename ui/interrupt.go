package ui

import (
	"context"
	"os"
	"sync"
)

// interruptRouter hands each interrupt to the prompt or conversion that is
// currently waiting. An interrupt that arrives while nothing waits, such as
// during menu output or a save, is held and ends the next scope instead.
type interruptRouter struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	pending bool
}

func (r *interruptRouter) listen(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigs:
			r.fire()
		}
	}
}

func (r *interruptRouter) fire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		return
	}
	r.pending = true
}

// scope returns a context that an interrupt cancels. Scopes do not nest.
func (r *interruptRouter) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if r.pending {
		r.pending = false
		cancel()
	} else {
		r.cancel = cancel
	}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}
}
