// Package runctl coordinates the host process's forwarder goroutines and
// signal-driven shutdown, per spec.md §4.C/§5: Ctrl-C (or SIGTERM) clears
// the running flag, every goroutine observes it and returns, and STOP is
// published to every recvq ring before the process exits.
package runctl

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Group supervises a set of goroutines that must all wind down together:
// if any returns an error, or the process receives SIGINT/SIGTERM, ctx is
// canceled and Wait returns once every goroutine has exited.
type Group struct {
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGroup derives a cancelable context from parent. It installs no signal
// handler itself; WatchSignals cancels the context on SIGINT or SIGTERM.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	g, ctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: ctx, cancel: cancel}
}

// Context returns the group's context; goroutines should select on
// Context().Done() to know when to stop.
func (r *Group) Context() context.Context { return r.ctx }

// Go runs fn in a new goroutine under the group.
func (r *Group) Go(fn func(ctx context.Context) error) {
	r.g.Go(func() error { return fn(r.ctx) })
}

// WatchSignals cancels the group's context on SIGINT or SIGTERM, running
// teardown (e.g. publishing STOP to every recvq) exactly once before
// returning control to Wait's caller.
func (r *Group) WatchSignals(teardown func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	r.Go(func(ctx context.Context) error {
		select {
		case <-sigCh:
			if teardown != nil {
				teardown()
			}
			r.cancel()
		case <-ctx.Done():
		}
		return nil
	})
}

// Wait blocks until every goroutine in the group has returned, propagating
// the first non-nil error.
func (r *Group) Wait() error {
	return r.g.Wait()
}

// Cancel cancels the group's context directly, e.g. after a fatal startup
// error in one component that should bring the others down too.
func (r *Group) Cancel() { r.cancel() }
