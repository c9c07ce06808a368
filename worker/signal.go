// Package worker spawns and joins the goroutines of a model and carries the
// cooperative termination signal they all observe.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Signal is a write-once termination flag.
//
// Workers check Requested at the head of every loop. Blocking waits take
// Context (or select on Done) so that a worker parked inside a wait is woken
// when the flag is set.
type Signal struct {
	requested atomic.Bool
	once      sync.Once

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignal creates a Signal. Cancelling parent requests termination.
//
// The signal context is not derived from parent, so workers see
// context.Canceled whether the run was interrupted or timed out.
func NewSignal(parent context.Context) *Signal {
	s := &Signal{}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	// Every field Request touches is set before this point.
	context.AfterFunc(parent, s.Request)
	return s
}

// Request sets the flag. Only the first call has an effect.
func (s *Signal) Request() {
	s.once.Do(func() {
		s.requested.Store(true)
		s.cancel()
	})
}

// Requested returns true once termination has been requested.
func (s *Signal) Requested() bool { return s.requested.Load() }

// Done is closed when termination is requested.
func (s *Signal) Done() <-chan struct{} { return s.ctx.Done() }

// Context returns a context cancelled together with the flag.
func (s *Signal) Context() context.Context { return s.ctx }

// OnRequest arranges for f to run in its own goroutine once termination is
// requested. It is used to issue the final wake-up broadcast on condition
// variables that cannot select on Done.
func (s *Signal) OnRequest(f func()) {
	context.AfterFunc(s.ctx, f)
}
