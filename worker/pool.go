package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned (possibly wrapped) by blocking operations that gave
// up because termination was requested.
var ErrStopped = errors.New("worker: stopped")

// IsStopped reports whether err is a normal shutdown rather than a failure.
func IsStopped(err error) bool {
	return errors.Is(err, ErrStopped) || errors.Is(err, context.Canceled)
}

// Handle identifies a spawned worker. It is passed by value to the worker.
type Handle struct {
	Role string
	ID   int
}

func (h Handle) String() string { return fmt.Sprintf("%s %d", h.Role, h.ID) }

// Func is the entry point of a worker. It returns when it observes
// termination.
type Func func(ctx context.Context, h Handle) error

// Pool spawns workers and joins them.
type Pool struct {
	sig    *Signal
	logger *log.Logger
	group  errgroup.Group
	count  int
}

// NewPool creates a Pool whose workers observe sig. A nil logger discards.
func NewPool(sig *Signal, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pool{sig: sig, logger: logger}
}

// Spawn starts count workers of the given role with identities 0..count-1.
//
// A worker returning an error other than a shutdown error requests
// termination for the whole pool.
func (p *Pool) Spawn(role string, count int, fn Func) {
	for i := 0; i < count; i++ {
		h := Handle{Role: role, ID: i}
		p.count++
		p.group.Go(func() error {
			p.logger.Printf("starting %s", h)
			err := fn(p.sig.Context(), h)
			if err != nil && !IsStopped(err) {
				p.logger.Printf("%s failed: %v", h, err)
				p.sig.Request()
				return fmt.Errorf("%s: %w", h, err)
			}
			p.logger.Printf("%s stopped", h)
			return nil
		})
	}
}

// Len returns the number of workers spawned so far.
func (p *Pool) Len() int { return p.count }

// Wait blocks until every spawned worker has returned. It returns the first
// worker failure, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
