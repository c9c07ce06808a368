package prodcon

import (
	"fmt"
	"sync"

	"github.com/dmora/concurrency/worker"
)

// ErrClosed is returned by Put and Get once the channel has been closed.
var ErrClosed = fmt.Errorf("channel closed: %w", worker.ErrStopped)

// Channel is a bounded blocking FIFO of ints.
//
// Put waits on notFull and Get waits on notEmpty. Both re-test their
// predicate after every wake-up, so spurious and multi-waiter wake-ups are
// harmless. Close wakes every waiter.
type Channel struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	ring     *Ring
	closed   bool
}

// NewChannel creates a Channel with the given capacity.
func NewChannel(capacity int) *Channel {
	c := &Channel{ring: NewRing(capacity)}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	return c
}

// Put blocks while the channel is full, then appends v and wakes one
// waiting consumer.
func (c *Channel) Put(v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.ring.Full() && !c.closed {
		c.notFull.Wait()
	}
	if c.closed {
		return ErrClosed
	}
	c.ring.Push(v)
	c.notEmpty.Signal()
	return nil
}

// Get blocks while the channel is empty, then removes the oldest value and
// wakes one waiting producer. Values left when the channel is closed are
// still handed out.
func (c *Channel) Get() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.ring.Empty() && !c.closed {
		c.notEmpty.Wait()
	}
	if c.ring.Empty() {
		return 0, ErrClosed
	}
	v := c.ring.Pop()
	c.notFull.Signal()
	return v, nil
}

// Close marks the channel closed and wakes all waiters. It is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.notFull.Broadcast()
	c.notEmpty.Broadcast()
}

// Len returns the number of buffered values.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ring.Len()
}

// Cap returns the capacity.
func (c *Channel) Cap() int { return c.ring.Cap() }
