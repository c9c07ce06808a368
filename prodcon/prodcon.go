// Package prodcon runs producers and consumers over a bounded blocking
// channel.
package prodcon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/dmora/concurrency/logwriter"
	"github.com/dmora/concurrency/worker"
)

// ErrInvalidCounts is returned when a model has no producers or consumers.
var ErrInvalidCounts = errors.New("producer and consumer counts must be greater than zero")

// Model is a producer/consumer run.
type Model struct {
	Producers int
	Consumers int
	Capacity  int
	MaxSleep  time.Duration // upper bound of the random pause before each put/get
	Items     int           // stop after this many values (0: until terminated)

	Logger *log.Logger
}

// Stats is the outcome of a run.
type Stats struct {
	Produced int64
	Consumed int64
}

// Validate checks the model before any worker starts.
func (m *Model) Validate() error {
	if m.Producers <= 0 || m.Consumers <= 0 {
		return fmt.Errorf("%w (producers=%d, consumers=%d)", ErrInvalidCounts, m.Producers, m.Consumers)
	}
	if m.Capacity <= 0 {
		return fmt.Errorf("queue capacity must be greater than zero (capacity=%d)", m.Capacity)
	}
	if m.Items < 0 {
		return fmt.Errorf("item limit cannot be negative (items=%d)", m.Items)
	}
	return nil
}

// Run starts the workers and blocks until all of them observed sig.
func (m *Model) Run(sig *worker.Signal) (Stats, error) {
	if err := m.Validate(); err != nil {
		return Stats{}, err
	}
	logger := m.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("running with %d producers and %d consumers (capacity %d)", m.Producers, m.Consumers, m.Capacity)

	ch := NewChannel(m.Capacity)
	sig.OnRequest(ch.Close)

	var (
		seq      atomic.Int64
		produced atomic.Int64
		consumed atomic.Int64
	)

	produce := func(ctx context.Context, h worker.Handle) error {
		for !sig.Requested() {
			if err := worker.Sleep(ctx, worker.Jitter(0, m.MaxSleep)); err != nil {
				return err
			}
			v := seq.Add(1) - 1
			if m.Items > 0 && v >= int64(m.Items) {
				return nil
			}
			if err := ch.Put(int(v)); err != nil {
				return err
			}
			produced.Add(1)
			logger.Printf("%s produced %d", logwriter.Role(h.Role, h.ID), v)
		}
		return nil
	}

	consume := func(ctx context.Context, h worker.Handle) error {
		for !sig.Requested() {
			if err := worker.Sleep(ctx, worker.Jitter(0, m.MaxSleep)); err != nil {
				return err
			}
			v, err := ch.Get()
			if err != nil {
				return err
			}
			n := consumed.Add(1)
			logger.Printf("%s consumed %d", logwriter.Role(h.Role, h.ID), v)
			if m.Items > 0 && n >= int64(m.Items) {
				sig.Request()
			}
		}
		return nil
	}

	pool := worker.NewPool(sig, logger)
	// Consumers first, so the queue does not choke.
	pool.Spawn("consumer", m.Consumers, consume)
	pool.Spawn("producer", m.Producers, produce)
	err := pool.Wait()

	stats := Stats{Produced: produced.Load(), Consumed: consumed.Load()}
	logger.Printf("produced %d, consumed %d, %d left in queue", stats.Produced, stats.Consumed, ch.Len())
	return stats, err
}
