package prodcon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmora/concurrency/worker"
)

func TestRunBoundedItems(t *testing.T) {
	m := &Model{Producers: 2, Consumers: 3, Capacity: 5, MaxSleep: 50 * time.Microsecond, Items: 1000}
	sig := worker.NewSignal(context.Background())

	type result struct {
		stats Stats
		err   error
	}
	done := make(chan result)
	go func() {
		s, err := m.Run(sig)
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("run: unexpected error %v", r.err)
		}
		if r.stats.Produced != 1000 {
			t.Errorf("produced: failed (got=%d, expects=1000)", r.stats.Produced)
		}
		if r.stats.Consumed != r.stats.Produced {
			t.Errorf("consumed: failed (got=%d, expects=%d)", r.stats.Consumed, r.stats.Produced)
		}
	case <-time.After(30 * time.Second):
		sig.Request()
		t.Fatal("run: did not finish")
	}
}

func TestRunTerminatesBlockedWorkers(t *testing.T) {
	// Many producers and a tiny queue: producers park in Put. One slow
	// consumer keeps the other side parked in Get some of the time.
	for _, m := range []*Model{
		{Producers: 8, Consumers: 1, Capacity: 1, MaxSleep: time.Millisecond},
		{Producers: 1, Consumers: 8, Capacity: 1, MaxSleep: time.Millisecond},
	} {
		sig := worker.NewSignal(context.Background())
		done := make(chan error)
		go func() {
			_, err := m.Run(sig)
			done <- err
		}()
		time.Sleep(20 * time.Millisecond)
		sig.Request()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("%dp/%dc: unexpected error %v", m.Producers, m.Consumers, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("%dp/%dc: workers still blocked after termination", m.Producers, m.Consumers)
		}
	}
}

func TestRunProducedNotLessThanConsumed(t *testing.T) {
	m := &Model{Producers: 3, Consumers: 2, Capacity: 4}
	sig := worker.NewSignal(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		sig.Request()
	}()
	s, err := m.Run(sig)
	if err != nil {
		t.Fatal(err)
	}
	if s.Consumed > s.Produced {
		t.Errorf("stats: consumed %d > produced %d", s.Consumed, s.Produced)
	}
	if s.Produced-s.Consumed > int64(m.Capacity) {
		t.Errorf("stats: %d values unaccounted for, capacity is %d", s.Produced-s.Consumed, m.Capacity)
	}
}

func TestValidate(t *testing.T) {
	for _, c := range []struct {
		m       Model
		invalid bool
	}{
		{Model{Producers: 1, Consumers: 1, Capacity: 1}, false},
		{Model{Producers: 0, Consumers: 1, Capacity: 1}, true},
		{Model{Producers: 1, Consumers: 0, Capacity: 1}, true},
		{Model{Producers: -2, Consumers: 3, Capacity: 1}, true},
	} {
		err := c.m.Validate()
		if got := errors.Is(err, ErrInvalidCounts); got != c.invalid {
			t.Errorf("Validate(%d, %d) = %v, expects invalid=%t", c.m.Producers, c.m.Consumers, err, c.invalid)
		}
	}
	if err := (&Model{Producers: 1, Consumers: 1}).Validate(); err == nil {
		t.Error("Validate: zero capacity accepted")
	}
}

func TestRunRejectsBeforeSpawning(t *testing.T) {
	sig := worker.NewSignal(context.Background())
	_, err := (&Model{Producers: 0, Consumers: 2, Capacity: 5}).Run(sig)
	if !errors.Is(err, ErrInvalidCounts) {
		t.Errorf("run: error %v, expects %v", err, ErrInvalidCounts)
	}
	if sig.Requested() {
		t.Error("run: termination requested by a rejected run")
	}
}
