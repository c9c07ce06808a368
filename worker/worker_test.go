package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSignalRequestOnce(t *testing.T) {
	s := NewSignal(context.Background())
	if s.Requested() {
		t.Fatal("new signal: expects not requested")
	}
	s.Request()
	s.Request()
	if !s.Requested() {
		t.Error("request: failed (Requested=false, expects=true)")
	}
	select {
	case <-s.Done():
	default:
		t.Error("request: Done channel not closed")
	}
	if err := s.Context().Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("request: context error %v, expects %v", err, context.Canceled)
	}
}

func TestSignalFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := NewSignal(parent)
	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancel: signal not requested")
	}
	if !s.Requested() {
		t.Error("parent cancel: failed (Requested=false, expects=true)")
	}
}

func TestSignalCancelledParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5000; i++ {
		s := NewSignal(parent)
		select {
		case <-s.Done():
		case <-time.After(time.Second):
			t.Fatalf("signal %d: not requested from a cancelled parent", i)
		}
		if !s.Requested() {
			t.Fatalf("signal %d: failed (Requested=false, expects=true)", i)
		}
		s.Request()
	}
}

func TestSignalParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	s := NewSignal(parent)
	<-s.Done()
	if err := s.Context().Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("deadline: context error %v, expects %v", err, context.Canceled)
	}
	if !IsStopped(s.Context().Err()) {
		t.Error("deadline: expects a normal shutdown")
	}
}

func TestSignalOnRequest(t *testing.T) {
	s := NewSignal(context.Background())
	fired := make(chan struct{})
	s.OnRequest(func() { close(fired) })
	s.Request()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("OnRequest: callback not run")
	}
}

func TestPoolDistinctIdentities(t *testing.T) {
	s := NewSignal(context.Background())
	p := NewPool(s, nil)

	var mu sync.Mutex
	seen := make(map[Handle]int)
	record := func(ctx context.Context, h Handle) error {
		mu.Lock()
		seen[h]++
		mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	p.Spawn("producer", 4, record)
	p.Spawn("consumer", 3, record)
	if p.Len() != 7 {
		t.Errorf("spawn: failed (Len=%d, expects=7)", p.Len())
	}

	time.Sleep(10 * time.Millisecond)
	s.Request()
	if err := p.Wait(); err != nil {
		t.Fatalf("wait: unexpected error %v", err)
	}
	if len(seen) != 7 {
		t.Fatalf("identities: failed (distinct=%d, expects=7)", len(seen))
	}
	for i := 0; i < 4; i++ {
		if seen[Handle{"producer", i}] != 1 {
			t.Errorf("producer %d seen %d times, expects 1", i, seen[Handle{"producer", i}])
		}
	}
	for i := 0; i < 3; i++ {
		if seen[Handle{"consumer", i}] != 1 {
			t.Errorf("consumer %d seen %d times, expects 1", i, seen[Handle{"consumer", i}])
		}
	}
}

func TestPoolFailureStopsOthers(t *testing.T) {
	s := NewSignal(context.Background())
	p := NewPool(s, nil)
	boom := errors.New("boom")

	p.Spawn("waiter", 3, func(ctx context.Context, h Handle) error {
		<-ctx.Done()
		return ctx.Err()
	})
	p.Spawn("failer", 1, func(ctx context.Context, h Handle) error {
		return boom
	})

	done := make(chan error)
	go func() { done <- p.Wait() }()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("wait: error %v, expects %v", err, boom)
		}
	case <-time.After(time.Second):
		t.Fatal("wait: pool did not stop after worker failure")
	}
	if !s.Requested() {
		t.Error("failure: termination not requested")
	}
}

func TestSleepInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	if err := Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("sleep: error %v, expects %v", err, context.Canceled)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep: not interrupted")
	}
}

func TestJitter(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d := Jitter(10*time.Millisecond, 5*time.Millisecond)
		if d < 10*time.Millisecond || d >= 15*time.Millisecond {
			t.Fatalf("jitter: %v out of [10ms, 15ms)", d)
		}
	}
	if d := Jitter(time.Second, 0); d != time.Second {
		t.Errorf("jitter: failed (d=%v, expects=1s)", d)
	}
}
