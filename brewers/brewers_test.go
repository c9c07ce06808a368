package brewers

import (
	"context"
	"testing"
	"time"

	"github.com/dmora/concurrency/worker"
)

func TestOthers(t *testing.T) {
	for x := Ingredient(0); x < NumIngredients; x++ {
		y, z := x.Others()
		if y == x || z == x || y == z {
			t.Errorf("Others(%s) = (%s, %s), expects two distinct other ingredients", x, y, z)
		}
	}
}

func TestStationRound(t *testing.T) {
	ctx := context.Background()
	s := NewStation()

	y, z, err := s.Supply(ctx, Herbs)
	if err != nil {
		t.Fatal(err)
	}
	if y != Water || z != Crystals {
		t.Fatalf("supply: put (%s, %s), expects (water, crystals)", y, z)
	}

	if _, ok, err := s.Match(ctx, Water); err != nil || ok {
		t.Fatalf("first broker: (ok=%t, err=%v), expects no match", ok, err)
	}
	if n := s.AvailableCount(); n != 1 {
		t.Errorf("after first broker: failed (available=%d, expects=1)", n)
	}
	b, ok, err := s.Match(ctx, Crystals)
	if err != nil || !ok || b != Herbs {
		t.Fatalf("second broker: (brewer=%s, ok=%t, err=%v), expects herbs", b, ok, err)
	}
	if n := s.AvailableCount(); n != 0 {
		t.Errorf("after match: failed (available=%d, expects=0)", n)
	}

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Await(wctx, Herbs); err != nil {
		t.Fatalf("herbs brewer: %v", err)
	}

	// The table is not clear yet: no agent may supply.
	sctx, scancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer scancel()
	if _, _, err := s.Supply(sctx, Water); err == nil {
		t.Error("supply before clear: expects timeout")
	}
	s.Clear()
	if _, _, err := s.Supply(wctx, Water); err != nil {
		t.Errorf("supply after clear: %v", err)
	}
}

func TestStationDoublePostPanics(t *testing.T) {
	s := NewStation()
	defer func() {
		if recover() == nil {
			t.Error("clear on a clear table: expects panic")
		}
	}()
	s.Clear()
}

func TestAtMostOneAvailable(t *testing.T) {
	st := NewStation()
	m := &Model{Rounds: 3000, station: st}
	sig := worker.NewSignal(context.Background())

	type result struct {
		res Result
		err error
	}
	done := make(chan result)
	go func() {
		r, err := m.Run(sig)
		done <- result{r, err}
	}()

	timeout := time.After(30 * time.Second)
	for {
		select {
		case r := <-done:
			if r.err != nil {
				t.Fatalf("run: unexpected error %v", r.err)
			}
			if r.res.Total() < 3000 {
				t.Errorf("brews: failed (total=%d, expects>=3000)", r.res.Total())
			}
			for i, n := range r.res.Brews {
				if n == 0 {
					t.Errorf("brewer with %s never brewed", Ingredient(i))
				}
			}
			return
		case <-timeout:
			sig.Request()
			t.Fatal("run: did not finish")
		default:
			if n := st.AvailableCount(); n > 1 {
				t.Fatalf("invariant: %d ingredients available at once", n)
			}
		}
	}
}

func TestTerminateWhileWaiting(t *testing.T) {
	// A brewer brews for an hour: agents wait for a clear table, brokers and
	// the other brewers wait on their flags.
	m := &Model{BrewTime: time.Hour}
	sig := worker.NewSignal(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		sig.Request()
	}()
	done := make(chan error)
	go func() {
		_, err := m.Run(sig)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: unexpected error %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("terminate: workers still blocked")
	}
}
