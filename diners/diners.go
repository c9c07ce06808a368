// Package diners runs the dining philosophers around a ring of forks.
//
// Seat i uses forks i (left) and i+1 mod n (right). Every philosopher but
// seat 0 picks up the right fork first; seat 0 picks up the left one first.
// With one philosopher reaching the other way round, no cycle of
// philosophers each holding one fork and waiting for the next can form.
package diners

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

// Seats is the number of philosophers (and forks) at the table.
const Seats = 5

// ErrTooFewSeats is returned for a table where a philosopher's two forks
// would be the same fork.
var ErrTooFewSeats = errors.New("a table needs at least two seats")

// Order returns the forks seat takes, in the order it takes them.
func Order(seat, n int) (first, second int) {
	left, right := seat, (seat+1)%n
	if seat == 0 {
		return left, right
	}
	return right, left
}

// Table is a dining philosophers run.
type Table struct {
	Seats    int           // defaults to Seats when zero, at least 2
	ThinkMin time.Duration // minimum thinking time
	EatMin   time.Duration // minimum eating time
	Jitter   time.Duration // random extra added to thinking and eating
	Meals    int           // stop after this many meals in total (0: until terminated)

	Logger *log.Logger

	firstFork func(seat int) // called while holding only the first fork
}

// Result holds the number of meals eaten at each seat.
type Result struct {
	Meals []int64
}

// Total returns the number of meals eaten at the table.
func (r Result) Total() int64 {
	var n int64
	for _, m := range r.Meals {
		n += m
	}
	return n
}

// Run seats the philosophers and blocks until all of them observed sig.
func (t *Table) Run(sig *worker.Signal) (Result, error) {
	n := t.Seats
	if n == 0 {
		n = Seats
	}
	if n < 2 {
		return Result{}, fmt.Errorf("%w (seats=%d)", ErrTooFewSeats, n)
	}
	if t.Meals < 0 {
		return Result{}, fmt.Errorf("meal limit cannot be negative (meals=%d)", t.Meals)
	}
	logger := t.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("running with %d philosophers", n)

	forks := NewForks(n)
	meals := make([]atomic.Int64, n)
	var eaten atomic.Int64

	dine := func(ctx context.Context, h worker.Handle) error {
		seat := h.ID
		who := logwriter.Role(h.Role, seat)
		first, second := Order(seat, n)
		for !sig.Requested() {
			logger.Printf("%s is thinking", who)
			if err := worker.Sleep(ctx, worker.Jitter(t.ThinkMin, t.Jitter)); err != nil {
				return err
			}
			if err := forks.Acquire(ctx, first); err != nil {
				return err
			}
			if t.firstFork != nil {
				t.firstFork(seat)
			}
			if err := forks.Acquire(ctx, second); err != nil {
				forks.Release(first)
				return err
			}
			logger.Printf("%s is eating with forks %d and %d", who, first, second)
			meals[seat].Add(1)
			total := eaten.Add(1)
			err := worker.Sleep(ctx, worker.Jitter(t.EatMin, t.Jitter))
			forks.Release(first)
			forks.Release(second)
			if err != nil {
				return err
			}
			if t.Meals > 0 && total == int64(t.Meals) {
				sig.Request()
			}
		}
		return nil
	}

	pool := worker.NewPool(sig, logger)
	pool.Spawn("philosopher", n, dine)
	err := pool.Wait()

	res := Result{Meals: make([]int64, n)}
	for i := range meals {
		res.Meals[i] = meals[i].Load()
	}
	logger.Printf("%d meals eaten: %v", res.Total(), res.Meals)
	return res, err
}
