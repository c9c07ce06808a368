// Package brewers runs the potion brewers: a variant of the cigarette
// smokers problem with three agents, three brokers and three brewers.
//
// Each round one agent puts two different ingredients on the table. The
// broker of each ingredient notices its arrival; the second broker to arrive
// finds the first one's ingredient available and wakes the brewer owning the
// third ingredient. The brewer brews and clears the table for the next round.
package brewers

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/dmora/concurrency/logwriter"
	"github.com/dmora/concurrency/worker"
)

// Model is a potion brewers run.
type Model struct {
	BrewTime time.Duration // minimum time a brew takes
	Jitter   time.Duration // random extra for brewing and supplying
	Rounds   int           // stop after this many brews (0: until terminated)

	Logger *log.Logger

	station *Station
}

// Result holds the number of potions each brewer made, by owned ingredient.
type Result struct {
	Brews [NumIngredients]int64
}

// Total returns the number of potions made.
func (r Result) Total() int64 {
	var n int64
	for _, b := range r.Brews {
		n += b
	}
	return n
}

// Run starts the agents, brokers and brewers and blocks until all of them
// observed sig.
func (m *Model) Run(sig *worker.Signal) (Result, error) {
	logger := m.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("running with %d agents, %d brokers and %d brewers", NumIngredients, NumIngredients, NumIngredients)

	st := m.station
	if st == nil {
		st = NewStation()
	}
	var (
		brews [NumIngredients]atomic.Int64
		total atomic.Int64
	)

	agent := func(ctx context.Context, h worker.Handle) error {
		x := Ingredient(h.ID)
		for !sig.Requested() {
			if err := worker.Sleep(ctx, worker.Jitter(0, m.Jitter)); err != nil {
				return err
			}
			y, z, err := st.Supply(ctx, x)
			if err != nil {
				return err
			}
			logger.Printf("%s puts %s and %s on the table", logwriter.Role(h.Role, h.ID), y, z)
		}
		return nil
	}

	broker := func(ctx context.Context, h worker.Handle) error {
		x := Ingredient(h.ID)
		for !sig.Requested() {
			b, ok, err := st.Match(ctx, x)
			if err != nil {
				return err
			}
			if ok {
				logger.Printf("%s matched %s, waking brewer with %s", logwriter.Role(h.Role, h.ID), x, b)
			} else {
				logger.Printf("%s marked %s available", logwriter.Role(h.Role, h.ID), x)
			}
		}
		return nil
	}

	brewer := func(ctx context.Context, h worker.Handle) error {
		x := Ingredient(h.ID)
		for !sig.Requested() {
			if err := st.Await(ctx, x); err != nil {
				return err
			}
			logger.Printf("%s (owns %s) is brewing", logwriter.Role(h.Role, h.ID), x)
			err := worker.Sleep(ctx, worker.Jitter(m.BrewTime, m.Jitter))
			if err != nil {
				return err
			}
			brews[x].Add(1)
			n := total.Add(1)
			st.Clear()
			if m.Rounds > 0 && n >= int64(m.Rounds) {
				sig.Request()
			}
		}
		return nil
	}

	pool := worker.NewPool(sig, logger)
	pool.Spawn("brewer", NumIngredients, brewer)
	pool.Spawn("broker", NumIngredients, broker)
	pool.Spawn("agent", NumIngredients, agent)
	err := pool.Wait()

	var res Result
	for i := range brews {
		res.Brews[i] = brews[i].Load()
	}
	logger.Printf("%d potions brewed: %v", res.Total(), res.Brews)
	return res, err
}
