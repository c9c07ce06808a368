// Package runner selects one of the concurrency models and runs it to
// termination.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dmora/concurrency/brewers"
	"github.com/dmora/concurrency/diners"
	"github.com/dmora/concurrency/logwriter"
	"github.com/dmora/concurrency/prodcon"
	"github.com/dmora/concurrency/worker"
	"github.com/google/uuid"
)

// QueueCapacity is the size of the producer/consumer queue.
const QueueCapacity = 100

// Model is the concurrency problem to run.
type Model int

// The models.
const (
	None Model = iota
	ProdCon
	Diners
	Brewers
)

var modelNames = map[Model]string{
	None:    "Invalid",
	ProdCon: "Producers/Consumers",
	Diners:  "Dining Philosophers",
	Brewers: "Potion Brewers",
}

func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return modelNames[None]
}

// ErrNoModel is returned when no valid model was chosen.
var ErrNoModel = errors.New("no valid mode chosen")

// ErrNegativeLimit is returned when an items, meals or rounds limit is
// negative.
var ErrNegativeLimit = errors.New("negative run limit")

// Config is everything a run needs besides the model.
type Config struct {
	Model     Model
	Producers int
	Consumers int

	MaxSleep time.Duration // producer/consumer pause upper bound
	ThinkMin time.Duration
	EatMin   time.Duration
	BrewTime time.Duration
	Jitter   time.Duration

	Duration time.Duration // request termination after this long (0: never)
	Items    int
	Meals    int
	Rounds   int
}

// DefaultConfig returns the timings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxSleep: 120 * time.Millisecond,
		ThinkMin: 50 * time.Millisecond,
		EatMin:   50 * time.Millisecond,
		BrewTime: 50 * time.Millisecond,
		Jitter:   120 * time.Millisecond,
	}
}

// Validate rejects a configuration before any worker is spawned.
func (c Config) Validate() error {
	switch c.Model {
	case ProdCon:
		if c.Producers <= 0 || c.Consumers <= 0 {
			return fmt.Errorf("%s: both -n and -c must be given a value greater than zero: %w",
				c.Model, prodcon.ErrInvalidCounts)
		}
	case Diners, Brewers:
	default:
		return ErrNoModel
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative (%s)", c.Duration)
	}
	for _, l := range []struct {
		name string
		n    int
	}{{"items", c.Items}, {"meals", c.Meals}, {"rounds", c.Rounds}} {
		if l.n < 0 {
			return fmt.Errorf("%s limit cannot be negative (%s=%d): %w", l.name, l.name, l.n, ErrNegativeLimit)
		}
	}
	return nil
}

// Run runs the configured model until ctx is cancelled, the configured
// duration elapses or the model's own limit is reached.
func Run(ctx context.Context, c Config, w *logwriter.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}
	sig := worker.NewSignal(ctx)

	id := uuid.New().String()
	logger := w.Logger("runner: ")
	logger.Printf("run %s: %s", id, c.Model)
	start := time.Now()

	var err error
	switch c.Model {
	case ProdCon:
		m := &prodcon.Model{
			Producers: c.Producers,
			Consumers: c.Consumers,
			Capacity:  QueueCapacity,
			MaxSleep:  c.MaxSleep,
			Items:     c.Items,
			Logger:    w.Logger("prodcon: "),
		}
		var s prodcon.Stats
		s, err = m.Run(sig)
		logger.Printf("%d produced, %d consumed", s.Produced, s.Consumed)
	case Diners:
		t := &diners.Table{
			ThinkMin: c.ThinkMin,
			EatMin:   c.EatMin,
			Jitter:   c.Jitter,
			Meals:    c.Meals,
			Logger:   w.Logger("diners: "),
		}
		var r diners.Result
		r, err = t.Run(sig)
		summarise(logger, "meals", r.Meals)
	case Brewers:
		m := &brewers.Model{
			BrewTime: c.BrewTime,
			Jitter:   c.Jitter,
			Rounds:   c.Rounds,
			Logger:   w.Logger("brewers: "),
		}
		var r brewers.Result
		r, err = m.Run(sig)
		summarise(logger, "potions", r.Brews[:])
	}
	if err != nil {
		logger.Println(logwriter.Fail("run %s failed after %s: %v", id, time.Since(start), err))
		return err
	}
	logger.Println(logwriter.OK("run %s finished after %s", id, time.Since(start).Round(time.Millisecond)))
	return nil
}

// summarise logs per-worker progress, flagging any worker that made none.
func summarise(l *log.Logger, what string, counts []int64) {
	for i, n := range counts {
		if n == 0 {
			l.Println(logwriter.Warn("  worker %d: no %s", i, what))
			continue
		}
		l.Printf("  worker %d: %d %s", i, n, what)
	}
}
