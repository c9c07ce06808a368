package brewers

import (
	"context"
	"sync"
)

// Ingredient is one of the three things a potion needs.
type Ingredient int

// The ingredients. Each brewer owns an endless supply of one of them.
const (
	Herbs Ingredient = iota
	Water
	Crystals

	NumIngredients = 3
)

var ingredientNames = [NumIngredients]string{"herbs", "water", "crystals"}

func (i Ingredient) String() string {
	if i < 0 || i >= NumIngredients {
		return "unknown"
	}
	return ingredientNames[i]
}

// Others returns the two ingredients that are not i.
func (i Ingredient) Others() (Ingredient, Ingredient) {
	return (i + 1) % NumIngredients, (i + 2) % NumIngredients
}

type slot struct {
	supply    *flag // agent put this ingredient on the table
	ready     *flag // the brewer owning this ingredient may brew
	available bool  // on the table, not yet matched
}

// Station is the table agents put ingredients on.
//
// Every flag post and every change to an availability flag happens while
// holding mu, so a broker's check of the other ingredients and its decision
// to clear one (or mark its own) is a single atomic step.
type Station struct {
	mu    sync.Mutex
	agent *flag // the table is clear and an agent may supply the next round
	slots [NumIngredients]slot
}

// NewStation creates an empty table ready for the first round.
func NewStation() *Station {
	s := &Station{agent: newFlag(true)}
	for i := range s.slots {
		s.slots[i] = slot{supply: newFlag(false), ready: newFlag(false)}
	}
	return s
}

// Supply is the agent working for the brewer owning x. It waits for the table
// to clear, then puts the two other ingredients on it.
func (s *Station) Supply(ctx context.Context, x Ingredient) (Ingredient, Ingredient, error) {
	if err := s.agent.wait(ctx); err != nil {
		return 0, 0, err
	}
	y, z := x.Others()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[y].supply.post()
	s.slots[z].supply.post()
	return y, z, nil
}

// Match is the broker for x. It waits for x to be put on the table and pairs
// it with whichever other ingredient is already there, waking the brewer that
// owns the third one, and returns that brewer. If x arrived first it is marked
// available for the next broker and the boolean result is false.
func (s *Station) Match(ctx context.Context, x Ingredient) (Ingredient, bool, error) {
	if err := s.slots[x].supply.wait(ctx); err != nil {
		return 0, false, err
	}
	y, z := x.Others()
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.slots[y].available:
		s.slots[y].available = false
		s.slots[z].ready.post()
		return z, true, nil
	case s.slots[z].available:
		s.slots[z].available = false
		s.slots[y].ready.post()
		return y, true, nil
	default:
		s.slots[x].available = true
		return 0, false, nil
	}
}

// Await blocks the brewer owning x until both other ingredients are its.
func (s *Station) Await(ctx context.Context, x Ingredient) error {
	return s.slots[x].ready.wait(ctx)
}

// Clear tells the agents the table is free for another round.
func (s *Station) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent.post()
}

// AvailableCount returns how many ingredients are waiting for a match.
func (s *Station) AvailableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.slots {
		if s.slots[i].available {
			n++
		}
	}
	return n
}
