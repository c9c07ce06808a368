// Package protocol describes the synchronization protocol of each model as
// a set of looping roles talking to shared resources, and exports it as
// communicating finite state machines, a Graphviz topology or MiGo types.
package protocol

import (
	"fmt"

	"github.com/dmora/concurrency/brewers"
	"github.com/dmora/concurrency/diners"
)

// Kind is the kind of a shared resource.
type Kind int

// Resource kinds.
const (
	Lock   Kind = iota // mutual exclusion: acquire, release
	Flag               // binary semaphore: post, wait
	Buffer             // bounded FIFO: put, get
)

func (k Kind) String() string {
	switch k {
	case Lock:
		return "lock"
	case Flag:
		return "flag"
	case Buffer:
		return "buffer"
	}
	return "unknown"
}

// Op is an action a role performs on a resource.
type Op int

// Operations.
const (
	Acquire Op = iota
	Release
	Post
	Wait
	Put
	Get
)

var opNames = [...]string{"acquire", "release", "post", "wait", "put", "get"}

func (o Op) String() string { return opNames[o] }

// Step is one operation on a resource, or a choice between alternative step
// sequences when Alts is set.
type Step struct {
	Op       Op
	Resource string
	Alts     [][]Step
}

// Do is shorthand for a single operation step.
func Do(op Op, resource string) Step { return Step{Op: op, Resource: resource} }

// Choose is shorthand for a choice step. Every alternative must be non-empty.
func Choose(alts ...[]Step) Step { return Step{Alts: alts} }

// Role is a worker repeating Loop forever.
type Role struct {
	Name string
	Loop []Step
}

// Resource is shared state the roles synchronise on.
type Resource struct {
	Name     string
	Kind     Kind
	Capacity int  // Buffer only
	Up       bool // Flag only: initially posted
}

// Protocol is a model's roles and resources.
type Protocol struct {
	Name      string
	Roles     []Role
	Resources []Resource
}

// Resource looks up a resource by name.
func (p *Protocol) Resource(name string) (Resource, bool) {
	for _, r := range p.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// Users returns the roles that perform op on the named resource, in role
// order.
func (p *Protocol) Users(resource string, op Op) []string {
	var users []string
	for _, r := range p.Roles {
		if uses(r.Loop, resource, op) {
			users = append(users, r.Name)
		}
	}
	return users
}

func uses(steps []Step, resource string, op Op) bool {
	for _, s := range steps {
		if s.Alts != nil {
			for _, alt := range s.Alts {
				if uses(alt, resource, op) {
					return true
				}
			}
			continue
		}
		if s.Resource == resource && s.Op == op {
			return true
		}
	}
	return false
}

// Validate checks every step names a known resource with a matching
// operation, and that every buffer has both a producer and a consumer.
func (p *Protocol) Validate() error {
	for _, r := range p.Resources {
		if r.Kind != Buffer {
			continue
		}
		if r.Capacity < 1 {
			return fmt.Errorf("%s: buffer %s needs a capacity of at least 1", p.Name, r.Name)
		}
		if len(p.Users(r.Name, Put)) == 0 || len(p.Users(r.Name, Get)) == 0 {
			return fmt.Errorf("%s: buffer %s needs at least one producer and one consumer", p.Name, r.Name)
		}
	}
	if len(p.Roles) == 0 {
		return fmt.Errorf("%s: no roles", p.Name)
	}
	for _, r := range p.Roles {
		if err := p.validate(r.Name, r.Loop); err != nil {
			return err
		}
	}
	return nil
}

func (p *Protocol) validate(role string, steps []Step) error {
	for _, s := range steps {
		if s.Alts != nil {
			for _, alt := range s.Alts {
				if len(alt) == 0 {
					return fmt.Errorf("%s: %s: empty alternative", p.Name, role)
				}
				if err := p.validate(role, alt); err != nil {
					return err
				}
			}
			continue
		}
		res, ok := p.Resource(s.Resource)
		if !ok {
			return fmt.Errorf("%s: %s: unknown resource %q", p.Name, role, s.Resource)
		}
		if !allowed(res.Kind, s.Op) {
			return fmt.Errorf("%s: %s: cannot %s a %s", p.Name, role, s.Op, res.Kind)
		}
	}
	return nil
}

func allowed(k Kind, op Op) bool {
	switch k {
	case Lock:
		return op == Acquire || op == Release
	case Flag:
		return op == Post || op == Wait
	case Buffer:
		return op == Put || op == Get
	}
	return false
}

// ProdCon is the producer/consumer protocol.
func ProdCon(producers, consumers, capacity int) *Protocol {
	p := &Protocol{
		Name:      "prodcon",
		Resources: []Resource{{Name: "queue", Kind: Buffer, Capacity: capacity}},
	}
	for i := 0; i < producers; i++ {
		p.Roles = append(p.Roles, Role{Name: fmt.Sprintf("producer%d", i), Loop: []Step{Do(Put, "queue")}})
	}
	for i := 0; i < consumers; i++ {
		p.Roles = append(p.Roles, Role{Name: fmt.Sprintf("consumer%d", i), Loop: []Step{Do(Get, "queue")}})
	}
	return p
}

// Diners is the dining philosophers protocol for n seats.
func Diners(n int) *Protocol {
	p := &Protocol{Name: "diners"}
	fork := func(i int) string { return fmt.Sprintf("fork%d", i) }
	for i := 0; i < n; i++ {
		p.Resources = append(p.Resources, Resource{Name: fork(i), Kind: Lock})
	}
	for seat := 0; seat < n; seat++ {
		first, second := diners.Order(seat, n)
		p.Roles = append(p.Roles, Role{
			Name: fmt.Sprintf("philosopher%d", seat),
			Loop: []Step{
				Do(Acquire, fork(first)),
				Do(Acquire, fork(second)),
				Do(Release, fork(first)),
				Do(Release, fork(second)),
			},
		})
	}
	return p
}

// Brewers is the potion brewers protocol.
func Brewers() *Protocol {
	p := &Protocol{
		Name: "brewers",
		Resources: []Resource{
			{Name: "station", Kind: Lock},
			{Name: "agent", Kind: Flag, Up: true},
		},
	}
	supply := func(i brewers.Ingredient) string { return "supply_" + i.String() }
	ready := func(i brewers.Ingredient) string { return "ready_" + i.String() }
	for x := brewers.Ingredient(0); x < brewers.NumIngredients; x++ {
		p.Resources = append(p.Resources,
			Resource{Name: supply(x), Kind: Flag},
			Resource{Name: ready(x), Kind: Flag})
	}
	for x := brewers.Ingredient(0); x < brewers.NumIngredients; x++ {
		y, z := x.Others()
		p.Roles = append(p.Roles, Role{
			Name: "agent_" + x.String(),
			Loop: []Step{
				Do(Wait, "agent"),
				Do(Acquire, "station"),
				Do(Post, supply(y)),
				Do(Post, supply(z)),
				Do(Release, "station"),
			},
		})
	}
	for x := brewers.Ingredient(0); x < brewers.NumIngredients; x++ {
		y, z := x.Others()
		p.Roles = append(p.Roles, Role{
			Name: "broker_" + x.String(),
			Loop: []Step{
				Do(Wait, supply(x)),
				Do(Acquire, "station"),
				Choose(
					[]Step{Do(Post, ready(z)), Do(Release, "station")},
					[]Step{Do(Post, ready(y)), Do(Release, "station")},
					[]Step{Do(Release, "station")},
				),
			},
		})
	}
	for x := brewers.Ingredient(0); x < brewers.NumIngredients; x++ {
		p.Roles = append(p.Roles, Role{
			Name: "brewer_" + x.String(),
			Loop: []Step{
				Do(Wait, ready(x)),
				Do(Acquire, "station"),
				Do(Post, "agent"),
				Do(Release, "station"),
			},
		})
	}
	return p
}
