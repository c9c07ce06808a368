package diners

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Forks is a ring of binary resources. Fork i sits between seats i-1 and i.
type Forks struct {
	sems []*semaphore.Weighted
}

// NewForks creates n available forks.
func NewForks(n int) *Forks {
	f := &Forks{sems: make([]*semaphore.Weighted, n)}
	for i := range f.sems {
		f.sems[i] = semaphore.NewWeighted(1)
	}
	return f
}

// Len returns the number of forks.
func (f *Forks) Len() int { return len(f.sems) }

// Acquire takes fork i, blocking while it is held or until ctx is done.
func (f *Forks) Acquire(ctx context.Context, i int) error {
	return f.sems[i].Acquire(ctx, 1)
}

// TryAcquire takes fork i only if it is free.
func (f *Forks) TryAcquire(i int) bool {
	return f.sems[i].TryAcquire(1)
}

// Release puts fork i back. Releasing a free fork panics.
func (f *Forks) Release(i int) {
	f.sems[i].Release(1)
}
