package brewers

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// flag is a binary semaphore. Posting a flag that is already up panics.
type flag struct {
	sem *semaphore.Weighted
}

func newFlag(up bool) *flag {
	f := &flag{sem: semaphore.NewWeighted(1)}
	if !up {
		f.sem.TryAcquire(1)
	}
	return f
}

// wait lowers the flag, blocking until it is up or ctx is done.
func (f *flag) wait(ctx context.Context) error {
	return f.sem.Acquire(ctx, 1)
}

// post raises the flag.
func (f *flag) post() {
	f.sem.Release(1)
}
