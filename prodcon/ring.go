package prodcon

// Ring is a fixed-capacity FIFO of ints. It is not safe for concurrent use;
// Channel guards it with a lock.
type Ring struct {
	buf   []int
	head  int // next slot to pop
	tail  int // next slot to push
	count int
}

// NewRing creates a Ring holding up to capacity values.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Ring{buf: make([]int, capacity)}
}

// Full returns true if no more values fit.
func (r *Ring) Full() bool { return r.count == len(r.buf) }

// Empty returns true if there is nothing to pop.
func (r *Ring) Empty() bool { return r.count == 0 }

// Len returns the number of values held.
func (r *Ring) Len() int { return r.count }

// Cap returns the capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Push appends v. Pushing onto a full ring is a programming error.
func (r *Ring) Push(v int) {
	if r.Full() {
		panic("ring: push on full ring")
	}
	r.buf[r.tail] = v
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
}

// Pop removes and returns the oldest value. Popping an empty ring is a
// programming error.
func (r *Ring) Pop() int {
	if r.Empty() {
		panic("ring: pop on empty ring")
	}
	v := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return v
}
