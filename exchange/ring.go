// Package exchange routes named field values between producer and consumer
// components that advance at different rates, reducing each producer's
// buffered history with precomputed time-overlap weights on every read.
package exchange

import "log"

// A Ring is a fixed-capacity rolling window over the most recent values a
// producer has emitted. Index 0 is the newest value and index -k is k steps
// older. Rotation reuses the slot that ages out; no slot is ever
// reallocated.
type Ring struct {
	name  string
	slots [][]float64
	head  int
}

// NewRing creates a ring of the given history depth over fields of the
// given width.
func NewRing(name string, history, width int) *Ring {
	if history <= 0 || width <= 0 {
		log.Panicf("ring %s needs positive history and width, got %d, %d",
			name, history, width)
	}

	r := &Ring{
		name:  name,
		slots: make([][]float64, history),
	}

	for i := range r.slots {
		r.slots[i] = make([]float64, width)
	}

	return r
}

// Name returns the name of the ring.
func (r *Ring) Name() string {
	return r.name
}

// History returns the number of values the ring retains.
func (r *Ring) History() int {
	return len(r.slots)
}

// Width returns the number of cells per value.
func (r *Ring) Width() int {
	return len(r.slots[0])
}

// Rotate ages every slot by one step: the newest value becomes At(-1) and a
// cleared slot, reusing the storage of the value that aged out, becomes
// At(0).
func (r *Ring) Rotate() {
	r.head = (r.head + 1) % len(r.slots)

	cleared := r.slots[r.head]
	for i := range cleared {
		cleared[i] = 0
	}
}

// At returns the value k steps old. k must be in (-History, 0]. The
// returned slice is a view into the ring; writes to it stay visible until
// the slot ages out.
func (r *Ring) At(k int) []float64 {
	if k > 0 || k <= -len(r.slots) {
		log.Panicf("ring %s index %d out of range (%d, 0]",
			r.name, k, -len(r.slots))
	}

	return r.slots[((r.head+k)%len(r.slots)+len(r.slots))%len(r.slots)]
}

// Write copies a value into the current slot.
func (r *Ring) Write(values []float64) {
	current := r.slots[r.head]
	if len(values) != len(current) {
		log.Panicf("ring %s holds fields of %d cells, got %d",
			r.name, len(current), len(values))
	}

	copy(current, values)
}
