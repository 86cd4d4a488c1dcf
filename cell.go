// File: lixenwraith/reload/cell.go
package reload

import "sync"

// Cell is a hot-swappable slot holding one immutable component instance. Many
// concurrent readers copy the contained reference cheaply; a single writer (the
// reload loop) atomically replaces it. T should be a pointer or interface type
// so Load hands out a shared reference, not a deep copy.
//
// A reader that calls Load after a Swap has returned observes the new value. A
// reader concurrent with an in-flight Swap observes either the old or the new
// value, never a mix: replacement is a single reference assignment under the
// write lock, not an in-place mutation.
type Cell[T any] struct {
	mu  sync.RWMutex
	val T
}

// NewCell creates a cell holding an initial instance.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{val: initial}
}

// Load returns the current instance. It blocks only for the instant a writer
// holds the lock during replacement; concurrent readers never block each other.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

// Swap installs a new instance and returns the previous one, letting the
// caller decide whether to release resources once in-flight readers that
// captured the old reference have finished.
func (c *Cell[T]) Swap(next T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.val
	c.val = next
	return old
}
