package kernel

import "fmt"

// Cell holds state shared between the VM and the routines of the outer loop.
//
// Access is serialized by the cooperative scheduler, so the cell only has to
// catch overlapping borrows. A second Borrow while one is live panics.
type Cell[T any] struct {
	_        [0]func() // prevent accidental copying.
	v        T
	borrowed bool
	name     string
}

// NewCell returns a cell holding v. The name is used in borrow panics.
func NewCell[T any](name string, v T) *Cell[T] {
	return &Cell[T]{v: v, name: name}
}

// Borrow returns exclusive access to the value. The returned func releases it.
func (c *Cell[T]) Borrow() (*T, func()) {
	if c.borrowed {
		panic(fmt.Sprintf("kernel: cell %q already borrowed", c.name))
	}
	c.borrowed = true
	return &c.v, c.release
}

func (c *Cell[T]) release() {
	if !c.borrowed {
		panic(fmt.Sprintf("kernel: cell %q released twice", c.name))
	}
	c.borrowed = false
}

// With runs fn while holding the borrow.
func (c *Cell[T]) With(fn func(v *T)) {
	v, release := c.Borrow()
	defer release()
	fn(v)
}

// Borrowed reports whether a borrow is currently live.
func (c *Cell[T]) Borrowed() bool { return c.borrowed }
