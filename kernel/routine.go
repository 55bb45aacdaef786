package kernel

import "time"

// Routine is a cooperative unit of asynchronous work.
//
// Step must return promptly. A routine that is waiting on I/O or on shared
// state simply returns without progress and is stepped again on the next
// scheduler yield.
type Routine interface {
	Step(*Context)
}

// RoutineFunc adapts a function to a Routine.
type RoutineFunc func(*Context)

func (f RoutineFunc) Step(ctx *Context) { f(ctx) }

// Context is passed to every routine step.
type Context struct {
	iter    uint64
	elapsed time.Duration
}

// Iteration returns the scheduler loop iteration being run.
func (c *Context) Iteration() uint64 { return c.iter }

// Elapsed returns the time since the scheduler started.
func (c *Context) Elapsed() time.Duration { return c.elapsed }

// routineSet steps a fixed list of routines round-robin.
type routineSet struct {
	routines []Routine
	rr       int
}

func (s *routineSet) add(r Routine) {
	if r == nil {
		return
	}
	s.routines = append(s.routines, r)
}

// stepAll runs every routine once, starting after the one that went first last time.
func (s *routineSet) stepAll(ctx *Context) {
	n := len(s.routines)
	if n == 0 {
		return
	}
	start := s.rr
	s.rr = (s.rr + 1) % n
	for i := 0; i < n; i++ {
		s.routines[(start+i)%n].Step(ctx)
	}
}
