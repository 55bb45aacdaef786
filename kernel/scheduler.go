package kernel

import (
	"context"
	"runtime"
	"time"
)

// Ticker advances the logic VM by one scheduler iteration.
type Ticker interface {
	Tick(elapsed time.Duration, timeScale float64)
}

// Clock returns the monotonic time since the scheduler started.
type Clock func() time.Duration

// MonotonicClock returns a Clock anchored at the current instant.
func MonotonicClock() Clock {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// State is the scheduler lifecycle state.
type State uint8

const (
	StateInit State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Scheduler interleaves VM ticks with asynchronous I/O routines.
//
// One iteration is: read the elapsed time, tick the VM once, run every flush
// routine, then yield once so background routines (receivers) can progress.
// It never returns to Init.
type Scheduler struct {
	vm    Ticker
	clock Clock

	flush      routineSet
	background routineSet

	state State
	iter  uint64
	yield func()
}

// NewScheduler creates a scheduler for vm. A nil clock uses MonotonicClock.
func NewScheduler(vm Ticker, clock Clock) *Scheduler {
	if clock == nil {
		clock = MonotonicClock()
	}
	return &Scheduler{vm: vm, clock: clock, yield: runtime.Gosched}
}

// AddFlush registers a routine that runs after every VM tick.
func (s *Scheduler) AddFlush(r Routine) { s.flush.add(r) }

// AddBackground registers a routine that runs at every scheduler yield.
func (s *Scheduler) AddBackground(r Routine) { s.background.add(r) }

// State returns the lifecycle state.
func (s *Scheduler) State() State { return s.state }

// Iterations returns the number of completed iterations.
func (s *Scheduler) Iterations() uint64 { return s.iter }

// Step runs one loop iteration.
func (s *Scheduler) Step() {
	s.state = StateRunning

	elapsed := s.clock()
	if s.vm != nil {
		s.vm.Tick(elapsed, 1.0)
	}

	ctx := &Context{iter: s.iter, elapsed: elapsed}
	s.flush.stepAll(ctx)
	s.Yield(ctx)
	s.iter++
}

// Yield lets background routines and hardware goroutines run once.
func (s *Scheduler) Yield(ctx *Context) {
	s.background.stepAll(ctx)
	if s.yield != nil {
		s.yield()
	}
}

// Run loops until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
}
