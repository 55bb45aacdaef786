package kernel

import (
	"context"
	"testing"
	"time"
)

func TestCellBorrowTwicePanics(t *testing.T) {
	c := NewCell("test", 1)

	_, release := c.Borrow()
	defer func() {
		if recover() == nil {
			t.Fatalf("Borrow() while borrowed did not panic")
		}
		release()
		if c.Borrowed() {
			t.Fatalf("Borrowed() = true after release, want false")
		}
	}()
	c.Borrow()
}

func TestCellWith(t *testing.T) {
	c := NewCell("test", 1)
	c.With(func(v *int) { *v += 41 })
	c.With(func(v *int) {
		if *v != 42 {
			t.Fatalf("value = %d, want 42", *v)
		}
	})
}

func TestMailboxLastWriteWins(t *testing.T) {
	var mb Mailbox

	if _, ok := mb.Take(); ok {
		t.Fatalf("Take() ok = true on empty mailbox, want false")
	}
	mb.Put("first")
	mb.Put("second")

	msg, ok := mb.Take()
	if !ok || msg != "second" {
		t.Fatalf("Take() = %q, %v, want %q, true", msg, ok, "second")
	}
	if mb.Pending() {
		t.Fatalf("Pending() = true after Take, want false")
	}
	if got := mb.Seq(); got != 2 {
		t.Fatalf("Seq() = %d, want 2", got)
	}
}

func TestRingFIFO(t *testing.T) {
	r := MakeRing(4)

	if n := r.PushAll([]byte{1, 2, 3, 4, 5}); n != 4 {
		t.Fatalf("PushAll() = %d, want 4", n)
	}
	if r.Push(6) {
		t.Fatalf("Push() on full ring = true, want false")
	}
	if b, ok := r.Pop(); !ok || b != 1 {
		t.Fatalf("Pop() = %d, %v, want 1, true", b, ok)
	}
	if !r.Push(7) {
		t.Fatalf("Push() after Pop = false, want true")
	}
	if n := r.Discard(2); n != 2 {
		t.Fatalf("Discard(2) = %d, want 2", n)
	}
	if b, ok := r.Pop(); !ok || b != 4 {
		t.Fatalf("Pop() after Discard = %d, %v, want 4, true", b, ok)
	}
	if n := r.Discard(10); n != 1 {
		t.Fatalf("Discard(10) = %d, want 1", n)
	}
	if !r.Empty() {
		t.Fatalf("Empty() = false, want true")
	}
}

type recordingVM struct {
	ticks []time.Duration
	log   *[]string
}

func (v *recordingVM) Tick(elapsed time.Duration, timeScale float64) {
	if timeScale != 1.0 {
		panic("unexpected time scale")
	}
	v.ticks = append(v.ticks, elapsed)
	*v.log = append(*v.log, "tick")
}

func TestSchedulerIterationOrder(t *testing.T) {
	var log []string
	vm := &recordingVM{log: &log}

	now := time.Duration(0)
	s := NewScheduler(vm, func() time.Duration {
		now += time.Millisecond
		return now
	})
	s.yield = nil
	s.AddFlush(RoutineFunc(func(*Context) { log = append(log, "flush") }))
	s.AddBackground(RoutineFunc(func(*Context) { log = append(log, "background") }))

	if s.State() != StateInit {
		t.Fatalf("State() = %v, want init", s.State())
	}
	s.Step()
	s.Step()
	if s.State() != StateRunning {
		t.Fatalf("State() = %v, want running", s.State())
	}

	want := []string{"tick", "flush", "background", "tick", "flush", "background"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if vm.ticks[0] != time.Millisecond || vm.ticks[1] != 2*time.Millisecond {
		t.Fatalf("ticks = %v, want [1ms 2ms]", vm.ticks)
	}
	if s.Iterations() != 2 {
		t.Fatalf("Iterations() = %d, want 2", s.Iterations())
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n int
	s := NewScheduler(nil, nil)
	s.AddFlush(RoutineFunc(func(*Context) {
		n++
		if n == 3 {
			cancel()
		}
	}))
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
	if n != 3 {
		t.Fatalf("flush ran %d times, want 3", n)
	}
}
