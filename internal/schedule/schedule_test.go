package schedule

import (
	"context"
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

func TestAfterFiresOnceWhenDurationElapses(t *testing.T) {
	s := New()
	fired := 0
	s.After(context.Background(), 300*time.Millisecond, func() { fired++ })

	for range 2 {
		s.Update(tick)
	}
	if fired != 0 {
		t.Fatal("task fired early")
	}
	s.Update(tick)
	if fired != 1 {
		t.Fatalf("fired = %d after 300ms, expected 1", fired)
	}
	s.Update(tick)
	if fired != 1 || s.Pending() != 0 {
		t.Error("task should run exactly once and be removed")
	}
}

func TestWaitUntilPollsOncePerTick(t *testing.T) {
	s := New()
	polls := 0
	ready := false
	fired := false
	s.WaitUntil(context.Background(), func() bool { polls++; return ready }, func() { fired = true })

	s.Update(tick)
	s.Update(tick)
	if polls != 2 || fired {
		t.Fatalf("polls = %d, fired = %v; expected 2 polls and no fire", polls, fired)
	}
	ready = true
	s.Update(tick)
	if !fired {
		t.Error("task should fire on the first tick the condition holds")
	}
}

func TestCancelledTaskNeverFires(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	fired := false
	s.After(ctx, tick, func() { fired = true })
	s.WaitUntil(ctx, func() bool { return true }, func() { fired = true })

	cancel()
	s.Update(tick)
	if fired {
		t.Error("cancelled tasks must not run")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, expected cancelled tasks dropped", s.Pending())
	}
}

func TestTaskAddedDuringUpdateWaitsForNextTick(t *testing.T) {
	s := New()
	var order []string
	s.After(context.Background(), 0, func() {
		order = append(order, "outer")
		s.WaitUntil(context.Background(), func() bool { return true }, func() {
			order = append(order, "inner")
		})
	})

	s.Update(tick)
	if len(order) != 1 {
		t.Fatalf("order = %v, inner task should not run in the same tick", order)
	}
	s.Update(tick)
	if len(order) != 2 || order[1] != "inner" {
		t.Errorf("order = %v, expected inner on the next tick", order)
	}
}

func TestClearDuringUpdateDropsEverything(t *testing.T) {
	s := New()
	ran := 0
	s.After(context.Background(), 0, func() { ran++; s.Clear() })
	s.After(context.Background(), 0, func() { ran++ })
	s.After(context.Background(), time.Hour, func() { ran++ })

	s.Update(tick)
	if ran != 1 {
		t.Errorf("ran = %d, expected only the clearing task", ran)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d after Clear", s.Pending())
	}
}

func TestNilContextIsTreatedAsBackground(t *testing.T) {
	s := New()
	fired := false
	//nolint:staticcheck // exercising the nil guard
	s.After(nil, 0, func() { fired = true })
	s.Update(tick)
	if !fired {
		t.Error("task with nil context should run")
	}
}
