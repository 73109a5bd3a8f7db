// Package schedule runs cooperative waits on the game tick. A task either
// waits for a duration or for a predicate to hold, is polled once per
// Update, and is dropped without running when its context is cancelled.
package schedule

import (
	"context"
	"time"
)

type task struct {
	ctx       context.Context
	remaining time.Duration
	cond      func() bool
	fn        func()
}

// ready reports whether the task should fire this tick. Duration waits
// consume dt first.
func (t *task) ready(dt time.Duration) bool {
	if t.cond != nil {
		return t.cond()
	}
	t.remaining -= dt
	return t.remaining <= 0
}

// Scheduler holds pending tasks. It is driven by a single goroutine.
type Scheduler struct {
	tasks    []*task
	incoming []*task
	updating bool
	dropAll  bool
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// After runs fn once d of tick time has passed, unless ctx is cancelled
// first.
func (s *Scheduler) After(ctx context.Context, d time.Duration, fn func()) {
	s.add(&task{ctx: ctx, remaining: d, fn: fn})
}

// WaitUntil runs fn on the first tick cond reports true, unless ctx is
// cancelled first. cond is evaluated once per tick.
func (s *Scheduler) WaitUntil(ctx context.Context, cond func() bool, fn func()) {
	s.add(&task{ctx: ctx, cond: cond, fn: fn})
}

func (s *Scheduler) add(t *task) {
	if t.ctx == nil {
		t.ctx = context.Background()
	}
	if s.updating {
		// Polled from the next tick on.
		s.incoming = append(s.incoming, t)
		return
	}
	s.tasks = append(s.tasks, t)
}

// Update polls every task once in registration order.
func (s *Scheduler) Update(dt time.Duration) {
	s.updating = true
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if s.dropAll {
			break
		}
		if t.ctx.Err() != nil {
			continue
		}
		if !t.ready(dt) {
			kept = append(kept, t)
			continue
		}
		t.fn()
	}
	s.updating = false
	if s.dropAll {
		s.dropAll = false
		s.Clear()
		return
	}
	clear(s.tasks[len(kept):])
	s.tasks = append(kept, s.incoming...)
	clear(s.incoming)
	s.incoming = s.incoming[:0]
}

// Pending returns the number of live tasks. Cancelled tasks still count
// until the next Update drops them.
func (s *Scheduler) Pending() int {
	return len(s.tasks) + len(s.incoming)
}

// Clear drops every task without running it.
func (s *Scheduler) Clear() {
	if s.updating {
		s.dropAll = true
		return
	}
	clear(s.tasks)
	s.tasks = s.tasks[:0]
	clear(s.incoming)
	s.incoming = s.incoming[:0]
}
