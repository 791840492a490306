package engine

import (
	"container/heap"
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDelay is returned when an event is scheduled in the past.
var ErrNegativeDelay = errors.New("negative event delay")

// Event is a handle to a scheduled callback.
type Event struct {
	Name string

	executeAt time.Duration
	seq       uint64
	index     int
	action    func()
	cancelled bool
	fired     bool
	queue     *Scheduler
}

// At returns the deadline of the event.
func (e *Event) At() time.Duration {
	if e == nil {
		return 0
	}
	return e.executeAt
}

// Pending reports whether the event is still waiting to fire.
func (e *Event) Pending() bool {
	return e != nil && !e.cancelled && !e.fired
}

// Cancel removes the event from its queue. Cancelling a fired or already
// cancelled event does nothing.
func (e *Event) Cancel() {
	if e == nil || e.cancelled || e.fired {
		return
	}
	e.cancelled = true
	e.action = nil
	if e.queue != nil && e.index >= 0 {
		heap.Remove(&e.queue.events, e.index)
	}
}

type eventQueue []*Event

func (eq eventQueue) Len() int { return len(eq) }

func (eq eventQueue) Less(i, j int) bool {
	if eq[i].executeAt == eq[j].executeAt {
		return eq[i].seq < eq[j].seq
	}
	return eq[i].executeAt < eq[j].executeAt
}

func (eq eventQueue) Swap(i, j int) {
	eq[i], eq[j] = eq[j], eq[i]
	eq[i].index = i
	eq[j].index = j
}

func (eq *eventQueue) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*eq)
	*eq = append(*eq, ev)
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*eq = old[:n-1]
	return ev
}

// Scheduler is the time-ordered event queue that drives an iteration.
// Events sharing a deadline fire in the order they were scheduled.
type Scheduler struct {
	now    time.Duration
	seq    uint64
	fired  uint64
	events eventQueue
}

// NewScheduler returns an empty scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Schedule queues action to run delay after the current time.
func (s *Scheduler) Schedule(delay time.Duration, name string, action func()) (*Event, error) {
	if delay < 0 {
		return nil, fmt.Errorf("schedule %s at %v: %w", name, delay, ErrNegativeDelay)
	}
	if action == nil {
		return nil, fmt.Errorf("schedule %s: nil callback", name)
	}
	s.seq++
	ev := &Event{
		Name:      name,
		executeAt: s.now + delay,
		seq:       s.seq,
		action:    action,
		queue:     s,
	}
	heap.Push(&s.events, ev)
	return ev, nil
}

// Cancel is a nil-safe alias for ev.Cancel.
func (s *Scheduler) Cancel(ev *Event) {
	ev.Cancel()
}

// Advance fires the earliest pending event. It returns false when the queue
// is empty.
func (s *Scheduler) Advance() bool {
	for s.events.Len() > 0 {
		ev := heap.Pop(&s.events).(*Event)
		if ev.cancelled {
			continue
		}
		s.now = ev.executeAt
		ev.fired = true
		action := ev.action
		ev.action = nil
		s.fired++
		action()
		return true
	}
	return false
}

// NextAt returns the deadline of the earliest pending event.
func (s *Scheduler) NextAt() (time.Duration, bool) {
	if s.events.Len() == 0 {
		return 0, false
	}
	return s.events[0].executeAt, true
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int {
	return s.events.Len()
}

// Fired returns how many events have fired since the last reset.
func (s *Scheduler) Fired() uint64 {
	return s.fired
}

// Reset drops every pending event and rewinds the clock to zero.
func (s *Scheduler) Reset() {
	for _, ev := range s.events {
		ev.cancelled = true
		ev.action = nil
		ev.index = -1
	}
	s.events = s.events[:0]
	s.now = 0
	s.seq = 0
	s.fired = 0
}
