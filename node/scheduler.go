package node

import "flimcore/clock"

// Task is a periodically-run unit of work. After each run it is rescheduled
// periodMs milliseconds later; tasks are never removed.
type Task struct {
	name     string
	wakeMs   uint32
	periodMs uint32
	run      func()
	next     *Task
}

// Scheduler is a cooperative, sorted-by-wake-time task list, the foreground
// loop's single source of periodic ticking. It has no timer interrupt of
// its own: callers drive it by calling Run repeatedly from the main loop.
type Scheduler struct {
	clock clock.Source
	head  *Task
}

// NewScheduler builds an empty Scheduler.
func NewScheduler(c clock.Source) *Scheduler {
	return &Scheduler{clock: c}
}

// Every registers run to be called about every periodMs milliseconds,
// starting after the first periodMs elapses.
func (s *Scheduler) Every(name string, periodMs uint32, run func()) {
	t := &Task{
		name:     name,
		wakeMs:   s.clock.NowMillis() + periodMs,
		periodMs: periodMs,
		run:      run,
	}
	s.insert(t)
}

func (s *Scheduler) insert(t *Task) {
	if s.head == nil || t.wakeMs < s.head.wakeMs {
		t.next = s.head
		s.head = t
		return
	}
	cur := s.head
	for cur.next != nil && cur.next.wakeMs <= t.wakeMs {
		cur = cur.next
	}
	t.next = cur.next
	cur.next = t
}

// Run executes every task whose wake time has passed, rescheduling each for
// its next period. Call this from the foreground loop; it never blocks.
func (s *Scheduler) Run() {
	now := s.clock.NowMillis()
	for s.head != nil && s.head.wakeMs <= now {
		t := s.head
		s.head = t.next
		t.next = nil

		t.run()

		t.wakeMs = now + t.periodMs
		s.insert(t)
	}
}
