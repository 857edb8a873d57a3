// Package timertest provides a manually advanced timer.Scheduler.
package timertest

import (
	"github.com/nikolayk812/storefront/internal/timer"
	"sort"
	"sync"
	"time"
)

// Epoch is the wall-clock time a new Scheduler starts at.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// Scheduler fires callbacks synchronously, in due order, when Advance moves its clock past their deadline.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

func New() *Scheduler {
	return &Scheduler{}
}

type fakeTimer struct {
	s       *Scheduler
	seq     int
	due     time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) timer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &fakeTimer{s: s, seq: s.seq, due: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every timer that becomes due, including timers scheduled by fired callbacks.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		t.f()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of timers that are neither stopped nor fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Now returns Epoch plus the time advanced so far.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Epoch.Add(s.now)
}

// Elapsed returns the total time advanced so far.
func (s *Scheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.now
}

func (s *Scheduler) nextDue(target time.Duration) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live

	sort.Slice(live, func(i, j int) bool {
		if live[i].due != live[j].due {
			return live[i].due < live[j].due
		}
		return live[i].seq < live[j].seq
	})

	if len(live) == 0 || live[0].due > target {
		return nil
	}

	t := live[0]
	t.fired = true
	if t.due > s.now {
		s.now = t.due
	}
	return t
}
