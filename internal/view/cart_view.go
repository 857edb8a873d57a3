package view

import (
	"github.com/nikolayk812/storefront/internal/timer"
	"sync"
	"time"
)

const (
	DefaultCountdownSteps = 5
	DefaultCountdownTick  = time.Second
)

type CloseReason string

const (
	CloseExplicit  CloseReason = "explicit"
	CloseCountdown CloseReason = "countdown"
)

// CartView is the cart panel state machine: Closed, OpenEmpty or OpenWithItems.
// It owns at most one countdown timer, which auto-closes an empty open cart.
type CartView struct {
	mu        sync.Mutex
	scheduler timer.Scheduler
	steps     int
	tick      time.Duration
	onClose   func(CloseReason)

	state      State
	desc       Description
	remaining  int
	timer      timer.Timer
	generation uint64
}

type Option func(*CartView)

func WithCountdown(steps int, tick time.Duration) Option {
	return func(v *CartView) {
		if steps > 0 {
			v.steps = steps
		}
		if tick > 0 {
			v.tick = tick
		}
	}
}

// WithOnClose registers fn to be called, outside the view lock, whenever an open view closes.
func WithOnClose(fn func(CloseReason)) Option {
	return func(v *CartView) {
		v.onClose = fn
	}
}

func NewCartView(scheduler timer.Scheduler, opts ...Option) *CartView {
	v := &CartView{
		scheduler: scheduler,
		steps:     DefaultCountdownSteps,
		tick:      DefaultCountdownTick,
		state:     Closed,
		desc:      Description{State: Closed, Lines: []LineView{}},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open renders s and shows the view. Opening an already open view re-renders it.
func (v *CartView) Open(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.renderLocked(s)
}

// Refresh re-renders s if the view is open. A closed view stays closed.
func (v *CartView) Refresh(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == Closed {
		return
	}
	v.renderLocked(s)
}

func (v *CartView) Close() {
	v.mu.Lock()
	closed := v.closeLocked()
	v.mu.Unlock()

	if closed {
		v.notify(CloseExplicit)
	}
}

func (v *CartView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

func (v *CartView) Description() Description {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.desc.clone()
}

// ActiveTimers reports how many countdown timers the view currently holds: 0 or 1.
func (v *CartView) ActiveTimers() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.timer == nil {
		return 0
	}
	return 1
}

func (v *CartView) renderLocked(s Snapshot) {
	v.cancelLocked()

	v.desc = Render(s, v.steps)
	v.state = v.desc.State

	if v.state == OpenEmpty {
		v.remaining = v.steps
		v.scheduleLocked()
	}
}

func (v *CartView) scheduleLocked() {
	gen := v.generation
	v.timer = v.scheduler.AfterFunc(v.tick, func() {
		v.onTick(gen)
	})
}

func (v *CartView) onTick(gen uint64) {
	v.mu.Lock()

	// a callback that fired while being cancelled belongs to an older render
	if gen != v.generation || v.state != OpenEmpty {
		v.mu.Unlock()
		return
	}

	v.timer = nil
	v.remaining--

	if v.remaining > 0 {
		v.desc.Message = CountdownMessage(v.remaining)
		v.desc.Countdown = v.remaining
		v.scheduleLocked()
		v.mu.Unlock()
		return
	}

	closed := v.closeLocked()
	v.mu.Unlock()

	if closed {
		v.notify(CloseCountdown)
	}
}

func (v *CartView) cancelLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.generation++
}

func (v *CartView) closeLocked() bool {
	v.cancelLocked()

	if v.state == Closed {
		return false
	}

	v.state = Closed
	v.remaining = 0
	v.desc = Description{State: Closed, Lines: []LineView{}}
	return true
}

func (v *CartView) notify(reason CloseReason) {
	if v.onClose != nil {
		v.onClose(reason)
	}
}
