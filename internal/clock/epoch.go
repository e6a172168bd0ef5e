// README: Epoch tags delayed effects with a generation so a view change cancels everything armed for the old one.
package clock

import (
	"sync"
	"time"
)

// Epoch ties delayed effects to the state generation that scheduled them.
//
// Effects run while holding the owner's lock and are dropped when Advance has been
// called since they were scheduled. Advance and the scheduling methods must be
// called with the owner's lock held.
type Epoch struct {
	sched  Scheduler
	owner  sync.Locker
	gen    uint64
	nextID uint64
	timers map[uint64]Timer
}

func NewEpoch(sched Scheduler, owner sync.Locker) *Epoch {
	return &Epoch{sched: sched, owner: owner, timers: make(map[uint64]Timer)}
}

// Gen returns the current generation.
func (e *Epoch) Gen() uint64 {
	return e.gen
}

// Advance starts a new generation and cancels every outstanding effect.
func (e *Epoch) Advance() {
	e.gen++
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}

// Outstanding reports the number of effects scheduled in the current generation.
func (e *Epoch) Outstanding() int {
	return len(e.timers)
}

// After schedules fn once, in the current generation.
func (e *Epoch) After(d time.Duration, fn func()) {
	gen := e.gen
	e.nextID++
	id := e.nextID
	e.timers[id] = e.sched.AfterFunc(d, func() {
		e.owner.Lock()
		defer e.owner.Unlock()
		if e.gen != gen {
			return
		}
		delete(e.timers, id)
		fn()
	})
}

// Every runs fn each period until it returns false or the generation moves on.
func (e *Epoch) Every(period time.Duration, fn func() bool) {
	var tick func()
	tick = func() {
		if fn() {
			e.After(period, tick)
		}
	}
	e.After(period, tick)
}
