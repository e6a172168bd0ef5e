// README: Scheduler abstraction for delayed effects; real time in production, virtual time in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending delayed effect.
type Timer interface {
	// Stop prevents the effect from firing. It reports whether the call stopped it.
	Stop() bool
}

// Scheduler runs fn after d on some goroutine. Callers serialize effects themselves.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Real is backed by time.AfterFunc.
type Real struct{}

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

func (Real) Now() time.Time {
	return time.Now()
}

// Scaled divides every delay by Factor; used to run the demo faster than wall time.
type Scaled struct {
	Base   Scheduler
	Factor float64
}

func (s Scaled) AfterFunc(d time.Duration, fn func()) Timer {
	if s.Factor > 0 {
		d = time.Duration(float64(d) / s.Factor)
	}
	return s.Base.AfterFunc(d, fn)
}

func (s Scaled) Now() time.Time {
	return s.Base.Now()
}

// Manual is a virtual clock. Effects fire only inside Advance, on the caller's goroutine,
// in deadline order (ties in scheduling order).
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m   *Manual
	at  time.Time
	seq uint64
	fn  func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves virtual time forward by d, firing every effect that comes due,
// including effects scheduled by effects fired during this call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()
		next.fn()
	}
}

// Pending reports how many effects are still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) popDue(target time.Time) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	first := m.pending[0]
	if first.at.After(target) {
		return nil
	}
	m.pending = m.pending[1:]
	return first
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			return true
		}
	}
	return false
}
