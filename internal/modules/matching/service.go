// README: Matching simulator stands in for the dispatch backend when checking vehicle availability.
package matching

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"oortgo/internal/clock"
	"oortgo/internal/types"
)

// Checker is what callers depend on; a real dispatch backend can replace the simulator.
type Checker interface {
	Check(ctx context.Context, class types.VehicleClass) (Availability, error)
}

// Simulator answers availability checks with randomized outcomes after a fixed latency.
type Simulator struct {
	cfg SimConfig

	mu  sync.Mutex
	rnd RandSource
}

// NewSimulator uses rnd for every draw; pass nil for a time-seeded source.
func NewSimulator(cfg SimConfig, rnd RandSource) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6f6f7274))
	}
	if cfg.MaxETA < cfg.MinETA {
		cfg.MaxETA = cfg.MinETA
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	return &Simulator{cfg: cfg, rnd: rnd}
}

// Check suspends for the configured latency, then draws an outcome. Cancelling ctx
// aborts the wait and returns ctx.Err().
func (s *Simulator) Check(ctx context.Context, class types.VehicleClass) (Availability, error) {
	if s.cfg.Latency > 0 {
		done := make(chan struct{})
		t := s.cfg.Clock.AfterFunc(s.cfg.Latency, func() { close(done) })
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Availability{}, ctx.Err()
		case <-done:
		}
	} else if err := ctx.Err(); err != nil {
		return Availability{}, err
	}
	return s.draw(), nil
}

func (s *Simulator) draw() Availability {
	s.mu.Lock()
	defer s.mu.Unlock()

	available := s.rnd.Float64() < s.cfg.MatchProbability
	// The sharing draw is taken unconditionally so a seeded source stays aligned
	// whatever the first draw returned.
	sharing := s.rnd.Float64() < s.cfg.SharingProbability
	eta := s.cfg.MinETA + s.rnd.IntN(s.cfg.MaxETA-s.cfg.MinETA+1)

	return Availability{
		Available:        available,
		SharingAvailable: available && sharing,
		ETAMinutes:       eta,
	}
}

// Fixed always returns the same answer; useful when a deterministic backend is wanted.
type Fixed Availability

func (f Fixed) Check(ctx context.Context, _ types.VehicleClass) (Availability, error) {
	if err := ctx.Err(); err != nil {
		return Availability{}, err
	}
	return Availability(f), nil
}
