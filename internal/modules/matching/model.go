// README: Availability answers returned by the matching backend.
package matching

import (
	"time"

	"oortgo/internal/clock"
)

type Availability struct {
	Available        bool `json:"available"`
	SharingAvailable bool `json:"sharing_available"`
	ETAMinutes       int  `json:"eta_minutes"`
}

// RandSource is the subset of *math/rand/v2.Rand the simulator draws from.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

type SimConfig struct {
	// Latency is how long every check suspends before answering.
	Latency time.Duration
	// Clock times the latency; nil means wall time.
	Clock clock.Scheduler
	// MatchProbability is the chance a vehicle of the requested class is found.
	MatchProbability float64
	// SharingProbability is the chance, given a match, that a co-passenger ride is on the same road.
	SharingProbability float64
	MinETA             int
	MaxETA             int
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		Latency:            1500 * time.Millisecond,
		MatchProbability:   0.85,
		SharingProbability: 0.6,
		MinETA:             2,
		MaxETA:             6,
	}
}
