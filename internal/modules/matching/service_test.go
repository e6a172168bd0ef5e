// README: Matching simulator tests with scripted random sources.
package matching

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"oortgo/internal/clock"
	"oortgo/internal/types"
)

// scriptedRand replays fixed draws.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func noLatency() SimConfig {
	cfg := DefaultSimConfig()
	cfg.Latency = 0
	return cfg
}

func TestSimulator_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		floats      []float64
		eta         int
		wantAvail   bool
		wantSharing bool
		wantETA     int
	}{
		{"match and sharing", []float64{0.10, 0.10}, 0, true, true, 2},
		{"match without sharing", []float64{0.10, 0.95}, 4, true, false, 6},
		{"no match forces no sharing", []float64{0.90, 0.10}, 2, false, false, 4},
		{"boundary at 0.85 is a miss", []float64{0.85, 0.0}, 1, false, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSimulator(noLatency(), &scriptedRand{floats: tt.floats, ints: []int{tt.eta}})
			got, err := sim.Check(context.Background(), types.VehicleAuto)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if got.Available != tt.wantAvail || got.SharingAvailable != tt.wantSharing || got.ETAMinutes != tt.wantETA {
				t.Errorf("Check() = %+v, want avail=%v sharing=%v eta=%d", got, tt.wantAvail, tt.wantSharing, tt.wantETA)
			}
		})
	}
}

func TestSimulator_Distribution(t *testing.T) {
	sim := NewSimulator(noLatency(), rand.New(rand.NewPCG(1, 2)))
	const runs = 4000
	avail, sharing := 0, 0
	for i := 0; i < runs; i++ {
		a, err := sim.Check(context.Background(), types.VehicleSedan)
		if err != nil {
			t.Fatal(err)
		}
		if a.ETAMinutes < 2 || a.ETAMinutes > 6 {
			t.Fatalf("eta %d out of [2,6]", a.ETAMinutes)
		}
		if a.SharingAvailable && !a.Available {
			t.Fatal("sharing available without a match")
		}
		if a.Available {
			avail++
		}
		if a.SharingAvailable {
			sharing++
		}
	}
	// Expect ~0.85 and ~0.51; bounds are loose to keep the test stable.
	if p := float64(avail) / runs; p < 0.80 || p > 0.90 {
		t.Errorf("available rate %.3f, want ~0.85", p)
	}
	if p := float64(sharing) / runs; p < 0.45 || p > 0.57 {
		t.Errorf("sharing rate %.3f, want ~0.51", p)
	}
}

func TestSimulator_LatencyHonoursContext(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Latency = time.Hour
	sim := NewSimulator(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := sim.Check(ctx, types.VehicleAuto)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Check() error = %v, want deadline exceeded", err)
	}
}

func TestSimulator_LatencyFollowsClock(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := DefaultSimConfig()
	cfg.Clock = clk
	sim := NewSimulator(cfg, &scriptedRand{floats: []float64{0.1, 0.1}, ints: []int{2}})

	type result struct {
		a   Availability
		err error
	}
	out := make(chan result, 1)
	go func() {
		a, err := sim.Check(context.Background(), types.VehicleAuto)
		out <- result{a, err}
	}()

	deadline := time.Now().Add(time.Second)
	for clk.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("check never scheduled its latency")
		}
		time.Sleep(time.Millisecond)
	}
	clk.Advance(1499 * time.Millisecond)
	select {
	case r := <-out:
		t.Fatalf("answered before latency elapsed: %+v", r)
	default:
	}

	clk.Advance(time.Millisecond)
	select {
	case r := <-out:
		if r.err != nil || !r.a.Available || r.a.ETAMinutes != 4 {
			t.Fatalf("Check() = %+v, %v", r.a, r.err)
		}
	case <-time.After(time.Second):
		t.Fatal("check did not return after latency")
	}
}

func TestFixed(t *testing.T) {
	var c Checker = Fixed{Available: false}
	got, err := c.Check(context.Background(), types.VehicleBike)
	if err != nil || got.Available {
		t.Fatalf("Fixed.Check() = %+v, %v", got, err)
	}
}
