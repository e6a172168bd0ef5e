// README: Seat allocator tracks the passenger's seat selection against a generated seat map.
package seating

import (
	"math/rand/v2"
	"strconv"
	"time"

	"oortgo/internal/types"
)

// SeatMap generates the seat slots for class, each free with probability OccupancyFree.
func SeatMap(class types.VehicleClass, rnd RandSource) []Seat {
	n := capacityOf(class)
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat{
			ID:        "s" + strconv.Itoa(i+1),
			Label:     strconv.Itoa(i + 1),
			Available: rnd.Float64() < OccupancyFree,
		}
	}
	return seats
}

// Allocator owns one trip's seat map and selection. The selection is never empty
// while at least one seat is free. Not safe for concurrent use; the owning flow
// serializes access.
type Allocator struct {
	rnd      RandSource
	class    types.VehicleClass
	seats    []Seat
	selected map[string]bool
}

// NewAllocator uses rnd for occupancy draws; pass nil for a time-seeded source.
func NewAllocator(rnd RandSource) *Allocator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x73656174))
	}
	return &Allocator{rnd: rnd, selected: make(map[string]bool)}
}

// Reset regenerates the seat map for class and selects the first free seat.
func (a *Allocator) Reset(class types.VehicleClass) {
	a.class = class
	a.seats = SeatMap(class, a.rnd)
	a.selected = make(map[string]bool)
	for _, s := range a.seats {
		if s.Available {
			a.selected[s.ID] = true
			break
		}
	}
}

// Toggle adds or removes id from the selection. Unknown or occupied seats are
// ignored, as is removing the only selected seat. It reports whether the selection changed.
func (a *Allocator) Toggle(id string) bool {
	seat, ok := a.seat(id)
	if !ok || !seat.Available {
		return false
	}
	if a.selected[id] {
		if len(a.selected) == 1 {
			return false
		}
		delete(a.selected, id)
		return true
	}
	a.selected[id] = true
	return true
}

func (a *Allocator) Class() types.VehicleClass {
	return a.class
}

// Seats returns a copy of the current seat map.
func (a *Allocator) Seats() []Seat {
	out := make([]Seat, len(a.seats))
	copy(out, a.seats)
	return out
}

// Selected returns the selected seat IDs in seat-map order.
func (a *Allocator) Selected() []string {
	out := make([]string, 0, len(a.selected))
	for _, s := range a.seats {
		if a.selected[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}

// Count is the number of seats billed; the fare engine treats zero as one.
func (a *Allocator) Count() int {
	return len(a.selected)
}

// HasFreeSeat reports whether any seat in the map is available.
func (a *Allocator) HasFreeSeat() bool {
	for _, s := range a.seats {
		if s.Available {
			return true
		}
	}
	return false
}

func (a *Allocator) seat(id string) (Seat, bool) {
	for _, s := range a.seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}
