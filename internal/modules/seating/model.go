// README: Seat map definitions sized by vehicle class.
package seating

import "oortgo/internal/types"

type Seat struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// DefaultCapacity is used for classes missing from Capacity.
const DefaultCapacity = 4

// Capacity is the number of seat slots per vehicle class.
var Capacity = map[types.VehicleClass]int{
	types.VehicleBike:     1,
	types.VehicleAuto:     3,
	types.VehicleSedan:    4,
	types.VehicleXL7Seats: 7,
}

// OccupancyFree is the probability each seat is free when a map is generated.
const OccupancyFree = 0.7

// RandSource is the subset of *math/rand/v2.Rand the allocator draws from.
type RandSource interface {
	Float64() float64
}

func capacityOf(class types.VehicleClass) int {
	if n, ok := Capacity[class]; ok {
		return n
	}
	return DefaultCapacity
}
