// README: Pricing rate definition for each vehicle class.
package pricing

import "oortgo/internal/types"

// ShortZoneKm is the distance covered by the fixed part of every fare.
const ShortZoneKm = 3.0

// SharingFactor is the share of the NORMAL price a SHARING passenger pays.
const SharingFactor = 0.6

type Rate struct {
	Fixed float64 `json:"fixed"`
	PerKm float64 `json:"per_km"`
}

// Table maps vehicle classes to rates. Treat it as immutable once handed to an Engine.
type Table map[types.VehicleClass]Rate

// DefaultTable is the launch-market tariff.
func DefaultTable() Table {
	return Table{
		types.VehicleBike:     {Fixed: 15, PerKm: 3},
		types.VehicleAuto:     {Fixed: 30, PerKm: 5},
		types.VehicleSedan:    {Fixed: 50, PerKm: 6},
		types.VehicleXL7Seats: {Fixed: 30, PerKm: 4},
	}
}

// PrivateTariff is the legacy private-cab tariff the savings figure compares against.
type PrivateTariff struct {
	Base      float64
	PerKm     float64
	BikePerKm float64
}

func DefaultPrivateTariff() PrivateTariff {
	return PrivateTariff{Base: 60, PerKm: 25, BikePerKm: 12}
}

type FareResult struct {
	Total            int64  `json:"total"`
	Breakdown        string `json:"breakdown"`
	ShortZone        bool   `json:"short_zone"`
	FixedPart        int64  `json:"fixed_part"`
	ExtraPart        int64  `json:"extra_part"`
	SharingSavings   int64  `json:"sharing_savings"`
	SavingsVsPrivate int64  `json:"savings_vs_private"`
}

// perSeat lists the classes billed per occupied seat rather than per vehicle.
var perSeat = map[types.VehicleClass]bool{
	types.VehicleSedan:    true,
	types.VehicleXL7Seats: true,
}
