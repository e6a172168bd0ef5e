// README: Pricing engine computes zone-based fares.
package pricing

import (
	"fmt"
	"math"

	"oortgo/internal/types"
)

type Engine struct {
	table   Table
	private PrivateTariff
}

// NewEngine copies table so later edits by the caller cannot leak into quotes.
// A table without a CAR_SEDAN entry gets the default one, since it is the fallback rate.
func NewEngine(table Table) *Engine {
	cp := make(Table, len(table)+1)
	for k, v := range table {
		cp[k] = v
	}
	if _, ok := cp[types.VehicleSedan]; !ok {
		cp[types.VehicleSedan] = DefaultTable()[types.VehicleSedan]
	}
	return &Engine{table: cp, private: DefaultPrivateTariff()}
}

// WithPrivateTariff returns a copy of the engine comparing against t.
func (e *Engine) WithPrivateTariff(t PrivateTariff) *Engine {
	return &Engine{table: e.table, private: t}
}

// Rate returns the rate for class, falling back to CAR_SEDAN.
func (e *Engine) Rate(class types.VehicleClass) Rate {
	if r, ok := e.table[class]; ok {
		return r
	}
	return e.table[types.VehicleSedan]
}

// Quote prices a trip. It never fails: unknown classes use the sedan rate,
// seat counts below one count as one, and negative or non-finite distances
// count as zero.
func (e *Engine) Quote(distanceKm float64, class types.VehicleClass, seats int, mode types.BookingMode) FareResult {
	if seats < 1 {
		seats = 1
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		distanceKm = 0
	}
	rate := e.Rate(class)

	shortZone := distanceKm <= ShortZoneKm
	fixed := rate.Fixed
	extra := 0.0
	if !shortZone {
		extra = (distanceKm - ShortZoneKm) * rate.PerKm
	}

	total := fixed + extra
	if perSeat[class] {
		total *= float64(seats)
	}

	savings := 0.0
	if mode == types.ModeSharing {
		original := total
		total *= SharingFactor
		savings = original - total
	}

	breakdown := fmt.Sprintf("Fixed Short-Distance Fare (0-%gkm)", ShortZoneKm)
	if !shortZone {
		breakdown = fmt.Sprintf("₹%g (First %gkm) + ₹%.1f extra distance", fixed, ShortZoneKm, extra)
	}

	return FareResult{
		Total:            round(total),
		Breakdown:        breakdown,
		ShortZone:        shortZone,
		FixedPart:        round(fixed),
		ExtraPart:        round(extra),
		SharingSavings:   round(savings),
		SavingsVsPrivate: round(e.privateFare(distanceKm, class) - total),
	}
}

func (e *Engine) privateFare(distanceKm float64, class types.VehicleClass) float64 {
	perKm := e.private.PerKm
	if class == types.VehicleBike {
		perKm = e.private.BikePerKm
	}
	return e.private.Base + distanceKm*perKm
}

// round is half-away-from-zero on the currency unit.
func round(v float64) int64 {
	return int64(math.Round(v))
}
