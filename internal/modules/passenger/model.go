// README: Passenger booking steps, transition table and the render snapshot.
package passenger

import (
	"time"

	"oortgo/internal/modules/matching"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/seating"
	"oortgo/internal/modules/wallet"
	"oortgo/internal/types"
)

type Step string

const (
	StepHome             Step = "HOME"
	StepDestinationEntry Step = "DESTINATION_ENTRY"
	StepVehicleSelect    Step = "VEHICLE_SELECT"
	StepSeatSelect       Step = "SEAT_SELECT"
	StepSchedule         Step = "SCHEDULE"
	StepBooking          Step = "BOOKING"
	StepLiveTrip         Step = "LIVE_TRIP"
	StepPayment          Step = "PAYMENT"
)

// AllowedTransitions represents the booking flow (diagram) as code. Every
// step other than HOME may reset to HOME.
var AllowedTransitions = map[Step][]Step{
	StepHome:             {StepDestinationEntry},
	StepDestinationEntry: {StepHome, StepVehicleSelect, StepSchedule},
	StepSchedule:         {StepDestinationEntry, StepHome},
	StepVehicleSelect:    {StepDestinationEntry, StepSeatSelect, StepBooking, StepHome},
	StepSeatSelect:       {StepVehicleSelect, StepBooking, StepHome},
	StepBooking:          {StepLiveTrip, StepHome},
	StepLiveTrip:         {StepPayment, StepHome},
	StepPayment:          {StepLiveTrip, StepHome},
}

func CanTransition(from, to Step) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// backStack is where Back leads from each step that has a back button.
var backStack = map[Step]Step{
	StepDestinationEntry: StepHome,
	StepVehicleSelect:    StepDestinationEntry,
	StepSeatSelect:       StepVehicleSelect,
	StepSchedule:         StepDestinationEntry,
}

type Options struct {
	BookingDelay      time.Duration
	PaymentDelay      time.Duration
	PaymentCloseDelay time.Duration
	// StoreTimeout bounds profile lookups made by delayed effects.
	StoreTimeout time.Duration
	MinETA       int
	MaxETA       int

	DefaultPickup       string
	PickupPoint         types.Point
	FallbackDestination types.Point
	// DefaultDistanceKm is quoted until a destination has been routed.
	DefaultDistanceKm float64
	DefaultVehicle    types.VehicleClass
}

func DefaultOptions() Options {
	return Options{
		BookingDelay:        2 * time.Second,
		PaymentDelay:        2 * time.Second,
		PaymentCloseDelay:   2 * time.Second,
		StoreTimeout:        5 * time.Second,
		MinETA:              2,
		MaxETA:              6,
		DefaultPickup:       "Sector 21, Rohini",
		PickupPoint:         types.Point{Lat: 28.6139, Lng: 77.2090},
		FallbackDestination: types.Point{Lat: 28.5273, Lng: 77.1512},
		DefaultDistanceKm:   4.8,
		DefaultVehicle:      types.VehicleSedan,
	}
}

// PaymentPanel is the direct-settlement sheet shown over the live trip.
type PaymentPanel struct {
	Driver     wallet.DriverDetails `json:"driver"`
	Total      int64                `json:"total"`
	Processing bool                 `json:"processing"`
	Success    bool                 `json:"success"`
}

type Schedule struct {
	Enabled bool   `json:"enabled"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Snapshot is an immutable copy of the flow state for rendering.
type Snapshot struct {
	Step          Step                   `json:"step"`
	Pickup        string                 `json:"pickup"`
	Destination   string                 `json:"destination"`
	PickupPoint   types.Point            `json:"pickup_point"`
	DestPoint     *types.Point           `json:"dest_point,omitempty"`
	Route         []types.Point          `json:"route,omitempty"`
	DistanceKm    float64                `json:"distance_km"`
	Vehicle       types.VehicleClass     `json:"vehicle"`
	Mode          types.BookingMode      `json:"booking_mode"`
	Seats         []seating.Seat         `json:"seats"`
	SelectedSeats []string               `json:"selected_seats"`
	Availability  *matching.Availability `json:"availability,omitempty"`
	Schedule      Schedule               `json:"schedule"`
	Quote         pricing.FareResult     `json:"quote"`
	Driver        *wallet.DriverDetails  `json:"driver,omitempty"`
	ETAMinutes    int                    `json:"eta_minutes,omitempty"`
	Payment       *PaymentPanel          `json:"payment,omitempty"`
}
