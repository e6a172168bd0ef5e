// README: Ride vocabulary shared by the passenger and driver flows.
package types

import "strings"

type VehicleClass string

const (
	VehicleBike     VehicleClass = "BIKE"
	VehicleAuto     VehicleClass = "AUTO"
	VehicleSedan    VehicleClass = "CAR_SEDAN"
	VehicleXL7Seats VehicleClass = "XL_7SEATER"
)

// VehicleClasses lists the known classes in display order.
var VehicleClasses = []VehicleClass{VehicleBike, VehicleAuto, VehicleSedan, VehicleXL7Seats}

func (v VehicleClass) Valid() bool {
	for _, c := range VehicleClasses {
		if c == v {
			return true
		}
	}
	return false
}

// SeatBearing reports whether the class has a seat map the passenger picks from.
func (v VehicleClass) SeatBearing() bool {
	return v != VehicleBike
}

// ParseVehicleClass accepts the canonical names plus the loose preferences
// produced by voice search ("CAR", "bike"). Unknown input yields "".
func ParseVehicleClass(s string) VehicleClass {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BIKE":
		return VehicleBike
	case "AUTO":
		return VehicleAuto
	case "CAR", "SEDAN", "CAR_SEDAN":
		return VehicleSedan
	case "XL", "XL_7SEATER":
		return VehicleXL7Seats
	}
	return ""
}

type BookingMode string

const (
	ModeNormal  BookingMode = "NORMAL"
	ModeSharing BookingMode = "SHARING"
)

func (m BookingMode) Valid() bool {
	return m == ModeNormal || m == ModeSharing
}

type RideCategory string

const (
	CategoryPrivate   RideCategory = "PRIVATE"
	CategoryShared    RideCategory = "SHARED"
	CategoryIntercity RideCategory = "INTERCITY"
)

// Ride request statuses; the only field that changes once a ride is accepted.
const (
	RideStatusPending    = "PENDING"
	RideStatusAccepted   = "ACCEPTED"
	RideStatusInProgress = "IN_PROGRESS"
	RideStatusCompleted  = "COMPLETED"
)

// RideRequest is an offer presented to a driver. Once accepted only Status changes.
type RideRequest struct {
	ID             ID           `json:"id"`
	PassengerID    ID           `json:"passenger_id"`
	PassengerName  string       `json:"passenger_name"`
	PassengerPhone string       `json:"passenger_phone"`
	Pickup         string       `json:"pickup"`
	Destination    string       `json:"destination"`
	Category       RideCategory `json:"category"`
	VehicleClass   VehicleClass `json:"vehicle_class"`
	BookingMode    BookingMode  `json:"booking_mode"`
	Fare           int64        `json:"fare"`
	Status         string       `json:"status"`
	Distance       string       `json:"distance"`
	Duration       string       `json:"duration"`
	OTP            string       `json:"otp,omitempty"`
}
