package ai

import (
	"strings"

	"oortgo/internal/types"
)

// Vehicle preferences the model may return.
const (
	PreferenceCar  = "CAR"
	PreferenceBike = "BIKE"
	PreferenceAuto = "AUTO"
	PreferenceAny  = "ANY"
)

// Intent captures the structured output from the AI model.
type Intent struct {
	// Destination is the final destination name; always present.
	Destination string `json:"destination"`

	// VehiclePreference is one of CAR, BIKE, AUTO, ANY. Empty means ANY.
	VehiclePreference string `json:"vehiclePreference,omitempty"`

	// IsImmediate reports whether the user wants to leave now.
	IsImmediate bool `json:"isImmediate"`
}

// VehicleClass maps the preference onto a bookable class; "" for ANY or unknown.
func (i Intent) VehicleClass() types.VehicleClass {
	switch strings.ToUpper(strings.TrimSpace(i.VehiclePreference)) {
	case PreferenceCar:
		return types.VehicleSedan
	case PreferenceBike:
		return types.VehicleBike
	case PreferenceAuto:
		return types.VehicleAuto
	}
	return ""
}
