// README: Driver views, ride stages, offer sources and the render snapshot.
package driver

import (
	"fmt"
	"sync"
	"time"

	"oortgo/internal/types"
)

type View string

const (
	ViewOffline    View = "OFFLINE"
	ViewDashboard  View = "DASHBOARD"
	ViewNavigating View = "NAVIGATING"
	ViewOTPEntry   View = "OTP_ENTRY"
	ViewAccount    View = "ACCOUNT"
)

type Stage string

const (
	StageNone    Stage = ""
	StagePickup  Stage = "PICKUP"
	StageDropoff Stage = "DROPOFF"
)

// AllowedTransitions represents the driver flow (diagram) as code.
var AllowedTransitions = map[View][]View{
	ViewOffline:    {ViewDashboard, ViewAccount},
	ViewDashboard:  {ViewOffline, ViewNavigating, ViewAccount},
	ViewNavigating: {ViewOTPEntry, ViewDashboard},
	ViewOTPEntry:   {ViewNavigating},
	ViewAccount:    {ViewDashboard, ViewOffline},
}

func CanTransition(from, to View) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, v := range next {
		if v == to {
			return true
		}
	}
	return false
}

type Options struct {
	OfferDelay   time.Duration
	OfferSeconds int
	Tick         time.Duration
	// PickupDistanceM and DropoffDistanceM seed the distance counter of each leg.
	PickupDistanceM  int
	DropoffDistanceM int
	// StepM is how far the counter drops per tick.
	StepM           int
	VerifyDelay     time.Duration
	OTPErrorClear   time.Duration
	CompletionDelay time.Duration
	SaveReturnDelay time.Duration
	StoreTimeout    time.Duration
	// AutoStartTrip starts the drop-off leg as soon as the OTP verifies.
	AutoStartTrip bool

	DriverBase   types.Point
	PickupPoint  types.Point
	DropoffPoint types.Point
}

func DefaultOptions() Options {
	return Options{
		OfferDelay:       5 * time.Second,
		OfferSeconds:     15,
		Tick:             time.Second,
		PickupDistanceM:  1200,
		DropoffDistanceM: 5000,
		StepM:            30,
		VerifyDelay:      800 * time.Millisecond,
		OTPErrorClear:    time.Second,
		CompletionDelay:  3 * time.Second,
		SaveReturnDelay:  1200 * time.Millisecond,
		StoreTimeout:     5 * time.Second,
		AutoStartTrip:    true,
		DriverBase:       types.Point{Lat: 28.5450, Lng: 77.0880},
		PickupPoint:      types.Point{Lat: 28.5562, Lng: 77.1000},
		DropoffPoint:     types.Point{Lat: 28.6289, Lng: 77.2150},
	}
}

// OfferSource synthesizes the next incoming ride request.
type OfferSource interface {
	NextOffer() types.RideRequest
}

// RandSource is the subset of *math/rand/v2.Rand used for OTPs.
type RandSource interface {
	IntN(n int) int
}

// DemoOffers replays the airport pickup with a fresh ID and OTP each time.
type DemoOffers struct {
	mu  sync.Mutex
	rnd RandSource
	n   int
}

func NewDemoOffers(rnd RandSource) *DemoOffers {
	return &DemoOffers{rnd: rnd}
}

func (d *DemoOffers) NextOffer() types.RideRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.n++
	return types.RideRequest{
		ID:             types.ID(fmt.Sprintf("req_%d", 100+d.n)),
		PassengerID:    "p1",
		PassengerName:  "Anjali Sharma",
		PassengerPhone: "+91 9988776655",
		Pickup:         "Terminal 3, IGI Airport",
		Destination:    "Connaught Place, Block B",
		Category:       types.CategoryPrivate,
		VehicleClass:   types.VehicleSedan,
		BookingMode:    types.ModeNormal,
		Fare:           450,
		Status:         types.RideStatusPending,
		Distance:       "1.2km",
		Duration:       "25m",
		OTP:            fmt.Sprintf("%04d", d.rnd.IntN(10000)),
	}
}

// FixedOffer always offers the same request.
type FixedOffer types.RideRequest

func (f FixedOffer) NextOffer() types.RideRequest {
	return types.RideRequest(f)
}

type OTPState struct {
	Input     string `json:"input"`
	Verifying bool   `json:"verifying"`
	Verified  bool   `json:"verified"`
	Error     bool   `json:"error"`
}

type AccountState struct {
	Saving          bool   `json:"saving"`
	SaveSuccess     bool   `json:"save_success"`
	ValidationError string `json:"validation_error,omitempty"`
}

// Snapshot is an immutable copy of the flow state for rendering.
type Snapshot struct {
	View         View               `json:"view"`
	Stage        Stage              `json:"stage,omitempty"`
	Incoming     *types.RideRequest `json:"incoming,omitempty"`
	OfferLeft    int                `json:"offer_seconds_left,omitempty"`
	Active       *types.RideRequest `json:"active,omitempty"`
	DistanceM    int                `json:"distance_m"`
	OTP          OTPState           `json:"otp"`
	Account      AccountState       `json:"account"`
	TripComplete bool               `json:"trip_complete"`
	LastError    string             `json:"last_error,omitempty"`
}
