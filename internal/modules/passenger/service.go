// README: Passenger ride flow; one booking at a time, every delayed effect tied to the step that armed it.
package passenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"oortgo/internal/ai"
	"oortgo/internal/clock"
	"oortgo/internal/modules/matching"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/routing"
	"oortgo/internal/modules/seating"
	"oortgo/internal/modules/wallet"
	"oortgo/internal/types"
)

var (
	ErrInvalidState       = errors.New("action not allowed in current step")
	ErrEmptyDestination   = errors.New("destination is required")
	ErrUnknownVehicle     = errors.New("unknown vehicle class")
	ErrInvalidMode        = errors.New("unknown booking mode")
	ErrSharingUnavailable = errors.New("sharing is not available for this vehicle")
	ErrNoSeatSelected     = errors.New("no seat available")
	ErrInvalidSchedule    = errors.New("schedule needs a date and an HH:MM time")
	ErrPaymentBusy        = errors.New("payment already in progress")
	ErrVoiceUnavailable   = errors.New("voice search is not configured")
	ErrStale              = errors.New("flow moved on while the request was in flight")
)

// Geocoder resolves a typed destination to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// DriverDirectory supplies the driver card bound to a confirmed booking.
type DriverDirectory interface {
	DriverDetails(ctx context.Context) (wallet.DriverDetails, error)
}

// RandSource is the subset of *math/rand/v2.Rand used for ETAs.
type RandSource interface {
	IntN(n int) int
}

// Deps are the collaborators of a Flow. Nil fields get in-process defaults.
type Deps struct {
	Pricing  *pricing.Engine
	Checker  matching.Checker
	Seats    *seating.Allocator
	Routes   *routing.Service
	Geocoder Geocoder
	Drivers  DriverDirectory
	Intents  ai.IntentExtractor
	Notifier notify.Notifier
	Cues     notify.Cues
	Clock    clock.Scheduler
	Rand     RandSource
	Logger   *slog.Logger
}

type Flow struct {
	mu    sync.Mutex
	epoch *clock.Epoch

	pricing  *pricing.Engine
	checker  matching.Checker
	seats    *seating.Allocator
	routes   *routing.Service
	geocoder Geocoder
	drivers  DriverDirectory
	intents  ai.IntentExtractor
	notifier notify.Notifier
	cues     notify.Cues
	clock    clock.Scheduler
	rnd      RandSource
	logger   *slog.Logger
	opts     Options

	step         Step
	pickup       string
	destination  string
	destPoint    *types.Point
	route        []types.Point
	distanceKm   float64
	vehicle      types.VehicleClass
	mode         types.BookingMode
	availability *matching.Availability
	schedule     Schedule
	driver       *wallet.DriverDetails
	eta          int
	payment      *PaymentPanel
}

func NewFlow(deps Deps, opts Options) *Flow {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Pricing == nil {
		deps.Pricing = pricing.NewEngine(pricing.DefaultTable())
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Checker == nil {
		cfg := matching.DefaultSimConfig()
		cfg.Clock = deps.Clock
		deps.Checker = matching.NewSimulator(cfg, nil)
	}
	if deps.Seats == nil {
		deps.Seats = seating.NewAllocator(nil)
	}
	if deps.Routes == nil {
		deps.Routes = routing.NewService(nil, 0, deps.Logger)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Cues == (notify.Cues{}) {
		deps.Cues = notify.DefaultCues()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x706178))
	}
	if opts.MaxETA < opts.MinETA {
		opts.MaxETA = opts.MinETA
	}
	if !opts.DefaultVehicle.Valid() {
		opts.DefaultVehicle = types.VehicleSedan
	}

	f := &Flow{
		pricing:  deps.Pricing,
		checker:  deps.Checker,
		seats:    deps.Seats,
		routes:   deps.Routes,
		geocoder: deps.Geocoder,
		drivers:  deps.Drivers,
		intents:  deps.Intents,
		notifier: deps.Notifier,
		cues:     deps.Cues,
		clock:    deps.Clock,
		rnd:      deps.Rand,
		logger:   deps.Logger.With("flow", "passenger"),
		opts:     opts,
		step:     StepHome,
		pickup:   opts.DefaultPickup,
		vehicle:  opts.DefaultVehicle,
	}
	f.epoch = clock.NewEpoch(deps.Clock, &f.mu)
	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return f
}

func (f *Flow) StartSearch() error {
	return f.StartSearchWith("")
}

// StartSearchWith opens destination entry, optionally preselecting a vehicle class.
func (f *Flow) StartSearchWith(class types.VehicleClass) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepHome {
		return ErrInvalidState
	}
	if class != "" {
		if !class.Valid() {
			return ErrUnknownVehicle
		}
		f.selectVehicle(class)
	}
	f.enter(StepDestinationEntry)
	return nil
}

func (f *Flow) SetPickup(label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepDestinationEntry {
		return ErrInvalidState
	}
	f.pickup = label
	return nil
}

func (f *Flow) SetDestination(label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepDestinationEntry {
		return ErrInvalidState
	}
	f.setDestination(label)
	return nil
}

func (f *Flow) SwapLocations() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepDestinationEntry {
		return ErrInvalidState
	}
	pickup := f.pickup
	f.pickup = f.destination
	f.setDestination(pickup)
	return nil
}

func (f *Flow) setDestination(label string) {
	f.destination = label
	f.destPoint = nil
	f.route = nil
}

// SubmitDestination geocodes and routes the destination, then opens vehicle
// selection. Lookup failures fall back to a default coordinate and a straight line.
func (f *Flow) SubmitDestination(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepDestinationEntry {
		f.mu.Unlock()
		return ErrInvalidState
	}
	dest := strings.TrimSpace(f.destination)
	if dest == "" {
		f.mu.Unlock()
		return ErrEmptyDestination
	}
	gen, label, from := f.epoch.Gen(), f.destination, f.opts.PickupPoint
	f.mu.Unlock()

	to := f.opts.FallbackDestination
	if f.geocoder != nil {
		p, err := f.geocoder.Geocode(ctx, dest)
		if err != nil {
			f.logger.Warn("geocode failed, using fallback destination", "destination", dest, "error", err)
		} else {
			to = p
		}
	}
	route := f.routes.Route(ctx, from, to)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch.Gen() != gen || f.step != StepDestinationEntry || f.destination != label {
		return ErrStale
	}
	f.destPoint = &to
	f.route = route.Points
	f.distanceKm = route.DistanceKm
	f.enter(StepVehicleSelect)
	return nil
}

func (f *Flow) OpenSchedule() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepDestinationEntry {
		return ErrInvalidState
	}
	if f.schedule.Time == "" {
		f.schedule.Time = f.clock.Now().Format("15:04")
	}
	f.enter(StepSchedule)
	return nil
}

// SetSchedule marks the booking as scheduled and returns to destination entry.
func (f *Flow) SetSchedule(date, hhmm string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepSchedule {
		return ErrInvalidState
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return ErrInvalidSchedule
	}
	if _, err := time.Parse("15:04", hhmm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	f.schedule = Schedule{Enabled: true, Date: date, Time: hhmm}
	f.enter(StepDestinationEntry)
	return nil
}

func (f *Flow) ClearSchedule() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepDestinationEntry, StepSchedule, StepVehicleSelect, StepSeatSelect:
		f.schedule.Enabled = false
		return nil
	}
	return ErrInvalidState
}

// SelectVehicle switches class; the seat selection resets to the first free seat.
func (f *Flow) SelectVehicle(class types.VehicleClass) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepVehicleSelect {
		return ErrInvalidState
	}
	if !class.Valid() {
		return ErrUnknownVehicle
	}
	f.selectVehicle(class)
	return nil
}

func (f *Flow) selectVehicle(class types.VehicleClass) {
	f.vehicle = class
	f.seats.Reset(class)
	f.availability = nil
}

func (f *Flow) SetBookingMode(mode types.BookingMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepVehicleSelect && f.step != StepSeatSelect {
		return ErrInvalidState
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	if mode == types.ModeSharing && f.availability != nil && !f.availability.SharingAvailable {
		return ErrSharingUnavailable
	}
	f.mode = mode
	return nil
}

// RefreshAvailability asks the matching backend about the selected class. A
// SHARING selection falls back to NORMAL when sharing turns out unavailable.
func (f *Flow) RefreshAvailability(ctx context.Context) (matching.Availability, error) {
	f.mu.Lock()
	if f.step != StepVehicleSelect {
		f.mu.Unlock()
		return matching.Availability{}, ErrInvalidState
	}
	gen, class := f.epoch.Gen(), f.vehicle
	f.mu.Unlock()

	a, err := f.checker.Check(ctx, class)
	if err != nil {
		return matching.Availability{}, fmt.Errorf("check availability: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch.Gen() != gen || f.step != StepVehicleSelect || f.vehicle != class {
		return a, ErrStale
	}
	f.availability = &a
	if !a.SharingAvailable && f.mode == types.ModeSharing {
		f.mode = types.ModeNormal
	}
	return a, nil
}

// ConfirmVehicle opens seat selection, or books directly for classes without seats.
func (f *Flow) ConfirmVehicle() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepVehicleSelect {
		return ErrInvalidState
	}
	if f.vehicle.SeatBearing() {
		f.enter(StepSeatSelect)
		return nil
	}
	f.confirmBooking()
	return nil
}

// ToggleSeat reports whether the selection changed.
func (f *Flow) ToggleSeat(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepSeatSelect {
		return false, ErrInvalidState
	}
	return f.seats.Toggle(id), nil
}

func (f *Flow) ConfirmBooking() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepSeatSelect {
		return ErrInvalidState
	}
	if f.seats.Count() == 0 {
		return ErrNoSeatSelected
	}
	f.confirmBooking()
	return nil
}

func (f *Flow) confirmBooking() {
	if f.schedule.Enabled {
		f.say(f.cues.Scheduled(f.schedule.Date, f.schedule.Time))
		f.logger.Info("ride scheduled", "date", f.schedule.Date, "time", f.schedule.Time, "destination", f.destination)
		f.reset()
		return
	}
	f.enter(StepBooking)
	f.epoch.After(f.opts.BookingDelay, f.bookingConfirmed)
}

func (f *Flow) bookingConfirmed() {
	driver := f.lookupDriver()
	f.driver = &driver
	f.eta = f.opts.MinETA + f.rnd.IntN(f.opts.MaxETA-f.opts.MinETA+1)
	f.enter(StepLiveTrip)
	f.say(f.cues.BookingConfirmed)
}

func (f *Flow) lookupDriver() wallet.DriverDetails {
	if f.drivers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), f.opts.StoreTimeout)
		defer cancel()
		d, err := f.drivers.DriverDetails(ctx)
		if err == nil {
			return d
		}
		f.logger.Warn("driver profile unavailable, using defaults", "error", err)
	}
	b := wallet.DefaultBankDetails
	return wallet.DriverDetails{
		Name:          b.AccountName,
		Photo:         wallet.DefaultPhoto,
		Phone:         wallet.DefaultPhone,
		VehicleNumber: wallet.DefaultVehicleNumber,
		Rating:        wallet.DefaultRating,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		IFSC:          b.IFSC,
		UPIID:         b.UPIID,
	}
}

// OpenPayment shows the driver's payout profile with the quoted total.
func (f *Flow) OpenPayment() (PaymentPanel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepLiveTrip || f.driver == nil {
		return PaymentPanel{}, ErrInvalidState
	}
	f.payment = &PaymentPanel{Driver: *f.driver, Total: f.quote().Total}
	f.enter(StepPayment)
	return *f.payment, nil
}

// Pay settles after a processing delay; the panel closes itself shortly after.
func (f *Flow) Pay() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepPayment {
		return ErrInvalidState
	}
	if f.payment.Processing || f.payment.Success {
		return ErrPaymentBusy
	}
	f.payment.Processing = true
	f.epoch.After(f.opts.PaymentDelay, func() {
		f.payment.Processing = false
		f.payment.Success = true
		f.logger.Info("payment settled", "total", f.payment.Total)
		f.say(f.cues.PaymentSuccess)
		f.epoch.After(f.opts.PaymentCloseDelay, func() {
			f.payment = nil
			f.enter(StepLiveTrip)
		})
	})
	return nil
}

func (f *Flow) ClosePayment() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepPayment {
		return ErrInvalidState
	}
	f.payment = nil
	f.enter(StepLiveTrip)
	return nil
}

// Cancel discards the trip and any booking state and returns to HOME.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !CanTransition(f.step, StepHome) {
		return ErrInvalidState
	}
	booked := f.step == StepBooking || f.step == StepLiveTrip || f.step == StepPayment
	f.reset()
	if booked {
		f.say(f.cues.RideCancelled)
	}
	return nil
}

func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := backStack[f.step]
	if !ok {
		return ErrInvalidState
	}
	f.enter(target)
	return nil
}

// VoiceSearch fills the destination (and vehicle, when named) from a spoken request.
func (f *Flow) VoiceSearch(ctx context.Context, utterance string) (*ai.Intent, error) {
	f.mu.Lock()
	if f.intents == nil {
		f.mu.Unlock()
		return nil, ErrVoiceUnavailable
	}
	if f.step != StepHome && f.step != StepDestinationEntry {
		f.mu.Unlock()
		return nil, ErrInvalidState
	}
	gen := f.epoch.Gen()
	f.mu.Unlock()

	intent, err := f.intents.ExtractRideIntent(ctx, utterance)
	if err != nil {
		return nil, fmt.Errorf("extract ride intent: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch.Gen() != gen {
		return nil, ErrStale
	}
	if f.step == StepHome {
		f.enter(StepDestinationEntry)
	}
	f.setDestination(intent.Destination)
	if class := intent.VehicleClass(); class != "" {
		f.selectVehicle(class)
	}
	return intent, nil
}

// Quote prices the trip with the current booking mode and seat selection.
func (f *Flow) Quote() pricing.FareResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote()
}

func (f *Flow) quote() pricing.FareResult {
	return f.pricing.Quote(f.distanceKm, f.vehicle, f.seats.Count(), f.mode)
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		Step:          f.step,
		Pickup:        f.pickup,
		Destination:   f.destination,
		PickupPoint:   f.opts.PickupPoint,
		DistanceKm:    f.distanceKm,
		Vehicle:       f.vehicle,
		Mode:          f.mode,
		Seats:         f.seats.Seats(),
		SelectedSeats: f.seats.Selected(),
		Schedule:      f.schedule,
		Quote:         f.quote(),
		ETAMinutes:    f.eta,
	}
	if f.destPoint != nil {
		p := *f.destPoint
		s.DestPoint = &p
	}
	if len(f.route) > 0 {
		s.Route = append([]types.Point(nil), f.route...)
	}
	if f.availability != nil {
		a := *f.availability
		s.Availability = &a
	}
	if f.driver != nil {
		d := *f.driver
		s.Driver = &d
	}
	if f.payment != nil {
		p := *f.payment
		s.Payment = &p
	}
	return s
}

// enter moves to step and drops every effect armed in the previous one.
func (f *Flow) enter(step Step) {
	f.logger.Debug("step", "from", f.step, "to", step)
	f.epoch.Advance()
	f.step = step
}

func (f *Flow) reset() {
	f.enter(StepHome)
	f.setDestination("")
	f.distanceKm = f.opts.DefaultDistanceKm
	f.mode = types.ModeNormal
	f.seats.Reset(f.vehicle)
	f.availability = nil
	f.schedule = Schedule{Date: "Today"}
	f.driver = nil
	f.eta = 0
	f.payment = nil
}

func (f *Flow) say(text string) {
	f.notifier.Say(context.Background(), text)
}
