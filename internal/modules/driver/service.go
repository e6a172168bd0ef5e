// README: Driver ride flow; offer loop, navigation counter, OTP gate, drop-off settlement and account panel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"oortgo/internal/clock"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/routing"
	"oortgo/internal/modules/wallet"
	"oortgo/internal/types"
)

var (
	ErrInvalidState     = errors.New("action not allowed in current view")
	ErrNoOffer          = errors.New("no incoming ride")
	ErrNoActiveRide     = errors.New("no active ride")
	ErrOTPTooLong       = errors.New("otp has at most 4 digits")
	ErrOTPFormat        = errors.New("otp must be numeric")
	ErrOTPBusy          = errors.New("otp check in progress")
	ErrAlreadyVerified  = errors.New("otp already verified")
	ErrNotVerified      = errors.New("otp not verified")
	ErrSaveInProgress   = errors.New("profile save in progress")
	ErrWalletNotEnabled = errors.New("wallet not configured")
)

const otpLength = 4

// Wallet is the ledger and profile store behind the account panel.
type Wallet interface {
	Load(ctx context.Context) ([]wallet.Transaction, error)
	RecordEarning(ctx context.Context, rideID types.ID, fare int64) ([]wallet.Transaction, error)
	Payout(ctx context.Context) (wallet.Transaction, error)
	Profile(ctx context.Context) (wallet.Profile, error)
	SaveProfile(ctx context.Context, p wallet.Profile) error
}

// Deps are the collaborators of a Flow. Nil fields get in-process defaults.
type Deps struct {
	Offers   OfferSource
	Wallet   Wallet
	Routes   *routing.Service
	Notifier notify.Notifier
	Cues     notify.Cues
	Clock    clock.Scheduler
	Logger   *slog.Logger
}

// Ledger is the wallet view of the account panel.
type Ledger struct {
	Balance      float64              `json:"balance"`
	Transactions []wallet.Transaction `json:"transactions"`
	Profile      wallet.Profile       `json:"profile"`
}

type Flow struct {
	mu    sync.Mutex
	epoch *clock.Epoch

	offers   OfferSource
	wallet   Wallet
	routes   *routing.Service
	notifier notify.Notifier
	cues     notify.Cues
	logger   *slog.Logger
	opts     Options

	view         View
	returnView   View
	stage        Stage
	incoming     *types.RideRequest
	offerLeft    int
	active       *types.RideRequest
	distanceM    int
	otp          OTPState
	account      AccountState
	tripComplete bool
	lastError    string
}

func NewFlow(deps Deps, opts Options) *Flow {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Offers == nil {
		deps.Offers = NewDemoOffers(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6f7470)))
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
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if opts.StepM <= 0 {
		opts.StepM = 1
	}

	f := &Flow{
		offers:   deps.Offers,
		wallet:   deps.Wallet,
		routes:   deps.Routes,
		notifier: deps.Notifier,
		cues:     deps.Cues,
		logger:   deps.Logger.With("flow", "driver"),
		opts:     opts,
		view:     ViewOffline,
	}
	f.epoch = clock.NewEpoch(deps.Clock, &f.mu)
	return f
}

func (f *Flow) GoOnline() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewOffline {
		return ErrInvalidState
	}
	f.enter(ViewDashboard)
	return nil
}

// GoOffline drops any pending offer.
func (f *Flow) GoOffline() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewDashboard {
		return ErrInvalidState
	}
	f.incoming = nil
	f.enter(ViewOffline)
	return nil
}

// Accept binds the incoming offer as the active ride and starts the pickup leg.
func (f *Flow) Accept() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewDashboard {
		return ErrInvalidState
	}
	if f.incoming == nil {
		return ErrNoOffer
	}
	ride := *f.incoming
	ride.Status = types.RideStatusAccepted
	f.active = &ride
	f.incoming = nil
	f.stage = StagePickup
	f.distanceM = f.opts.PickupDistanceM
	f.otp = OTPState{}
	f.tripComplete = false
	f.lastError = ""
	f.logger.Info("ride accepted", "ride_id", ride.ID, "fare", ride.Fare)
	f.enter(ViewNavigating)
	f.say(f.cues.RideAccepted)
	return nil
}

// Ignore declines the incoming offer; the next one arrives after the offer delay.
func (f *Flow) Ignore() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewDashboard {
		return ErrInvalidState
	}
	if f.incoming == nil {
		return ErrNoOffer
	}
	f.logger.Debug("offer ignored", "ride_id", f.incoming.ID)
	f.incoming = nil
	f.enter(ViewDashboard)
	return nil
}

// ConfirmArrival skips the rest of the pickup leg.
func (f *Flow) ConfirmArrival() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewNavigating || f.stage != StagePickup {
		return ErrInvalidState
	}
	f.enter(ViewOTPEntry)
	return nil
}

// EnterOTP updates the code being typed. At four digits it is verified after
// the verification delay; a mismatch flags an error and clears the input.
func (f *Flow) EnterOTP(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewOTPEntry {
		return ErrInvalidState
	}
	if f.otp.Verified {
		return ErrAlreadyVerified
	}
	if f.otp.Verifying || f.otp.Error {
		return ErrOTPBusy
	}
	if len(code) > otpLength {
		return ErrOTPTooLong
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrOTPFormat
		}
	}
	f.otp.Input = code
	if len(code) < otpLength {
		return nil
	}

	f.otp.Verifying = true
	f.epoch.After(f.opts.VerifyDelay, func() {
		f.otp.Verifying = false
		if code == f.active.OTP {
			f.otp.Verified = true
			f.say(f.cues.OTPCorrect)
			if f.opts.AutoStartTrip {
				f.startTrip()
			}
			return
		}
		f.otp.Error = true
		f.say(f.cues.OTPWrong)
		f.epoch.After(f.opts.OTPErrorClear, func() {
			f.otp.Error = false
			f.otp.Input = ""
		})
	})
	return nil
}

// StartTrip begins the drop-off leg once the OTP has been verified.
func (f *Flow) StartTrip() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewOTPEntry {
		return ErrInvalidState
	}
	if !f.otp.Verified {
		return ErrNotVerified
	}
	f.startTrip()
	return nil
}

func (f *Flow) startTrip() {
	f.active.Status = types.RideStatusInProgress
	f.stage = StageDropoff
	f.distanceM = f.opts.DropoffDistanceM
	f.otp = OTPState{}
	f.enter(ViewNavigating)
	f.say(f.cues.TripStarted)
}

// Route returns the path of the current leg.
func (f *Flow) Route(ctx context.Context) (routing.Route, error) {
	f.mu.Lock()
	if f.active == nil {
		f.mu.Unlock()
		return routing.Route{}, ErrNoActiveRide
	}
	from, to := f.opts.DriverBase, f.opts.PickupPoint
	if f.stage == StageDropoff {
		from, to = f.opts.PickupPoint, f.opts.DropoffPoint
	}
	f.mu.Unlock()
	return f.routes.Route(ctx, from, to), nil
}

// OpenAccount shows the profile and wallet panel; a pending offer is dropped.
func (f *Flow) OpenAccount() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !CanTransition(f.view, ViewAccount) {
		return ErrInvalidState
	}
	f.returnView = f.view
	f.incoming = nil
	f.account = AccountState{}
	f.enter(ViewAccount)
	return nil
}

func (f *Flow) CloseAccount() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewAccount {
		return ErrInvalidState
	}
	f.account = AccountState{}
	f.enter(f.returnView)
	return nil
}

// SaveProfile validates and persists the payout profile, then returns to the
// dashboard after a short confirmation.
func (f *Flow) SaveProfile(ctx context.Context, p wallet.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewAccount {
		return ErrInvalidState
	}
	if f.wallet == nil {
		return ErrWalletNotEnabled
	}
	if f.account.Saving || f.account.SaveSuccess {
		return ErrSaveInProgress
	}
	f.account.ValidationError = ""

	f.account.Saving = true
	err := f.wallet.SaveProfile(ctx, p)
	f.account.Saving = false
	if err != nil {
		var ve wallet.ValidationError
		if errors.As(err, &ve) {
			f.account.ValidationError = ve.Error()
			f.say(f.cues.InvalidDetails)
		}
		return err
	}

	f.account.SaveSuccess = true
	f.say(f.cues.DetailsSaved)
	f.epoch.After(f.opts.SaveReturnDelay, func() {
		f.account = AccountState{}
		f.enter(ViewDashboard)
	})
	return nil
}

// Payout transfers the whole net balance; a non-positive balance is refused.
func (f *Flow) Payout(ctx context.Context) (wallet.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != ViewAccount {
		return wallet.Transaction{}, ErrInvalidState
	}
	if f.wallet == nil {
		return wallet.Transaction{}, ErrWalletNotEnabled
	}
	tx, err := f.wallet.Payout(ctx)
	if errors.Is(err, wallet.ErrInsufficientBalance) {
		f.say(f.cues.LowBalance)
		return wallet.Transaction{}, err
	}
	if err != nil {
		return wallet.Transaction{}, err
	}
	f.say(f.cues.PayoutDone)
	return tx, nil
}

// Ledger returns the balance, transactions and profile shown in the account panel.
func (f *Flow) Ledger(ctx context.Context) (Ledger, error) {
	if f.wallet == nil {
		return Ledger{}, ErrWalletNotEnabled
	}
	txs, err := f.wallet.Load(ctx)
	if err != nil {
		return Ledger{}, err
	}
	p, err := f.wallet.Profile(ctx)
	if err != nil {
		return Ledger{}, err
	}
	return Ledger{Balance: wallet.NetBalance(txs), Transactions: txs, Profile: p}, nil
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Snapshot{
		View:         f.view,
		Stage:        f.stage,
		OfferLeft:    f.offerLeft,
		DistanceM:    f.distanceM,
		OTP:          f.otp,
		Account:      f.account,
		TripComplete: f.tripComplete,
		LastError:    f.lastError,
	}
	if f.incoming != nil {
		r := *f.incoming
		s.Incoming = &r
	}
	if f.active != nil {
		r := *f.active
		s.Active = &r
	}
	return s
}

// enter switches view, drops every effect armed for the previous one and arms
// the effects of the new one.
func (f *Flow) enter(view View) {
	if view != f.view {
		f.logger.Debug("view", "from", f.view, "to", view)
	}
	f.epoch.Advance()
	f.view = view
	if f.incoming == nil {
		f.offerLeft = 0
	}
	switch {
	case view == ViewDashboard && f.active == nil && f.incoming == nil:
		f.epoch.After(f.opts.OfferDelay, f.deliverOffer)
	case view == ViewNavigating && f.active != nil:
		f.epoch.Every(f.opts.Tick, f.drive)
	}
}

func (f *Flow) deliverOffer() {
	req := f.offers.NextOffer()
	f.incoming = &req
	f.offerLeft = f.opts.OfferSeconds
	f.logger.Info("incoming ride", "ride_id", req.ID, "fare", req.Fare)
	f.say(f.cues.RideRequest)
	f.epoch.Every(f.opts.Tick, f.countdown)
}

// countdown expires the offer when it reaches zero, which re-arms the next one.
func (f *Flow) countdown() bool {
	f.offerLeft--
	if f.offerLeft > 0 {
		return true
	}
	f.logger.Info("offer expired", "ride_id", f.incoming.ID)
	f.incoming = nil
	f.enter(ViewDashboard)
	return false
}

func (f *Flow) drive() bool {
	f.distanceM -= f.opts.StepM
	if f.distanceM > 0 {
		return true
	}
	f.distanceM = 0
	if f.stage == StagePickup {
		f.enter(ViewOTPEntry)
		f.say(f.cues.ArrivedPickup)
		return false
	}
	f.completeTrip()
	return false
}

// completeTrip posts the fare and commission, then returns to the dashboard.
func (f *Flow) completeTrip() {
	f.say(f.cues.ArrivedDropoff)
	f.active.Status = types.RideStatusCompleted
	f.tripComplete = true
	if f.wallet != nil {
		ctx, cancel := context.WithTimeout(context.Background(), f.opts.StoreTimeout)
		_, err := f.wallet.RecordEarning(ctx, f.active.ID, f.active.Fare)
		cancel()
		if err != nil {
			f.lastError = fmt.Sprintf("earning not recorded: %v", err)
			f.logger.Warn("record earning failed", "ride_id", f.active.ID, "error", err)
		}
	}
	f.epoch.After(f.opts.CompletionDelay, func() {
		f.active = nil
		f.stage = StageNone
		f.tripComplete = false
		f.enter(ViewDashboard)
	})
}

func (f *Flow) say(text string) {
	f.notifier.Say(context.Background(), text)
}
