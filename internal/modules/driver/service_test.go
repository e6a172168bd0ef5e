package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"oortgo/internal/clock"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/routing"
	"oortgo/internal/modules/wallet"
	"oortgo/internal/types"
)

type fixedInt int

func (f fixedInt) IntN(n int) int { return int(f) % n }

var testOffer = types.RideRequest{
	ID:           "req_test",
	PassengerID:  "p1",
	Pickup:       "Terminal 3, IGI Airport",
	Destination:  "Connaught Place, Block B",
	VehicleClass: types.VehicleSedan,
	BookingMode:  types.ModeNormal,
	Fare:         450,
	Status:       types.RideStatusPending,
	OTP:          "1234",
}

// failingWallet accepts reads but rejects every ledger write.
type failingWallet struct {
	*wallet.Service
}

func (failingWallet) RecordEarning(context.Context, types.ID, int64) ([]wallet.Transaction, error) {
	return nil, errors.New("ledger offline")
}

type harness struct {
	flow   *Flow
	clock  *clock.Manual
	cues   *notify.Recorder
	wallet *wallet.Service
	repo   *wallet.MemoryStore
}

func newHarness(t *testing.T, seed bool, mutate func(*Deps, *Options)) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	rec := notify.NewRecorder()
	repo := wallet.NewMemoryStore()
	wal := wallet.NewService(repo, seed, logger)
	deps := Deps{
		Offers:   FixedOffer(testOffer),
		Wallet:   wal,
		Routes:   routing.NewService(nil, time.Second, logger),
		Notifier: rec,
		Clock:    clk,
		Logger:   logger,
	}
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&deps, &opts)
	}
	return &harness{flow: NewFlow(deps, opts), clock: clk, cues: rec, wallet: wal, repo: repo}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (h *harness) mustView(t *testing.T, want View) Snapshot {
	t.Helper()
	s := h.flow.Snapshot()
	if s.View != want {
		t.Fatalf("view = %s, want %s", s.View, want)
	}
	return s
}

// toOTPEntry goes online, accepts the first offer and drives to the pickup.
func (h *harness) toOTPEntry(t *testing.T) {
	t.Helper()
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.Accept())
	must(t, h.flow.ConfirmArrival())
	h.mustView(t, ViewOTPEntry)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to View
		want     bool
	}{
		{ViewOffline, ViewDashboard, true},
		{ViewOffline, ViewAccount, true},
		{ViewOffline, ViewNavigating, false},
		{ViewDashboard, ViewNavigating, true},
		{ViewNavigating, ViewOTPEntry, true},
		{ViewOTPEntry, ViewDashboard, false},
		{ViewAccount, ViewOffline, true},
		{ViewNavigating, ViewAccount, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDemoOffers(t *testing.T) {
	d := NewDemoOffers(fixedInt(42))
	first, second := d.NextOffer(), d.NextOffer()
	if first.ID != "req_101" || second.ID != "req_102" {
		t.Fatalf("ids = %s, %s", first.ID, second.ID)
	}
	if first.OTP != "0042" || first.Fare != 450 || first.PassengerName != "Anjali Sharma" {
		t.Fatalf("offer = %+v", first)
	}
}

func TestFlow_OfferArrivesAfterDelay(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.GoOnline())

	h.clock.Advance(4999 * time.Millisecond)
	if s := h.mustView(t, ViewDashboard); s.Incoming != nil {
		t.Fatal("offer arrived early")
	}
	h.clock.Advance(time.Millisecond)
	s := h.flow.Snapshot()
	if s.Incoming == nil || s.Incoming.ID != "req_test" || s.OfferLeft != 15 {
		t.Fatalf("snapshot = %+v", s)
	}
	if h.cues.Last() != "Aapke liye naya ride request hai." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}

	h.clock.Advance(3 * time.Second)
	if left := h.flow.Snapshot().OfferLeft; left != 12 {
		t.Fatalf("offer seconds left = %d, want 12", left)
	}
}

func TestFlow_OfferExpiresAndRearms(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)

	h.clock.Advance(14 * time.Second)
	if h.flow.Snapshot().Incoming == nil {
		t.Fatal("offer expired early")
	}
	h.clock.Advance(time.Second)
	if s := h.flow.Snapshot(); s.Incoming != nil || s.OfferLeft != 0 {
		t.Fatalf("offer not expired: %+v", s)
	}
	if err := h.flow.Accept(); !errors.Is(err, ErrNoOffer) {
		t.Fatalf("Accept after expiry err = %v", err)
	}

	h.clock.Advance(5 * time.Second)
	if h.flow.Snapshot().Incoming == nil {
		t.Fatal("next offer not delivered")
	}
}

func TestFlow_IgnoreRearms(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.Ignore())
	if h.flow.Snapshot().Incoming != nil {
		t.Fatal("offer still pending")
	}
	if err := h.flow.Ignore(); !errors.Is(err, ErrNoOffer) {
		t.Fatalf("second Ignore err = %v", err)
	}
	h.clock.Advance(5 * time.Second)
	if h.flow.Snapshot().Incoming == nil {
		t.Fatal("next offer not delivered")
	}
}

func TestFlow_GoOfflineDropsPendingOffer(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.GoOnline())
	h.clock.Advance(3 * time.Second)
	must(t, h.flow.GoOffline())
	h.clock.Advance(time.Minute)

	if s := h.mustView(t, ViewOffline); s.Incoming != nil {
		t.Fatal("stale offer timer fired while offline")
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("%d effects pending while offline", h.clock.Pending())
	}
}

func TestFlow_FullRide(t *testing.T) {
	h := newHarness(t, false, nil)
	ctx := context.Background()
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.Accept())

	s := h.mustView(t, ViewNavigating)
	if s.Stage != StagePickup || s.DistanceM != 1200 || s.Active.Status != types.RideStatusAccepted || s.OfferLeft != 0 {
		t.Fatalf("after accept: %+v", s)
	}
	if h.cues.Last() != "Ride accept ho gayi hai." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}

	h.clock.Advance(39 * time.Second)
	if s := h.mustView(t, ViewNavigating); s.DistanceM != 30 {
		t.Fatalf("distance = %d, want 30", s.DistanceM)
	}
	h.clock.Advance(time.Second)
	h.mustView(t, ViewOTPEntry)
	if h.cues.Last() != "Aap pickup location par pahunch gaye hain. Kripya passenger se security code maange." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}

	must(t, h.flow.EnterOTP("12"))
	if err := h.flow.EnterOTP("12345"); !errors.Is(err, ErrOTPTooLong) {
		t.Fatalf("err = %v, want ErrOTPTooLong", err)
	}
	if got := h.flow.Snapshot().OTP.Input; got != "12" {
		t.Fatalf("input = %q, want 12", got)
	}
	must(t, h.flow.EnterOTP("1234"))
	if !h.flow.Snapshot().OTP.Verifying {
		t.Fatal("verification not started")
	}

	h.clock.Advance(800 * time.Millisecond)
	s = h.mustView(t, ViewNavigating)
	if s.Stage != StageDropoff || s.DistanceM != 5000 || s.Active.Status != types.RideStatusInProgress {
		t.Fatalf("after otp: %+v", s)
	}

	// 167 ticks of 30 m cover 5000 m.
	h.clock.Advance(166 * time.Second)
	if txs, _ := h.repo.ListTransactions(ctx); len(txs) != 0 {
		t.Fatalf("settled early: %v", txs)
	}
	h.clock.Advance(time.Second)
	s = h.mustView(t, ViewNavigating)
	if !s.TripComplete || s.DistanceM != 0 {
		t.Fatalf("trip not complete: %+v", s)
	}
	txs, _ := h.repo.ListTransactions(ctx)
	if len(txs) != 2 || txs[0].Amount != 450 || txs[1].Amount != -45 {
		t.Fatalf("ledger = %+v", txs)
	}
	if bal, _ := h.wallet.Balance(ctx); bal != 405 {
		t.Fatalf("balance = %v, want 405", bal)
	}

	h.clock.Advance(3 * time.Second)
	if s := h.mustView(t, ViewDashboard); s.Active != nil || s.Stage != StageNone {
		t.Fatalf("after completion: %+v", s)
	}

	// No double settlement, and the offer loop resumes.
	h.clock.Advance(5 * time.Second)
	if txs, _ := h.repo.ListTransactions(ctx); len(txs) != 2 {
		t.Fatalf("ledger has %d entries", len(txs))
	}
	if h.flow.Snapshot().Incoming == nil {
		t.Fatal("offer loop did not resume")
	}

	want := []string{
		"Aapke liye naya ride request hai.",
		"Ride accept ho gayi hai.",
		"Aap pickup location par pahunch gaye hain. Kripya passenger se security code maange.",
		"Code sahi hai.",
		"O T P verify ho gaya hai. Trip shuru ho gayi hai. Shubh yatra.",
		"Aap destination par pahunch gaye hain. Trip poori ho gayi hai poori ho gayi hai.",
		"Aapke liye naya ride request hai.",
	}
	got := h.cues.Said()
	if len(got) != len(want) {
		t.Fatalf("cues = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cue %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFlow_OTPMismatchClears(t *testing.T) {
	h := newHarness(t, false, nil)
	h.toOTPEntry(t)

	must(t, h.flow.EnterOTP("9999"))
	h.clock.Advance(800 * time.Millisecond)
	s := h.mustView(t, ViewOTPEntry)
	if !s.OTP.Error || s.OTP.Verified || s.OTP.Input != "9999" {
		t.Fatalf("after mismatch: %+v", s.OTP)
	}
	if h.cues.Last() != "Ghalat code." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}
	if err := h.flow.EnterOTP("1"); !errors.Is(err, ErrOTPBusy) {
		t.Fatalf("err = %v, want ErrOTPBusy", err)
	}

	h.clock.Advance(time.Second)
	if otp := h.flow.Snapshot().OTP; otp.Error || otp.Input != "" {
		t.Fatalf("not cleared: %+v", otp)
	}

	// Unlimited retries.
	must(t, h.flow.EnterOTP("1234"))
	h.clock.Advance(800 * time.Millisecond)
	h.mustView(t, ViewNavigating)
}

func TestFlow_OTPVerifiesOnce(t *testing.T) {
	h := newHarness(t, false, func(_ *Deps, o *Options) { o.AutoStartTrip = false })
	h.toOTPEntry(t)

	if err := h.flow.StartTrip(); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("StartTrip before verify err = %v", err)
	}
	if err := h.flow.EnterOTP("12a4"); !errors.Is(err, ErrOTPFormat) {
		t.Fatalf("err = %v, want ErrOTPFormat", err)
	}
	must(t, h.flow.EnterOTP("1234"))
	if err := h.flow.EnterOTP("1234"); !errors.Is(err, ErrOTPBusy) {
		t.Fatalf("err during verify = %v, want ErrOTPBusy", err)
	}
	h.clock.Advance(800 * time.Millisecond)

	s := h.mustView(t, ViewOTPEntry)
	if !s.OTP.Verified {
		t.Fatal("not verified")
	}
	if err := h.flow.EnterOTP("1234"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("err = %v, want ErrAlreadyVerified", err)
	}
	must(t, h.flow.StartTrip())
	if s := h.mustView(t, ViewNavigating); s.Stage != StageDropoff || s.OTP.Verified {
		t.Fatalf("after start: %+v", s)
	}
}

func TestFlow_ConfirmArrivalStopsCounter(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.Accept())
	h.clock.Advance(10 * time.Second)
	must(t, h.flow.ConfirmArrival())
	h.clock.Advance(10 * time.Second)

	if s := h.mustView(t, ViewOTPEntry); s.DistanceM != 900 {
		t.Fatalf("distance = %d, want 900", s.DistanceM)
	}
	if err := h.flow.ConfirmArrival(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
}

func TestFlow_EarningFailureStillReturnsToDashboard(t *testing.T) {
	h := newHarness(t, false, func(d *Deps, o *Options) {
		d.Wallet = failingWallet{d.Wallet.(*wallet.Service)}
		o.DropoffDistanceM = 30
	})
	h.toOTPEntry(t)
	must(t, h.flow.EnterOTP("1234"))
	h.clock.Advance(800 * time.Millisecond)
	h.clock.Advance(time.Second)

	if s := h.flow.Snapshot(); !s.TripComplete || s.LastError == "" {
		t.Fatalf("snapshot = %+v", s)
	}
	h.clock.Advance(3 * time.Second)
	h.mustView(t, ViewDashboard)
}

func TestFlow_Route(t *testing.T) {
	h := newHarness(t, false, nil)
	if _, err := h.flow.Route(context.Background()); !errors.Is(err, ErrNoActiveRide) {
		t.Fatalf("err = %v", err)
	}
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.Accept())

	opts := DefaultOptions()
	r, err := h.flow.Route(context.Background())
	must(t, err)
	if !r.Fallback || r.Points[0] != opts.DriverBase || r.Points[1] != opts.PickupPoint {
		t.Fatalf("pickup leg = %+v", r)
	}
}

func TestFlow_AccountSave(t *testing.T) {
	h := newHarness(t, false, nil)
	ctx := context.Background()
	must(t, h.flow.GoOnline())
	h.clock.Advance(5 * time.Second)
	must(t, h.flow.OpenAccount())
	if s := h.mustView(t, ViewAccount); s.Incoming != nil {
		t.Fatal("offer kept while in account panel")
	}

	bad := wallet.Profile{Bank: wallet.DefaultBankDetails}
	bad.Bank.IFSC = "HDFC123"
	bad.Bank.AccountNumber = "123456789"
	err := h.flow.SaveProfile(ctx, bad)
	if !wallet.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	s := h.mustView(t, ViewAccount)
	if s.Account.ValidationError != "Invalid IFSC format (e.g., HDFC0001234)." {
		t.Fatalf("validation error = %q", s.Account.ValidationError)
	}
	if h.cues.Last() != "Kripya sahi jaankari bhare." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}

	good := bad
	good.Bank.IFSC = "SBIN0004321"
	must(t, h.flow.SaveProfile(ctx, good))
	if s := h.flow.Snapshot(); !s.Account.SaveSuccess || s.Account.ValidationError != "" {
		t.Fatalf("account = %+v", s.Account)
	}
	if err := h.flow.SaveProfile(ctx, good); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("err = %v, want ErrSaveInProgress", err)
	}
	h.clock.Advance(1200 * time.Millisecond)
	h.mustView(t, ViewDashboard)

	ledger, err := h.flow.Ledger(ctx)
	must(t, err)
	if ledger.Profile.Bank.IFSC != "SBIN0004321" {
		t.Fatalf("profile = %+v", ledger.Profile)
	}
}

func TestFlow_CloseAccountDropsSaveReturn(t *testing.T) {
	h := newHarness(t, false, nil)
	must(t, h.flow.OpenAccount())
	p := wallet.Profile{Bank: wallet.DefaultBankDetails}
	p.Bank.AccountNumber = "123456789"
	must(t, h.flow.SaveProfile(context.Background(), p))
	must(t, h.flow.CloseAccount())
	h.clock.Advance(5 * time.Second)
	h.mustView(t, ViewOffline)
}

func TestFlow_Payout(t *testing.T) {
	h := newHarness(t, true, nil)
	ctx := context.Background()
	if _, err := h.flow.Payout(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Payout outside account err = %v", err)
	}
	must(t, h.flow.OpenAccount())

	ledger, err := h.flow.Ledger(ctx)
	must(t, err)
	if ledger.Balance != 688 || len(ledger.Transactions) != 7 {
		t.Fatalf("ledger = %+v", ledger)
	}

	tx, err := h.flow.Payout(ctx)
	must(t, err)
	if tx.Kind != wallet.KindPayout || tx.Amount != -688 {
		t.Fatalf("payout = %+v", tx)
	}
	if h.cues.Last() != "Paisay transfer kar diye gaye hain." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}

	if _, err := h.flow.Payout(ctx); !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if h.cues.Last() != "Aapka balance kam hai." {
		t.Fatalf("last cue = %q", h.cues.Last())
	}
	if txs, _ := h.repo.ListTransactions(ctx); len(txs) != 8 {
		t.Fatalf("ledger has %d entries, want 8", len(txs))
	}
}
