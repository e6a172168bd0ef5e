// README: Wallet service: ledger balance, ride earnings, payouts and the driver profile.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"oortgo/internal/types"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type Service struct {
	repo     Repository
	logger   *slog.Logger
	seedDemo bool
	now      func() time.Time

	// mu serializes read-then-append sequences so a payout never races an earning.
	mu sync.Mutex
}

func NewService(repo Repository, seedDemo bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, seedDemo: seedDemo, now: time.Now}
}

// WithNow replaces the wall clock used for transaction timestamps.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Load returns the ledger, seeding an empty one with the demo history when enabled.
func (s *Service) Load(ctx context.Context) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) ([]Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) > 0 || !s.seedDemo {
		return txs, nil
	}
	seed := DemoHistory(s.now().UnixMilli())
	if err := s.repo.AppendTransactions(ctx, seed...); err != nil {
		return nil, fmt.Errorf("seed transactions: %w", err)
	}
	s.logger.Info("wallet seeded with demo history", "entries", len(seed))
	return seed, nil
}

func (s *Service) Balance(ctx context.Context) (float64, error) {
	txs, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return NetBalance(txs), nil
}

// RecordEarning appends the ride fare and its commission as one batch.
func (s *Service) RecordEarning(ctx context.Context, rideID types.ID, fare int64) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	earning := float64(fare)
	pair := []Transaction{
		{ID: types.ID("ride_" + string(types.NewID())), Kind: KindEarning, Amount: earning, Timestamp: ts},
		{ID: types.ID("comm_" + string(types.NewID())), Kind: KindCommission, Amount: -(earning * CommissionRate), Timestamp: ts},
	}
	if err := s.repo.AppendTransactions(ctx, pair...); err != nil {
		return nil, fmt.Errorf("record earning: %w", err)
	}
	s.logger.Info("ride earning recorded", "ride_id", rideID, "fare", fare, "commission", pair[1].Amount)
	return pair, nil
}

// Payout moves the whole net balance out. Nothing is appended when the balance
// is not positive.
func (s *Service) Payout(ctx context.Context) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return Transaction{}, err
	}
	net := NetBalance(txs)
	if net <= 0 {
		return Transaction{}, ErrInsufficientBalance
	}
	payout := Transaction{
		ID:        types.ID("payout_" + string(types.NewID())),
		Kind:      KindPayout,
		Amount:    -net,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.repo.AppendTransactions(ctx, payout); err != nil {
		return Transaction{}, fmt.Errorf("record payout: %w", err)
	}
	s.logger.Info("payout transferred", "amount", net)
	return payout, nil
}

// Profile returns the stored profile, or the default bank details with any
// images uploaded so far.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	p, err := s.repo.LoadProfile(ctx)
	if errors.Is(err, ErrProfileNotFound) {
		photo, qr, err := s.repo.LoadImages(ctx)
		if err != nil {
			return Profile{}, fmt.Errorf("load images: %w", err)
		}
		return Profile{Bank: DefaultBankDetails, Photo: photo, UPIQR: qr}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// SaveProfile validates the bank details and persists the profile; nothing is
// written when validation fails.
func (s *Service) SaveProfile(ctx context.Context, p Profile) error {
	if err := ValidateBankDetails(p.Bank); err != nil {
		return err
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// UpdatePhoto stores a new profile photo without touching the bank details.
func (s *Service) UpdatePhoto(ctx context.Context, photo string) error {
	if err := s.repo.SaveImages(ctx, photo, ""); err != nil {
		return fmt.Errorf("save photo: %w", err)
	}
	return nil
}

// UpdateUPIQR stores a new UPI QR image without touching the bank details.
func (s *Service) UpdateUPIQR(ctx context.Context, qr string) error {
	if err := s.repo.SaveImages(ctx, "", qr); err != nil {
		return fmt.Errorf("save upi qr: %w", err)
	}
	return nil
}

// DriverDetails builds the driver card from the persisted profile.
func (s *Service) DriverDetails(ctx context.Context) (DriverDetails, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return DriverDetails{}, err
	}
	photo := p.Photo
	if photo == "" {
		photo = DefaultPhoto
	}
	return DriverDetails{
		Name:          p.Bank.AccountName,
		Photo:         photo,
		Phone:         DefaultPhone,
		VehicleNumber: DefaultVehicleNumber,
		Rating:        DefaultRating,
		BankName:      p.Bank.BankName,
		AccountNumber: p.Bank.AccountNumber,
		IFSC:          p.Bank.IFSC,
		UPIID:         p.Bank.UPIID,
		UPIQR:         p.UPIQR,
	}, nil
}
