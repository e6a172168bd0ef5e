// README: Wallet repository contract and the in-process implementation.
package wallet

import (
	"context"
	"errors"
	"sync"
)

var ErrProfileNotFound = errors.New("wallet profile not found")

// Repository persists the ledger and the payout profile. AppendTransactions
// must store all given entries or none. Images are kept apart from the bank
// details: SaveImages never creates a profile, and LoadProfile reports
// ErrProfileNotFound until bank details have been saved.
type Repository interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
	AppendTransactions(ctx context.Context, txs ...Transaction) error
	LoadProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
	LoadImages(ctx context.Context) (photo, upiQR string, err error)
	SaveImages(ctx context.Context, photo, upiQR string) error
}

type MemoryStore struct {
	mu    sync.Mutex
	txs   []Transaction
	bank  *BankDetails
	photo string
	upiQR string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *MemoryStore) AppendTransactions(ctx context.Context, txs ...Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
	return nil
}

func (s *MemoryStore) LoadProfile(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bank == nil {
		return Profile{}, ErrProfileNotFound
	}
	return Profile{Bank: *s.bank, Photo: s.photo, UPIQR: s.upiQR}, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bank := p.Bank
	s.bank = &bank
	s.setImages(p.Photo, p.UPIQR)
	return nil
}

func (s *MemoryStore) LoadImages(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo, s.upiQR, nil
}

func (s *MemoryStore) SaveImages(ctx context.Context, photo, upiQR string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setImages(photo, upiQR)
	return nil
}

// setImages overwrites only the non-empty images. Callers hold s.mu.
func (s *MemoryStore) setImages(photo, upiQR string) {
	if photo != "" {
		s.photo = photo
	}
	if upiQR != "" {
		s.upiQR = upiQR
	}
}
