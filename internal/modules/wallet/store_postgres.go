// README: Wallet repository backed by PostgreSQL (see migrations/0001_wallet.sql).
package wallet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"oortgo/internal/types"
)

type PGStore struct {
	db       *pgxpool.Pool
	driverID string
}

// NewPGStore scopes every row to driverID.
func NewPGStore(db *pgxpool.Pool, driverID string) *PGStore {
	return &PGStore{db: db, driverID: driverID}
}

func (s *PGStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, kind, amount, (EXTRACT(EPOCH FROM created_at) * 1000)::bigint
        FROM wallet_transactions
        WHERE driver_id = $1
        ORDER BY seq`, s.driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var id, kind string
		if err := rows.Scan(&id, &kind, &tx.Amount, &tx.Timestamp); err != nil {
			return nil, err
		}
		tx.ID = types.ID(id)
		tx.Kind = Kind(kind)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *PGStore) AppendTransactions(ctx context.Context, txs ...Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, t := range txs {
		_, err := tx.Exec(ctx, `
            INSERT INTO wallet_transactions (id, driver_id, kind, amount, created_at)
            VALUES ($1, $2, $3, $4, to_timestamp($5::double precision / 1000))`,
			string(t.ID), s.driverID, string(t.Kind), t.Amount, t.Timestamp,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) LoadProfile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, `
        SELECT p.account_name, p.bank_name, p.account_number, p.ifsc, p.upi_id,
               COALESCE(i.photo, ''), COALESCE(i.upi_qr, '')
        FROM wallet_profiles p
        LEFT JOIN wallet_images i ON i.driver_id = p.driver_id
        WHERE p.driver_id = $1`, s.driverID,
	).Scan(&p.Bank.AccountName, &p.Bank.BankName, &p.Bank.AccountNumber, &p.Bank.IFSC, &p.Bank.UPIID, &p.Photo, &p.UPIQR)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	return p, err
}

// SaveProfile upserts the bank details and any non-empty images in one transaction.
func (s *PGStore) SaveProfile(ctx context.Context, p Profile) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO wallet_profiles (driver_id, account_name, bank_name, account_number, ifsc, upi_id, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (driver_id) DO UPDATE SET
            account_name = EXCLUDED.account_name,
            bank_name = EXCLUDED.bank_name,
            account_number = EXCLUDED.account_number,
            ifsc = EXCLUDED.ifsc,
            upi_id = EXCLUDED.upi_id,
            updated_at = NOW()`,
		s.driverID, p.Bank.AccountName, p.Bank.BankName, p.Bank.AccountNumber, p.Bank.IFSC, p.Bank.UPIID,
	)
	if err != nil {
		return err
	}
	if err := s.upsertImages(ctx, tx, p.Photo, p.UPIQR); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) LoadImages(ctx context.Context) (string, string, error) {
	var photo, qr string
	err := s.db.QueryRow(ctx, `
        SELECT photo, upi_qr FROM wallet_images WHERE driver_id = $1`, s.driverID,
	).Scan(&photo, &qr)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", nil
	}
	return photo, qr, err
}

// SaveImages touches only wallet_images, so no bank details row is created.
func (s *PGStore) SaveImages(ctx context.Context, photo, upiQR string) error {
	return s.upsertImages(ctx, s.db, photo, upiQR)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// upsertImages writes the non-empty images; empty values keep the stored ones.
func (s *PGStore) upsertImages(ctx context.Context, db execer, photo, upiQR string) error {
	if photo == "" && upiQR == "" {
		return nil
	}
	_, err := db.Exec(ctx, `
        INSERT INTO wallet_images (driver_id, photo, upi_qr, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (driver_id) DO UPDATE SET
            photo = COALESCE(NULLIF(EXCLUDED.photo, ''), wallet_images.photo),
            upi_qr = COALESCE(NULLIF(EXCLUDED.upi_qr, ''), wallet_images.upi_qr),
            updated_at = NOW()`,
		s.driverID, photo, upiQR,
	)
	return err
}
