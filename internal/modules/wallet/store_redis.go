// README: Wallet repository backed by Redis strings and a JSON list.
package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	transactionsKey = "oortgo_transactions"
	bankDetailsKey  = "oortgo_bank_details"
	driverPhotoKey  = "oortgo_driver_photo"
	upiQRKey        = "oortgo_upi_qr"
)

type RedisStore struct {
	redis     *redis.Client
	namespace string
}

// NewRedisStore prefixes every key with namespace; pass "" for the plain keys.
func NewRedisStore(redis *redis.Client, namespace string) *RedisStore {
	return &RedisStore{redis: redis, namespace: namespace}
}

func (s *RedisStore) key(name string) string {
	return s.namespace + name
}

func (s *RedisStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	raw, err := s.redis.LRange(ctx, s.key(transactionsKey), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(raw))
	for _, r := range raw {
		var tx Transaction
		if err := json.Unmarshal([]byte(r), &tx); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// AppendTransactions pushes all entries with one RPUSH so they land together.
func (s *RedisStore) AppendTransactions(ctx context.Context, txs ...Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	values := make([]interface{}, len(txs))
	for i, tx := range txs {
		b, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		values[i] = b
	}
	return s.redis.RPush(ctx, s.key(transactionsKey), values...).Err()
}

func (s *RedisStore) LoadProfile(ctx context.Context) (Profile, error) {
	vals, err := s.redis.MGet(ctx, s.key(bankDetailsKey), s.key(driverPhotoKey), s.key(upiQRKey)).Result()
	if err != nil {
		return Profile{}, err
	}
	bank, ok := vals[0].(string)
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	var p Profile
	if err := json.Unmarshal([]byte(bank), &p.Bank); err != nil {
		return Profile{}, fmt.Errorf("decode bank details: %w", err)
	}
	if photo, ok := vals[1].(string); ok {
		p.Photo = photo
	}
	if qr, ok := vals[2].(string); ok {
		p.UPIQR = qr
	}
	return p, nil
}

// SaveProfile writes the bank details and any non-empty images in one MULTI block.
func (s *RedisStore) SaveProfile(ctx context.Context, p Profile) error {
	bank, err := json.Marshal(p.Bank)
	if err != nil {
		return err
	}
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(bankDetailsKey), bank, 0)
		s.setImages(ctx, pipe, p.Photo, p.UPIQR)
		return nil
	})
	return err
}

func (s *RedisStore) LoadImages(ctx context.Context) (string, string, error) {
	vals, err := s.redis.MGet(ctx, s.key(driverPhotoKey), s.key(upiQRKey)).Result()
	if err != nil {
		return "", "", err
	}
	photo, _ := vals[0].(string)
	qr, _ := vals[1].(string)
	return photo, qr, nil
}

// SaveImages sets only the image keys; the bank details key is left alone.
func (s *RedisStore) SaveImages(ctx context.Context, photo, upiQR string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.setImages(ctx, pipe, photo, upiQR)
		return nil
	})
	return err
}

func (s *RedisStore) setImages(ctx context.Context, pipe redis.Pipeliner, photo, upiQR string) {
	if photo != "" {
		pipe.Set(ctx, s.key(driverPhotoKey), photo, 0)
	}
	if upiQR != "" {
		pipe.Set(ctx, s.key(upiQRKey), upiQR, 0)
	}
}
