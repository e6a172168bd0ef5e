package main

import (
	"context"
	"fmt"
	"log/slog"

	"oortgo/internal/config"
	"oortgo/internal/infra"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/wallet"
)

// openStores builds the wallet repository and the fare table for the selected
// backend. Only postgres carries per-market rates; the others use the defaults.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (wallet.Repository, pricing.Table, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("wallet store", "backend", "redis", "addr", cfg.Redis.Addr)
		return wallet.NewRedisStore(client, cfg.Redis.Namespace), pricing.DefaultTable(), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		table, err := pricing.NewStore(pool).LoadTable(ctx, cfg.Market)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("load fare table: %w", err)
		}
		logger.Info("wallet store", "backend", "postgres", "driver_id", cfg.DriverID, "market", cfg.Market)
		return wallet.NewPGStore(pool, cfg.DriverID), table, pool.Close, nil
	}

	logger.Info("wallet store", "backend", "memory")
	return wallet.NewMemoryStore(), pricing.DefaultTable(), func() {}, nil
}
