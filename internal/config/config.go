// README: Config loader with env defaults for HTTP, storage, integrations and simulation timing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	// Store selects the wallet repository: memory, redis or postgres.
	Store string
	DB    struct {
		DSN string
	}
	Redis struct {
		Addr      string
		Namespace string
	}
	Maps struct {
		APIKey       string
		RouteTimeout time.Duration
	}
	AI struct {
		GeminiKey string
	}
	Firebase struct {
		CredentialsFile string
		// FCMToken is the device that receives spoken cues as push notifications.
		FCMToken string
	}
	Log struct {
		Level string
	}
	Market   string
	DriverID string
	SeedDemo bool
	// SimScale speeds up every flow delay; 1 is real time.
	SimScale float64
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("OORT_HTTP_ADDR", ":8080")
	cfg.Store = strings.ToLower(envOrDefault("OORT_STORE", StoreMemory))
	cfg.DB.DSN = envOrDefault("OORT_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("OORT_REDIS_ADDR", "localhost:6379")
	cfg.Redis.Namespace = envOrDefault("OORT_REDIS_NAMESPACE", "")
	cfg.Maps.APIKey = envOrDefault("OORT_MAPS_API_KEY", "")
	cfg.Maps.RouteTimeout = envOrDefaultDuration("OORT_ROUTE_TIMEOUT", 3*time.Second)
	cfg.AI.GeminiKey = envOrDefault("OORT_GEMINI_API_KEY", "")
	cfg.Firebase.CredentialsFile = envOrDefault("OORT_FIREBASE_CREDENTIALS", "")
	cfg.Firebase.FCMToken = envOrDefault("OORT_FCM_TOKEN", "")
	cfg.Log.Level = envOrDefault("OORT_LOG_LEVEL", "info")
	cfg.Market = envOrDefault("OORT_MARKET", "default")
	cfg.DriverID = envOrDefault("OORT_DRIVER_ID", "driver-1")
	cfg.SeedDemo = envOrDefaultBool("OORT_SEED_DEMO", true)
	cfg.SimScale = envOrDefaultFloat("OORT_SIM_SCALE", 1)

	switch cfg.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if cfg.DB.DSN == "" {
			return cfg, fmt.Errorf("OORT_DB_DSN is required when OORT_STORE=%s", StorePostgres)
		}
	default:
		return cfg, fmt.Errorf("unknown OORT_STORE %q", cfg.Store)
	}
	if cfg.SimScale <= 0 {
		return cfg, fmt.Errorf("OORT_SIM_SCALE must be positive, got %v", cfg.SimScale)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
