package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Store != StoreMemory || !cfg.SeedDemo || cfg.SimScale != 1 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Maps.RouteTimeout != 3*time.Second {
		t.Fatalf("route timeout = %v", cfg.Maps.RouteTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OORT_STORE", "Redis")
	t.Setenv("OORT_SEED_DEMO", "false")
	t.Setenv("OORT_SIM_SCALE", "10")
	t.Setenv("OORT_ROUTE_TIMEOUT", "750ms")
	t.Setenv("OORT_MAPS_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != StoreRedis || cfg.SeedDemo || cfg.SimScale != 10 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Maps.RouteTimeout != 750*time.Millisecond || cfg.Maps.APIKey != "key" {
		t.Fatalf("maps = %+v", cfg.Maps)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("OORT_SEED_DEMO", "maybe")
	t.Setenv("OORT_ROUTE_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SeedDemo || cfg.Maps.RouteTimeout != 3*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"OORT_STORE": "postgres"}},
		{"unknown store", map[string]string{"OORT_STORE": "etcd"}},
		{"non-positive scale", map[string]string{"OORT_SIM_SCALE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
