package ai

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"oortgo/internal/types"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      Intent
		wantClass types.VehicleClass
		wantErr   error
	}{
		{
			name:      "plain json",
			raw:       `{"destination":"IGI Airport","vehiclePreference":"AUTO","isImmediate":true}`,
			want:      Intent{Destination: "IGI Airport", VehiclePreference: "AUTO", IsImmediate: true},
			wantClass: types.VehicleAuto,
		},
		{
			name:      "fenced json",
			raw:       "```json\n{\"destination\":\" Connaught Place \",\"vehiclePreference\":\"car\"}\n```",
			want:      Intent{Destination: "Connaught Place", VehiclePreference: "car"},
			wantClass: types.VehicleSedan,
		},
		{
			name:      "missing preference defaults to any",
			raw:       `{"destination":"Rohini"}`,
			want:      Intent{Destination: "Rohini", VehiclePreference: PreferenceAny},
			wantClass: "",
		},
		{
			name:      "bike",
			raw:       `{"destination":"Saket","vehiclePreference":"BIKE","isImmediate":false}`,
			want:      Intent{Destination: "Saket", VehiclePreference: "BIKE"},
			wantClass: types.VehicleBike,
		},
		{
			name:    "no destination",
			raw:     `{"destination":"","vehiclePreference":"CAR"}`,
			wantErr: ErrNoDestination,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntent(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIntent: %v", err)
			}
			if *got != tt.want {
				t.Fatalf("parseIntent() = %+v, want %+v", *got, tt.want)
			}
			if got.VehicleClass() != tt.wantClass {
				t.Fatalf("VehicleClass() = %q, want %q", got.VehicleClass(), tt.wantClass)
			}
		})
	}
}

func TestParseIntent_Malformed(t *testing.T) {
	if _, err := parseIntent("not json"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGeminiExtractor_Live(t *testing.T) {
	key := os.Getenv("OORT_GEMINI_API_KEY")
	if key == "" {
		t.Skip("OORT_GEMINI_API_KEY not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	g, err := NewGeminiExtractor(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	intent, err := g.ExtractRideIntent(ctx, "Mujhe abhi auto se airport jana hai")
	if err != nil {
		t.Fatalf("ExtractRideIntent: %v", err)
	}
	if intent.Destination == "" {
		t.Fatal("empty destination")
	}
}
