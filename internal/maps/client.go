package maps

import (
	"fmt"

	"googlemaps.github.io/maps"

	"oortgo/internal/types"
)

// Region biases geocoding and directions results.
const Region = "in"

// NewClient creates a Google Maps client for the given API key.
func NewClient(apiKey string) (*maps.Client, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
