package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"oortgo/internal/types"
)

// RouteService resolves driving routes through the Directions API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(client *maps.Client) *RouteService {
	return &RouteService{client: client}
}

// Route returns the decoded overview polyline of the first driving route.
func (s *RouteService) Route(ctx context.Context, from, to types.Point) ([]types.Point, error) {
	route, err := s.first(ctx, from, to)
	if err != nil {
		return nil, err
	}
	path, err := route.OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	points := make([]types.Point, len(path))
	for i, ll := range path {
		points[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
	}
	return points, nil
}

func (s *RouteService) first(ctx context.Context, from, to types.Point) (maps.Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Region:      Region,
	}
	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return maps.Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return maps.Route{}, fmt.Errorf("no route found")
	}
	return routes[0], nil
}
