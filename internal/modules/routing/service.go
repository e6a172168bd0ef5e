// README: Routing service; bounded router lookups with a straight-line fallback.
package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"oortgo/internal/types"
)

// DefaultTimeout bounds every router lookup.
const DefaultTimeout = 3 * time.Second

var errEmptyRoute = errors.New("router returned no points")

// Router resolves a driving path between two points.
type Router interface {
	Route(ctx context.Context, from, to types.Point) ([]types.Point, error)
}

// RouterFunc adapts a function to Router.
type RouterFunc func(ctx context.Context, from, to types.Point) ([]types.Point, error)

func (f RouterFunc) Route(ctx context.Context, from, to types.Point) ([]types.Point, error) {
	return f(ctx, from, to)
}

type Service struct {
	router  Router
	timeout time.Duration
	logger  *slog.Logger
}

// NewService wraps router; a nil router always yields straight lines.
func NewService(router Router, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{router: router, timeout: timeout, logger: logger}
}

// Route never fails: any router error, empty result or timeout falls back to
// the straight segment from -> to.
func (s *Service) Route(ctx context.Context, from, to types.Point) Route {
	if s.router != nil {
		points, err := s.lookup(ctx, from, to)
		if err == nil {
			return Route{Points: points, DistanceKm: LengthKm(points)}
		}
		s.logger.Warn("route lookup failed, using straight line", "error", err)
	}
	line := []types.Point{from, to}
	return Route{Points: line, DistanceKm: LengthKm(line), Fallback: true}
}

func (s *Service) lookup(ctx context.Context, from, to types.Point) ([]types.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		points []types.Point
		err    error
	}
	done := make(chan result, 1)
	go func() {
		points, err := s.router.Route(ctx, from, to)
		done <- result{points, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if len(r.points) < 2 {
			return nil, errEmptyRoute
		}
		return r.points, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
