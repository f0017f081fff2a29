// Package routing retrieves driving route alternatives between two points.
package routing

import (
	"context"
	"errors"

	"github.com/voltroute/voltroute/pkg/polyline"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates coordinates outside valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Route is a single route alternative.
type Route struct {
	// DistanceMeters is the total driving distance.
	DistanceMeters float64

	// DurationSeconds is the estimated driving time.
	DurationSeconds float64

	// Geometry is the decoded route polyline, ordered origin to
	// destination.
	Geometry []polyline.Coordinate

	// Summary is a human-readable route description.
	Summary string
}

// Provider defines the interface for routing providers.
type Provider interface {
	// GetRoutes returns up to maxAlternatives route options between two
	// points, failing with ErrNoRouteFound when none exist.
	GetRoutes(ctx context.Context, origin, dest Coordinate, maxAlternatives int) ([]Route, error)

	// Name returns the provider identifier for logging.
	Name() string
}

// Error provides detailed error information from a routing provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidateCoordinate checks that a coordinate is within valid ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
