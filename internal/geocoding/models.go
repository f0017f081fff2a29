// Package geocoding resolves free-form address text to coordinates.
package geocoding

import (
	"context"
	"errors"
)

// ErrNotFound indicates the address text matched no location. This is a
// fatal planning error surfaced to the caller.
var ErrNotFound = errors.New("no location found for address")

// Location is a resolved geographic position.
type Location struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Resolver defines the interface for geocoding providers.
type Resolver interface {
	// Resolve turns address text into a location, failing with
	// ErrNotFound when there are zero matches.
	Resolve(ctx context.Context, addressText string) (Location, error)

	// Name returns the provider name for logging.
	Name() string
}
