// Package stations aggregates charging-station lookups near a point or
// along a route. Results from overlapping spatial queries are deduplicated
// by provider identifier and cached per query with a short TTL. Provider
// metadata is real where a provider is configured; amenity, pricing, and
// availability annotations are synthetic placeholders.
package stations

import (
	"context"
)

// RawStation is the provider-level station payload before enrichment.
type RawStation struct {
	// ID is the provider's stable station identifier, used as the
	// dedup key.
	ID string

	Name    string
	Lat     float64
	Lon     float64
	Address string

	// PowerKW is the maximum charging power.
	PowerKW float64

	// Connector is the plug type (CCS, CHAdeMO, NACS, J1772...).
	Connector string

	// Network is the operating charging network.
	Network string

	// Operational reports whether the station is in service.
	Operational bool
}

// Station is an enriched charging-station record.
type Station struct {
	ProviderID  string
	Name        string
	Lat         float64
	Lon         float64
	Address     string
	PowerKW     float64
	Connector   string
	Network     string
	Operational bool

	// DistanceMiles is the distance from the query point. For stations
	// merged across route sample points this is the smallest distance
	// observed.
	DistanceMiles float64

	// Synthetic annotations, deterministic per station identifier.
	Amenities   []string
	Accessible  bool
	PricePerKwh float64
	Rating      float64
	Available   int
	TotalStalls int
}

// HasAnyAmenity reports whether the station offers at least one of the
// wanted amenities (OR semantics). An empty want list matches everything.
func (s Station) HasAnyAmenity(want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, a := range s.Amenities {
			if a == w {
				return true
			}
		}
	}
	return false
}

// NearbyQuery describes a point-radius station search.
type NearbyQuery struct {
	Lat         float64
	Lon         float64
	RadiusMiles float64
	MaxResults  int

	// Amenities filters to stations offering any of the listed
	// amenities. Empty means no amenity filtering.
	Amenities []string
}

// Provider defines the interface for charging-station data providers.
type Provider interface {
	// Query returns raw stations within radiusMiles of the point.
	Query(ctx context.Context, lat, lon, radiusMiles float64, maxResults int) ([]RawStation, error)

	// Name returns the provider name for logging.
	Name() string
}
