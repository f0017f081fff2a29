// Package trip orchestrates the planning pipeline: geocoding, routing,
// per-route energy evaluation, station discovery, and result assembly.
package trip

import (
	"context"
	"errors"
	"time"

	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/geocoding"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/vehicle"
	"github.com/voltroute/voltroute/pkg/polyline"
)

// ErrTripNotFound indicates a trip record does not exist.
var ErrTripNotFound = errors.New("trip not found")

// Pipeline states. Failed is reachable only from the fatal stages
// (geocoding, routing); evaluation and station lookup degrade instead.
const (
	StateIdle          = "idle"
	StateGeocoding     = "geocoding"
	StateRouting       = "routing"
	StateEvaluating    = "evaluating"
	StateStationLookup = "station_lookup"
	StateComplete      = "complete"
	StateFailed        = "failed"
)

// PlanRequest holds the caller's trip parameters.
type PlanRequest struct {
	// Origin and Destination are free-form address text.
	Origin      string
	Destination string

	// VehicleID selects a catalog profile.
	VehicleID string

	// StartingChargePct is the battery charge at departure (10-100).
	StartingChargePct float64

	// BatteryHealthPct degrades effective capacity (70-100).
	// Zero defaults to 100.
	BatteryHealthPct float64

	// StationRadiusMiles overrides the station search radius.
	StationRadiusMiles float64

	// Amenities filters discovered stations (OR semantics).
	Amenities []string

	// UserID, when present, persists the finished plan.
	UserID string
}

// RouteCandidate is one evaluated route alternative.
type RouteCandidate struct {
	ID      string
	Label   string
	Summary string

	DistanceMiles   float64
	DurationMinutes float64

	// BatteryUsagePct is clamped to [0, 100].
	BatteryUsagePct int

	// ChargingStops is the planned top-up count (>= 0).
	ChargingStops int

	// KwhPerMile is the weather-adjusted consumption rate.
	KwhPerMile float64

	EnergyKwh float64
	CostUSD   float64

	// Geometry is the route polyline, origin to destination.
	Geometry []polyline.Coordinate

	// Conditions holds the start, midpoint, and end samples used for
	// the estimate.
	Conditions [3]conditions.Sample
}

// Plan is the assembled planning result.
type Plan struct {
	ID string

	Origin            string
	Destination       string
	OriginCoords      geocoding.Location
	DestinationCoords geocoding.Location

	Vehicle           vehicle.Profile
	StartingChargePct float64

	Routes   []RouteCandidate
	Stations []stations.Station

	GeneratedAt time.Time
}

// Primary returns the first route candidate, or nil when empty.
func (p *Plan) Primary() *RouteCandidate {
	if len(p.Routes) == 0 {
		return nil
	}
	return &p.Routes[0]
}

// Record is the persisted form of a finished plan. The full plan payload
// is stored as an opaque JSON blob.
type Record struct {
	ID          string
	UserID      string
	Origin      string
	Destination string
	OriginLat   float64
	OriginLon   float64
	DestLat     float64
	DestLon     float64

	StartingChargePct float64
	VehicleID         string

	Payload   []byte
	CreatedAt time.Time
}

// Repository persists trip records.
type Repository interface {
	// Save stores a trip record.
	Save(ctx context.Context, rec *Record) error

	// ListByUser returns a user's trips, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
}
