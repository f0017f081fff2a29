// Package conditions resolves ambient weather conditions for a coordinate
// and derives their impact on EV energy consumption. A live provider is
// used when configured; otherwise a deterministic synthetic generator
// stands in. Sampling never fails: provider errors fall back to the
// synthetic path.
package conditions

import (
	"context"
	"time"
)

// Sky condition labels. Impact matching is substring-based so provider
// labels like "light rain" or "heavy snow" behave the same way.
const (
	SkyClear  = "clear"
	SkyClouds = "clouds"
	SkyRain   = "rain"
	SkySnow   = "snow"
)

// Sample is a point-in-time ambient condition observation for a coordinate.
type Sample struct {
	Lat float64
	Lon float64

	// TempF is the air temperature in degrees Fahrenheit.
	TempF float64

	// Sky is the condition label (clear/clouds/rain/snow, possibly qualified).
	Sky string

	// Humidity percentage (0-100).
	Humidity float64

	// WindMph is the wind speed in miles per hour.
	WindMph float64

	// VisibilityMi is the visibility in miles.
	VisibilityMi float64

	// Night indicates the sample falls outside daylight hours.
	Night bool

	// Synthetic indicates the sample came from the generator rather than
	// a live provider.
	Synthetic bool

	// Impact is the derived effect on vehicle energy consumption.
	Impact Impact

	// SampledAt is when the observation was resolved.
	SampledAt time.Time
}

// Impact describes how ambient conditions affect energy consumption.
type Impact struct {
	// Efficiency is a multiplier <= 1.0 applied to the vehicle's rated
	// efficiency. Lower values mean higher consumption.
	Efficiency float64

	// RangeLossPct is the projected range reduction, rounded to a whole
	// percent: round((1 - Efficiency) * 100).
	RangeLossPct int

	// ChargeRate is a multiplier on charging speed (cold batteries
	// charge slower).
	ChargeRate float64

	// Summary is a human-readable note on the dominant cause, empty when
	// conditions are neutral.
	Summary string
}

// Observation is the raw weather data returned by a live provider.
type Observation struct {
	TempF        float64
	Condition    string
	Humidity     float64
	WindMph      float64
	VisibilityMi float64
	Night        bool
}

// Provider defines the interface for live weather providers.
type Provider interface {
	// Fetch retrieves current conditions for a location.
	Fetch(ctx context.Context, lat, lon float64) (Observation, error)

	// Name returns the provider name for logging.
	Name() string
}
