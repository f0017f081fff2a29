// Package energy converts a vehicle profile, trip parameters, and ambient
// condition samples into projected battery usage, charging stops, and cost.
// The model is a display-grade approximation, not a certified range
// predictor.
package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// Validation errors returned at the model boundary.
var (
	ErrInvalidDistance = errors.New("distance must be a non-negative number")
	ErrInvalidCharge   = errors.New("starting charge must be between 10 and 100 percent")
	ErrInvalidHealth   = errors.New("battery health must be between 70 and 100 percent")
)

// FlatRatePerKwh is the flat electricity rate used for cost estimates,
// in USD per kWh.
const FlatRatePerKwh = 0.15

// chargeStopIncrementPct models each planned charging stop as a fixed
// 40-percentage-point top-up.
const chargeStopIncrementPct = 40.0

// Request holds the trip parameters for an estimate.
type Request struct {
	// DistanceMiles is the route distance.
	DistanceMiles float64

	// StartingChargePct is the battery charge at departure (10-100).
	StartingChargePct float64

	// BatteryHealthPct degrades the effective capacity (70-100).
	BatteryHealthPct float64
}

// Usage is the projected energy outcome for a single route.
type Usage struct {
	// BatteryUsagePct is the projected battery consumption, clamped to
	// [0, 100].
	BatteryUsagePct int

	// ChargingStops is the number of planned top-ups (>= 0).
	ChargingStops int

	// KwhPerMile is the weather-adjusted consumption rate.
	KwhPerMile float64

	// EnergyKwh is the total projected energy draw.
	EnergyKwh float64

	// CostUSD is the estimated charging cost at the flat rate.
	CostUSD float64
}

// Estimate projects battery usage for one route. The three condition
// samples (start, midpoint, end) are averaged into a single efficiency
// multiplier; a multiplier below 1.0 raises consumption.
func Estimate(profile vehicle.Profile, req Request, samples []conditions.Sample) (Usage, error) {
	if err := validate(req); err != nil {
		return Usage{}, err
	}

	avgImpact := averageEfficiency(samples)

	adjustedKwhPerMile := profile.KwhPerMile / avgImpact
	effectiveCapacityKwh := profile.BatteryKwh * (req.BatteryHealthPct / 100)
	energyKwh := req.DistanceMiles * adjustedKwhPerMile

	usagePct := int(math.Round(energyKwh / effectiveCapacityKwh * 100))
	usagePct = clampPct(usagePct)

	return Usage{
		BatteryUsagePct: usagePct,
		ChargingStops:   chargingStops(usagePct, req.StartingChargePct),
		KwhPerMile:      adjustedKwhPerMile,
		EnergyKwh:       energyKwh,
		CostUSD:         roundCents(energyKwh * FlatRatePerKwh),
	}, nil
}

// ValidateTripParams checks the charge and health ranges without running
// an estimate. The orchestrator calls this before any pipeline stage so
// bad input fails fast.
func ValidateTripParams(startingChargePct, batteryHealthPct float64) error {
	return validate(Request{StartingChargePct: startingChargePct, BatteryHealthPct: batteryHealthPct})
}

func validate(req Request) error {
	if math.IsNaN(req.DistanceMiles) || req.DistanceMiles < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidDistance, req.DistanceMiles)
	}
	if math.IsNaN(req.StartingChargePct) || req.StartingChargePct < 10 || req.StartingChargePct > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidCharge, req.StartingChargePct)
	}
	if math.IsNaN(req.BatteryHealthPct) || req.BatteryHealthPct < 70 || req.BatteryHealthPct > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidHealth, req.BatteryHealthPct)
	}
	return nil
}

// averageEfficiency averages the sample efficiency multipliers. Missing or
// zero-valued samples count as neutral so a partial sample set cannot push
// the divisor toward zero.
func averageEfficiency(samples []conditions.Sample) float64 {
	if len(samples) == 0 {
		return 1.0
	}

	var sum float64
	for _, s := range samples {
		eff := s.Impact.Efficiency
		if eff <= 0 {
			eff = 1.0
		}
		sum += eff
	}
	return sum / float64(len(samples))
}

// chargingStops returns the planned top-up count: zero whenever projected
// usage stays within the starting charge, otherwise one stop per started
// 40-point increment of the shortfall.
func chargingStops(usagePct int, startingChargePct float64) int {
	shortfall := float64(usagePct) - startingChargePct
	if shortfall <= 0 {
		return 0
	}
	return int(math.Ceil(shortfall / chargeStopIncrementPct))
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
