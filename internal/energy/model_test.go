package energy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/energy"
	"github.com/voltroute/voltroute/internal/vehicle"
)

var testProfile = vehicle.Profile{
	ID:         "test-ev",
	Label:      "Test EV",
	BatteryKwh: 60,
	KwhPerMile: 0.30,
	RangeMiles: 200,
}

func neutralSamples() []conditions.Sample {
	neutral := conditions.Sample{Impact: conditions.NeutralImpact()}
	return []conditions.Sample{neutral, neutral, neutral}
}

func TestEstimate_NeutralWeatherFullHealth(t *testing.T) {
	// 60 kWh pack, 0.30 kWh/mi, 200 miles, impact 1.0, 80% start:
	// energy = 60 kWh, usage = 100%, stops = ceil((100-80)/40) = 1
	usage, err := energy.Estimate(testProfile, energy.Request{
		DistanceMiles:     200,
		StartingChargePct: 80,
		BatteryHealthPct:  100,
	}, neutralSamples())
	require.NoError(t, err)

	assert.InDelta(t, 60.0, usage.EnergyKwh, 1e-9)
	assert.Equal(t, 100, usage.BatteryUsagePct)
	assert.Equal(t, 1, usage.ChargingStops)
	assert.InDelta(t, 0.30, usage.KwhPerMile, 1e-9)
	assert.InDelta(t, 9.0, usage.CostUSD, 1e-9)
}

func TestEstimate_DegradedHealthClampsUsage(t *testing.T) {
	// 80% health gives 48 kWh effective; 60/48 = 125% clamps to 100
	usage, err := energy.Estimate(testProfile, energy.Request{
		DistanceMiles:     200,
		StartingChargePct: 80,
		BatteryHealthPct:  80,
	}, neutralSamples())
	require.NoError(t, err)

	assert.Equal(t, 100, usage.BatteryUsagePct)
	assert.Equal(t, 1, usage.ChargingStops)
}

func TestEstimate_AdverseWeatherRaisesConsumption(t *testing.T) {
	cold := conditions.Sample{Impact: conditions.ComputeImpact(10, "clear")} // 0.70
	samples := []conditions.Sample{cold, cold, cold}

	usage, err := energy.Estimate(testProfile, energy.Request{
		DistanceMiles:     100,
		StartingChargePct: 100,
		BatteryHealthPct:  100,
	}, samples)
	require.NoError(t, err)

	// 0.30 / 0.70 ≈ 0.4286 kWh/mi
	assert.InDelta(t, 0.30/0.70, usage.KwhPerMile, 1e-9)
	assert.InDelta(t, 100*0.30/0.70, usage.EnergyKwh, 1e-9)
	assert.Equal(t, 71, usage.BatteryUsagePct)
	assert.Equal(t, 0, usage.ChargingStops)
}

func TestEstimate_MixedSamplesAreAveraged(t *testing.T) {
	samples := []conditions.Sample{
		{Impact: conditions.Impact{Efficiency: 1.0, ChargeRate: 1.0}},
		{Impact: conditions.Impact{Efficiency: 0.8, ChargeRate: 1.0}},
		{Impact: conditions.Impact{Efficiency: 0.6, ChargeRate: 0.8}},
	}

	usage, err := energy.Estimate(testProfile, energy.Request{
		DistanceMiles:     50,
		StartingChargePct: 100,
		BatteryHealthPct:  100,
	}, samples)
	require.NoError(t, err)

	// avg = 0.8, adjusted = 0.30/0.8 = 0.375
	assert.InDelta(t, 0.375, usage.KwhPerMile, 1e-9)
}

func TestEstimate_NoSamplesDefaultsNeutral(t *testing.T) {
	usage, err := energy.Estimate(testProfile, energy.Request{
		DistanceMiles:     10,
		StartingChargePct: 50,
		BatteryHealthPct:  100,
	}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, usage.KwhPerMile, 1e-9)
}

func TestEstimate_StopCountInvariant(t *testing.T) {
	tests := []struct {
		name      string
		distance  float64
		start     float64
		wantPct   int
		wantStops int
	}{
		{"usage within charge", 50, 80, 25, 0},
		{"usage equals charge", 100, 50, 50, 0},
		{"one stop", 200, 80, 100, 1},
		{"three stops", 200, 15, 100, 3},
		{"short trip high charge", 10, 100, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage, err := energy.Estimate(testProfile, energy.Request{
				DistanceMiles:     tt.distance,
				StartingChargePct: tt.start,
				BatteryHealthPct:  100,
			}, neutralSamples())
			require.NoError(t, err)

			assert.Equal(t, tt.wantPct, usage.BatteryUsagePct)
			assert.Equal(t, tt.wantStops, usage.ChargingStops)
			assert.GreaterOrEqual(t, usage.BatteryUsagePct, 0)
			assert.LessOrEqual(t, usage.BatteryUsagePct, 100)
			if usage.BatteryUsagePct <= int(tt.start) {
				assert.Zero(t, usage.ChargingStops)
			} else {
				assert.Positive(t, usage.ChargingStops)
			}
		})
	}
}

func TestEstimate_Validation(t *testing.T) {
	valid := energy.Request{DistanceMiles: 100, StartingChargePct: 80, BatteryHealthPct: 100}

	tests := []struct {
		name    string
		mutate  func(*energy.Request)
		wantErr error
	}{
		{"negative distance", func(r *energy.Request) { r.DistanceMiles = -1 }, energy.ErrInvalidDistance},
		{"NaN distance", func(r *energy.Request) { r.DistanceMiles = math.NaN() }, energy.ErrInvalidDistance},
		{"charge too low", func(r *energy.Request) { r.StartingChargePct = 5 }, energy.ErrInvalidCharge},
		{"charge too high", func(r *energy.Request) { r.StartingChargePct = 101 }, energy.ErrInvalidCharge},
		{"NaN charge", func(r *energy.Request) { r.StartingChargePct = math.NaN() }, energy.ErrInvalidCharge},
		{"health too low", func(r *energy.Request) { r.BatteryHealthPct = 60 }, energy.ErrInvalidHealth},
		{"health too high", func(r *energy.Request) { r.BatteryHealthPct = 110 }, energy.ErrInvalidHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := energy.Estimate(testProfile, req, neutralSamples())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVariant_Apply(t *testing.T) {
	base := energy.Usage{
		BatteryUsagePct: 100,
		ChargingStops:   1,
		EnergyKwh:       60,
		KwhPerMile:      0.30,
		CostUSD:         9.00,
	}

	t.Run("fastest is identity", func(t *testing.T) {
		got := energy.VariantFastest.Apply(base, 80)
		assert.Equal(t, base, got)
	})

	t.Run("efficient scales usage and cost", func(t *testing.T) {
		got := energy.VariantEfficient.Apply(base, 80)
		assert.Equal(t, 90, got.BatteryUsagePct)
		assert.InDelta(t, 7.65, got.CostUSD, 1e-9)
		// 90 > 80 still needs one stop
		assert.Equal(t, 1, got.ChargingStops)
	})

	t.Run("fewer stops credits one stop", func(t *testing.T) {
		got := energy.VariantFewerStops.Apply(base, 80)
		assert.Equal(t, 0, got.ChargingStops)
	})

	t.Run("stop credit floors at zero", func(t *testing.T) {
		noStops := energy.Usage{BatteryUsagePct: 30}
		got := energy.VariantFewerStops.Apply(noStops, 80)
		assert.Equal(t, 0, got.ChargingStops)
	})

	t.Run("scaled usage within charge drops stops", func(t *testing.T) {
		small := energy.Usage{BatteryUsagePct: 85, ChargingStops: 1, CostUSD: 5}
		got := energy.VariantEfficient.Apply(small, 80)
		// 85 * 0.9 = 76.5 rounds to 77, within the 80% starting charge
		assert.Equal(t, 77, got.BatteryUsagePct)
		assert.Equal(t, 0, got.ChargingStops)
	})
}
