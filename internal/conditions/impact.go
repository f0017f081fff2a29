package conditions

import (
	"math"
	"strings"
)

// Impact summary messages, keyed by dominant cause.
const (
	summaryExtremeCold = "Extreme cold severely reduces battery range"
	summaryColdWeather = "Cold weather reduces battery range"
	summaryHighHeat    = "High heat increases cooling load and reduces range"
	summarySnow        = "Snowy conditions reduce range and traction"
)

// ComputeImpact derives the consumption impact for a temperature and sky
// condition. Multipliers compose multiplicatively; the summary names the
// most severe single cause, with snow noted alongside a temperature cause.
func ComputeImpact(tempF float64, sky string) Impact {
	efficiency := 1.0
	summary := ""

	switch {
	case tempF < 20:
		efficiency *= 0.70
		summary = summaryExtremeCold
	case tempF < 40:
		efficiency *= 0.85
		summary = summaryColdWeather
	case tempF > 95:
		efficiency *= 0.85
		summary = summaryHighHeat
	}

	lower := strings.ToLower(sky)
	if strings.Contains(lower, "rain") || strings.Contains(lower, "drizzle") {
		efficiency *= 0.95
	}
	if strings.Contains(lower, "snow") {
		efficiency *= 0.90
		if summary == "" {
			summary = summarySnow
		} else {
			summary += ", with snow"
		}
	}

	chargeRate := 1.0
	if tempF < 40 {
		chargeRate = 0.8
	}

	return Impact{
		Efficiency:   efficiency,
		RangeLossPct: int(math.Round((1 - efficiency) * 100)),
		ChargeRate:   chargeRate,
		Summary:      summary,
	}
}

// NeutralImpact returns the impact of benign conditions, used as a default
// when no sample is available.
func NeutralImpact() Impact {
	return Impact{Efficiency: 1.0, ChargeRate: 1.0}
}
