package energy

import "math"

// Variant is a named presentation adjustment applied to a raw estimate to
// differentiate route alternatives that were synthesized from a single
// geometry. It is a display heuristic layered on top of the model output,
// never part of the physical formula. When the router supplies distinct
// geometry per alternative, each alternative is estimated raw and no
// variant applies.
type Variant struct {
	// Label names the alternative in trip results.
	Label string

	// UsageScale multiplies the battery-usage percentage.
	UsageScale float64

	// CostScale multiplies the estimated cost.
	CostScale float64

	// StopCredit subtracts planned stops, floored at zero.
	StopCredit int
}

// Named variants for synthesized alternatives.
var (
	// VariantFastest presents the primary route unchanged.
	VariantFastest = Variant{Label: "Fastest", UsageScale: 1.0, CostScale: 1.0}

	// VariantEfficient scales usage down ~10% and cost down ~15%.
	VariantEfficient = Variant{Label: "Energy Saver", UsageScale: 0.90, CostScale: 0.85}

	// VariantFewerStops drops one planned stop where possible.
	VariantFewerStops = Variant{Label: "Fewer Stops", UsageScale: 1.0, CostScale: 1.0, StopCredit: 1}
)

// Apply returns the usage adjusted by the variant. The stop count is
// re-derived after scaling so the usage/stops invariant holds: zero stops
// whenever adjusted usage stays within the starting charge.
func (v Variant) Apply(u Usage, startingChargePct float64) Usage {
	adjusted := u

	if v.UsageScale > 0 && v.UsageScale != 1.0 {
		adjusted.BatteryUsagePct = clampPct(int(math.Round(float64(u.BatteryUsagePct) * v.UsageScale)))
	}
	if v.CostScale > 0 && v.CostScale != 1.0 {
		adjusted.CostUSD = roundCents(u.CostUSD * v.CostScale)
	}

	adjusted.ChargingStops = chargingStops(adjusted.BatteryUsagePct, startingChargePct)
	if v.StopCredit > 0 {
		adjusted.ChargingStops -= v.StopCredit
		if adjusted.ChargingStops < 0 {
			adjusted.ChargingStops = 0
		}
	}

	return adjusted
}
