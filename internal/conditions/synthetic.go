package conditions

import (
	"math"
	"math/rand"
	"time"
)

// synthesize generates a plausible condition sample from latitude, season,
// and a seeded random source. The baseline follows a latitude curve
// (~90°F at the equator falling toward the poles) with a deterministic
// longitude offset for variety, a hemisphere-aware seasonal shift, and
// bounded jitter.
func synthesize(lat, lon float64, now time.Time, rng *rand.Rand) Sample {
	temp := 90 - math.Abs(lat)*0.9
	temp += math.Sin(lon*math.Pi/180) * 5
	temp += seasonalShift(lat, now.Month())
	temp += rng.Float64()*10 - 5

	sky := pickSky(temp, rng)

	humidity := 40 + rng.Float64()*40
	wind := 3 + rng.Float64()*12

	visibility := 10.0
	switch sky {
	case SkySnow:
		visibility = 2
	case SkyRain:
		visibility = 6
	}

	hour := now.Hour()

	sample := Sample{
		Lat:          lat,
		Lon:          lon,
		TempF:        math.Round(temp),
		Sky:          sky,
		Humidity:     math.Round(humidity),
		WindMph:      math.Round(wind),
		VisibilityMi: visibility,
		Night:        hour < 6 || hour >= 20,
		Synthetic:    true,
		SampledAt:    now,
	}
	sample.Impact = ComputeImpact(sample.TempF, sample.Sky)
	return sample
}

// seasonalShift returns the ±20°F winter/summer adjustment, flipped for
// the southern hemisphere. Shoulder months are unadjusted.
func seasonalShift(lat float64, month time.Month) float64 {
	northern := lat >= 0

	switch month {
	case time.December, time.January, time.February:
		if northern {
			return -20
		}
		return 20
	case time.June, time.July, time.August:
		if northern {
			return 20
		}
		return -20
	default:
		return 0
	}
}

// pickSky chooses a sky condition, biased toward snow below freezing.
func pickSky(tempF float64, rng *rand.Rand) string {
	r := rng.Float64()

	if tempF < 32 {
		switch {
		case r < 0.6:
			return SkySnow
		case r < 0.8:
			return SkyClouds
		default:
			return SkyClear
		}
	}

	switch {
	case r < 0.2:
		return SkyRain
	case r < 0.5:
		return SkyClouds
	default:
		return SkyClear
	}
}
