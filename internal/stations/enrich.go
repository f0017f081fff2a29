package stations

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// amenityPool is the set of synthetic amenity labels.
var amenityPool = []string{"restroom", "food", "coffee", "wifi", "shopping", "lounge"}

// enrich converts a raw station into an enriched record. The synthetic
// annotations are seeded from the station identifier, so a station gets the
// same amenities, pricing, and availability no matter which query surfaced
// it or in what order queries ran.
func enrich(raw RawStation) Station {
	rng := rand.New(rand.NewSource(seedFor(raw.ID)))

	amenityCount := 1 + rng.Intn(3)
	amenities := make([]string, 0, amenityCount)
	offset := rng.Intn(len(amenityPool))
	for i := 0; i < amenityCount; i++ {
		amenities = append(amenities, amenityPool[(offset+i*2)%len(amenityPool)])
	}

	total := 4 + rng.Intn(9)

	return Station{
		ProviderID:  raw.ID,
		Name:        raw.Name,
		Lat:         raw.Lat,
		Lon:         raw.Lon,
		Address:     raw.Address,
		PowerKW:     raw.PowerKW,
		Connector:   raw.Connector,
		Network:     raw.Network,
		Operational: raw.Operational,
		Amenities:   amenities,
		Accessible:  rng.Float64() < 0.7,
		PricePerKwh: math.Round((0.25+rng.Float64()*0.25)*100) / 100,
		Rating:      math.Round((3.0+rng.Float64()*2.0)*10) / 10,
		Available:   rng.Intn(total + 1),
		TotalStalls: total,
	}
}

// seedFor derives a deterministic seed from a station identifier.
func seedFor(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}
