package stations

import (
	"context"
	"fmt"
	"math/rand"
)

// DemoProviderName identifies the built-in demo provider.
const DemoProviderName = "demo"

// demoNetworks are the charging networks the demo provider draws from.
var demoNetworks = []struct {
	name      string
	connector string
	powerKW   float64
}{
	{"Electrify America", "CCS", 150},
	{"ChargePoint", "CCS", 62.5},
	{"EVgo", "CCS", 100},
	{"Tesla Supercharger", "NACS", 250},
	{"Blink", "J1772", 19.2},
	{"Volta", "CCS", 50},
}

// DemoProvider synthesizes plausible stations around the query point when
// no station API key is configured. Generation is seeded per rounded grid
// cell, so repeated queries over the same area see the same stations.
type DemoProvider struct{}

// NewDemoProvider creates a demo station provider.
func NewDemoProvider() *DemoProvider {
	return &DemoProvider{}
}

// Name returns the provider name.
func (p *DemoProvider) Name() string {
	return DemoProviderName
}

// Query generates 8-15 stations scattered within the radius.
func (p *DemoProvider) Query(_ context.Context, lat, lon, radiusMiles float64, maxResults int) ([]RawStation, error) {
	cell := fmt.Sprintf("%.2f:%.2f", lat, lon)
	rng := rand.New(rand.NewSource(seedFor(cell)))

	count := 8 + rng.Intn(8)
	if count > maxResults {
		count = maxResults
	}

	// Radius in degrees, roughly 69 miles per degree of latitude
	radiusDeg := radiusMiles / 69.0

	out := make([]RawStation, 0, count)
	for i := 0; i < count; i++ {
		network := demoNetworks[rng.Intn(len(demoNetworks))]

		stLat := lat + (rng.Float64()*2-1)*radiusDeg
		stLon := lon + (rng.Float64()*2-1)*radiusDeg

		out = append(out, RawStation{
			ID:          fmt.Sprintf("demo-%s-%d", cell, i),
			Name:        fmt.Sprintf("%s Station %d", network.name, i+1),
			Lat:         stLat,
			Lon:         stLon,
			Address:     fmt.Sprintf("%d Demo Ave", 100+i*25),
			PowerKW:     network.powerKW,
			Connector:   network.connector,
			Network:     network.name,
			Operational: rng.Float64() < 0.9,
		})
	}

	return out, nil
}
