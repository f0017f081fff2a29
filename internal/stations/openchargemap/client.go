// Package openchargemap provides a station provider backed by the Open
// Charge Map POI API.
package openchargemap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/stations"
)

const (
	// ProviderName identifies this station provider.
	ProviderName = "openchargemap"

	// DefaultBaseURL is the Open Charge Map API base URL.
	DefaultBaseURL = "https://api.openchargemap.io/v3"
)

// ClientConfig holds configuration for the Open Charge Map client.
type ClientConfig struct {
	// APIKey is the OCM API key (required).
	APIKey string

	// BaseURL overrides the API base URL, used in tests.
	BaseURL string

	// HTTPClient is the HTTP client to use. Nil uses a resilient client
	// with defaults.
	HTTPClient resilience.HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open Charge Map API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient resilience.HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Open Charge Map client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Query returns stations within radiusMiles of the point.
func (c *Client) Query(ctx context.Context, lat, lon, radiusMiles float64, maxResults int) ([]stations.RawStation, error) {
	url := fmt.Sprintf(
		"%s/poi?output=json&latitude=%.6f&longitude=%.6f&distance=%.1f&distanceunit=Miles&maxresults=%d&compact=true&verbose=false",
		c.baseURL, lat, lon, radiusMiles, maxResults,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var pois []poi
	if err := json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]stations.RawStation, 0, len(pois))
	for _, p := range pois {
		out = append(out, c.toRawStation(p))
	}
	return out, nil
}

// toRawStation maps an OCM POI to the domain model. A missing status block
// is treated as operational, matching OCM's convention for unverified
// entries.
func (c *Client) toRawStation(p poi) stations.RawStation {
	raw := stations.RawStation{
		ID:          fmt.Sprintf("ocm-%d", p.ID),
		Name:        p.AddressInfo.Title,
		Lat:         p.AddressInfo.Latitude,
		Lon:         p.AddressInfo.Longitude,
		Address:     p.AddressInfo.AddressLine1,
		Operational: true,
	}

	if p.AddressInfo.Town != "" {
		if raw.Address != "" {
			raw.Address += ", "
		}
		raw.Address += p.AddressInfo.Town
	}

	if p.OperatorInfo != nil {
		raw.Network = p.OperatorInfo.Title
	}
	if p.StatusType != nil && p.StatusType.IsOperational != nil {
		raw.Operational = *p.StatusType.IsOperational
	}

	// Report the most powerful connection
	for _, conn := range p.Connections {
		if conn.PowerKW > raw.PowerKW {
			raw.PowerKW = conn.PowerKW
			if conn.ConnectionType != nil {
				raw.Connector = conn.ConnectionType.Title
			}
		}
	}

	return raw
}

// Open Charge Map API response structures.

type poi struct {
	ID          int `json:"ID"`
	AddressInfo struct {
		Title        string  `json:"Title"`
		AddressLine1 string  `json:"AddressLine1"`
		Town         string  `json:"Town"`
		Latitude     float64 `json:"Latitude"`
		Longitude    float64 `json:"Longitude"`
	} `json:"AddressInfo"`
	OperatorInfo *struct {
		Title string `json:"Title"`
	} `json:"OperatorInfo"`
	StatusType *struct {
		IsOperational *bool `json:"IsOperational"`
	} `json:"StatusType"`
	Connections []struct {
		PowerKW        float64 `json:"PowerKW"`
		ConnectionType *struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
	} `json:"Connections"`
}
