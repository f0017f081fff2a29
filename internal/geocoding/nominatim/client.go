// Package nominatim provides a geocoding resolver backed by the OSM
// Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/voltroute/voltroute/internal/geocoding"
	"github.com/voltroute/voltroute/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// userAgent is required by the Nominatim usage policy.
	userAgent = "voltroute/1.0"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the API base URL, used in tests.
	BaseURL string

	// HTTPClient is the HTTP client to use. Nil uses a resilient client
	// with defaults.
	HTTPClient resilience.HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search client. Requests are throttled to one per
// second per the public API usage policy.
type Client struct {
	baseURL    string
	httpClient resilience.HTTPDoer
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
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
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Resolve geocodes address text to a location.
func (c *Client) Resolve(ctx context.Context, addressText string) (geocoding.Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return geocoding.Location{}, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(addressText))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return geocoding.Location{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geocoding.Location{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geocoding.Location{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geocoding.Location{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return geocoding.Location{}, fmt.Errorf("%w: %q", geocoding.ErrNotFound, addressText)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geocoding.Location{}, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geocoding.Location{}, fmt.Errorf("parsing longitude: %w", err)
	}

	return geocoding.Location{
		Lat:         lat,
		Lon:         lon,
		DisplayName: results[0].DisplayName,
	}, nil
}

// searchResult is a Nominatim search hit. Coordinates arrive as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
