package conditions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the condition sampler.
type ServiceConfig struct {
	// Provider is the live weather provider. Nil means synthetic-only.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a sample stays fresh (default: 15 minutes).
	CacheTTL time.Duration

	// Now returns the current time. Defaults to time.Now; tests inject a
	// fixed clock for deterministic TTL behavior.
	Now func() time.Time

	// Rand is the random source for the synthetic generator. Defaults to
	// a time-seeded source; tests inject a fixed seed.
	Rand *rand.Rand
}

// Service resolves condition samples with a coordinate-keyed cache.
// Sampling never returns an error: any provider failure falls back to the
// synthetic generator.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cacheTTL time.Duration
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSample
}

type cachedSample struct {
	sample    Sample
	expiresAt time.Time
}

// NewService creates a new condition sampler.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
		now:      now,
		rng:      rng,
		cache:    make(map[string]cachedSample),
	}
}

// Sample resolves the ambient condition for a coordinate. Cached samples
// within the TTL are returned as copies; expired entries are evicted on
// lookup and recomputed.
func (s *Service) Sample(ctx context.Context, lat, lon float64) Sample {
	key := s.cacheKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.sample
	}
	s.mu.RUnlock()

	return s.resolve(ctx, lat, lon, key)
}

// SampleGroup resolves conditions for several coordinates concurrently.
// The points are spatially independent, so the fan-out is unordered; the
// result slice preserves input order.
func (s *Service) SampleGroup(ctx context.Context, points [][2]float64) []Sample {
	samples := make([]Sample, len(points))

	var wg sync.WaitGroup
	for i, p := range points {
		wg.Add(1)
		go func(i int, lat, lon float64) {
			defer wg.Done()
			samples[i] = s.Sample(ctx, lat, lon)
		}(i, p[0], p[1])
	}
	wg.Wait()

	return samples
}

// resolve fetches or synthesizes a sample and updates the cache.
func (s *Service) resolve(ctx context.Context, lat, lon float64, key string) Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock
	if cached, ok := s.cache[key]; ok {
		if s.now().Before(cached.expiresAt) {
			return cached.sample
		}
		delete(s.cache, key)
	}

	sample := s.fetchOrSynthesize(ctx, lat, lon)

	s.cache[key] = cachedSample{
		sample:    sample,
		expiresAt: s.now().Add(s.cacheTTL),
	}

	return sample
}

func (s *Service) fetchOrSynthesize(ctx context.Context, lat, lon float64) Sample {
	if s.provider != nil {
		obs, err := s.provider.Fetch(ctx, lat, lon)
		if err == nil {
			sample := Sample{
				Lat:          lat,
				Lon:          lon,
				TempF:        obs.TempF,
				Sky:          obs.Condition,
				Humidity:     obs.Humidity,
				WindMph:      obs.WindMph,
				VisibilityMi: obs.VisibilityMi,
				Night:        obs.Night,
				SampledAt:    s.now(),
			}
			sample.Impact = ComputeImpact(sample.TempF, sample.Sky)
			return sample
		}

		s.logger.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", s.provider.Name()).
			Msg("weather provider failed, using synthetic conditions")
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return synthesize(lat, lon, s.now(), s.rng)
}

// cacheKey rounds the coordinate to two decimal places (~1.1km grid), so
// nearby sample points share cached conditions.
func (s *Service) cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f:%.2f", lat, lon)
}

// InvalidateCache clears all cached samples.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedSample)
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
}
