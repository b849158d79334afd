package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/kalshitherm/internal/cache"
)

// Cache is the store the pipeline uses to deduplicate upstream calls.
// Satisfied by cache.Memory[*Forecast] and cache.Redis[*Forecast].
type Cache interface {
	Get(ctx context.Context, key string) (*Forecast, bool)
	Put(ctx context.Context, key string, data *Forecast)
}

// forecastClient is the interface satisfied by Client.
type forecastClient interface {
	Geocode(ctx context.Context, city string) (Location, error)
	FetchForecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error)
	FetchAirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error)
}

// Service runs the fetch-and-normalize pipeline: geocode, cache lookup,
// parallel forecast + air-quality fetch, normalization.
type Service struct {
	client forecastClient
	cache  Cache
	log    *slog.Logger
	now    func() time.Time
	rng    *rand.Rand
}

// NewService constructs a Service against the production Open-Meteo client.
func NewService(client *Client, store Cache, log *slog.Logger) *Service {
	return NewServiceWithDeps(client, store, log, time.Now, nil)
}

// NewServiceWithDeps constructs a Service with an injectable client, clock
// and randomness source (used in tests).
func NewServiceWithDeps(client forecastClient, store Cache, log *slog.Logger, now func() time.Time, rng *rand.Rand) *Service {
	return &Service{client: client, cache: store, log: log, now: now, rng: rng}
}

// Forecast returns the normalized forecast for a place name. It never fails:
// every upstream error is absorbed here and replaced by a structurally
// complete demo record, so callers always receive a usable result. Displayed
// numbers may therefore be synthetic; that tradeoff belongs to a display
// dashboard and must not be copied into anything that settles real markets.
func (s *Service) Forecast(ctx context.Context, city string) *Forecast {
	f, err := s.fetch(ctx, city)
	if err != nil {
		s.log.Warn("forecast pipeline failed, serving demo data", "city", city, "err", err)
		return DemoForecast(city, s.now(), s.rng)
	}
	return f
}

// fetch is the fallible inner pipeline. All error handling stays in
// Forecast so the swallowing boundary is a single visible adapter.
func (s *Service) fetch(ctx context.Context, city string) (*Forecast, error) {
	loc, err := s.client.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	key := cache.Key(loc.Latitude, loc.Longitude, "forecast")
	if cached, ok := s.cache.Get(ctx, key); ok {
		s.log.Debug("forecast cache hit", "city", city, "key", key)
		return cached, nil
	}

	// Forecast and air quality are fetched concurrently. The forecast is
	// required; air quality is optional enrichment and its failure only
	// degrades the record.
	var raw *ForecastResponse
	var aq *AirQuality

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.client.FetchForecast(gCtx, loc.Latitude, loc.Longitude)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})

	g.Go(func() error {
		a, err := s.client.FetchAirQuality(gCtx, loc.Latitude, loc.Longitude)
		if err != nil {
			s.log.Warn("air quality fetch failed", "city", city, "err", err)
			return nil
		}
		aq = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching forecast for %s: %w", city, err)
	}

	f, err := Normalize(raw, loc, s.now())
	if err != nil {
		return nil, err
	}
	f.AirQuality = aq

	s.cache.Put(ctx, key, f)
	return f, nil
}

// ClearCache drops cached forecasts when the store supports it.
func (s *Service) ClearCache(ctx context.Context) {
	if c, ok := s.cache.(interface{ Clear(context.Context) }); ok {
		c.Clear(ctx)
	}
}
