package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const httpTimeout = 10 * time.Second

const (
	geocodeDefaultURL    = "https://geocoding-api.open-meteo.com/v1/search"
	forecastDefaultURL   = "https://api.open-meteo.com/v1/forecast"
	airQualityDefaultURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

var hourlyFields = strings.Join([]string{
	"temperature_2m",
	"relative_humidity_2m",
	"pressure_msl",
	"precipitation",
	"cloud_cover",
	"wind_speed_10m",
	"weather_code",
}, ",")

var dailyFields = strings.Join([]string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"weather_code",
	"wind_speed_10m_max",
	"uv_index_max",
	"sunrise",
	"sunset",
}, ",")

// ErrNotFound is returned by Geocode when the place name has no match.
var ErrNotFound = errors.New("location not found")

// Client talks to the Open-Meteo geocoding, forecast and air-quality
// endpoints. Outbound calls share a rate limiter and a circuit breaker so a
// flapping upstream trips fast instead of piling on retries.
type Client struct {
	geocodeURL    string
	forecastURL   string
	airQualityURL string
	client        *http.Client
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
}

// NewClient constructs a Client against the production Open-Meteo endpoints.
func NewClient() *Client {
	return NewClientWithURLs(geocodeDefaultURL, forecastDefaultURL, airQualityDefaultURL)
}

// NewClientWithURLs constructs a Client pointing at custom endpoints (used in tests).
func NewClientWithURLs(geocodeURL, forecastURL, airQualityURL string) *Client {
	return &Client{
		geocodeURL:    geocodeURL,
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		client:        &http.Client{Timeout: httpTimeout},
		limiter:       rate.NewLimiter(rate.Limit(10), 20),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// doGet performs a rate-limited GET through the circuit breaker and decodes
// the JSON response into dst.
func (c *Client) doGet(ctx context.Context, rawURL string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", rawURL, err)
	}

	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return nil, fmt.Errorf("decoding response from %s: %w", rawURL, err)
		}
		return nil, nil
	})
	return err
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Geocode resolves a free-text place name to coordinates. Returns
// ErrNotFound when the upstream has no match; a miss is a handled outcome,
// not a transport failure.
func (c *Client) Geocode(ctx context.Context, city string) (Location, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	var raw geocodeResponse
	if err := c.doGet(ctx, c.geocodeURL+"?"+q.Encode(), &raw); err != nil {
		return Location{}, fmt.Errorf("geocoding %s: %w", city, err)
	}

	if len(raw.Results) == 0 {
		return Location{}, fmt.Errorf("geocoding %s: %w", city, ErrNotFound)
	}

	r := raw.Results[0]
	return Location{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Name:      r.Name,
		Country:   r.Country,
	}, nil
}

// FetchForecast retrieves the raw 16-day forecast for the given coordinates.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("hourly", hourlyFields)
	q.Set("daily", dailyFields)
	q.Set("forecast_days", strconv.Itoa(MaxForecastDays))
	q.Set("timezone", "auto")
	q.Set("temperature_unit", "celsius")

	var raw ForecastResponse
	if err := c.doGet(ctx, c.forecastURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("forecast fetch at %s,%s: %w", formatCoord(lat), formatCoord(lon), err)
	}
	return &raw, nil
}

type airQualityResponse struct {
	Hourly struct {
		PM25           []float64 `json:"pm2_5"`
		PM10           []float64 `json:"pm10"`
		CarbonMonoxide []float64 `json:"carbon_monoxide"`
		Ozone          []float64 `json:"ozone"`
	} `json:"hourly"`
}

// FetchAirQuality retrieves current pollutant levels and derives the AQI.
// Returns nil, nil when the upstream has no data for the coordinates; the
// caller must treat absence as unknown.
func (c *Client) FetchAirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("hourly", "pm2_5,pm10,carbon_monoxide,ozone")
	q.Set("timezone", "auto")

	var raw airQualityResponse
	if err := c.doGet(ctx, c.airQualityURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("air quality fetch at %s,%s: %w", formatCoord(lat), formatCoord(lon), err)
	}

	if len(raw.Hourly.PM25) == 0 {
		return nil, nil
	}

	pm25 := raw.Hourly.PM25[0]
	aqi, level := ScoreAQI(pm25)

	return &AirQuality{
		PM25:           pm25,
		PM10:           first(raw.Hourly.PM10),
		CarbonMonoxide: first(raw.Hourly.CarbonMonoxide),
		Ozone:          first(raw.Hourly.Ozone),
		AQI:            aqi,
		AQILevel:       level,
	}, nil
}

func first(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return vs[0]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
