// Package weather implements the forecast pipeline: geocoding, Open-Meteo
// fetches, normalization into per-day/per-hour records, air-quality scoring
// and demo fallback data.
package weather

import "time"

// Location is a geocoded place. Resolved once per place-name query and
// immutable afterwards.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

// DailyForecast is one normalized forecast day.
type DailyForecast struct {
	Date             string  `json:"date"`
	Day              string  `json:"day"`
	TemperatureMax   float64 `json:"temperatureMax"`
	TemperatureMin   float64 `json:"temperatureMin"`
	TemperatureMean  float64 `json:"temperature"`
	PrecipitationSum float64 `json:"precipitationSum"`
	UVIndexMax       float64 `json:"uvIndexMax"`
	Sunrise          string  `json:"sunrise"`
	Sunset           string  `json:"sunset"`
	WeatherCode      int     `json:"weatherCode"`
	WindSpeedMax     float64 `json:"windSpeedMax"`
	Humidity         float64 `json:"humidity"`
	Confidence       int     `json:"confidence"`
	Condition        string  `json:"condition"`
}

// HourlyForecast is one normalized forecast hour.
type HourlyForecast struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Precipitation float64 `json:"precipitation"`
	CloudCover    float64 `json:"cloudCover"`
	WindSpeed     float64 `json:"windSpeed"`
	WeatherCode   int     `json:"weatherCode"`
}

// AirQuality holds pollutant concentrations plus the derived AQI score.
// A nil *AirQuality means the upstream source had no data; callers must treat
// absence as unknown, never as zero pollution.
type AirQuality struct {
	PM25           float64 `json:"pm25"`
	PM10           float64 `json:"pm10"`
	CarbonMonoxide float64 `json:"carbonMonoxide"`
	Ozone          float64 `json:"ozone"`
	AQI            int     `json:"aqi"`
	AQILevel       string  `json:"aqiLevel"`
}

// Metadata carries auxiliary fields from the forecast response.
type Metadata struct {
	Elevation float64 `json:"elevation"`
	UTCOffset int     `json:"utcOffset"`
}

// Forecast is the aggregate normalized weather record for one location.
// Daily holds at most 16 entries ordered ascending from the request day
// (index 0 = today); Hourly holds at most 48 entries ordered by timestamp.
// Records are never mutated after creation; a refresh produces a new one.
type Forecast struct {
	Location   Location         `json:"location"`
	Timezone   string           `json:"timezone"`
	LastUpdate time.Time        `json:"lastUpdate"`
	Hourly     []HourlyForecast `json:"hourly"`
	Daily      []DailyForecast  `json:"daily"`
	AirQuality *AirQuality      `json:"airQuality,omitempty"`
	Metadata   Metadata         `json:"metadata"`
}

const (
	// MaxForecastDays is the upstream API ceiling for daily entries.
	MaxForecastDays = 16
	// MaxHourlyEntries caps the retained hourly records.
	MaxHourlyEntries = 48
)
