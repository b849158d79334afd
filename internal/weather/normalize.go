package weather

import (
	"fmt"
	"time"
)

// ForecastResponse is the raw Open-Meteo forecast payload. Fields are
// parallel arrays: every hourly array is index-aligned with Hourly.Time and
// every daily array with Daily.Time.
type ForecastResponse struct {
	Timezone         string  `json:"timezone"`
	Elevation        float64 `json:"elevation"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Hourly           struct {
		Time             []string  `json:"time"`
		Temperature2m    []float64 `json:"temperature_2m"`
		RelativeHumidity []float64 `json:"relative_humidity_2m"`
		PressureMSL      []float64 `json:"pressure_msl"`
		Precipitation    []float64 `json:"precipitation"`
		CloudCover       []float64 `json:"cloud_cover"`
		WindSpeed10m     []float64 `json:"wind_speed_10m"`
		WeatherCode      []int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time             []string  `json:"time"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WeatherCode      []int     `json:"weather_code"`
		WindSpeed10mMax  []float64 `json:"wind_speed_10m_max"`
		UVIndexMax       []float64 `json:"uv_index_max"`
		Sunrise          []string  `json:"sunrise"`
		Sunset           []string  `json:"sunset"`
	} `json:"daily"`
}

// MalformedResponseError reports a parallel-array length mismatch in an
// upstream response.
type MalformedResponseError struct {
	Field string
	Want  int
	Got   int
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed forecast response: field %s has %d entries, want %d", e.Field, e.Got, e.Want)
}

// validate checks that the parallel arrays are index-aligned. Misaligned
// arrays are a contract violation and must never be silently truncated.
// UV index, sunrise and sunset may be absent entirely (some models omit
// them) but when present must align too.
func (r *ForecastResponse) validate() error {
	h := &r.Hourly
	hn := len(h.Time)
	for _, f := range []struct {
		name string
		n    int
	}{
		{"hourly.temperature_2m", len(h.Temperature2m)},
		{"hourly.relative_humidity_2m", len(h.RelativeHumidity)},
		{"hourly.pressure_msl", len(h.PressureMSL)},
		{"hourly.precipitation", len(h.Precipitation)},
		{"hourly.cloud_cover", len(h.CloudCover)},
		{"hourly.wind_speed_10m", len(h.WindSpeed10m)},
		{"hourly.weather_code", len(h.WeatherCode)},
	} {
		if f.n != hn {
			return &MalformedResponseError{Field: f.name, Want: hn, Got: f.n}
		}
	}

	d := &r.Daily
	dn := len(d.Time)
	if dn == 0 {
		return &MalformedResponseError{Field: "daily.time", Want: 1, Got: 0}
	}
	for _, f := range []struct {
		name     string
		n        int
		optional bool
	}{
		{"daily.temperature_2m_max", len(d.Temperature2mMax), false},
		{"daily.temperature_2m_min", len(d.Temperature2mMin), false},
		{"daily.precipitation_sum", len(d.PrecipitationSum), false},
		{"daily.weather_code", len(d.WeatherCode), false},
		{"daily.wind_speed_10m_max", len(d.WindSpeed10mMax), false},
		{"daily.uv_index_max", len(d.UVIndexMax), true},
		{"daily.sunrise", len(d.Sunrise), true},
		{"daily.sunset", len(d.Sunset), true},
	} {
		if f.optional && f.n == 0 {
			continue
		}
		if f.n != dn {
			return &MalformedResponseError{Field: f.name, Want: dn, Got: f.n}
		}
	}
	return nil
}

// Normalize converts a raw forecast response into a Forecast record for the
// given location. Hourly data is capped at 48 entries, daily at 16. Air
// quality is attached separately by the caller.
func Normalize(raw *ForecastResponse, loc Location, now time.Time) (*Forecast, error) {
	if err := raw.validate(); err != nil {
		return nil, err
	}

	hourlyCount := len(raw.Hourly.Time)
	if hourlyCount > MaxHourlyEntries {
		hourlyCount = MaxHourlyEntries
	}
	hourly := make([]HourlyForecast, hourlyCount)
	for i := 0; i < hourlyCount; i++ {
		hourly[i] = HourlyForecast{
			Time:          raw.Hourly.Time[i],
			Temperature:   raw.Hourly.Temperature2m[i],
			Humidity:      raw.Hourly.RelativeHumidity[i],
			Pressure:      raw.Hourly.PressureMSL[i],
			Precipitation: raw.Hourly.Precipitation[i],
			CloudCover:    raw.Hourly.CloudCover[i],
			WindSpeed:     raw.Hourly.WindSpeed10m[i],
			WeatherCode:   raw.Hourly.WeatherCode[i],
		}
	}

	dailyCount := len(raw.Daily.Time)
	if dailyCount > MaxForecastDays {
		dailyCount = MaxForecastDays
	}
	daily := make([]DailyForecast, dailyCount)
	for i := 0; i < dailyCount; i++ {
		daily[i] = normalizeDay(raw, i)
	}

	return &Forecast{
		Location:   loc,
		Timezone:   raw.Timezone,
		LastUpdate: now,
		Hourly:     hourly,
		Daily:      daily,
		Metadata: Metadata{
			Elevation: raw.Elevation,
			UTCOffset: raw.UTCOffsetSeconds,
		},
	}, nil
}

func normalizeDay(raw *ForecastResponse, i int) DailyForecast {
	d := &raw.Daily

	dateLabel := d.Time[i]
	dayLabel := ""
	if t, err := time.Parse("2006-01-02", d.Time[i]); err == nil {
		dateLabel = t.Format("Jan 2")
		dayLabel = t.Format("Mon")
	}

	tempMax := d.Temperature2mMax[i]
	tempMin := d.Temperature2mMin[i]
	code := d.WeatherCode[i]
	info := LookupCode(code)

	// Daytime humidity sampled from the hourly series; 65 when the hourly
	// window does not reach this day.
	humidity := 65.0
	if idx := i * 24; idx < len(raw.Hourly.RelativeHumidity) {
		humidity = raw.Hourly.RelativeHumidity[idx]
	}

	var uv float64
	if i < len(d.UVIndexMax) {
		uv = d.UVIndexMax[i]
	}
	var sunrise, sunset string
	if i < len(d.Sunrise) {
		sunrise = d.Sunrise[i]
	}
	if i < len(d.Sunset) {
		sunset = d.Sunset[i]
	}

	return DailyForecast{
		Date:             dateLabel,
		Day:              dayLabel,
		TemperatureMax:   round10(tempMax),
		TemperatureMin:   round10(tempMin),
		TemperatureMean:  round10((tempMax + tempMin) / 2),
		PrecipitationSum: round10(d.PrecipitationSum[i]),
		UVIndexMax:       uv,
		Sunrise:          sunrise,
		Sunset:           sunset,
		WeatherCode:      code,
		WindSpeedMax:     round10(d.WindSpeed10mMax[i]),
		Humidity:         humidity,
		Confidence:       DayConfidence(i),
		Condition:        info.Description,
	}
}
