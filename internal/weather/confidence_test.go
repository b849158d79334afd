package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/kalshitherm/internal/weather"
)

func TestDayConfidence_Endpoints(t *testing.T) {
	assert.Equal(t, 100, weather.DayConfidence(0))
	assert.Equal(t, 95, weather.DayConfidence(1))
	assert.Equal(t, 25, weather.DayConfidence(15))
}

func TestDayConfidence_MonotonicWithFloor(t *testing.T) {
	for i := 1; i < weather.MaxForecastDays; i++ {
		prev := weather.DayConfidence(i - 1)
		cur := weather.DayConfidence(i)
		assert.GreaterOrEqual(t, prev, cur, "confidence must not increase with day index")
		assert.GreaterOrEqual(t, cur, 25)
		assert.LessOrEqual(t, cur, 100)
	}
	// The floor holds far past the forecast horizon.
	assert.Equal(t, 25, weather.DayConfidence(100))
}

func TestCelsiusFahrenheitConversion(t *testing.T) {
	assert.Equal(t, 32.0, weather.CelsiusToFahrenheit(0))
	assert.Equal(t, 212.0, weather.CelsiusToFahrenheit(100))

	// Round trip stays within one-decimal tolerance.
	for _, c := range []float64{-12.3, 0, 17.8, 28.4, 100} {
		got := weather.FahrenheitToCelsius(weather.CelsiusToFahrenheit(c))
		assert.InDelta(t, c, got, 0.1)
	}
}
