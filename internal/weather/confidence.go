package weather

import "math"

// DayConfidence returns the forecast confidence for the given day index,
// where index 0 is the nearest forecast day. Confidence starts at 100 and
// drops 5 points per day with a floor of 25. Every confidence value in the
// system comes from this function so the decay stays monotonic.
func DayConfidence(dayIndex int) int {
	c := 100 - 5*dayIndex
	if c < 25 {
		return 25
	}
	return c
}

// round10 rounds to one decimal place. Applied to every rounded numeric
// output in the pipeline.
func round10(v float64) float64 {
	return math.Round(v*10) / 10
}

// CelsiusToFahrenheit converts and rounds to one decimal.
func CelsiusToFahrenheit(c float64) float64 {
	return round10(c*9/5 + 32)
}

// FahrenheitToCelsius converts and rounds to one decimal.
func FahrenheitToCelsius(f float64) float64 {
	return round10((f - 32) * 5 / 9)
}
