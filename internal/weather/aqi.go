package weather

import "math"

// aqiBand is one row of the US EPA PM2.5 breakpoint table.
type aqiBand struct {
	pmLow, pmHigh   float64
	aqiLow, aqiHigh float64
	level           string
}

var aqiBands = []aqiBand{
	{0, 12, 0, 50, "Good"},
	{12, 35.4, 50, 100, "Moderate"},
	{35.4, 55.4, 100, 150, "Unhealthy for Sensitive"},
	{55.4, 150.4, 150, 200, "Unhealthy"},
	{150.4, 250.4, 200, 300, "Very Unhealthy"},
}

// ScoreAQI converts a PM2.5 concentration (µg/m³) into a 0-500 AQI value and
// a qualitative level via linear interpolation over the EPA breakpoint table.
// Pure function; precondition pm25 >= 0. Concentrations above the last band
// map to a fixed 500 "Hazardous".
func ScoreAQI(pm25 float64) (int, string) {
	for _, b := range aqiBands {
		if pm25 <= b.pmHigh {
			aqi := (pm25-b.pmLow)/(b.pmHigh-b.pmLow)*(b.aqiHigh-b.aqiLow) + b.aqiLow
			return int(math.Round(aqi)), b.level
		}
	}
	return 500, "Hazardous"
}
