package weather

import (
	"math"
	"math/rand"
	"time"
)

// demoWeatherCodes is the small set of plausible codes used for generated
// records.
var demoWeatherCodes = []int{0, 1, 2, 3, 61, 63, 80}

// DemoForecast produces a synthetic forecast record for the given city.
// The record is structurally identical to a real normalized one (16 daily
// entries, 48 hourly entries, air quality present) so every downstream
// consumer works on it unmodified. Randomness is cosmetic only.
func DemoForecast(city string, now time.Time, rng *rand.Rand) *Forecast {
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	baseTemp := 20 + rng.Float64()*10

	daily := make([]DailyForecast, MaxForecastDays)
	for i := range daily {
		date := now.AddDate(0, 0, i)
		variance := math.Sin(float64(i)*0.5) * 5
		tempMax := baseTemp + variance + 5 + rng.Float64()*3
		tempMin := baseTemp + variance - 3 + rng.Float64()*2
		code := demoWeatherCodes[rng.Intn(len(demoWeatherCodes))]

		var precip float64
		if rng.Float64() > 0.7 {
			precip = round10(rng.Float64() * 30)
		}

		daily[i] = DailyForecast{
			Date:             date.Format("Jan 2"),
			Day:              date.Format("Mon"),
			TemperatureMax:   round10(tempMax),
			TemperatureMin:   round10(tempMin),
			TemperatureMean:  round10((tempMax + tempMin) / 2),
			PrecipitationSum: precip,
			UVIndexMax:       round10(3 + rng.Float64()*7),
			Sunrise:          "06:00",
			Sunset:           "18:00",
			WeatherCode:      code,
			WindSpeedMax:     round10(5 + rng.Float64()*15),
			Humidity:         math.Round(50 + rng.Float64()*40),
			Confidence:       DayConfidence(i),
			Condition:        LookupCode(code).Description,
		}
	}

	hourly := make([]HourlyForecast, MaxHourlyEntries)
	for i := range hourly {
		var precip float64
		if rng.Float64() > 0.8 {
			precip = rng.Float64() * 5
		}
		hourly[i] = HourlyForecast{
			Time:          now.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Temperature:   baseTemp + rng.Float64()*6 - 3,
			Humidity:      50 + rng.Float64()*40,
			Pressure:      1013 + rng.Float64()*10 - 5,
			Precipitation: precip,
			CloudCover:    rng.Float64() * 100,
			WindSpeed:     5 + rng.Float64()*15,
			WeatherCode:   demoWeatherCodes[rng.Intn(4)],
		}
	}

	pm25 := math.Round(10 + rng.Float64()*30)
	aqi, level := ScoreAQI(pm25)

	return &Forecast{
		Location: Location{
			Name:    city,
			Country: "Unknown",
		},
		Timezone:   "auto",
		LastUpdate: now,
		Hourly:     hourly,
		Daily:      daily,
		AirQuality: &AirQuality{
			PM25:           pm25,
			PM10:           math.Round(15 + rng.Float64()*40),
			CarbonMonoxide: math.Round(200 + rng.Float64()*100),
			Ozone:          math.Round(30 + rng.Float64()*20),
			AQI:            aqi,
			AQILevel:       level,
		},
		Metadata: Metadata{
			Elevation: 50,
			UTCOffset: 25200,
		},
	}
}
