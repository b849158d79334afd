package market

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/neexbeast/kalshitherm/internal/weather"
)

// TargetDay selects which forecast day a prediction is derived for.
type TargetDay int

const (
	Today TargetDay = iota
	Tomorrow
)

// ParseTargetDay maps the query-string form to a TargetDay. An empty value
// defaults to tomorrow, matching the dashboard's default market.
func ParseTargetDay(s string) (TargetDay, error) {
	switch s {
	case "today":
		return Today, nil
	case "tomorrow", "":
		return Tomorrow, nil
	default:
		return 0, fmt.Errorf("invalid target day %q", s)
	}
}

func (d TargetDay) String() string {
	if d == Today {
		return "today"
	}
	return "tomorrow"
}

func (d TargetDay) index() int {
	if d == Today {
		return 0
	}
	return 1
}

// Predictor derives market predictions from forecast records. The randomness
// source only feeds the synthetic stats and is injectable for tests.
type Predictor struct {
	rng *rand.Rand
}

// NewPredictor constructs a Predictor with its own randomness source.
func NewPredictor(rng *rand.Rand) *Predictor {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Predictor{rng: rng}
}

// Derive computes the directional suggestion and confidence for the target
// day against day 0. The record must cover the target day; a too-short
// daily series is an error rather than a silent zero-degree prediction.
// Equal highs resolve to Lower (strict greater-than test).
func (p *Predictor) Derive(f *weather.Forecast, day TargetDay) (Prediction, error) {
	idx := day.index()
	if len(f.Daily) < idx+1 {
		return Prediction{}, fmt.Errorf("forecast for %s has %d daily entries, target day %s needs %d",
			f.Location.Name, len(f.Daily), day, idx+1)
	}

	todayHigh := f.Daily[0].TemperatureMax
	targetHigh := f.Daily[idx].TemperatureMax
	targetHighF := weather.CelsiusToFahrenheit(targetHigh)

	suggested := OptionLower
	if targetHigh > todayHigh {
		suggested = OptionHigher
	}

	// Average confidence over the first two available days.
	days := 2
	if len(f.Daily) < 2 {
		days = len(f.Daily)
	}
	var sum int
	for i := 0; i < days; i++ {
		sum += f.Daily[i].Confidence
	}
	confidence := int(math.Round(float64(sum) / float64(days)))

	volume, count, accuracy := p.syntheticStats(f.Location.Name)

	return Prediction{
		SuggestedOption:      suggested,
		Confidence:           confidence,
		MarketResolutionUnit: targetHighF,
		ForecastHighC:        targetHigh,
		ForecastHighF:        targetHighF,
		MarketVolume:         volume,
		PredictionCount:      count,
		AvgAccuracy:          accuracy,
	}, nil
}

// syntheticStats fabricates plausible-looking market numbers from a hash of
// the city name plus bounded noise. Placeholder logic only: these are not
// market data and a real integration should replace them with a live feed.
func (p *Predictor) syntheticStats(city string) (volume, count, accuracy int) {
	var hash int
	for _, r := range city {
		hash += int(r)
	}

	volume = 10000 + hash*100 + p.rng.Intn(50000)
	count = 50 + hash/10 + p.rng.Intn(200)
	accuracy = 75 + p.rng.Intn(20)
	return volume, count, accuracy
}
