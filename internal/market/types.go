// Package market derives display predictions from normalized forecasts and
// scans external prediction-market listings.
package market

import "time"

// Listing is one browsable prediction market.
type Listing struct {
	Question     string  `json:"question"`
	Volume       float64 `json:"volume"`
	Liquidity    float64 `json:"liquidity"`
	OddsYes      float64 `json:"odds_yes"`
	OddsNo       float64 `json:"odds_no"`
	PolymarketID string  `json:"polymarket_id"`
	Category     string  `json:"category"`
}

// Bucket is one scanner category with its listings.
type Bucket struct {
	Count    int       `json:"count"`
	Listings []Listing `json:"markets"`
}

// ScannerData groups listings into the dashboard's browse categories.
type ScannerData struct {
	SurgingMarkets  Bucket    `json:"surging_markets"`
	HiddenGems      Bucket    `json:"hidden_gems"`
	UrgentDecisions Bucket    `json:"urgent_decisions"`
	EvenOdds        Bucket    `json:"even_odds"`
	Timestamp       time.Time `json:"timestamp"`
}

// Options a market can resolve to.
const (
	OptionHigher = "Higher"
	OptionLower  = "Lower"
)

// Prediction is the derived market-facing suggestion for a forecast day.
// It is recomputed on every request and never persisted. MarketVolume,
// PredictionCount and AvgAccuracy are synthetic placeholder numbers, not a
// market feed (see Predictor).
type Prediction struct {
	SuggestedOption      string  `json:"suggestedOption"`
	Confidence           int     `json:"confidence"`
	MarketResolutionUnit float64 `json:"marketResolutionUnit"`
	ForecastHighC        float64 `json:"forecastHighC"`
	ForecastHighF        float64 `json:"forecastHighF"`
	MarketVolume         int     `json:"marketVolume"`
	PredictionCount      int     `json:"predictionCount"`
	AvgAccuracy          int     `json:"avgAccuracy"`
}
