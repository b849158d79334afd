package api

import (
	"context"

	"github.com/neexbeast/kalshitherm/internal/market"
	"github.com/neexbeast/kalshitherm/internal/storage"
	"github.com/neexbeast/kalshitherm/internal/weather"
)

// ForecastService defines the weather pipeline operations needed by handlers.
type ForecastService interface {
	Forecast(ctx context.Context, city string) *weather.Forecast
}

// PredictionDeriver defines the prediction derivation needed by handlers.
type PredictionDeriver interface {
	Derive(f *weather.Forecast, day market.TargetDay) (market.Prediction, error)
}

// MarketScanner defines the market listing scan needed by handlers.
type MarketScanner interface {
	Markets(ctx context.Context) market.ScannerData
}

// UserRepo defines the storage operations needed by handlers.
type UserRepo interface {
	AddToWatchlist(ctx context.Context, e storage.WatchlistEntry) error
	RemoveFromWatchlist(ctx context.Context, userID, marketID string) error
	ListWatchlist(ctx context.Context, userID string) ([]storage.WatchlistEntry, error)
	InsertPrediction(ctx context.Context, p storage.SubmittedPrediction) (storage.SubmittedPrediction, error)
	ListPredictions(ctx context.Context, userID string) ([]storage.SubmittedPrediction, error)
}

// BalanceProvider defines the wallet lookup needed by handlers.
type BalanceProvider interface {
	Balance(ctx context.Context, address string) (float64, error)
}
