package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// The health endpoint is unauthenticated; everything else requires bearer
// auth. Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db, redisClient Pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))

		r.Get("/api/v1/forecast/{city}", handlers.GetForecast)
		r.Get("/api/v1/forecast/{city}/prediction", handlers.GetPrediction)

		r.Get("/api/v1/markets", handlers.GetMarkets)

		r.Get("/api/v1/watchlist", handlers.ListWatchlist)
		r.Post("/api/v1/watchlist/{marketID}", handlers.AddToWatchlist)
		r.Delete("/api/v1/watchlist/{marketID}", handlers.RemoveFromWatchlist)

		r.Get("/api/v1/predictions", handlers.ListPredictions)
		r.Post("/api/v1/predictions", handlers.CreatePrediction)

		r.Get("/api/v1/wallet/{address}/balance", handlers.GetWalletBalance)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
