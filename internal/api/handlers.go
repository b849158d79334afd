package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/kalshitherm/internal/market"
	"github.com/neexbeast/kalshitherm/internal/storage"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	forecasts ForecastService
	predictor PredictionDeriver
	scanner   MarketScanner
	repo      UserRepo
	wallet    BalanceProvider
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(forecasts ForecastService, predictor PredictionDeriver, scanner MarketScanner, repo UserRepo, wallet BalanceProvider, log *slog.Logger) *Handlers {
	return &Handlers{
		forecasts: forecasts,
		predictor: predictor,
		scanner:   scanner,
		repo:      repo,
		wallet:    wallet,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// userID resolves the caller's identity. The dashboard stores per-browser
// state; server-side the browser sends its generated id with every request.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

// GetForecast handles GET /api/v1/forecast/{city}.
// Always succeeds: upstream failures are replaced by demo data inside the
// pipeline.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	writeJSON(w, http.StatusOK, h.forecasts.Forecast(r.Context(), city))
}

// GetPrediction handles GET /api/v1/forecast/{city}/prediction?day=today|tomorrow.
func (h *Handlers) GetPrediction(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	day, err := market.ParseTargetDay(r.URL.Query().Get("day"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	forecast := h.forecasts.Forecast(r.Context(), city)

	pred, err := h.predictor.Derive(forecast, day)
	if err != nil {
		h.log.Error("prediction derivation failed", "city", city, "day", day.String(), "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "forecast does not cover the requested day"})
		return
	}

	writeJSON(w, http.StatusOK, pred)
}

// GetMarkets handles GET /api/v1/markets.
func (h *Handlers) GetMarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scanner.Markets(r.Context()))
}

// ListWatchlist handles GET /api/v1/watchlist.
func (h *Handlers) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.ListWatchlist(r.Context(), userID(r))
	if err != nil {
		h.log.Error("watchlist list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if entries == nil {
		entries = []storage.WatchlistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddToWatchlist handles POST /api/v1/watchlist/{marketID}.
func (h *Handlers) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
		Category string `json:"category"`
	}
	// Body is optional metadata; ignore decode failures on an empty body.
	_ = json.NewDecoder(r.Body).Decode(&body)

	entry := storage.WatchlistEntry{
		UserID:   userID(r),
		MarketID: chi.URLParam(r, "marketID"),
		Question: body.Question,
		Category: body.Category,
	}
	if entry.Category == "" {
		entry.Category = "general"
	}

	if err := h.repo.AddToWatchlist(r.Context(), entry); err != nil {
		h.log.Error("watchlist add failed", "market", entry.MarketID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "added", "market_id": entry.MarketID})
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/{marketID}.
func (h *Handlers) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	marketID := chi.URLParam(r, "marketID")

	if err := h.repo.RemoveFromWatchlist(r.Context(), userID(r), marketID); err != nil {
		h.log.Error("watchlist remove failed", "market", marketID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "market_id": marketID})
}

// ListPredictions handles GET /api/v1/predictions.
func (h *Handlers) ListPredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := h.repo.ListPredictions(r.Context(), userID(r))
	if err != nil {
		h.log.Error("predictions list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if preds == nil {
		preds = []storage.SubmittedPrediction{}
	}
	writeJSON(w, http.StatusOK, preds)
}

// CreatePrediction handles POST /api/v1/predictions.
func (h *Handlers) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		City                 string  `json:"city"`
		Date                 string  `json:"date"`
		PredictedTemp        float64 `json:"predicted_temp"`
		ConfidenceScore      int     `json:"confidence_score"`
		MarketResolutionUnit float64 `json:"market_resolution_unit"`
		SuggestedOption      string  `json:"suggested_option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.City == "" || body.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city and date are required"})
		return
	}

	created, err := h.repo.InsertPrediction(r.Context(), storage.SubmittedPrediction{
		UserID:               userID(r),
		City:                 body.City,
		Date:                 body.Date,
		PredictedTemp:        body.PredictedTemp,
		ConfidenceScore:      body.ConfidenceScore,
		MarketResolutionUnit: body.MarketResolutionUnit,
		SuggestedOption:      body.SuggestedOption,
	})
	if err != nil {
		h.log.Error("prediction insert failed", "city", body.City, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetWalletBalance handles GET /api/v1/wallet/{address}/balance.
func (h *Handlers) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	balance, err := h.wallet.Balance(r.Context(), address)
	if err != nil {
		h.log.Error("wallet balance lookup failed", "address", address, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "wallet balance unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"address": address, "balance": balance})
}

// Pinger is a connectivity probe for the health check. Satisfied by
// pgxpool.Pool and redis.Client through thin adapters in cmd/server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks dependency
// connectivity: 200 when healthy, 503 otherwise. A nil redis pinger means
// the service runs on the in-process cache and Redis is reported as
// disabled rather than failing.
func HealthHandlerFunc(db, redis Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "disabled"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if redis != nil {
			redisStatus = "ok"
			if err := redis.Ping(ctx); err != nil {
				log.Error("health check: redis ping failed", "err", err)
				redisStatus = "error"
				status = http.StatusServiceUnavailable
			}
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
