package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/kalshitherm/internal/api"
	"github.com/neexbeast/kalshitherm/internal/market"
	"github.com/neexbeast/kalshitherm/internal/storage"
	"github.com/neexbeast/kalshitherm/internal/weather"
)

// ---- mock implementations ----

type mockForecasts struct {
	forecastFn func(ctx context.Context, city string) *weather.Forecast
}

func (m *mockForecasts) Forecast(ctx context.Context, city string) *weather.Forecast {
	return m.forecastFn(ctx, city)
}

type mockPredictor struct {
	deriveFn func(f *weather.Forecast, day market.TargetDay) (market.Prediction, error)
}

func (m *mockPredictor) Derive(f *weather.Forecast, day market.TargetDay) (market.Prediction, error) {
	return m.deriveFn(f, day)
}

type mockScanner struct {
	marketsFn func(ctx context.Context) market.ScannerData
}

func (m *mockScanner) Markets(ctx context.Context) market.ScannerData {
	return m.marketsFn(ctx)
}

type mockRepo struct {
	addFn        func(ctx context.Context, e storage.WatchlistEntry) error
	removeFn     func(ctx context.Context, userID, marketID string) error
	listFn       func(ctx context.Context, userID string) ([]storage.WatchlistEntry, error)
	insertPredFn func(ctx context.Context, p storage.SubmittedPrediction) (storage.SubmittedPrediction, error)
	listPredsFn  func(ctx context.Context, userID string) ([]storage.SubmittedPrediction, error)
}

func (m *mockRepo) AddToWatchlist(ctx context.Context, e storage.WatchlistEntry) error {
	return m.addFn(ctx, e)
}
func (m *mockRepo) RemoveFromWatchlist(ctx context.Context, userID, marketID string) error {
	return m.removeFn(ctx, userID, marketID)
}
func (m *mockRepo) ListWatchlist(ctx context.Context, userID string) ([]storage.WatchlistEntry, error) {
	return m.listFn(ctx, userID)
}
func (m *mockRepo) InsertPrediction(ctx context.Context, p storage.SubmittedPrediction) (storage.SubmittedPrediction, error) {
	return m.insertPredFn(ctx, p)
}
func (m *mockRepo) ListPredictions(ctx context.Context, userID string) ([]storage.SubmittedPrediction, error) {
	return m.listPredsFn(ctx, userID)
}

type mockWallet struct {
	balanceFn func(ctx context.Context, address string) (float64, error)
}

func (m *mockWallet) Balance(ctx context.Context, address string) (float64, error) {
	return m.balanceFn(ctx, address)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func sampleForecast(city string) *weather.Forecast {
	return weather.DemoForecast(city, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), rand.New(rand.NewSource(1)))
}

func samplePrediction() market.Prediction {
	return market.Prediction{
		SuggestedOption: market.OptionHigher,
		Confidence:      98,
		ForecastHighC:   28.0,
		ForecastHighF:   82.4,
	}
}

const testToken = "secret-token"

type mocks struct {
	forecasts *mockForecasts
	predictor *mockPredictor
	scanner   *mockScanner
	repo      *mockRepo
	wallet    *mockWallet
}

func defaultMocks() *mocks {
	return &mocks{
		forecasts: &mockForecasts{
			forecastFn: func(_ context.Context, city string) *weather.Forecast { return sampleForecast(city) },
		},
		predictor: &mockPredictor{
			deriveFn: func(_ *weather.Forecast, _ market.TargetDay) (market.Prediction, error) {
				return samplePrediction(), nil
			},
		},
		scanner: &mockScanner{
			marketsFn: func(_ context.Context) market.ScannerData {
				return market.DemoMarkets(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
			},
		},
		repo: &mockRepo{
			addFn:    func(_ context.Context, _ storage.WatchlistEntry) error { return nil },
			removeFn: func(_ context.Context, _, _ string) error { return nil },
			listFn:   func(_ context.Context, _ string) ([]storage.WatchlistEntry, error) { return nil, nil },
			insertPredFn: func(_ context.Context, p storage.SubmittedPrediction) (storage.SubmittedPrediction, error) {
				p.ID = 1
				return p, nil
			},
			listPredsFn: func(_ context.Context, _ string) ([]storage.SubmittedPrediction, error) { return nil, nil },
		},
		wallet: &mockWallet{
			balanceFn: func(_ context.Context, _ string) (float64, error) { return 1.25, nil },
		},
	}
}

func buildRouter(m *mocks, db, redis api.Pinger) http.Handler {
	if m == nil {
		m = defaultMocks()
	}
	if db == nil {
		db = &mockPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(m.forecasts, m.predictor, m.scanner, m.repo, m.wallet, log)
	return api.NewRouter(handlers, testToken, db, redis, log)
}

func doRequest(router http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- GET /api/v1/forecast/{city} ----

func TestGetForecast_Success(t *testing.T) {
	m := defaultMocks()
	var gotCity string
	m.forecasts.forecastFn = func(_ context.Context, city string) *weather.Forecast {
		gotCity = city
		return sampleForecast(city)
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/forecast/Tokyo", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tokyo", gotCity)

	var got weather.Forecast
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "Tokyo", got.Location.Name)
	assert.Len(t, got.Daily, weather.MaxForecastDays)
}

// ---- GET /api/v1/forecast/{city}/prediction ----

func TestGetPrediction_Success(t *testing.T) {
	m := defaultMocks()
	var gotDay market.TargetDay
	m.predictor.deriveFn = func(_ *weather.Forecast, day market.TargetDay) (market.Prediction, error) {
		gotDay = day
		return samplePrediction(), nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/forecast/Tokyo/prediction?day=today", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, market.Today, gotDay)

	var got market.Prediction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, market.OptionHigher, got.SuggestedOption)
	assert.Equal(t, 98, got.Confidence)
}

func TestGetPrediction_DefaultsToTomorrow(t *testing.T) {
	m := defaultMocks()
	var gotDay market.TargetDay
	m.predictor.deriveFn = func(_ *weather.Forecast, day market.TargetDay) (market.Prediction, error) {
		gotDay = day
		return samplePrediction(), nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/forecast/Tokyo/prediction", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, market.Tomorrow, gotDay)
}

func TestGetPrediction_InvalidDay(t *testing.T) {
	w := doRequest(buildRouter(nil, nil, nil), http.MethodGet, "/api/v1/forecast/Tokyo/prediction?day=friday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPrediction_DeriveError(t *testing.T) {
	m := defaultMocks()
	m.predictor.deriveFn = func(_ *weather.Forecast, _ market.TargetDay) (market.Prediction, error) {
		return market.Prediction{}, fmt.Errorf("forecast too short")
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/forecast/Tokyo/prediction", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ---- GET /api/v1/markets ----

func TestGetMarkets_Success(t *testing.T) {
	w := doRequest(buildRouter(nil, nil, nil), http.MethodGet, "/api/v1/markets", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got market.ScannerData
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 6, got.SurgingMarkets.Count)
}

// ---- watchlist ----

func TestListWatchlist_Success(t *testing.T) {
	m := defaultMocks()
	var gotUser string
	m.repo.listFn = func(_ context.Context, userID string) ([]storage.WatchlistEntry, error) {
		gotUser = userID
		return []storage.WatchlistEntry{{UserID: userID, MarketID: "btc-100k-2025", Question: "BTC?"}}, nil
	}

	router := buildRouter(m, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-User-ID", "user-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", gotUser)

	var got []storage.WatchlistEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "btc-100k-2025", got[0].MarketID)
}

func TestListWatchlist_EmptyIsJSONArray(t *testing.T) {
	w := doRequest(buildRouter(nil, nil, nil), http.MethodGet, "/api/v1/watchlist", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestAddToWatchlist_Success(t *testing.T) {
	m := defaultMocks()
	var gotEntry storage.WatchlistEntry
	m.repo.addFn = func(_ context.Context, e storage.WatchlistEntry) error {
		gotEntry = e
		return nil
	}

	body := strings.NewReader(`{"question":"Will BTC hit 100k?","category":"crypto"}`)
	w := doRequest(buildRouter(m, nil, nil), http.MethodPost, "/api/v1/watchlist/btc-100k-2025", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "anonymous", gotEntry.UserID)
	assert.Equal(t, "btc-100k-2025", gotEntry.MarketID)
	assert.Equal(t, "Will BTC hit 100k?", gotEntry.Question)
	assert.Equal(t, "crypto", gotEntry.Category)
}

func TestAddToWatchlist_EmptyBodyDefaults(t *testing.T) {
	m := defaultMocks()
	var gotEntry storage.WatchlistEntry
	m.repo.addFn = func(_ context.Context, e storage.WatchlistEntry) error {
		gotEntry = e
		return nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodPost, "/api/v1/watchlist/eth-5k-2025", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "general", gotEntry.Category)
}

func TestAddToWatchlist_DBError(t *testing.T) {
	m := defaultMocks()
	m.repo.addFn = func(_ context.Context, _ storage.WatchlistEntry) error {
		return fmt.Errorf("db down")
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodPost, "/api/v1/watchlist/btc-100k-2025", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRemoveFromWatchlist_Success(t *testing.T) {
	m := defaultMocks()
	var gotMarket string
	m.repo.removeFn = func(_ context.Context, _, marketID string) error {
		gotMarket = marketID
		return nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodDelete, "/api/v1/watchlist/btc-100k-2025", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "btc-100k-2025", gotMarket)
}

// ---- predictions ----

func TestCreatePrediction_Success(t *testing.T) {
	m := defaultMocks()
	var gotPred storage.SubmittedPrediction
	m.repo.insertPredFn = func(_ context.Context, p storage.SubmittedPrediction) (storage.SubmittedPrediction, error) {
		gotPred = p
		p.ID = 7
		return p, nil
	}

	body := strings.NewReader(`{
		"city": "Tokyo",
		"date": "2026-09-01",
		"predicted_temp": 28.5,
		"confidence_score": 95,
		"market_resolution_unit": 83.3,
		"suggested_option": "Higher"
	}`)
	w := doRequest(buildRouter(m, nil, nil), http.MethodPost, "/api/v1/predictions", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Tokyo", gotPred.City)
	assert.Equal(t, 28.5, gotPred.PredictedTemp)
	assert.Equal(t, "Higher", gotPred.SuggestedOption)

	var got storage.SubmittedPrediction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, int64(7), got.ID)
}

func TestCreatePrediction_MissingFields(t *testing.T) {
	body := strings.NewReader(`{"predicted_temp": 28.5}`)
	w := doRequest(buildRouter(nil, nil, nil), http.MethodPost, "/api/v1/predictions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePrediction_InvalidJSON(t *testing.T) {
	body := strings.NewReader(`{not json`)
	w := doRequest(buildRouter(nil, nil, nil), http.MethodPost, "/api/v1/predictions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPredictions_Success(t *testing.T) {
	m := defaultMocks()
	m.repo.listPredsFn = func(_ context.Context, userID string) ([]storage.SubmittedPrediction, error) {
		return []storage.SubmittedPrediction{{ID: 1, UserID: userID, City: "Tokyo", Date: "2026-09-01"}}, nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/predictions", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []storage.SubmittedPrediction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Tokyo", got[0].City)
}

func TestListPredictions_DBError(t *testing.T) {
	m := defaultMocks()
	m.repo.listPredsFn = func(_ context.Context, _ string) ([]storage.SubmittedPrediction, error) {
		return nil, fmt.Errorf("db down")
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/predictions", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- GET /api/v1/wallet/{address}/balance ----

func TestGetWalletBalance_Success(t *testing.T) {
	m := defaultMocks()
	m.wallet.balanceFn = func(_ context.Context, address string) (float64, error) {
		assert.Equal(t, "So11111111111111111111111111111111111111112", address)
		return 2.5, nil
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet,
		"/api/v1/wallet/So11111111111111111111111111111111111111112/balance", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 2.5, got["balance"])
}

func TestGetWalletBalance_RPCError(t *testing.T) {
	m := defaultMocks()
	m.wallet.balanceFn = func(_ context.Context, _ string) (float64, error) {
		return 0, fmt.Errorf("rpc unreachable")
	}

	w := doRequest(buildRouter(m, nil, nil), http.MethodGet, "/api/v1/wallet/abc/balance", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(nil, &mockPinger{}, &mockPinger{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
	assert.Equal(t, "ok", body["redis"])
}

func TestHealth_RedisDisabled(t *testing.T) {
	// No Redis configured: the health check reports it as disabled, not
	// failing.
	router := buildRouter(nil, &mockPinger{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestHealth_DBDown(t *testing.T) {
	router := buildRouter(nil, &mockPinger{err: fmt.Errorf("db unreachable")}, &mockPinger{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "error", body["db"])
}

func TestHealth_RedisDown(t *testing.T) {
	router := buildRouter(nil, &mockPinger{}, &mockPinger{err: fmt.Errorf("redis unreachable")})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---- Auth middleware ----

func TestBearerAuth_NoHeader(t *testing.T) {
	router := buildRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/Tokyo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	router := buildRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/Tokyo", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_MissingBearerPrefix(t *testing.T) {
	router := buildRouter(nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/Tokyo", nil)
	req.Header.Set("Authorization", testToken) // no "Bearer " prefix
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_HealthNoAuth(t *testing.T) {
	// Health endpoint must not require auth.
	router := buildRouter(nil, &mockPinger{}, &mockPinger{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
