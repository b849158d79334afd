package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// WatchlistEntry is one market pinned by a user.
type WatchlistEntry struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	MarketID string    `json:"market_id"`
	Question string    `json:"question"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"added_at"`
}

// SubmittedPrediction is a user-submitted temperature call for a market day.
// Distinct from the derived market.Prediction, which is ephemeral.
type SubmittedPrediction struct {
	ID                   int64     `json:"id"`
	UserID               string    `json:"user_id"`
	City                 string    `json:"city"`
	Date                 string    `json:"date"`
	PredictedTemp        float64   `json:"predicted_temp"`
	ConfidenceScore      int       `json:"confidence_score"`
	MarketResolutionUnit float64   `json:"market_resolution_unit"`
	SuggestedOption      string    `json:"suggested_option"`
	CreatedAt            time.Time `json:"created_at"`
}

// Repository provides database access for watchlists and submitted
// predictions.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// AddToWatchlist pins a market for a user. Adding a market that is already
// pinned is a no-op.
func (r *Repository) AddToWatchlist(ctx context.Context, e WatchlistEntry) error {
	const q = `
		INSERT INTO watchlist (user_id, market_id, question, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, market_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, q, e.UserID, e.MarketID, e.Question, e.Category); err != nil {
		return fmt.Errorf("adding market %s to watchlist: %w", e.MarketID, err)
	}
	return nil
}

// RemoveFromWatchlist unpins a market. Removing an unpinned market is a no-op.
func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID, marketID string) error {
	const q = `DELETE FROM watchlist WHERE user_id = $1 AND market_id = $2`

	if _, err := r.q.Exec(ctx, q, userID, marketID); err != nil {
		return fmt.Errorf("removing market %s from watchlist: %w", marketID, err)
	}
	return nil
}

// ListWatchlist returns the user's pinned markets, newest first.
func (r *Repository) ListWatchlist(ctx context.Context, userID string) ([]WatchlistEntry, error) {
	const q = `
		SELECT id, user_id, market_id, question, category, added_at
		FROM watchlist
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []WatchlistEntry
	for rows.Next() {
		var e WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MarketID, &e.Question, &e.Category, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning watchlist row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating watchlist rows: %w", err)
	}

	return entries, nil
}

// InWatchlist reports whether the user has pinned the market.
func (r *Repository) InWatchlist(ctx context.Context, userID, marketID string) (bool, error) {
	const q = `SELECT 1 FROM watchlist WHERE user_id = $1 AND market_id = $2`

	var one int
	err := r.q.QueryRow(ctx, q, userID, marketID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking watchlist for market %s: %w", marketID, err)
	}
	return true, nil
}

// InsertPrediction stores a user-submitted prediction and returns it with
// its assigned id and timestamp.
func (r *Repository) InsertPrediction(ctx context.Context, p SubmittedPrediction) (SubmittedPrediction, error) {
	const q = `
		INSERT INTO predictions (user_id, city, date, predicted_temp, confidence_score, market_resolution_unit, suggested_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, q,
		p.UserID,
		p.City,
		p.Date,
		p.PredictedTemp,
		p.ConfidenceScore,
		p.MarketResolutionUnit,
		p.SuggestedOption,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return SubmittedPrediction{}, fmt.Errorf("inserting prediction for %s: %w", p.City, err)
	}

	return p, nil
}

// ListPredictions returns the user's submitted predictions, newest first.
func (r *Repository) ListPredictions(ctx context.Context, userID string) ([]SubmittedPrediction, error) {
	const q = `
		SELECT id, user_id, city, date, predicted_temp, confidence_score, market_resolution_unit, suggested_option, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying predictions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var preds []SubmittedPrediction
	for rows.Next() {
		var p SubmittedPrediction
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.City,
			&p.Date,
			&p.PredictedTemp,
			&p.ConfidenceScore,
			&p.MarketResolutionUnit,
			&p.SuggestedOption,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning prediction row: %w", err)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prediction rows: %w", err)
	}

	return preds, nil
}
