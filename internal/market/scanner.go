package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"
)

const clobDefaultURL = "https://clob.polymarket.com/markets"

const httpTimeout = 10 * time.Second

// Bucket sizing mirrors the dashboard's scanner panels.
const (
	maxProcessed  = 50
	maxSurging    = 30
	maxHiddenGems = 35
	maxUrgent     = 22
	maxEvenOdds   = 14
)

// flexFloat decodes JSON numbers that upstream sometimes serializes as
// strings. Null, empty and malformed values decode to zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := string(b)
	if s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type clobMarket struct {
	Question    string    `json:"question"`
	Description string    `json:"description"`
	Volume      flexFloat `json:"volume"`
	Liquidity   flexFloat `json:"liquidity"`
	BestAsk     flexFloat `json:"bestAsk"`
	BestBid     flexFloat `json:"bestBid"`
	ConditionID string    `json:"condition_id"`
	ID          string    `json:"id"`
	Category    string    `json:"category"`
}

// Scanner fetches prediction-market listings and groups them into browse
// buckets. Any upstream failure falls back to demo listings so the
// dashboard never renders an error state.
type Scanner struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
	now     func() time.Time
}

// NewScanner constructs a Scanner against the public Polymarket CLOB API.
func NewScanner(log *slog.Logger) *Scanner {
	return NewScannerWithURL(clobDefaultURL, log, time.Now)
}

// NewScannerWithURL constructs a Scanner pointing at a custom endpoint (used
// in tests).
func NewScannerWithURL(baseURL string, log *slog.Logger, now func() time.Time) *Scanner {
	return &Scanner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
		log:     log,
		now:     now,
	}
}

// Markets returns categorized listings. It never fails: fetch errors are
// absorbed here and replaced by the demo set.
func (s *Scanner) Markets(ctx context.Context) ScannerData {
	data, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn("market scan failed, serving demo listings", "err", err)
		return DemoMarkets(s.now())
	}
	return data
}

func (s *Scanner) fetch(ctx context.Context) (ScannerData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return ScannerData{}, fmt.Errorf("creating request for %s: %w", s.baseURL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ScannerData{}, fmt.Errorf("GET %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ScannerData{}, fmt.Errorf("GET %s returned status %d", s.baseURL, resp.StatusCode)
	}

	var raw []clobMarket
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return ScannerData{}, fmt.Errorf("decoding response from %s: %w", s.baseURL, err)
	}
	if len(raw) == 0 {
		return ScannerData{}, fmt.Errorf("empty market listing from %s", s.baseURL)
	}

	return Categorize(toListings(raw), s.now()), nil
}

func toListings(raw []clobMarket) []Listing {
	if len(raw) > maxProcessed {
		raw = raw[:maxProcessed]
	}

	listings := make([]Listing, 0, len(raw))
	for _, m := range raw {
		question := m.Question
		if question == "" {
			question = m.Description
		}
		if question == "" {
			question = "Unknown Market"
		}

		id := m.ConditionID
		if id == "" {
			id = m.ID
		}

		category := m.Category
		if category == "" {
			category = "general"
		}

		oddsYes := float64(m.BestAsk)
		if oddsYes == 0 {
			oddsYes = 0.5
		}
		oddsNo := float64(m.BestBid)
		if oddsNo == 0 {
			oddsNo = 0.5
		}

		listings = append(listings, Listing{
			Question:     question,
			Volume:       float64(m.Volume),
			Liquidity:    float64(m.Liquidity),
			OddsYes:      oddsYes,
			OddsNo:       oddsNo,
			PolymarketID: id,
			Category:     category,
		})
	}
	return listings
}

// Categorize buckets listings the way the scanner panels browse them:
// surging by volume, hidden gems by low liquidity with real volume, urgent
// decisions as the head of the listing, even odds near the coin flip.
// Sparse buckets fall back to surging slices so no panel renders empty.
func Categorize(listings []Listing, now time.Time) ScannerData {
	surging := make([]Listing, len(listings))
	copy(surging, listings)
	sort.SliceStable(surging, func(i, j int) bool {
		return surging[i].Volume > surging[j].Volume
	})
	surging = capLen(surging, maxSurging)

	var hiddenGems []Listing
	for _, l := range listings {
		if l.Liquidity < 10000 && l.Volume > 1000 {
			hiddenGems = append(hiddenGems, l)
		}
	}
	hiddenGems = capLen(hiddenGems, maxHiddenGems)
	if len(hiddenGems) == 0 {
		hiddenGems = capLen(surging, 10)
	}

	urgent := capLen(listings, maxUrgent)

	var evenOdds []Listing
	for _, l := range listings {
		if l.OddsYes-0.5 < 0.15 && l.OddsYes-0.5 > -0.15 {
			evenOdds = append(evenOdds, l)
		}
	}
	evenOdds = capLen(evenOdds, maxEvenOdds)
	if len(evenOdds) == 0 {
		evenOdds = capLen(surging, 5)
	}

	return ScannerData{
		SurgingMarkets:  Bucket{Count: len(surging), Listings: surging},
		HiddenGems:      Bucket{Count: len(hiddenGems), Listings: hiddenGems},
		UrgentDecisions: Bucket{Count: len(urgent), Listings: urgent},
		EvenOdds:        Bucket{Count: len(evenOdds), Listings: evenOdds},
		Timestamp:       now,
	}
}

func capLen(ls []Listing, n int) []Listing {
	if len(ls) > n {
		return ls[:n]
	}
	return ls
}
