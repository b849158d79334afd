package market

import "time"

// demoListings is the fixed fallback set served when the live scan fails.
var demoListings = []Listing{
	{
		Question:     "Will Bitcoin reach $100,000 by end of 2025?",
		Volume:       125000,
		Liquidity:    45000,
		OddsYes:      0.65,
		OddsNo:       0.35,
		PolymarketID: "btc-100k-2025",
		Category:     "crypto",
	},
	{
		Question:     "Will the S&P 500 hit a new all-time high in Q1 2025?",
		Volume:       98000,
		Liquidity:    38000,
		OddsYes:      0.72,
		OddsNo:       0.28,
		PolymarketID: "sp500-ath-q1",
		Category:     "finance",
	},
	{
		Question:     "Will Indonesia win the next AFF Championship?",
		Volume:       85000,
		Liquidity:    32000,
		OddsYes:      0.58,
		OddsNo:       0.42,
		PolymarketID: "indo-aff-2025",
		Category:     "sports",
	},
	{
		Question:     "Will Ethereum reach $5,000 in Q1 2025?",
		Volume:       75000,
		Liquidity:    28000,
		OddsYes:      0.45,
		OddsNo:       0.55,
		PolymarketID: "eth-5k-2025",
		Category:     "crypto",
	},
	{
		Question:     "Will there be a Fed rate cut in January 2025?",
		Volume:       112000,
		Liquidity:    52000,
		OddsYes:      0.35,
		OddsNo:       0.65,
		PolymarketID: "fed-rate-jan",
		Category:     "finance",
	},
	{
		Question:     "Will AI stocks outperform the S&P 500 in 2025?",
		Volume:       89000,
		Liquidity:    41000,
		OddsYes:      0.68,
		OddsNo:       0.32,
		PolymarketID: "ai-stocks-2025",
		Category:     "tech",
	},
}

// DemoMarkets returns the fixed demo listings bucketed like a live scan, so
// downstream consumers work unmodified on fallback data.
func DemoMarkets(now time.Time) ScannerData {
	var evenOdds []Listing
	for _, l := range demoListings {
		if l.OddsYes-0.5 < 0.15 && l.OddsYes-0.5 > -0.15 {
			evenOdds = append(evenOdds, l)
		}
	}

	return ScannerData{
		SurgingMarkets:  Bucket{Count: len(demoListings), Listings: demoListings},
		HiddenGems:      Bucket{Count: 4, Listings: demoListings[2:6]},
		UrgentDecisions: Bucket{Count: 4, Listings: demoListings[1:5]},
		EvenOdds:        Bucket{Count: len(evenOdds), Listings: evenOdds},
		Timestamp:       now,
	}
}
