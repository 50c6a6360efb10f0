// Package models defines the data types shared across the tracker.
package models

import "time"

// PriceRecord represents one ranked asset captured from the listing page.
// Values are already converted from display text at scrape time.
type PriceRecord struct {
	Rank       int       `json:"rank"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	Change24h  float64   `json:"change_24h"` // signed percent, e.g. -1.23
	MarketCap  float64   `json:"market_cap"`
	CapturedAt time.Time `json:"captured_at"`
}

// Batch is the set of records produced by a single capture.
type Batch []PriceRecord
