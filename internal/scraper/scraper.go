// Package scraper extracts ranked asset records from the rendered
// listing page DOM.
package scraper

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ashtamiii/crypto-price-tracker/pkg/models"
	"github.com/ashtamiii/crypto-price-tracker/pkg/utils"
)

// Listing-table cell positions (0-based). The first cell is the
// watchlist star, so data starts at index 1.
const (
	cellRank      = 1
	cellName      = 2
	cellPrice     = 3
	cellChange24h = 4
	cellMarketCap = 7

	// minCells is the smallest cell count for a real data row; shorter
	// rows are ads or placeholders.
	minCells = 8
)

// ExtractionError reports that no usable rows could be extracted.
type ExtractionError struct {
	RowsSeen int
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s (%d rows seen)", e.Reason, e.RowsSeen)
}

// Scraper parses rendered listing-page HTML into price records.
type Scraper struct {
	topN int
	log  *slog.Logger
}

// New creates a scraper that keeps the first topN usable rows.
func New(topN int, log *slog.Logger) *Scraper {
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{topN: topN, log: log}
}

// ScrapeHTML parses the rendered page HTML and extracts the top-N batch.
// The whole batch is built in memory; callers only write it out on success.
func (s *Scraper) ScrapeHTML(html string, capturedAt time.Time) (models.Batch, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing HTML: %w", err)
	}
	return s.Extract(doc, capturedAt)
}

// Extract walks the ranking table and converts each row into a
// PriceRecord. Malformed rows are skipped with a logged warning; if no
// row is usable the whole extraction fails.
func (s *Scraper) Extract(doc *goquery.Document, capturedAt time.Time) (models.Batch, error) {
	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		return nil, &ExtractionError{RowsSeen: 0, Reason: "no table rows in page"}
	}

	batch := make(models.Batch, 0, s.topN)
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(batch) >= s.topN {
			return false
		}

		rec, err := s.parseRow(row)
		if err != nil {
			s.log.Warn("skipping unparsable row", "row", i, "error", err)
			return true
		}

		rec.CapturedAt = capturedAt
		batch = append(batch, rec)
		return true
	})

	if len(batch) == 0 {
		return nil, &ExtractionError{
			RowsSeen: rows.Length(),
			Reason:   "no row parsed cleanly, site layout may have changed",
		}
	}
	return batch, nil
}

// parseRow converts a single <tr> into a PriceRecord, converting the
// loosely-typed display text at the boundary.
func (s *Scraper) parseRow(row *goquery.Selection) (models.PriceRecord, error) {
	var rec models.PriceRecord

	cells := row.Find("td")
	if cells.Length() < minCells {
		return rec, fmt.Errorf("short row: %d cells", cells.Length())
	}

	rankText := strings.TrimSpace(cells.Eq(cellRank).Text())
	rank, err := strconv.Atoi(rankText)
	if err != nil {
		return rec, fmt.Errorf("rank %q: %w", rankText, err)
	}

	name, symbol := parseNameCell(cells.Eq(cellName))
	if name == "" {
		return rec, fmt.Errorf("empty name cell")
	}

	price, err := utils.ParseMoney(cells.Eq(cellPrice).Text())
	if err != nil {
		return rec, fmt.Errorf("price: %w", err)
	}

	change, err := parseChangeCell(cells.Eq(cellChange24h))
	if err != nil {
		return rec, fmt.Errorf("change_24h: %w", err)
	}

	marketCap, err := utils.ParseMoney(cells.Eq(cellMarketCap).Text())
	if err != nil {
		return rec, fmt.Errorf("market_cap: %w", err)
	}

	rec.Rank = rank
	rec.Name = name
	rec.Symbol = symbol
	rec.Price = price
	rec.Change24h = change
	rec.MarketCap = marketCap
	return rec, nil
}

// parseNameCell reads the stacked name/symbol cell. The page renders
// both in separate <p> elements; fall back to the raw cell text when
// the markup is flatter than expected.
func parseNameCell(cell *goquery.Selection) (name, symbol string) {
	var parts []string
	cell.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	switch {
	case len(parts) >= 2:
		return parts[0], parts[1]
	case len(parts) == 1:
		return parts[0], ""
	default:
		return strings.TrimSpace(cell.Text()), ""
	}
}

// parseChangeCell reads the 24h change cell. The sign is not part of
// the number text; the page indicates direction with a caret icon.
func parseChangeCell(cell *goquery.Selection) (float64, error) {
	val, err := utils.ParsePercent(cell.Text())
	if err != nil {
		return 0, err
	}

	if cell.Find(".icon-Caret-down").Length() > 0 && val > 0 {
		val = -val
	}
	return val, nil
}
