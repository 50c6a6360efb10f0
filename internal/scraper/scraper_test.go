package scraper

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// coinRow renders one listing-table row the way the live page does:
// star cell, rank, stacked name/symbol, price, 24h change with caret
// icon, 7d change, FDV, market cap, volume, supply.
func coinRow(rank int, name, symbol, price, change, direction, marketCap string) string {
	return fmt.Sprintf(`<tr>
		<td><span class="watch-star"></span></td>
		<td>%d</td>
		<td><a href="/currencies/%s/"><p>%s</p><p class="coin-item-symbol">%s</p></a></td>
		<td><span>%s</span></td>
		<td><span class="icon-Caret-%s"></span>%s</td>
		<td><span class="icon-Caret-up"></span>4.10%%</td>
		<td>$1,400,000,000,000</td>
		<td>%s</td>
		<td>$43,000,000,000</td>
		<td>19,700,000</td>
	</tr>`, rank, strings.ToLower(name), name, symbol, price, direction, change, marketCap)
}

func listingPage(rows ...string) string {
	return `<html><body><table><thead><tr><th></th><th>#</th><th>Name</th><th>Price</th></tr></thead><tbody>` +
		strings.Join(rows, "\n") + `</tbody></table></body></html>`
}

func TestScrapeHTML(t *testing.T) {
	html := listingPage(
		coinRow(1, "Bitcoin", "BTC", "$67,234.50", "2.31%", "up", "$1.32T"),
		coinRow(2, "Ethereum", "ETH", "$3,480.12", "0.94%", "down", "$418.5B"),
		coinRow(3, "Tether", "USDT", "$0.999", "0.01%", "up", "$112.8B"),
	)

	capturedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	batch, err := New(10, discardLogger()).ScrapeHTML(html, capturedAt)
	if err != nil {
		t.Fatalf("ScrapeHTML() error: %v", err)
	}

	if len(batch) != 3 {
		t.Fatalf("got %d records, want 3", len(batch))
	}

	first := batch[0]
	if first.Rank != 1 {
		t.Errorf("Rank: got %d, want 1", first.Rank)
	}
	if first.Name != "Bitcoin" || first.Symbol != "BTC" {
		t.Errorf("Name/Symbol: got %q/%q", first.Name, first.Symbol)
	}
	if first.Price != 67234.50 {
		t.Errorf("Price: got %f, want 67234.50", first.Price)
	}
	if first.Change24h != 2.31 {
		t.Errorf("Change24h: got %f, want 2.31", first.Change24h)
	}
	if first.MarketCap != 1.32e12 {
		t.Errorf("MarketCap: got %f, want 1.32e12", first.MarketCap)
	}
	if !first.CapturedAt.Equal(capturedAt) {
		t.Errorf("CapturedAt: got %v, want %v", first.CapturedAt, capturedAt)
	}

	// Caret-down marks the change as negative.
	if batch[1].Change24h != -0.94 {
		t.Errorf("Ethereum Change24h: got %f, want -0.94", batch[1].Change24h)
	}

	// Rank order preserved.
	for i, rec := range batch {
		if rec.Rank != i+1 {
			t.Errorf("row %d: rank %d out of order", i, rec.Rank)
		}
	}
}

func TestScrapeHTMLTopNTruncates(t *testing.T) {
	html := listingPage(
		coinRow(1, "Bitcoin", "BTC", "$67,234.50", "2.31%", "up", "$1.32T"),
		coinRow(2, "Ethereum", "ETH", "$3,480.12", "0.94%", "down", "$418.5B"),
		coinRow(3, "Tether", "USDT", "$0.999", "0.01%", "up", "$112.8B"),
	)

	batch, err := New(2, discardLogger()).ScrapeHTML(html, time.Now())
	if err != nil {
		t.Fatalf("ScrapeHTML() error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d records, want 2", len(batch))
	}
	if batch[1].Name != "Ethereum" {
		t.Errorf("last record: got %q, want Ethereum", batch[1].Name)
	}
}

func TestScrapeHTMLSkipsMalformedRows(t *testing.T) {
	html := listingPage(
		coinRow(1, "Bitcoin", "BTC", "$67,234.50", "2.31%", "up", "$1.32T"),
		coinRow(2, "Ethereum", "ETH", "not a price", "0.94%", "down", "$418.5B"),
		// Short ad row, too few cells.
		`<tr><td colspan="4">Sponsored</td></tr>`,
		coinRow(3, "Tether", "USDT", "$0.999", "0.01%", "up", "$112.8B"),
	)

	batch, err := New(10, discardLogger()).ScrapeHTML(html, time.Now())
	if err != nil {
		t.Fatalf("ScrapeHTML() error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d records, want 2 (malformed rows skipped)", len(batch))
	}
	if batch[0].Name != "Bitcoin" || batch[1].Name != "Tether" {
		t.Errorf("kept rows: %q, %q", batch[0].Name, batch[1].Name)
	}
}

func TestScrapeHTMLNoTable(t *testing.T) {
	_, err := New(10, discardLogger()).ScrapeHTML("<html><body><p>loading…</p></body></html>", time.Now())

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.RowsSeen != 0 {
		t.Errorf("RowsSeen: got %d, want 0", extErr.RowsSeen)
	}
}

func TestScrapeHTMLAllRowsMalformed(t *testing.T) {
	html := listingPage(
		coinRow(1, "Bitcoin", "BTC", "—", "2.31%", "up", "$1.32T"),
		coinRow(2, "Ethereum", "ETH", "—", "0.94%", "down", "—"),
	)

	_, err := New(10, discardLogger()).ScrapeHTML(html, time.Now())

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.RowsSeen != 2 {
		t.Errorf("RowsSeen: got %d, want 2", extErr.RowsSeen)
	}
}

func TestParseNameCellFallback(t *testing.T) {
	// Flat markup without <p> elements still yields a name.
	html := listingPage(`<tr>
		<td></td>
		<td>1</td>
		<td>Bitcoin</td>
		<td>$67,234.50</td>
		<td>2.31%</td>
		<td>4.10%</td>
		<td>$1.4T</td>
		<td>$1.32T</td>
		<td>$43B</td>
		<td>19,700,000</td>
	</tr>`)

	batch, err := New(10, discardLogger()).ScrapeHTML(html, time.Now())
	if err != nil {
		t.Fatalf("ScrapeHTML() error: %v", err)
	}
	if batch[0].Name != "Bitcoin" || batch[0].Symbol != "" {
		t.Errorf("fallback name/symbol: got %q/%q", batch[0].Name, batch[0].Symbol)
	}
}
