// Package tracker runs the scrape pipeline: render wait, extraction,
// CSV export, and console snapshot — once or on a fixed interval.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ashtamiii/crypto-price-tracker/internal/browser"
	"github.com/ashtamiii/crypto-price-tracker/internal/config"
	"github.com/ashtamiii/crypto-price-tracker/internal/display"
	"github.com/ashtamiii/crypto-price-tracker/internal/filter"
	"github.com/ashtamiii/crypto-price-tracker/internal/scraper"
	"github.com/ashtamiii/crypto-price-tracker/pkg/models"
)

// Page is the browser surface the tracker drives. *browser.Session
// implements it.
type Page interface {
	Navigate(url string) error
	Reload() error
	WaitTableReady(timeout time.Duration) error
	HTML() (string, error)
	Screenshot(path string) error
}

// Exporter persists capture batches. *export.Writer implements it.
type Exporter interface {
	Append(batch models.Batch) error
}

// Options configures a Tracker.
type Options struct {
	URL           string
	RenderTimeout time.Duration
	Interval      time.Duration
	DebugShot     string // screenshot path on render timeout, empty disables
	Filter        config.FilterConfig
	Export        bool // write CSV batches (disabled by scrape --no-csv)
}

// Tracker owns one capture pipeline over a single browser session.
type Tracker struct {
	page     Page
	scraper  *scraper.Scraper
	exporter Exporter
	opts     Options
	out      io.Writer
	log      *slog.Logger
}

// New assembles a tracker. out receives the console snapshot tables.
func New(page Page, scr *scraper.Scraper, exporter Exporter, opts Options, out io.Writer, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		page:     page,
		scraper:  scr,
		exporter: exporter,
		opts:     opts,
		out:      out,
		log:      log,
	}
}

// Capture runs one full pipeline pass on the already-navigated page:
// wait for render, extract the batch, export it, display it. The batch
// is fully buffered before any write, so a failed capture leaves the
// output file untouched.
func (t *Tracker) Capture() (models.Batch, error) {
	if err := t.page.WaitTableReady(t.opts.RenderTimeout); err != nil {
		if errors.Is(err, browser.ErrRenderTimeout) && t.opts.DebugShot != "" {
			if shotErr := t.page.Screenshot(t.opts.DebugShot); shotErr != nil {
				t.log.Warn("debug screenshot failed", "error", shotErr)
			} else {
				t.log.Info("saved debug screenshot", "path", t.opts.DebugShot)
			}
		}
		return nil, err
	}

	html, err := t.page.HTML()
	if err != nil {
		return nil, err
	}

	batch, err := t.scraper.ScrapeHTML(html, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if t.opts.Export && t.exporter != nil {
		if err := t.exporter.Append(batch); err != nil {
			return nil, err
		}
	}

	t.render(batch)
	return batch, nil
}

// Run navigates to the listing page and captures a batch every
// interval until ctx is cancelled. A failed cycle is logged and
// skipped; the loop keeps the session and carries on.
func (t *Tracker) Run(ctx context.Context) error {
	if err := t.page.Navigate(t.opts.URL); err != nil {
		return err
	}

	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := t.Capture(); err != nil {
			t.log.Error("capture cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := t.page.Reload(); err != nil {
			t.log.Error("page reload failed", "error", err)
		}
	}
}

// render prints the snapshot table plus any configured filter views.
func (t *Tracker) render(batch models.Batch) {
	if t.out == nil {
		return
	}

	display.Snapshot(t.out, "Market Snapshot", batch)

	fc := t.opts.Filter
	if fc.MinPrice > 0 || fc.MaxPrice > 0 {
		matched := filter.ByPriceRange(batch, fc.MinPrice, fc.MaxPrice)
		if len(matched) > 0 {
			display.Snapshot(t.out, "Price Filter", matched)
		} else {
			fmt.Fprintln(t.out, "No coins matched the price filter.")
		}
	}
	if fc.ShowGainers > 0 {
		display.Snapshot(t.out, fmt.Sprintf("Top %d Gainers", fc.ShowGainers),
			filter.TopGainers(batch, fc.ShowGainers))
	}
	if fc.ShowLosers > 0 {
		display.Snapshot(t.out, fmt.Sprintf("Top %d Losers", fc.ShowLosers),
			filter.TopLosers(batch, fc.ShowLosers))
	}
}
