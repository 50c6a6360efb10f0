// cryptotracker — live top-N cryptocurrency price tracker.
//
// Drives a headless Chrome session against a public ranking page,
// extracts the top coins from the rendered DOM, and appends each
// capture batch to a CSV history file.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashtamiii/crypto-price-tracker/internal/browser"
	"github.com/ashtamiii/crypto-price-tracker/internal/config"
	"github.com/ashtamiii/crypto-price-tracker/internal/display"
	"github.com/ashtamiii/crypto-price-tracker/internal/export"
	"github.com/ashtamiii/crypto-price-tracker/internal/filter"
	"github.com/ashtamiii/crypto-price-tracker/internal/logger"
	"github.com/ashtamiii/crypto-price-tracker/internal/news"
	"github.com/ashtamiii/crypto-price-tracker/internal/scraper"
	"github.com/ashtamiii/crypto-price-tracker/internal/tracker"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cryptotracker",
	Short: "cryptotracker — live top-N cryptocurrency price tracker",
	Long: `cryptotracker scrapes the top-ranked cryptocurrencies (name, symbol,
price, 24h change, market cap) from a JavaScript-rendered listing page
using a controlled Chrome session, and logs each capture to CSV for
historical tracking.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(newsCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cryptotracker %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Scrape Command ---

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Capture the top coins once and append them to the CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyScrapeFlags(cmd)
		noCSV, _ := cmd.Flags().GetBool("no-csv")

		ctx, stop := signalContext()
		defer stop()

		session, err := launchSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.Navigate(cfg.Scrape.URL); err != nil {
			return err
		}

		tr, exporter := newTracker(session, !noCSV)
		batch, err := tr.Capture()
		if err != nil {
			return err
		}

		if !noCSV {
			fmt.Printf("\n%d records appended to %s\n", len(batch), exporter.Path())
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().String("url", "", "listing page URL (default from config)")
	scrapeCmd.Flags().Bool("headless", true, "run Chrome in headless mode")
	scrapeCmd.Flags().Int("top", 0, "number of top coins to capture (default from config)")
	scrapeCmd.Flags().String("output", "", "CSV output file (default from config)")
	scrapeCmd.Flags().Int("timeout", 0, "render wait timeout in seconds (default from config)")
	scrapeCmd.Flags().Bool("no-csv", false, "print the snapshot without writing the CSV")
}

// --- Track Command ---

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Continuously capture the top coins on a fixed interval",
	Long: `Track keeps one persistent Chrome session open and captures a fresh
batch every interval, appending each batch to the CSV history file.
Stop with Ctrl-C; the browser is shut down on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyScrapeFlags(cmd)
		if interval, _ := cmd.Flags().GetInt("interval"); interval > 0 {
			cfg.Track.Interval = interval
		}

		ctx, stop := signalContext()
		defer stop()

		session, err := launchSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		fmt.Printf("Tracking %s every %ds — Ctrl-C to stop.\n",
			cfg.Scrape.URL, cfg.Track.Interval)

		tr, _ := newTracker(session, true)
		err = tr.Run(ctx)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nTracking stopped.")
			return nil
		}
		return err
	},
}

func init() {
	trackCmd.Flags().String("url", "", "listing page URL (default from config)")
	trackCmd.Flags().Bool("headless", true, "run Chrome in headless mode")
	trackCmd.Flags().Int("top", 0, "number of top coins to capture (default from config)")
	trackCmd.Flags().String("output", "", "CSV output file (default from config)")
	trackCmd.Flags().Int("timeout", 0, "render wait timeout in seconds (default from config)")
	trackCmd.Flags().Int("interval", 0, "seconds between captures (default from config)")
}

// --- Filter Command ---

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a previously exported CSV",
	Long: `Filter reads a CSV written by scrape/track and prints the rows
matching a price range, or the top gainers/losers by 24h change.

Examples:
  cryptotracker filter --min-price 100 --max-price 5000
  cryptotracker filter --gainers 5
  cryptotracker filter --losers 3 --input out/history.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			input = cfg.Output.Path
		}
		minPrice, _ := cmd.Flags().GetFloat64("min-price")
		maxPrice, _ := cmd.Flags().GetFloat64("max-price")
		gainers, _ := cmd.Flags().GetInt("gainers")
		losers, _ := cmd.Flags().GetInt("losers")

		batch, err := export.Read(input)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return fmt.Errorf("%s holds no records", input)
		}

		switch {
		case gainers > 0:
			display.Snapshot(os.Stdout, fmt.Sprintf("Top %d Gainers", gainers),
				filter.TopGainers(batch, gainers))
		case losers > 0:
			display.Snapshot(os.Stdout, fmt.Sprintf("Top %d Losers", losers),
				filter.TopLosers(batch, losers))
		case minPrice > 0 || maxPrice > 0:
			matched := filter.ByPriceRange(batch, minPrice, maxPrice)
			if len(matched) == 0 {
				fmt.Println("No coins matched the price filter.")
				return nil
			}
			display.Snapshot(os.Stdout, "Price Filter", matched)
		default:
			return fmt.Errorf("provide --min-price/--max-price, --gainers, or --losers")
		}
		return nil
	},
}

func init() {
	filterCmd.Flags().String("input", "", "CSV file to filter (default: configured output path)")
	filterCmd.Flags().Float64("min-price", 0, "minimum price filter")
	filterCmd.Flags().Float64("max-price", 0, "maximum price filter")
	filterCmd.Flags().Int("gainers", 0, "show top K gainers")
	filterCmd.Flags().Int("losers", 0, "show top K losers")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print the latest crypto market headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.News.Limit
		}

		ctx, stop := signalContext()
		defer stop()

		headlines, err := news.NewFetcher(cfg.News.Feeds).Fetch(ctx, limit)
		if err != nil {
			return err
		}

		for _, h := range headlines {
			when := ""
			if !h.Published.IsZero() {
				when = h.Published.Format("Jan 02 15:04") + " "
			}
			fmt.Printf("%s[%s] %s\n    %s\n", when, h.Source, h.Title, h.Link)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 0, "max headlines to print (default from config)")
}

// --- Shared helpers ---

// applyScrapeFlags copies any set scrape/track flags over the loaded config.
func applyScrapeFlags(cmd *cobra.Command) {
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.Scrape.URL = url
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless, _ = cmd.Flags().GetBool("headless")
	}
	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		cfg.Scrape.TopN = top
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Output.Path = output
	}
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		cfg.Scrape.RenderTimeout = timeout
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// launchSession starts the Chrome session from the loaded config.
func launchSession(ctx context.Context) (*browser.Session, error) {
	fmt.Printf("[%s] Launching browser…\n", time.Now().Format("2006-01-02 15:04:05"))
	return browser.Launch(ctx, browser.Options{
		Headless:      cfg.Browser.Headless,
		WindowWidth:   cfg.Browser.WindowWidth,
		WindowHeight:  cfg.Browser.WindowHeight,
		ExecPath:      cfg.Browser.ExecPath,
		DisableImages: cfg.Browser.DisableImages,
		NavTimeout:    cfg.Browser.NavTimeoutDuration(),
	})
}

// newTracker assembles the capture pipeline from the loaded config.
func newTracker(session *browser.Session, withCSV bool) (*tracker.Tracker, *export.Writer) {
	log := logger.New(cfg.Logging)
	scr := scraper.New(cfg.Scrape.TopN, log)
	exporter := export.NewWriter(cfg.Output.Path, cfg.Output.Timestamp)

	return tracker.New(session, scr, exporter, tracker.Options{
		URL:           cfg.Scrape.URL,
		RenderTimeout: cfg.Scrape.RenderTimeoutDuration(),
		Interval:      cfg.Track.IntervalDuration(),
		DebugShot:     cfg.Scrape.DebugShot,
		Filter:        cfg.Filter,
		Export:        withCSV,
	}, os.Stdout, log), exporter
}
