// Package export appends capture batches to a CSV history file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/ashtamiii/crypto-price-tracker/pkg/models"
)

// WriteError reports a filesystem failure while exporting.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// csvRow is the on-disk row shape. CapturedAt is a string so a run
// without timestamping writes an empty field instead of a zero time.
type csvRow struct {
	Rank       int     `csv:"rank"`
	Name       string  `csv:"name"`
	Symbol     string  `csv:"symbol"`
	Price      float64 `csv:"price"`
	Change24h  float64 `csv:"change_24h"`
	MarketCap  float64 `csv:"market_cap"`
	CapturedAt string  `csv:"captured_at"`
}

// Writer appends batches to one CSV file, creating it (with a header)
// on first use.
type Writer struct {
	path      string
	timestamp bool
}

// NewWriter creates a CSV writer for path. When timestamp is false the
// captured_at column is left empty.
func NewWriter(path string, timestamp bool) *Writer {
	return &Writer{path: path, timestamp: timestamp}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// Append writes the whole batch in one pass. The batch is already fully
// buffered by the scraper, so a failed run never leaves partial rows.
// Appending to an existing file does not repeat the header.
func (w *Writer) Append(batch models.Batch) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([]csvRow, 0, len(batch))
	for _, rec := range batch {
		row := csvRow{
			Rank:      rec.Rank,
			Name:      rec.Name,
			Symbol:    rec.Symbol,
			Price:     rec.Price,
			Change24h: rec.Change24h,
			MarketCap: rec.MarketCap,
		}
		if w.timestamp && !rec.CapturedAt.IsZero() {
			row.CapturedAt = rec.CapturedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Path: w.path, Err: err}
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &WriteError{Path: w.path, Err: err}
	}

	if info.Size() == 0 {
		err = gocsv.Marshal(&rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&rows, f)
	}
	if err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}

// Read loads all batches previously exported to path. Used by the
// offline filter command.
func Read(path string) (models.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []csvRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	batch := make(models.Batch, 0, len(rows))
	for _, row := range rows {
		rec := models.PriceRecord{
			Rank:      row.Rank,
			Name:      row.Name,
			Symbol:    row.Symbol,
			Price:     row.Price,
			Change24h: row.Change24h,
			MarketCap: row.MarketCap,
		}
		if row.CapturedAt != "" {
			ts, err := time.Parse(time.RFC3339, row.CapturedAt)
			if err != nil {
				return nil, fmt.Errorf("parse %s: captured_at %q: %w", path, row.CapturedAt, err)
			}
			rec.CapturedAt = ts
		}
		batch = append(batch, rec)
	}
	return batch, nil
}
