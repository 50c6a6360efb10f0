// Package display renders capture batches as console tables.
package display

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ashtamiii/crypto-price-tracker/pkg/models"
	"github.com/ashtamiii/crypto-price-tracker/pkg/utils"
)

// Snapshot writes a formatted market snapshot table to w.
func Snapshot(w io.Writer, title string, batch models.Batch) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}

	t.AppendHeader(table.Row{"#", "Name", "Symbol", "Price", "24h %", "Market Cap"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Price", Align: text.AlignRight},
		{Name: "24h %", Align: text.AlignRight},
		{Name: "Market Cap", Align: text.AlignRight},
	})

	for _, rec := range batch {
		t.AppendRow(table.Row{
			rec.Rank,
			rec.Name,
			rec.Symbol,
			utils.FormatUSD(rec.Price),
			utils.FormatPct(rec.Change24h),
			utils.FormatUSDCompact(rec.MarketCap),
		})
	}

	t.Render()
}
