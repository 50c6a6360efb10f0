// Package filter provides batch views: price-range selection and
// top gainers/losers ranking.
package filter

import (
	"sort"

	"github.com/ashtamiii/crypto-price-tracker/pkg/models"
)

// ByPriceRange returns the records whose price falls within [min, max].
// A non-positive max means no upper bound. Input order is preserved.
func ByPriceRange(batch models.Batch, min, max float64) models.Batch {
	out := make(models.Batch, 0, len(batch))
	for _, rec := range batch {
		if rec.Price < min {
			continue
		}
		if max > 0 && rec.Price > max {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// TopGainers returns up to k records sorted by 24h change, best first.
// Ties keep page rank order.
func TopGainers(batch models.Batch, k int) models.Batch {
	return topByChange(batch, k, func(a, b models.PriceRecord) bool {
		return a.Change24h > b.Change24h
	})
}

// TopLosers returns up to k records sorted by 24h change, worst first.
// Ties keep page rank order.
func TopLosers(batch models.Batch, k int) models.Batch {
	return topByChange(batch, k, func(a, b models.PriceRecord) bool {
		return a.Change24h < b.Change24h
	})
}

func topByChange(batch models.Batch, k int, less func(a, b models.PriceRecord) bool) models.Batch {
	if k <= 0 {
		return nil
	}

	out := make(models.Batch, len(batch))
	copy(out, batch)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	if k < len(out) {
		out = out[:k]
	}
	return out
}
