// Package utils provides parsing and formatting helpers for the tracker.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a display value cannot be parsed.
var ErrMalformed = fmt.Errorf("malformed display value")

// suffixMultipliers maps compact magnitude suffixes to their multiplier.
var suffixMultipliers = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// ParseMoney converts a displayed money value into a float64.
// Accepts "$67,234.50", "1,320,000,000,000", and compact forms like "$1.32T".
// Returns ErrMalformed for empty, negative, or unparsable input.
func ParseMoney(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "—")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	multiplier := 1.0
	if m, ok := suffixMultipliers[s[len(s)-1]]; ok {
		multiplier = m
		s = s[:len(s)-1]
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}
	if val < 0 {
		return 0, fmt.Errorf("%w: negative amount %q", ErrMalformed, text)
	}
	return val * multiplier, nil
}

// ParsePercent converts a displayed percentage into a signed float64.
// "+2.31%" → 2.31, "-0.94%" → -0.94, "2.31" → 2.31.
// Markup-stripped change cells sometimes lose the sign character entirely;
// callers that need direction should inspect the raw cell classes instead.
func ParsePercent(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}
	return val, nil
}

// FormatUSD formats a number as a dollar amount with thousands separators.
// e.g. 67234.5 → "$67,234.50"
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	// Round to cents first so a fraction like .999 carries into the
	// integer digits before grouping.
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	formatted := groupThousands(s[:dot]) + s[dot:]

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatUSDCompact formats a large dollar amount in compact notation.
// e.g. 1.32e12 → "$1.32T", 945e9 → "$945.00B"
func FormatUSDCompact(amount float64) string {
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g. 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands inserts commas every three digits of a decimal string.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
