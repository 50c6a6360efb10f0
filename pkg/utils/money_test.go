package utils

import (
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"$67,234.50", 67234.50},
		{"$64,000", 64000},
		{"$0.999", 0.999},
		{"1320000000000", 1.32e12},
		{"$1.32T", 1.32e12},
		{"$945.2B", 945.2e9},
		{"$12.5M", 12.5e6},
		{"$980K", 980e3},
		{" $2,345.67 ", 2345.67},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if err != nil {
				t.Fatalf("ParseMoney(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMoney(%q) = %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseMoneyMalformed(t *testing.T) {
	for _, input := range []string{"", "   ", "$", "—", "N/A", "$-100", "abcK"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseMoney(input); !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseMoney(%q): expected ErrMalformed, got %v", input, err)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"+2.31%", 2.31},
		{"-0.94%", -0.94},
		{"0.00%", 0},
		{"2.31", 2.31},
		{"+1,024.5%", 1024.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePercent(tt.input)
			if err != nil {
				t.Fatalf("ParsePercent(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParsePercent(%q) = %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParsePercentMalformed(t *testing.T) {
	for _, input := range []string{"", "%", "up 2%"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParsePercent(input); !errors.Is(err, ErrMalformed) {
				t.Errorf("ParsePercent(%q): expected ErrMalformed, got %v", input, err)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "$0.00"},
		{100, "$100.00"},
		{67234.50, "$67,234.50"},
		{1234567, "$1,234,567.00"},
		{-1234.56, "-$1,234.56"},
		// Fractions that round up to a whole dollar must carry into the
		// integer digits, including across a thousands boundary.
		{0.999, "$1.00"},
		{67234.999, "$67,235.00"},
		{1999.999, "$2,000.00"},
		{-0.999, "-$1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatUSD(tt.input); got != tt.expected {
				t.Errorf("FormatUSD(%f) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatUSDCompact(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{500, "$500.00"},
		{980_000, "$980.00K"},
		{12_500_000, "$12.50M"},
		{945_200_000_000, "$945.20B"},
		{1_320_000_000_000, "$1.32T"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatUSDCompact(tt.input); got != tt.expected {
				t.Errorf("FormatUSDCompact(%f) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0.0, "+0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatPct(tt.input); got != tt.expected {
				t.Errorf("FormatPct(%f) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}
