package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"brazilian with thousands", "R$ 1.234,56", "1234.56"},
		{"comma decimal", "10,50", "10.5"},
		{"plain integer", "7", "7"},
		{"currency and comma", "R$ 3,00", "3"},
		{"sub unit", "R$ 0,40", "0.4"},
		{"surrounding whitespace", "  R$  2,50  ", "2.5"},
		{"multiple thousands groups", "1.234.567,89", "1234567.89"},
		{"period decimal", "12.99", "12.99"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ParseAmount(tt.raw)
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", tt.raw, err)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, want)
			}
		})
	}
}

func TestParseAmountErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"letters", "abc"},
		{"empty", ""},
		{"only currency", "R$ "},
		{"multiple commas", "1,2,3"},
		{"negative", "-5,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ParseAmount(tt.raw)
			if !errors.Is(err, ErrUnparsable) {
				t.Fatalf("ParseAmount(%q) error = %v, want ErrUnparsable", tt.raw, err)
			}
			if !got.IsZero() {
				t.Errorf("ParseAmount(%q) = %s, want zero on failure", tt.raw, got)
			}
		})
	}
}

func TestParseAmountPreservesRaw(t *testing.T) {
	_, raw, err := ParseAmount("  R$ abc  ")
	if err == nil {
		t.Fatal("expected error")
	}
	if raw != "R$ abc" {
		t.Errorf("raw = %q, want trimmed original", raw)
	}
}

// Parsing the parser's own canonical output must reproduce the same value.
func TestParseAmountIdempotent(t *testing.T) {
	inputs := []string{"R$ 1.234,56", "10,50", "7", "0,40", "12.99"}

	for _, in := range inputs {
		first, _, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", in, err)
		}
		second, _, err := ParseAmount(first.String())
		if err != nil {
			t.Fatalf("reparse of %q error: %v", first.String(), err)
		}
		if !first.Equal(second) {
			t.Errorf("reparse of %q: %s != %s", in, second, first)
		}
	}
}

func TestCreditsFor(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0.40", 1},
		{"0", 1},
		{"1", 1},
		{"3", 3},
		{"12.99", 12},
		{"1234.56", 1234},
	}

	for _, tt := range tests {
		got := CreditsFor(decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Errorf("CreditsFor(%s) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}
