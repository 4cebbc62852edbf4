package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"1234.5", "R$ 1.234,50"},
		{"0", "R$ 0,00"},
		{"1000000", "R$ 1.000.000,00"},
	}
	for _, tt := range tests {
		if got := BRL(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("BRL(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSum(t *testing.T) {
	got := Sum(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2"))
	if !got.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("Sum = %s, want 0.3", got)
	}
}
