package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		currency Currency
		amount   string
		want     int64
	}{
		{"euro cents", "EUR", "19.99", 1999},
		{"half cent rounds up", "EUR", "19.995", 2000},
		{"lowercase code", "usd", "10", 1000},
		{"yen has no minor unit", "JPY", "500", 500},
		{"yen truncates", "jpy", "500.7", 500},
		{"franc cfa", "XOF", "1250", 1250},
		{"zero", "EUR", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(tt.currency, decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrency_IsZeroDecimal(t *testing.T) {
	for _, code := range []Currency{"BIF", "CLP", "DJF", "GNF", "JPY", "KMF", "KRW", "MGA", "PYG", "RWF", "VND", "VUV", "XAF", "XOF", "XPF"} {
		assert.True(t, code.IsZeroDecimal(), code)
	}
	assert.False(t, Currency("EUR").IsZeroDecimal())
	assert.True(t, Currency(" krw ").IsZeroDecimal())
	assert.Equal(t, Currency("EUR"), Currency(" eur").Normalize())
}
