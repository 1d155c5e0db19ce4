package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code
type Currency string

// Normalize upper-cases and trims the code
func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

// zeroDecimalCurrencies are charged by the provider in major units
var zeroDecimalCurrencies = map[Currency]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// IsZeroDecimal reports whether the provider has no minor unit for c
func (c Currency) IsZeroDecimal() bool {
	_, ok := zeroDecimalCurrencies[c.Normalize()]
	return ok
}

// FormatAmount converts amount into the provider's integer representation.
// Zero-decimal currencies keep the integer part, others are expressed in
// cents rounded half away from zero.
func FormatAmount(currency Currency, amount decimal.Decimal) int64 {
	if currency.IsZeroDecimal() {
		return amount.IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
