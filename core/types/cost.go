// Package types - Cost and currency types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Format renders an amount rounded to cents, e.g. "USD 12.50".
func (c Currency) Format(amount decimal.Decimal) string {
	if c == "" {
		return amount.StringFixed(2)
	}
	return string(c) + " " + amount.StringFixed(2)
}

// Adjustment records one multiplicative change applied to a store's cost.
// A negative Rate is a discount, a positive Rate a surcharge.
type Adjustment struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// StoreCost is a store's adjusted cost for one list.
type StoreCost struct {
	Store       string          `json:"store"`
	Cost        decimal.Decimal `json:"cost"`
	BulkApplied bool            `json:"bulkApplied"`
	Adjustments []Adjustment    `json:"adjustments,omitempty"`
}
