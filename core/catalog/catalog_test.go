package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocer/core/types"
	"grocer/internal/errors"
)

func entry(keyword, category string, price float64) types.CatalogEntry {
	return types.CatalogEntry{Keyword: keyword, Category: category, BasePrice: decimal.NewFromFloat(price)}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]types.CatalogEntry{
		entry("milk", "Dairy", 3.5),
		entry("rice", "Grains", 5),
		entry("apple", "Produce", 0.8),
		entry("cereal", "Breakfast", 4.5),
		entry("butter", "Dairy", 5),
	}, decimal.NewFromInt(2))
	require.NoError(t, err)
	return c
}

func TestMatchFirstKeywordWins(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name     string
		keyword  string
		category string
		price    string
	}{
		{name: "milk", keyword: "milk", category: "Dairy", price: "3.5"},
		{name: "Whole Milk", keyword: "milk", category: "Dairy", price: "3.5"},
		{name: "pineapple", keyword: "apple", category: "Produce", price: "0.8"},
		// both keywords present; the earlier definition wins
		{name: "rice cereal", keyword: "rice", category: "Grains", price: "5"},
		{name: "buttermilk", keyword: "milk", category: "Dairy", price: "3.5"},
		{name: "peanut butter", keyword: "butter", category: "Dairy", price: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := c.Match(tt.name)
			assert.True(t, m.Found())
			assert.Equal(t, tt.keyword, m.Keyword)
			assert.Equal(t, tt.category, m.Category)
			assert.True(t, m.BasePrice.Equal(decimal.RequireFromString(tt.price)), "price %s", m.BasePrice)
		})
	}
}

func TestMatchMissUsesDefaultPrice(t *testing.T) {
	c := testCatalog(t)

	m := c.Match("dragon fruit")
	assert.False(t, m.Found())
	assert.Equal(t, types.Uncategorized, m.Category)
	assert.True(t, m.BasePrice.Equal(decimal.NewFromInt(2)))
}

func TestReorderingChangesMatch(t *testing.T) {
	c, err := New([]types.CatalogEntry{
		entry("cereal", "Breakfast", 4.5),
		entry("rice", "Grains", 5),
	}, decimal.NewFromInt(2))
	require.NoError(t, err)

	assert.Equal(t, "Breakfast", c.Match("rice cereal").Category)
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name         string
		entries      []types.CatalogEntry
		defaultPrice decimal.Decimal
	}{
		{name: "no entries", entries: nil, defaultPrice: decimal.NewFromInt(2)},
		{name: "negative default", entries: []types.CatalogEntry{entry("milk", "Dairy", 1)}, defaultPrice: decimal.NewFromInt(-1)},
		{name: "empty keyword", entries: []types.CatalogEntry{entry(" ", "Dairy", 1)}, defaultPrice: decimal.Zero},
		{name: "uppercase keyword", entries: []types.CatalogEntry{entry("Milk", "Dairy", 1)}, defaultPrice: decimal.Zero},
		{name: "duplicate keyword", entries: []types.CatalogEntry{entry("milk", "Dairy", 1), entry("milk", "Dairy", 2)}, defaultPrice: decimal.Zero},
		{name: "missing category", entries: []types.CatalogEntry{entry("milk", "", 1)}, defaultPrice: decimal.Zero},
		{name: "negative price", entries: []types.CatalogEntry{entry("milk", "Dairy", -1)}, defaultPrice: decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries, tt.defaultPrice)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := testCatalog(t)

	entries := c.Entries()
	entries[0].Keyword = "changed"

	assert.Equal(t, "milk", c.Entries()[0].Keyword)
	assert.Equal(t, 5, c.Len())
}
