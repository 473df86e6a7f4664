// Package catalog - Product catalog lookup
// Maps item names to a category and base unit price by keyword containment.
//
// Keyword order is part of the configuration: a name matches the FIRST keyword,
// in definition order, that it contains. With "rice" defined before "basmati",
// "basmati rice" is priced as rice. Reordering keywords changes results.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"grocer/core/types"
	"grocer/internal/errors"
)

// Match is the result of looking up one item name
type Match struct {
	// Keyword is the catalog keyword that matched, empty on a miss
	Keyword string

	// Category is the matched category or types.Uncategorized
	Category string

	// BasePrice is the per-unit (per kg / per litre for weights) price
	BasePrice decimal.Decimal
}

// Found reports whether the lookup hit a catalog keyword
func (m Match) Found() bool {
	return m.Keyword != ""
}

// Catalog is an immutable, ordered keyword table
type Catalog struct {
	entries      []types.CatalogEntry
	defaultPrice decimal.Decimal
}

// New validates entries and builds a catalog. The default price applies to
// names no keyword matches.
func New(entries []types.CatalogEntry, defaultPrice decimal.Decimal) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.Config("catalog has no entries")
	}
	if defaultPrice.IsNegative() {
		return nil, errors.Config("catalog default price %s is negative", defaultPrice)
	}

	seen := make(map[string]bool, len(entries))
	owned := make([]types.CatalogEntry, 0, len(entries))
	for i, entry := range entries {
		keyword := strings.TrimSpace(entry.Keyword)
		switch {
		case keyword == "":
			return nil, errors.Config("catalog entry %d has an empty keyword", i)
		case keyword != strings.ToLower(keyword):
			return nil, errors.Config("catalog keyword %q must be lowercase", keyword)
		case seen[keyword]:
			return nil, errors.Config("catalog keyword %q is defined twice", keyword)
		case strings.TrimSpace(entry.Category) == "":
			return nil, errors.Config("catalog keyword %q has no category", keyword)
		case entry.BasePrice.IsNegative():
			return nil, errors.Config("catalog keyword %q has negative price %s", keyword, entry.BasePrice)
		}
		seen[keyword] = true
		entry.Keyword = keyword
		owned = append(owned, entry)
	}

	return &Catalog{entries: owned, defaultPrice: defaultPrice}, nil
}

// Match returns the first entry whose keyword is a substring of name
func (c *Catalog) Match(name string) Match {
	lowered := strings.ToLower(name)
	for _, entry := range c.entries {
		if strings.Contains(lowered, entry.Keyword) {
			return Match{
				Keyword:   entry.Keyword,
				Category:  entry.Category,
				BasePrice: entry.BasePrice,
			}
		}
	}
	return Match{
		Category:  types.Uncategorized,
		BasePrice: c.defaultPrice,
	}
}

// DefaultPrice returns the price used for catalog misses
func (c *Catalog) DefaultPrice() decimal.Decimal {
	return c.defaultPrice
}

// Entries returns a copy of the entries in definition order
func (c *Catalog) Entries() []types.CatalogEntry {
	out := make([]types.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of keywords
func (c *Catalog) Len() int {
	return len(c.entries)
}
