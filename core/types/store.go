package types

import "github.com/shopspring/decimal"

// HeuristicKind selects the condition a store heuristic checks.
type HeuristicKind string

const (
	// HeuristicCategoryShare fires when one category's share of the base cost
	// exceeds Threshold (a fraction, 0.3 = 30%).
	HeuristicCategoryShare HeuristicKind = "category_share"

	// HeuristicSmallList fires when the total item quantity is below Threshold.
	HeuristicSmallList HeuristicKind = "small_list"
)

// Valid reports whether k is a known heuristic kind.
func (k HeuristicKind) Valid() bool {
	switch k {
	case HeuristicCategoryShare, HeuristicSmallList:
		return true
	}
	return false
}

// Heuristic is a conditional cost adjustment attached to a store.
type Heuristic struct {
	Name       string          `json:"name"`
	Kind       HeuristicKind   `json:"kind"`
	Category   string          `json:"category,omitempty"`
	Threshold  decimal.Decimal `json:"threshold"`
	Adjustment decimal.Decimal `json:"adjustment"`
}

// StoreProfile describes a candidate store's pricing behaviour.
type StoreProfile struct {
	Name             string          `json:"name"`
	PriceMultiplier  decimal.Decimal `json:"priceMultiplier"`
	BulkDiscountRate decimal.Decimal `json:"bulkDiscountRate"`
	MinBulkItemCount int             `json:"minBulkItemCount"`
	Heuristics       []Heuristic     `json:"heuristics,omitempty"`

	// Template is the explanation template used when this store wins.
	Template string `json:"-"`
}

// CatalogEntry is one keyword of the product catalog.
type CatalogEntry struct {
	Keyword   string          `json:"keyword"`
	Category  string          `json:"category"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

// Uncategorized is the category assigned to items missing from the catalog.
const Uncategorized = "Uncategorized"
