package types

import "github.com/shopspring/decimal"

func init() {
	// Amounts and quantities are numbers on the wire, whichever caller encodes them.
	decimal.MarshalJSONWithoutQuotes = true
}

// UnitCount is the unit assigned to counted items and unrecognised units.
const UnitCount = "qty"

// ParsedItem is one interpreted line of a grocery list.
type ParsedItem struct {
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// RecommendationAnalysis summarises the list the recommendation was made for.
type RecommendationAnalysis struct {
	TotalItems     decimal.Decimal            `json:"totalItems"`
	BulkItems      decimal.Decimal            `json:"bulkItems"`
	CategoryTotals map[string]decimal.Decimal `json:"categoryTotals"`
}

// Recommendation is the result of interpreting one grocery list.
type Recommendation struct {
	Items              []ParsedItem           `json:"items"`
	TotalEstimatedCost decimal.Decimal        `json:"totalEstimatedCost"`
	Analysis           RecommendationAnalysis `json:"analysis"`
	RecommendedStore   string                 `json:"recommendedStore"`
	ConfidenceScore    float64                `json:"confidenceScore"`
	Explanation        string                 `json:"explanation"`

	ConfidenceLevel   string   `json:"confidenceLevel,omitempty"`
	ConfidenceReasons []string `json:"confidenceReasons,omitempty"`

	StoreCosts        []StoreCost     `json:"storeCosts,omitempty"`
	SavingsVsNextBest decimal.Decimal `json:"savingsVsNextBest"`
	FavoriteStore     string          `json:"favoriteStore,omitempty"`
	Currency          Currency        `json:"currency,omitempty"`
}
