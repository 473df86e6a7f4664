package config

import (
	"grocer/core/explanation"
	"grocer/core/history"
	"grocer/core/types"
	"grocer/internal/logging"
)

// DefaultPrice is the price of an item missing from the default catalog
const DefaultPrice = 2.00

// Default returns the default configuration: the reference catalog and the
// three reference stores.
func Default() *Config {
	price := DefaultPrice
	templates := explanation.DefaultTemplates()

	return &Config{
		Version:  "1.0",
		Currency: types.CurrencyUSD,
		Pricing: PricingConfig{
			DefaultPrice:    &price,
			LoyaltyDiscount: 0.05,
		},
		Catalog: defaultCatalog(),
		Stores:  defaultStores(),
		Explanation: ExplanationConfig{
			Empty:   templates.Empty,
			Default: templates.Default,
			Loyalty: templates.Loyalty,
		},
		History: HistoryConfig{
			Backend: "memory",
			Path:    ".grocer",
			Limit:   history.DefaultLimit,
			Timeout: history.DefaultTimeout.String(),
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

func defaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Keyword: "milk", Category: "Dairy", BasePrice: 3.50},
		{Keyword: "bread", Category: "Bakery", BasePrice: 2.50},
		{Keyword: "eggs", Category: "Dairy", BasePrice: 4.00},
		{Keyword: "banana", Category: "Produce", BasePrice: 0.50},
		{Keyword: "apple", Category: "Produce", BasePrice: 0.80},
		{Keyword: "chicken", Category: "Meat", BasePrice: 8.00},
		{Keyword: "rice", Category: "Grains", BasePrice: 5.00},
		{Keyword: "cheese", Category: "Dairy", BasePrice: 6.00},
		{Keyword: "yogurt", Category: "Dairy", BasePrice: 1.20},
		{Keyword: "potato", Category: "Produce", BasePrice: 0.60},
		{Keyword: "onion", Category: "Produce", BasePrice: 0.70},
		{Keyword: "tomato", Category: "Produce", BasePrice: 0.90},
		{Keyword: "beef", Category: "Meat", BasePrice: 12.00},
		{Keyword: "pasta", Category: "Grains", BasePrice: 2.00},
		{Keyword: "cereal", Category: "Breakfast", BasePrice: 4.50},
		{Keyword: "coffee", Category: "Beverages", BasePrice: 10.00},
		{Keyword: "tea", Category: "Beverages", BasePrice: 4.00},
		{Keyword: "sugar", Category: "Baking", BasePrice: 2.50},
		{Keyword: "flour", Category: "Baking", BasePrice: 3.00},
		{Keyword: "butter", Category: "Dairy", BasePrice: 5.00},
	}
}

func defaultStores() []StoreConfig {
	return []StoreConfig{
		{
			Name:            "Local Market",
			PriceMultiplier: 1.10,
			Heuristics: []HeuristicConfig{
				{
					Name:       "fresh produce",
					Kind:       string(types.HeuristicCategoryShare),
					Category:   "Produce",
					Threshold:  0.30,
					Adjustment: -0.08,
				},
				{
					Name:       "quick trip",
					Kind:       string(types.HeuristicSmallList),
					Threshold:  5,
					Adjustment: -0.05,
				},
			},
			Explanation: `{{if .Applied "quick trip"}}Local Market is best for a small trip like this one` +
				`{{else if .Applied "fresh produce"}}Local Market is best for a produce-heavy list like this one` +
				`{{else}}Local Market has the lowest total for this list{{end}}` +
				` ({{.TotalItems}} items, mostly {{.RepresentativeItem}})` +
				`{{if .RunnerUp}} and beats {{.RunnerUp}} by {{.Savings}}{{end}}.`,
		},
		{
			Name:             "SuperMart",
			PriceMultiplier:  1.00,
			BulkDiscountRate: 0.05,
			MinBulkItems:     5,
			Explanation: "SuperMart offers the best balance of price and selection for " +
				"{{.TotalItems}} items including {{.RepresentativeItem}}" +
				"{{if .BulkApplied}}, with its bulk discount applied{{end}}" +
				"{{if .RunnerUp}}, saving {{.Savings}} over {{.RunnerUp}}{{end}}.",
		},
		{
			Name:             "Wholesale Club",
			PriceMultiplier:  0.85,
			BulkDiscountRate: 0.10,
			MinBulkItems:     10,
			Heuristics: []HeuristicConfig{
				{
					Name:       "membership overhead",
					Kind:       string(types.HeuristicSmallList),
					Threshold:  5,
					Adjustment: 0.25,
				},
			},
			Explanation: "Wholesale Club is recommended because you are buying in bulk " +
				"({{.TotalItems}} items, led by {{.RepresentativeItem}}). " +
				"{{if .BulkApplied}}The 15% lower base prices plus the bulk discount" +
				"{{else}}The 15% lower base prices{{end}}" +
				"{{if .RunnerUp}} save you {{.Savings}} over {{.RunnerUp}}{{else}} keep the total low{{end}}.",
		},
	}
}
