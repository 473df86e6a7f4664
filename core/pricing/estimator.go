// Package pricing estimates line prices from the catalog and aggregates them
// into the list's base cost.
package pricing

import (
	"github.com/shopspring/decimal"

	"grocer/core/catalog"
	"grocer/core/parser"
	"grocer/core/types"
)

// PricedLine keeps the parse and lookup details behind one item.
type PricedLine struct {
	Item    types.ParsedItem
	Pattern parser.Pattern
	Keyword string
}

// Matched reports whether the item hit a catalog keyword.
func (p PricedLine) Matched() bool {
	return p.Keyword != ""
}

// Estimate is the priced list before any store is applied.
type Estimate struct {
	Lines []PricedLine

	// BaseCost is the sum of every item's estimated price
	BaseCost decimal.Decimal

	// TotalItems is the sum of item quantities
	TotalItems decimal.Decimal

	// CategoryTotals sums estimated prices per category
	CategoryTotals map[string]decimal.Decimal

	// CategoryOrder lists categories by first appearance
	CategoryOrder []string
}

// Items returns the parsed items in input order.
func (e *Estimate) Items() []types.ParsedItem {
	items := make([]types.ParsedItem, len(e.Lines))
	for i, line := range e.Lines {
		items[i] = line.Item
	}
	return items
}

// CategoryShare returns the category's fraction of the base cost. An empty or
// zero-cost list has no shares.
func (e *Estimate) CategoryShare(category string) decimal.Decimal {
	if !e.BaseCost.IsPositive() {
		return decimal.Zero
	}
	return e.CategoryTotals[category].Div(e.BaseCost)
}

// DominantCategory is the category with the largest total; ties go to the one
// that appeared first.
func (e *Estimate) DominantCategory() string {
	best := ""
	for _, category := range e.CategoryOrder {
		if best == "" || e.CategoryTotals[category].GreaterThan(e.CategoryTotals[best]) {
			best = category
		}
	}
	return best
}

// RepresentativeItem names the first item of the dominant category.
func (e *Estimate) RepresentativeItem() string {
	dominant := e.DominantCategory()
	for _, line := range e.Lines {
		if line.Item.Category == dominant {
			return line.Item.Name
		}
	}
	return ""
}

// Estimator prices parsed lines against a catalog.
type Estimator struct {
	catalog *catalog.Catalog
}

// NewEstimator creates an estimator over an immutable catalog.
func NewEstimator(c *catalog.Catalog) *Estimator {
	return &Estimator{catalog: c}
}

// Estimate prices every line. It never fails: catalog misses use the default
// price under types.Uncategorized.
func (e *Estimator) Estimate(lines []parser.Line) *Estimate {
	est := &Estimate{
		Lines:          make([]PricedLine, 0, len(lines)),
		BaseCost:       decimal.Zero,
		TotalItems:     decimal.Zero,
		CategoryTotals: make(map[string]decimal.Decimal),
	}

	for _, line := range lines {
		match := e.catalog.Match(line.Name)
		price := match.BasePrice.Mul(parser.CostMultiplier(line.Unit, line.Quantity))

		est.Lines = append(est.Lines, PricedLine{
			Item: types.ParsedItem{
				Name:           line.Name,
				Quantity:       line.Quantity,
				Unit:           line.Unit,
				Category:       match.Category,
				EstimatedPrice: price,
			},
			Pattern: line.Pattern,
			Keyword: match.Keyword,
		})

		if _, ok := est.CategoryTotals[match.Category]; !ok {
			est.CategoryOrder = append(est.CategoryOrder, match.Category)
		}
		est.CategoryTotals[match.Category] = est.CategoryTotals[match.Category].Add(price)
		est.BaseCost = est.BaseCost.Add(price)
		est.TotalItems = est.TotalItems.Add(line.Quantity)
	}

	return est
}
