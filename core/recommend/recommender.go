// Package recommend ranks candidate stores by the adjusted cost of a priced
// grocery list.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"grocer/core/pricing"
	"grocer/core/types"
	"grocer/internal/errors"
)

// DefaultLoyaltyDiscount is the discount applied at the user's favorite store.
var DefaultLoyaltyDiscount = decimal.RequireFromString("0.05")

var one = decimal.NewFromInt(1)

// Options configures a Recommender.
type Options struct {
	// LoyaltyDiscount is a fraction in [0, 1). Nil uses DefaultLoyaltyDiscount;
	// zero disables the loyalty adjustment.
	LoyaltyDiscount *decimal.Decimal
}

// Recommender evaluates a fixed, ordered set of store profiles.
type Recommender struct {
	stores  []types.StoreProfile
	loyalty decimal.Decimal
}

// Result is the store ranking for one list.
type Result struct {
	// Ranked holds every store, cheapest first. Equal costs keep
	// configuration order.
	Ranked []types.StoreCost

	// Savings is the runner-up's cost minus the winner's, zero with one store.
	Savings decimal.Decimal
}

// Best returns the cheapest store.
func (r Result) Best() types.StoreCost {
	return r.Ranked[0]
}

// RunnerUp returns the second cheapest store, if any.
func (r Result) RunnerUp() (types.StoreCost, bool) {
	if len(r.Ranked) < 2 {
		return types.StoreCost{}, false
	}
	return r.Ranked[1], true
}

// New validates store profiles and builds a recommender.
func New(stores []types.StoreProfile, opts Options) (*Recommender, error) {
	if len(stores) == 0 {
		return nil, errors.Config("no stores configured")
	}

	loyalty := DefaultLoyaltyDiscount
	if opts.LoyaltyDiscount != nil {
		loyalty = *opts.LoyaltyDiscount
	}
	if loyalty.IsNegative() || loyalty.GreaterThanOrEqual(one) {
		return nil, errors.Config("loyalty discount %s must be in [0, 1)", loyalty)
	}

	seen := make(map[string]bool, len(stores))
	owned := make([]types.StoreProfile, len(stores))
	for i, store := range stores {
		if err := validateStore(store); err != nil {
			return nil, err
		}
		if seen[store.Name] {
			return nil, errors.Config("store %q is defined twice", store.Name)
		}
		seen[store.Name] = true

		owned[i] = store
		owned[i].Heuristics = append([]types.Heuristic(nil), store.Heuristics...)
	}

	return &Recommender{stores: owned, loyalty: loyalty}, nil
}

func validateStore(store types.StoreProfile) error {
	switch {
	case strings.TrimSpace(store.Name) == "":
		return errors.Config("store with empty name")
	case !store.PriceMultiplier.IsPositive():
		return errors.Config("store %q: price multiplier must be positive", store.Name)
	case store.BulkDiscountRate.IsNegative() || store.BulkDiscountRate.GreaterThan(one):
		return errors.Config("store %q: bulk discount rate must be in [0, 1]", store.Name)
	case store.MinBulkItemCount < 0:
		return errors.Config("store %q: minimum bulk item count is negative", store.Name)
	}

	for _, h := range store.Heuristics {
		if !h.Kind.Valid() {
			return errors.Config("store %q: unknown heuristic kind %q", store.Name, h.Kind)
		}
		if h.Kind == types.HeuristicCategoryShare && h.Category == "" {
			return errors.Config("store %q: category_share heuristic needs a category", store.Name)
		}
		if h.Adjustment.LessThanOrEqual(one.Neg()) {
			return errors.Config("store %q: heuristic adjustment %s would make cost non-positive", store.Name, h.Adjustment)
		}
	}
	return nil
}

// Stores returns the profiles in evaluation order.
func (r *Recommender) Stores() []types.StoreProfile {
	out := make([]types.StoreProfile, len(r.stores))
	copy(out, r.stores)
	return out
}

// Recommend evaluates every store against the estimate and ranks them.
// favorite may be empty.
func (r *Recommender) Recommend(est *pricing.Estimate, favorite string) Result {
	ranked := make([]types.StoreCost, 0, len(r.stores))
	for _, store := range r.stores {
		ranked = append(ranked, r.evaluate(store, est, favorite))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cost.LessThan(ranked[j].Cost)
	})

	result := Result{Ranked: ranked, Savings: decimal.Zero}
	if runnerUp, ok := result.RunnerUp(); ok {
		result.Savings = runnerUp.Cost.Sub(ranked[0].Cost)
	}
	return result
}

func (r *Recommender) evaluate(store types.StoreProfile, est *pricing.Estimate, favorite string) types.StoreCost {
	sc := types.StoreCost{
		Store: store.Name,
		Cost:  est.BaseCost.Mul(store.PriceMultiplier),
	}

	if est.TotalItems.GreaterThanOrEqual(decimal.NewFromInt(int64(store.MinBulkItemCount))) {
		sc.Cost = sc.Cost.Mul(one.Sub(store.BulkDiscountRate))
		if store.BulkDiscountRate.IsPositive() {
			sc.BulkApplied = true
			sc.Adjustments = append(sc.Adjustments, types.Adjustment{
				Name: "bulk discount",
				Rate: store.BulkDiscountRate.Neg(),
			})
		}
	}

	for _, h := range store.Heuristics {
		if !fires(h, est) {
			continue
		}
		sc.Cost = sc.Cost.Mul(one.Add(h.Adjustment))
		sc.Adjustments = append(sc.Adjustments, types.Adjustment{
			Name: heuristicName(h),
			Rate: h.Adjustment,
		})
	}

	if favorite != "" && store.Name == favorite && r.loyalty.IsPositive() {
		sc.Cost = sc.Cost.Mul(one.Sub(r.loyalty))
		sc.Adjustments = append(sc.Adjustments, types.Adjustment{
			Name: "loyalty",
			Rate: r.loyalty.Neg(),
		})
	}

	return sc
}

func fires(h types.Heuristic, est *pricing.Estimate) bool {
	switch h.Kind {
	case types.HeuristicCategoryShare:
		return est.CategoryShare(h.Category).GreaterThan(h.Threshold)
	case types.HeuristicSmallList:
		return est.TotalItems.LessThan(h.Threshold)
	default:
		return false
	}
}

func heuristicName(h types.Heuristic) string {
	if h.Name != "" {
		return h.Name
	}
	if h.Kind == types.HeuristicCategoryShare {
		return fmt.Sprintf("%s share above %s%%", h.Category, h.Threshold.Shift(2).String())
	}
	return fmt.Sprintf("fewer than %s items", h.Threshold.String())
}
