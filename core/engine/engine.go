// Package engine provides the grocery list recommendation engine.
// CLI and storage layers are thin wrappers around this engine.
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grocer/core/catalog"
	"grocer/core/confidence"
	"grocer/core/explanation"
	"grocer/core/history"
	"grocer/core/parser"
	"grocer/core/pricing"
	"grocer/core/recommend"
	"grocer/core/types"
	"grocer/internal/errors"
)

// Options holds the immutable reference data and collaborators of an Engine.
type Options struct {
	// Catalog is the ordered keyword table; DefaultPrice prices misses
	Catalog      []types.CatalogEntry
	DefaultPrice decimal.Decimal

	// Stores are evaluated in this order; ties go to the earlier store
	Stores []types.StoreProfile

	// LoyaltyDiscount applies at the favorite store. Nil uses the default 5%,
	// zero disables it.
	LoyaltyDiscount *decimal.Decimal

	// Templates override the built-in explanation wording. Per-store templates
	// from Stores[i].Template are merged in.
	Templates explanation.Templates

	// History is optional; without it no favorite store is ever resolved
	History        history.Reader
	HistoryLimit   int
	HistoryTimeout time.Duration

	Currency types.Currency
	Logger   *zap.Logger
}

// Request is a single recommendation request.
type Request struct {
	RawText string
	UserID  string
}

// Engine turns grocery list text into a store recommendation.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	catalog     *catalog.Catalog
	estimator   *pricing.Estimator
	recommender *recommend.Recommender
	resolver    *history.Resolver
	explainer   *explanation.Generator
	currency    types.Currency
	logger      *zap.Logger
}

// New validates the configuration and wires every component. All returned
// errors are errors.TypeConfig.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := catalog.New(opts.Catalog, opts.DefaultPrice)
	if err != nil {
		return nil, err
	}

	rec, err := recommend.New(opts.Stores, recommend.Options{LoyaltyDiscount: opts.LoyaltyDiscount})
	if err != nil {
		return nil, err
	}

	templates := opts.Templates
	templates.ByStore = make(map[string]string, len(opts.Stores)+len(opts.Templates.ByStore))
	for store, src := range opts.Templates.ByStore {
		templates.ByStore[store] = src
	}
	for _, store := range opts.Stores {
		if store.Template != "" {
			templates.ByStore[store.Name] = store.Template
		}
	}
	explainer, err := explanation.New(templates, logger.Named("explanation"))
	if err != nil {
		return nil, err
	}

	currency := opts.Currency
	if currency == "" {
		currency = types.CurrencyUSD
	}

	return &Engine{
		catalog:     cat,
		estimator:   pricing.NewEstimator(cat),
		recommender: rec,
		resolver: history.NewResolver(opts.History, history.Options{
			Limit:   opts.HistoryLimit,
			Timeout: opts.HistoryTimeout,
			Logger:  logger.Named("history"),
		}),
		explainer: explainer,
		currency:  currency,
		logger:    logger,
	}, nil
}

// Catalog returns the engine's catalog
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Stores returns the store profiles in evaluation order
func (e *Engine) Stores() []types.StoreProfile {
	return e.recommender.Stores()
}

// Recommend interprets the list and picks the cheapest store. It never fails
// on list text; the context only bounds the history read.
func (e *Engine) Recommend(ctx context.Context, req Request) *types.Recommendation {
	lines := parser.Parse(req.RawText)
	est := e.estimator.Estimate(lines)

	lookup := e.resolver.Resolve(ctx, req.UserID)
	favorite := ""
	if lookup.HasFavorite() {
		favorite = lookup.Favorite
	}

	result := e.recommender.Recommend(est, favorite)
	best := result.Best()

	tracker := confidence.Track(est)

	facts := explanation.Facts{
		Store:              best.Store,
		ItemCount:          len(est.Lines),
		TotalItems:         est.TotalItems.String(),
		RepresentativeItem: est.RepresentativeItem(),
		DominantCategory:   est.DominantCategory(),
		Savings:            e.currency.Format(result.Savings),
		Cost:               e.currency.Format(best.Cost),
		BulkApplied:        best.BulkApplied,
		Favorite:           favorite != "" && best.Store == favorite,
	}
	for _, adj := range best.Adjustments {
		facts.Adjustments = append(facts.Adjustments, adj.Name)
	}
	if runnerUp, ok := result.RunnerUp(); ok {
		facts.RunnerUp = runnerUp.Store
	}

	categoryTotals := make(map[string]decimal.Decimal, len(est.CategoryTotals))
	for category, total := range est.CategoryTotals {
		categoryTotals[category] = total
	}

	rec := &types.Recommendation{
		Items:              est.Items(),
		TotalEstimatedCost: best.Cost.Round(2),
		Analysis: types.RecommendationAnalysis{
			TotalItems:     est.TotalItems,
			BulkItems:      est.TotalItems,
			CategoryTotals: categoryTotals,
		},
		RecommendedStore:  best.Store,
		ConfidenceScore:   tracker.Score(),
		ConfidenceLevel:   tracker.Level(),
		ConfidenceReasons: tracker.Reasons(),
		Explanation:       e.explainer.Generate(facts),
		StoreCosts:        result.Ranked,
		SavingsVsNextBest: result.Savings.Round(2),
		FavoriteStore:     favorite,
		Currency:          e.currency,
	}

	e.logger.Debug("recommendation computed",
		zap.Int("items", len(rec.Items)),
		zap.String("store", rec.RecommendedStore),
		zap.String("total", rec.TotalEstimatedCost.String()),
		zap.String("history", lookup.Status.String()),
		zap.Float64("confidence", rec.ConfidenceScore))

	return rec
}

// IsConfigError reports whether err came from invalid configuration.
func IsConfigError(err error) bool {
	return errors.IsType(err, errors.TypeConfig)
}
