package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"grocer/core/engine"
	"grocer/core/explanation"
	"grocer/core/history"
	"grocer/core/types"
)

// CatalogEntries converts the catalog to core types, keeping its order.
// Keywords are lowercased so hand-written files match case-insensitively.
func (c *Config) CatalogEntries() []types.CatalogEntry {
	entries := make([]types.CatalogEntry, 0, len(c.Catalog))
	for _, e := range c.Catalog {
		entries = append(entries, types.CatalogEntry{
			Keyword:   strings.ToLower(strings.TrimSpace(e.Keyword)),
			Category:  e.Category,
			BasePrice: decimal.NewFromFloat(e.BasePrice),
		})
	}
	return entries
}

// StoreProfiles converts the store list to core types
func (c *Config) StoreProfiles() []types.StoreProfile {
	profiles := make([]types.StoreProfile, 0, len(c.Stores))
	for _, s := range c.Stores {
		profile := types.StoreProfile{
			Name:             s.Name,
			PriceMultiplier:  decimal.NewFromFloat(s.PriceMultiplier),
			BulkDiscountRate: decimal.NewFromFloat(s.BulkDiscountRate),
			MinBulkItemCount: s.MinBulkItems,
			Template:         s.Explanation,
		}
		for _, h := range s.Heuristics {
			profile.Heuristics = append(profile.Heuristics, types.Heuristic{
				Name:       h.Name,
				Kind:       types.HeuristicKind(h.Kind),
				Category:   h.Category,
				Threshold:  decimal.NewFromFloat(h.Threshold),
				Adjustment: decimal.NewFromFloat(h.Adjustment),
			})
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// Templates returns the shared explanation templates. Blank entries keep
// the built-in wording.
func (c *Config) Templates() explanation.Templates {
	t := explanation.DefaultTemplates()
	if c.Explanation.Empty != "" {
		t.Empty = c.Explanation.Empty
	}
	if c.Explanation.Default != "" {
		t.Default = c.Explanation.Default
	}
	if c.Explanation.Loyalty != "" {
		t.Loyalty = c.Explanation.Loyalty
	}
	return t
}

// EngineOptions assembles engine options from the configuration. reader may
// be nil, in which case no favorite store is ever resolved.
func (c *Config) EngineOptions(reader history.Reader, logger *zap.Logger) engine.Options {
	var defaultPrice decimal.Decimal
	if c.Pricing.DefaultPrice != nil {
		defaultPrice = decimal.NewFromFloat(*c.Pricing.DefaultPrice)
	}

	loyalty := decimal.NewFromFloat(c.Pricing.LoyaltyDiscount)
	return engine.Options{
		Catalog:         c.CatalogEntries(),
		DefaultPrice:    defaultPrice,
		Stores:          c.StoreProfiles(),
		LoyaltyDiscount: &loyalty,
		Templates:       c.Templates(),
		History:         reader,
		HistoryLimit:    c.History.Limit,
		HistoryTimeout:  c.History.TimeoutDuration(),
		Currency:        c.Currency,
		Logger:          logger,
	}
}

// StorageConfig is the key/value form the storage factory accepts
func (c *Config) StorageConfig() map[string]string {
	return map[string]string{
		"path": c.History.Path,
		"dsn":  c.History.DSN,
	}
}
