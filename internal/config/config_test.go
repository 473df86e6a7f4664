package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocer/core/engine"
	"grocer/core/types"
	"grocer/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultBuildsEngine(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Catalog, 20)
	assert.Equal(t, "milk", cfg.Catalog[0].Keyword)
	assert.Equal(t, "butter", cfg.Catalog[19].Keyword)
	assert.Len(t, cfg.Stores, 3)

	e, err := engine.New(cfg.EngineOptions(nil, nil))
	require.NoError(t, err)

	rec := e.Recommend(context.Background(), engine.Request{RawText: "2kg rice, 1 liter milk, 6 eggs"})
	assert.Equal(t, "Wholesale Club", rec.RecommendedStore)
	assert.Equal(t, "31.88", rec.TotalEstimatedCost.StringFixed(2))
	assert.Contains(t, rec.Explanation, "Wholesale Club is recommended because you are buying in bulk (9 items, led by milk)")
}

func TestDefaultSmallProduceListPrefersLocalMarket(t *testing.T) {
	e, err := engine.New(Default().EngineOptions(nil, nil))
	require.NoError(t, err)

	// base 2.40: Local Market 2.64 x 0.92 x 0.95, SuperMart 2.40, Wholesale Club 2.04 x 1.25
	rec := e.Recommend(context.Background(), engine.Request{RawText: "3 bananas, 1 tomato"})
	assert.Equal(t, "Local Market", rec.RecommendedStore, rec.Explanation)
	assert.Contains(t, rec.Explanation, "Local Market is best for a small trip")
}

func TestDefaultLocalMarketExplainsLargeProduceList(t *testing.T) {
	cfg := Default()
	cfg.Stores = []StoreConfig{cfg.Stores[0], {Name: "Kiosk", PriceMultiplier: 1.5}}
	e, err := engine.New(cfg.EngineOptions(nil, nil))
	require.NoError(t, err)

	rec := e.Recommend(context.Background(), engine.Request{RawText: "12 bananas, 6 apples"})
	require.Equal(t, "Local Market", rec.RecommendedStore, rec.Explanation)
	assert.Contains(t, rec.Explanation, "Local Market is best for a produce-heavy list like this one (18 items")
	assert.NotContains(t, rec.Explanation, "small trip")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Catalog, cfg.Catalog)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "grocer.yaml", `
currency: EUR
pricing:
  default_price: 1.5
  loyalty_discount: 0.1
catalog:
  - keyword: Oat Milk
    category: Dairy
    base_price: 2.2
stores:
  - name: Corner Shop
    price_multiplier: 1.2
    heuristics:
      - kind: small_list
        threshold: 3
        adjustment: -0.1
  - name: Hypermarket
    price_multiplier: 0.9
    bulk_discount_rate: 0.05
    min_bulk_items: 8
    explanation: "{{.Store}} wins on volume."
history:
  backend: sqlite
  dsn: /tmp/grocer.db
  limit: 3
  timeout: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.CurrencyEUR, cfg.Currency)
	require.NotNil(t, cfg.Pricing.DefaultPrice)
	assert.Equal(t, 1.5, *cfg.Pricing.DefaultPrice)
	require.Len(t, cfg.Catalog, 1)
	require.Len(t, cfg.Stores, 2)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "500ms", cfg.History.TimeoutDuration().String())

	// untouched sections keep their defaults
	assert.Equal(t, Default().Explanation, cfg.Explanation)

	entries := cfg.CatalogEntries()
	assert.Equal(t, "oat milk", entries[0].Keyword)

	profiles := cfg.StoreProfiles()
	assert.Equal(t, types.HeuristicSmallList, profiles[0].Heuristics[0].Kind)
	assert.Equal(t, "-0.1", profiles[0].Heuristics[0].Adjustment.String())
	assert.Equal(t, "{{.Store}} wins on volume.", profiles[1].Template)
}

func TestLoadJSONReplacesStoresWholesale(t *testing.T) {
	path := writeFile(t, "grocer.json", `{"stores": [{"name": "Only", "price_multiplier": 1}]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Stores, 1)
	assert.Empty(t, cfg.Stores[0].Heuristics)
	assert.Empty(t, cfg.Stores[0].Explanation)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "grocer.json", `{
  "pricing": {"default_price": 3},
  "output": {"default_format": "json", "show_stores": true}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *cfg.Pricing.DefaultPrice)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Len(t, cfg.Stores, 3)
}

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "grocer.hcl", `
currency      = "GBP"
default_price = 2.5

item "coffee" {
  category   = "Beverages"
  base_price = 9
}

item "tea" {
  category   = "Beverages"
  base_price = 3.5
}

store "Corner Shop" {
  price_multiplier = 1.15

  heuristic "category_share" {
    name       = "hot drinks"
    category   = "Beverages"
    threshold  = 0.5
    adjustment = -0.2
  }
}

store "Cash and Carry" {
  price_multiplier   = 0.8
  bulk_discount_rate = 0.1
  min_bulk_items     = 20
}

explanation {
  loyalty = "Welcome back!"
}

history {
  backend = "file"
  path    = "/var/lib/grocer"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.CurrencyGBP, cfg.Currency)
	assert.Equal(t, 2.5, *cfg.Pricing.DefaultPrice)
	require.Len(t, cfg.Catalog, 2)
	assert.Equal(t, CatalogEntry{Keyword: "tea", Category: "Beverages", BasePrice: 3.5}, cfg.Catalog[1])

	require.Len(t, cfg.Stores, 2)
	assert.Equal(t, "Corner Shop", cfg.Stores[0].Name)
	require.Len(t, cfg.Stores[0].Heuristics, 1)
	assert.Equal(t, HeuristicConfig{
		Name: "hot drinks", Kind: "category_share", Category: "Beverages", Threshold: 0.5, Adjustment: -0.2,
	}, cfg.Stores[0].Heuristics[0])
	assert.Equal(t, 20, cfg.Stores[1].MinBulkItems)

	assert.Equal(t, "Welcome back!", cfg.Explanation.Loyalty)
	assert.Equal(t, Default().Explanation.Default, cfg.Explanation.Default)
	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, "/var/lib/grocer", cfg.StorageConfig()["path"])

	_, err = engine.New(cfg.EngineOptions(nil, nil))
	require.NoError(t, err)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml syntax", file: "c.yaml", content: "stores: [\n"},
		{name: "hcl syntax", file: "c.hcl", content: "store {"},
		{name: "unknown extension", file: "c.toml", content: "a = 1"},
		{name: "empty stores", file: "c.json", content: `{"stores": []}`},
		{name: "unknown heuristic", file: "c.yaml", content: "stores:\n  - name: S\n    price_multiplier: 1\n    heuristics:\n      - kind: weekday\n"},
		{name: "unknown backend", file: "c.yaml", content: "history:\n  backend: redis\n"},
		{name: "bad timeout", file: "c.yaml", content: "history:\n  timeout: soon\n"},
		{name: "negative default price", file: "c.yaml", content: "pricing:\n  default_price: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
		})
	}
}

func TestValidateRequiresDefaultPrice(t *testing.T) {
	cfg := Default()
	cfg.Pricing.DefaultPrice = nil
	assert.True(t, errors.IsType(cfg.Validate(), errors.TypeConfig))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROCER_HISTORY_BACKEND", "sqlite")
	t.Setenv("GROCER_HISTORY_DSN", "file:test.db")
	t.Setenv("GROCER_LOG_LEVEL", "debug")

	cfg, err := Load(writeFile(t, "c.yaml", "currency: USD\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "file:test.db", cfg.History.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoyaltyDiscountZeroIsKept(t *testing.T) {
	opts := Default().EngineOptions(nil, nil)
	require.NotNil(t, opts.LoyaltyDiscount)
	assert.Equal(t, "0.05", opts.LoyaltyDiscount.String())

	cfg, err := Load(writeFile(t, "c.yaml", "pricing:\n  default_price: 2\n  loyalty_discount: 0\n"))
	require.NoError(t, err)
	opts = cfg.EngineOptions(nil, nil)
	require.NotNil(t, opts.LoyaltyDiscount)
	assert.True(t, opts.LoyaltyDiscount.IsZero())

	_, err = engine.New(opts)
	require.NoError(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GROCER_HISTORY_BACKEND", "file")
	t.Setenv("GROCER_HISTORY_DSN", "lists.json")
	t.Setenv("GROCER_LOG_LEVEL", "info")

	cfg := FromEnv()

	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, "lists.json", cfg.History.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, Default().Stores, cfg.Stores)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvUnset(t *testing.T) {
	t.Setenv("GROCER_HISTORY_BACKEND", "")
	t.Setenv("GROCER_LOG_LEVEL", "")

	cfg := FromEnv()
	assert.Equal(t, Default().History.Backend, cfg.History.Backend)
	assert.Equal(t, Default().Logging.Level, cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Default().Save(path))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, Default().Stores, cfg.Stores)
		})
	}

	err := Default().Save(filepath.Join(t.TempDir(), "out.hcl"))
	assert.True(t, errors.IsType(err, errors.TypeNotSupported))
}
