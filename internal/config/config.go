// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"grocer/core/history"
	"grocer/core/types"
	"grocer/internal/errors"
	"grocer/internal/logging"
)

const (
	// ConfigPathEnv names a config file used when no --config flag is given
	ConfigPathEnv = "GROCER_CONFIG"

	historyBackendEnv = "GROCER_HISTORY_BACKEND"
	historyDSNEnv     = "GROCER_HISTORY_DSN"
	logLevelEnv       = "GROCER_LOG_LEVEL"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Currency labels every amount in explanations and output
	Currency types.Currency `json:"currency" yaml:"currency"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing" yaml:"pricing"`

	// Catalog is the ordered keyword table. Order decides which keyword wins
	// when a name contains several.
	Catalog []CatalogEntry `json:"catalog" yaml:"catalog"`

	// Stores are the candidate stores, in evaluation order
	Stores []StoreConfig `json:"stores" yaml:"stores"`

	// Explanation overrides the shared explanation templates
	Explanation ExplanationConfig `json:"explanation" yaml:"explanation"`

	// History configures where saved lists live
	History HistoryConfig `json:"history" yaml:"history"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// DefaultPrice prices items missing from the catalog. Required.
	DefaultPrice *float64 `json:"default_price" yaml:"default_price"`

	// LoyaltyDiscount applies at the user's favorite store
	LoyaltyDiscount float64 `json:"loyalty_discount" yaml:"loyalty_discount"`
}

// CatalogEntry is one keyword of the catalog
type CatalogEntry struct {
	Keyword   string  `json:"keyword" yaml:"keyword"`
	Category  string  `json:"category" yaml:"category"`
	BasePrice float64 `json:"base_price" yaml:"base_price"`
}

// StoreConfig describes one candidate store
type StoreConfig struct {
	Name             string            `json:"name" yaml:"name"`
	PriceMultiplier  float64           `json:"price_multiplier" yaml:"price_multiplier"`
	BulkDiscountRate float64           `json:"bulk_discount_rate" yaml:"bulk_discount_rate"`
	MinBulkItems     int               `json:"min_bulk_items" yaml:"min_bulk_items"`
	Heuristics       []HeuristicConfig `json:"heuristics,omitempty" yaml:"heuristics,omitempty"`

	// Explanation is a text/template used when this store wins
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// HeuristicConfig is a conditional adjustment (negative = discount)
type HeuristicConfig struct {
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	Kind       string  `json:"kind" yaml:"kind"`
	Category   string  `json:"category,omitempty" yaml:"category,omitempty"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Adjustment float64 `json:"adjustment" yaml:"adjustment"`
}

// ExplanationConfig contains the shared templates
type ExplanationConfig struct {
	Empty   string `json:"empty,omitempty" yaml:"empty,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	Loyalty string `json:"loyalty,omitempty" yaml:"loyalty,omitempty"`
}

// HistoryConfig selects the storage backend
type HistoryConfig struct {
	// Backend is memory, file, sqlite or postgres
	Backend string `json:"backend" yaml:"backend"`

	// DSN is the database source for sqlite and postgres
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// Path is the directory of the file backend
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Limit is how many recent lists decide the favorite store
	Limit int `json:"limit" yaml:"limit"`

	// Timeout bounds the history read, e.g. "2s"
	Timeout string `json:"timeout" yaml:"timeout"`
}

// TimeoutDuration parses Timeout, falling back to the resolver default
func (h HistoryConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil || d <= 0 {
		return history.DefaultTimeout
	}
	return d
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// ShowStores prints every store's adjusted cost
	ShowStores bool `json:"show_stores" yaml:"show_stores"`
}

// Load loads configuration from a file. The format follows the extension:
// .yaml/.yml, .json or .hcl. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FromEnv(), nil
		}
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = decodeJSON(data, cfg)
	case ".hcl":
		err = decodeHCL(path, data, cfg)
	default:
		return nil, errors.Config("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "parse %s", path)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with the GROCER_* environment overrides
// applied. It is the configuration used when no file is given.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(historyBackendEnv); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv(historyDSNEnv); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports configuration that cannot produce a recommendation
func (c *Config) Validate() error {
	if len(c.Stores) == 0 {
		return errors.Config("no stores configured")
	}
	if len(c.Catalog) == 0 {
		return errors.Config("catalog is empty")
	}
	if c.Pricing.DefaultPrice == nil {
		return errors.Config("pricing.default_price must be set explicitly")
	}
	if *c.Pricing.DefaultPrice < 0 {
		return errors.Config("pricing.default_price is negative")
	}
	for _, store := range c.Stores {
		for _, h := range store.Heuristics {
			if !types.HeuristicKind(h.Kind).Valid() {
				return errors.Config("store %q: unknown heuristic kind %q", store.Name, h.Kind)
			}
		}
	}
	switch c.History.Backend {
	case "", "memory", "file", "sqlite", "postgres":
	default:
		return errors.Config("unknown history backend %q", c.History.Backend)
	}
	if c.History.Timeout != "" {
		if _, err := time.ParseDuration(c.History.Timeout); err != nil {
			return errors.Wrapf(errors.TypeConfig, err, "history.timeout")
		}
	}
	return nil
}

// Save saves configuration to a file in the format its extension names
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.NotSupported(fmt.Sprintf("saving %s config", filepath.Ext(path)))
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}

// decodeJSON overlays a JSON document on cfg. encoding/json reuses the
// elements of a non-empty slice, so lists present in the document are cleared
// first and never inherit fields from the defaults.
func decodeJSON(data []byte, cfg *Config) error {
	var present struct {
		Catalog json.RawMessage `json:"catalog"`
		Stores  json.RawMessage `json:"stores"`
	}
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}
	if present.Catalog != nil {
		cfg.Catalog = nil
	}
	if present.Stores != nil {
		cfg.Stores = nil
	}
	return json.Unmarshal(data, cfg)
}

// decodeHCL reads the HCL form:
//
//	currency      = "USD"
//	default_price = 2.0
//	item "milk" { category = "Dairy"  base_price = 3.5 }
//	store "SuperMart" {
//	  price_multiplier = 1.0
//	  heuristic "small_list" { threshold = 5  adjustment = -0.05 }
//	}
func decodeHCL(path string, data []byte, cfg *Config) error {
	var f hclFile
	if err := hclsimple.Decode(path, data, nil, &f); err != nil {
		return err
	}
	f.mergeInto(cfg)
	return nil
}

type hclFile struct {
	Version         *string         `hcl:"version,optional"`
	Currency        *string         `hcl:"currency,optional"`
	DefaultPrice    *float64        `hcl:"default_price,optional"`
	LoyaltyDiscount *float64        `hcl:"loyalty_discount,optional"`
	Items           []hclItem       `hcl:"item,block"`
	Stores          []hclStore      `hcl:"store,block"`
	Explanation     *hclExplanation `hcl:"explanation,block"`
	History         *hclHistory     `hcl:"history,block"`
	Logging         *hclLogging     `hcl:"logging,block"`
}

type hclItem struct {
	Keyword   string  `hcl:"keyword,label"`
	Category  string  `hcl:"category"`
	BasePrice float64 `hcl:"base_price"`
}

type hclStore struct {
	Name             string         `hcl:"name,label"`
	PriceMultiplier  float64        `hcl:"price_multiplier"`
	BulkDiscountRate float64        `hcl:"bulk_discount_rate,optional"`
	MinBulkItems     int            `hcl:"min_bulk_items,optional"`
	Explanation      string         `hcl:"explanation,optional"`
	Heuristics       []hclHeuristic `hcl:"heuristic,block"`
}

type hclHeuristic struct {
	Kind       string  `hcl:"kind,label"`
	Name       string  `hcl:"name,optional"`
	Category   string  `hcl:"category,optional"`
	Threshold  float64 `hcl:"threshold"`
	Adjustment float64 `hcl:"adjustment"`
}

type hclExplanation struct {
	Empty   string `hcl:"empty,optional"`
	Default string `hcl:"default,optional"`
	Loyalty string `hcl:"loyalty,optional"`
}

type hclHistory struct {
	Backend string `hcl:"backend,optional"`
	DSN     string `hcl:"dsn,optional"`
	Path    string `hcl:"path,optional"`
	Limit   int    `hcl:"limit,optional"`
	Timeout string `hcl:"timeout,optional"`
}

type hclLogging struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
	Output string `hcl:"output,optional"`
}

func (f *hclFile) mergeInto(cfg *Config) {
	if f.Version != nil {
		cfg.Version = *f.Version
	}
	if f.Currency != nil {
		cfg.Currency = types.Currency(*f.Currency)
	}
	if f.DefaultPrice != nil {
		price := *f.DefaultPrice
		cfg.Pricing.DefaultPrice = &price
	}
	if f.LoyaltyDiscount != nil {
		cfg.Pricing.LoyaltyDiscount = *f.LoyaltyDiscount
	}

	if len(f.Items) > 0 {
		cfg.Catalog = make([]CatalogEntry, 0, len(f.Items))
		for _, item := range f.Items {
			cfg.Catalog = append(cfg.Catalog, CatalogEntry{
				Keyword:   item.Keyword,
				Category:  item.Category,
				BasePrice: item.BasePrice,
			})
		}
	}

	if len(f.Stores) > 0 {
		cfg.Stores = make([]StoreConfig, 0, len(f.Stores))
		for _, s := range f.Stores {
			store := StoreConfig{
				Name:             s.Name,
				PriceMultiplier:  s.PriceMultiplier,
				BulkDiscountRate: s.BulkDiscountRate,
				MinBulkItems:     s.MinBulkItems,
				Explanation:      s.Explanation,
			}
			for _, h := range s.Heuristics {
				store.Heuristics = append(store.Heuristics, HeuristicConfig{
					Name:       h.Name,
					Kind:       h.Kind,
					Category:   h.Category,
					Threshold:  h.Threshold,
					Adjustment: h.Adjustment,
				})
			}
			cfg.Stores = append(cfg.Stores, store)
		}
	}

	if e := f.Explanation; e != nil {
		if e.Empty != "" {
			cfg.Explanation.Empty = e.Empty
		}
		if e.Default != "" {
			cfg.Explanation.Default = e.Default
		}
		if e.Loyalty != "" {
			cfg.Explanation.Loyalty = e.Loyalty
		}
	}

	if h := f.History; h != nil {
		if h.Backend != "" {
			cfg.History.Backend = h.Backend
		}
		if h.DSN != "" {
			cfg.History.DSN = h.DSN
		}
		if h.Path != "" {
			cfg.History.Path = h.Path
		}
		if h.Limit > 0 {
			cfg.History.Limit = h.Limit
		}
		if h.Timeout != "" {
			cfg.History.Timeout = h.Timeout
		}
	}

	if l := f.Logging; l != nil {
		if l.Level != "" {
			cfg.Logging.Level = l.Level
		}
		if l.Format != "" {
			cfg.Logging.Format = l.Format
		}
		if l.Output != "" {
			cfg.Logging.Output = l.Output
		}
	}
}
