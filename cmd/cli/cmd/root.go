// Package cmd provides the CLI commands for grocer.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"grocer/adapters/storage"
	"grocer/core/engine"
	"grocer/internal/config"
	"grocer/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grocer",
	Short: "Turn a grocery list into a store recommendation",
	Long: `grocer reads a free-form grocery list, prices it against a catalog and
recommends the cheapest store, with a short explanation.

Examples:
  grocer recommend "2kg rice, 1 liter milk, 6 eggs"
  grocer recommend --file list.txt --user alice --save
  grocer history --user alice
  grocer catalog`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file: .yaml, .json or .hcl (default $"+config.ConfigPathEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = os.Getenv(config.ConfigPathEnv)
	}

	cfg := config.FromEnv()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	logging.Debug("configuration loaded",
		zap.String("file", cfgFile),
		zap.String("history_backend", cfg.History.Backend))
}

// openStore opens the configured history backend
func openStore(cfg *config.Config) (storage.Store, error) {
	store, err := storage.StoreFactory(storage.Backend(cfg.History.Backend), cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// closeStore releases the history backend, logging a failed close
func closeStore(store storage.Store) {
	if err := store.Close(); err != nil {
		logging.Warn("failed to close history", zap.Error(err))
	}
}

// newEngine builds an engine that reads favorites from store
func newEngine(cfg *config.Config, store storage.Store) (*engine.Engine, error) {
	eng, err := engine.New(cfg.EngineOptions(store, logging.Named("engine")))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return eng, nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "grocer version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(config.Get()); err != nil {
			return err
		}
		return enc.Close()
	},
}
