// Package cmd - recommend command
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grocer/adapters/storage"
	"grocer/core/engine"
	"grocer/core/output"
	"grocer/internal/config"
	"grocer/internal/logging"
)

var (
	outputFormat string
	listFile     string
	userID       string
	saveList     bool
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend [text]",
	Short: "Recommend a store for a grocery list",
	Long: `Parse a grocery list, price it and recommend the cheapest store.

Items are separated by newlines or commas. The list comes from the argument,
from --file, or from stdin when neither is given.

Examples:
  grocer recommend "2 dozen eggs, 500g rice, bread"
  grocer recommend --file list.txt --format json
  grocer recommend --user alice --save "milk 2, bananas 6"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	recommendCmd.Flags().StringVar(&listFile, "file", "", "read the list from a file")
	recommendCmd.Flags().StringVarP(&userID, "user", "u", "", "user whose history biases the recommendation")
	recommendCmd.Flags().BoolVar(&saveList, "save", false, "save the recommendation to the user's history")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	startTime := time.Now()
	cfg := config.Get()

	raw, err := readList(cmd, args)
	if err != nil {
		return err
	}
	if saveList && userID == "" {
		return fmt.Errorf("--save needs --user")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	eng, err := newEngine(cfg, store)
	if err != nil {
		return err
	}

	rec := eng.Recommend(ctx, engine.Request{RawText: raw, UserID: userID})

	result := &output.Result{
		Recommendation: rec,
		Metadata: output.Metadata{
			Timestamp: startTime.UTC().Format(time.RFC3339),
			Duration:  time.Since(startTime).String(),
			Version:   Version,
			UserID:    userID,
		},
	}

	if saveList {
		list := storage.FromRecommendation(userID, raw, rec)
		if err := store.Save(ctx, list); err != nil {
			return fmt.Errorf("failed to save list: %w", err)
		}
		result.Metadata.SavedID = list.ID
		logging.Info("list saved", zap.String("id", list.ID), zap.String("user", userID))
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	formatter, err := output.NewRegistry().Get(format)
	if err != nil {
		return err
	}
	if cli, ok := formatter.(*output.CLIFormatter); ok {
		cli.ShowStores = cfg.Output.ShowStores
	}
	return formatter.Render(cmd.OutOrStdout(), result)
}

func readList(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case listFile != "":
		data, err := os.ReadFile(listFile)
		if err != nil {
			return "", fmt.Errorf("failed to read list: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("no grocery list given")
		}
		return string(data), nil
	}
}
