// Package cmd - history and catalog commands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grocer/adapters/storage"
	"grocer/internal/config"
)

var (
	historyUser   string
	historyLimit  int
	historyFormat string
)

// historyCmd lists saved lists
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's saved grocery lists, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyUser == "" {
			return fmt.Errorf("--user is required")
		}
		cfg := config.Get()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)

		lists, err := store.List(context.Background(), &storage.ListFilter{
			UserID: historyUser,
			Limit:  historyLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(lists)
		}
		if len(lists) == 0 {
			fmt.Fprintf(out, "No saved lists for %s.\n", historyUser)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tSTORE\tTOTAL\tITEMS\tSTATUS\tID")
		for _, l := range lists {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				l.CreatedAt.Local().Format("2006-01-02 15:04"),
				l.RecommendedStore,
				cfg.Currency.Format(l.TotalCost),
				len(l.Items),
				l.Status,
				l.ID)
		}
		return tw.Flush()
	},
}

// catalogCmd prints the catalog in match order
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog keywords in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		eng, err := newEngine(cfg, nil)
		if err != nil {
			return err
		}

		cat := eng.Catalog()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEYWORD\tCATEGORY\tBASE PRICE")
		for _, e := range cat.Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Keyword, e.Category, cfg.Currency.Format(e.BasePrice))
		}
		fmt.Fprintf(tw, "(other)\tUncategorized\t%s\n", cfg.Currency.Format(cat.DefaultPrice()))
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "user id")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum lists to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "cli", "output format (cli, json)")
}
