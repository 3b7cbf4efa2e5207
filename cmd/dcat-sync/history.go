// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dcat-sync/internal/runlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the local ledger",
	Long: `History prints the most recent run summaries recorded in the ledger
configured via sync.ledger_path. Without a configured ledger there is
nothing to show.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Sync.LedgerPath == "" {
		return fmt.Errorf("no run ledger configured: set sync.ledger_path")
	}

	store, err := runlog.Open(cfg.Sync.LedgerPath)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-8s  %7s  %7s  %7s  %9s  %6s  %s\n",
		"Started", "Duration", "Created", "Updated", "Retired", "Unchanged", "Failed", "Mode")
	for _, e := range entries {
		mode := "sync"
		if e.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-8s  %7d  %7d  %7d  %9d  %6d  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			e.FinishedAt.Sub(e.StartedAt).Round(time.Second),
			e.Created, e.Updated, e.Retired, e.Unchanged, e.Failed, mode)
	}
	return nil
}
