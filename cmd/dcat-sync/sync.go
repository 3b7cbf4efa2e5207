// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dcat-sync/internal/auth"
	"github.com/pdiddy/dcat-sync/internal/catalog"
	"github.com/pdiddy/dcat-sync/internal/httputil"
	"github.com/pdiddy/dcat-sync/internal/reconcile"
	"github.com/pdiddy/dcat-sync/internal/runlog"
	"github.com/pdiddy/dcat-sync/internal/source"
	"github.com/pdiddy/dcat-sync/internal/transform"
	"github.com/pdiddy/dcat-sync/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation of the catalog against the source",
	Long: `Sync authenticates against the catalog's identity provider, pulls the
source site's items, and reconciles them against the catalog's holdings:
unmatched datasets are created, changed distribution lists are updated,
and datasets gone from the source are retired. One record's failure is
reported and the run continues with the rest.

With --dry-run the decisions are computed and logged but nothing is written.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "compute and log decisions without writing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := loadConfig()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	started := time.Now()

	// The login flow reads redirects instead of following them; catalog
	// and source calls use a plain client.
	session, err := auth.Authenticate(ctx, httputil.NoRedirectClient(cfg.Catalog.Timeout), cfg.Catalog)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if exp, ok := auth.Expiry(session.Token); ok {
		if !exp.After(time.Now()) {
			return fmt.Errorf("access token expired at %s before the run started", exp.Format(time.RFC3339))
		}
		logger.Debug().Time("expires", exp).Msg("access token obtained")
	}

	datasets, err := pullSource(ctx, cfg)
	if err != nil {
		return err
	}

	client := catalog.NewClient(session, &http.Client{Timeout: cfg.Catalog.Timeout}, cfg.Catalog.UserAgent, logger)
	target, err := client.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching catalog baseline: %w", err)
	}
	logger.Info().Int("source", len(datasets)).Int("catalog", len(target)).Bool("dry_run", dryRun).Msg("reconciling")

	engine := reconcile.NewEngine(client, logger, cfg.Sync.Prefix, dryRun)
	sum := engine.Run(ctx, datasets, target)
	finished := time.Now()

	recordRun(cfg, started, finished, sum, dryRun)

	fmt.Printf("%d created, %d updated, %d retired (%d unchanged) in %s\n",
		sum.Created, sum.Updated, sum.Retired, sum.Unchanged, finished.Sub(started).Round(time.Second))

	if sum.HasFailures() {
		return fmt.Errorf("%d record(s) failed to sync", len(sum.Errors))
	}
	return nil
}

// pullSource fetches the source items and transforms them into datasets.
func pullSource(ctx context.Context, cfg appConfig) ([]types.Dataset, error) {
	items, err := source.NewClient(cfg.Source, &http.Client{Timeout: cfg.Source.Timeout}, logger).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("pulling source items: %w", err)
	}

	themes, err := transform.LoadThemeMap(cfg.Sync.ThemeMapPath)
	if err != nil {
		return nil, err
	}

	builder := transform.NewBuilder(themes, cfg.Source.URL, nil)
	var datasets []types.Dataset
	for _, item := range items {
		if ds, ok := builder.Build(item); ok {
			datasets = append(datasets, ds)
		}
	}

	logger.Debug().Int("items", len(items)).Int("datasets", len(datasets)).Msg("source transformed")
	return datasets, nil
}

// recordRun appends the summary to the ledger when one is configured. A
// ledger failure is logged, not fatal: the catalog writes already happened.
func recordRun(cfg appConfig, started, finished time.Time, sum reconcile.Summary, dryRun bool) {
	if cfg.Sync.LedgerPath == "" {
		return
	}

	store, err := runlog.Open(cfg.Sync.LedgerPath)
	if err != nil {
		logger.Warn().Err(err).Msg("could not open run ledger")
		return
	}
	defer store.Close()

	if err := store.Record(started, finished, sum, dryRun); err != nil {
		logger.Warn().Err(err).Msg("could not record run")
	}
}
