// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dcat-sync CLI, the batch job
// that keeps the target DCAT catalog in agreement with the source site's
// published datasets.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dcat-sync/internal/secrets"
	"github.com/pdiddy/dcat-sync/internal/transform"
	"github.com/pdiddy/dcat-sync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// logger is configured in the root PersistentPreRunE; commands log through it.
var logger zerolog.Logger

// rootCmd is the base command for the dcat-sync CLI.
var rootCmd = &cobra.Command{
	Use:   "dcat-sync",
	Short: "Synchronize the DCAT catalog with the source site's datasets",
	Long: `dcat-sync mirrors the source site's published datasets into the DCAT
catalog. One run logs in against the catalog's identity provider, pulls and
transforms the source items, fetches the catalog's holdings, and creates,
updates, or retires records until the two agree. Previously issued catalog
identifiers and persistent distribution links always survive an update.

The job is a periodic batch: it holds no state between runs beyond an
optional local run-history ledger.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dcat-sync.yaml or ~/.config/dcat-sync/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "shortcut for --log-level debug")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "shortcut for --log-level warn")
}

func initConfig() {
	// .env sits next to the binary in cron deployments; missing is fine.
	godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dcat-sync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dcat-sync"))
		}
	}

	viper.SetEnvPrefix("DCAT_SYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("catalog.url", "https://acc.api.data.amsterdam.nl/dcatd/")
	viper.SetDefault("catalog.timeout", time.Minute)
	viper.SetDefault("catalog.user_agent", "dcat-sync/"+version)
	viper.SetDefault("source.url", "https://www.ois.amsterdam.nl")
	viper.SetDefault("source.timeout", time.Minute)
	viper.SetDefault("source.user_agent", "dcat-sync/"+version)
	viper.SetDefault("sync.prefix", transform.IdentifierPrefix)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig bundles the per-stage configs one run needs.
type appConfig struct {
	Catalog types.CatalogConfig
	Source  types.SourceConfig
	Sync    types.SyncConfig
}

// loadConfig assembles the run configuration from viper, backfilling
// credentials from the secrets directory.
func loadConfig() appConfig {
	cfg := appConfig{
		Catalog: types.CatalogConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("catalog.timeout"),
				UserAgent: viper.GetString("catalog.user_agent"),
			},
			URL:      viper.GetString("catalog.url"),
			Username: viper.GetString("catalog.username"),
			Password: viper.GetString("catalog.password"),
		},
		Source: types.SourceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("source.timeout"),
				UserAgent: viper.GetString("source.user_agent"),
			},
			URL: viper.GetString("source.url"),
		},
		Sync: types.SyncConfig{
			Prefix:       viper.GetString("sync.prefix"),
			LedgerPath:   viper.GetString("sync.ledger_path"),
			ThemeMapPath: viper.GetString("sync.theme_map_path"),
		},
	}

	secrets.Fill(loadedSecrets, &cfg.Catalog.Username, &cfg.Catalog.Password)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
