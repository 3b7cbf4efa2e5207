// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newLogger builds the run logger from the global flags. Level precedence
// (highest first): --log-level, --verbose, --quiet, LOG_LEVEL env, info.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := determineLogLevel(cmd)

	var writer io.Writer = os.Stderr
	if format, _ := cmd.Flags().GetString("log-format"); format != "json" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func determineLogLevel(cmd *cobra.Command) zerolog.Level {
	if explicit, _ := cmd.Flags().GetString("log-level"); explicit != "" {
		level, err := zerolog.ParseLevel(explicit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using info\n", explicit)
			return zerolog.InfoLevel
		}
		return level
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if verbose && quiet {
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return zerolog.WarnLevel
	}
	if verbose {
		return zerolog.DebugLevel
	}
	if quiet {
		return zerolog.WarnLevel
	}

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if level, err := zerolog.ParseLevel(env); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}
