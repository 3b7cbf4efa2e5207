// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "dcat-sync/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for the target DCAT catalog.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the catalog base URL (e.g. "https://acc.api.data.amsterdam.nl/dcatd/").
	// A host containing "acc." selects the staging identity-provider pair.
	URL string `json:"url" yaml:"url"`

	// Username and Password are the identity-provider credentials. When
	// empty they fall back to the secrets directory.
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// SourceConfig holds settings for the upstream source catalog.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the source site base URL (e.g. "https://www.ois.amsterdam.nl").
	// The items API and download links are derived from it.
	URL string `json:"url" yaml:"url"`
}

// SyncConfig holds settings for the reconciliation run itself.
type SyncConfig struct {
	// Prefix marks the identifiers this job owns (default "ois-"). Only
	// records whose identifier carries it are ever retired.
	Prefix string `json:"prefix" yaml:"prefix"`

	// LedgerPath, when set, is the SQLite file run summaries are recorded in.
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"`

	// ThemeMapPath optionally overrides the embedded theme-mapping table.
	ThemeMapPath string `json:"theme_map_path,omitempty" yaml:"theme_map_path,omitempty"`
}
