// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

//go:embed themes.yaml
var embeddedThemes []byte

// defaultTheme catches source categories the table does not know.
const defaultTheme = "bevolking"

// ThemeMap translates the source site's category names into catalog theme
// slugs.
type ThemeMap map[string]string

// LoadThemeMap parses the theme table. With an empty path the embedded
// table is used; a configured path lets operators add new source
// categories without a rebuild.
func LoadThemeMap(path string) (ThemeMap, error) {
	data := embeddedThemes
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading theme map %s: %w", path, err)
		}
		data = b
	}

	var m ThemeMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing theme map: %w", err)
	}
	return m, nil
}

// Slug returns the catalog theme slug for a source category, falling back
// to defaultTheme for unknown categories.
func (m ThemeMap) Slug(category string) string {
	if slug, ok := m[category]; ok {
		return slug
	}
	return defaultTheme
}
