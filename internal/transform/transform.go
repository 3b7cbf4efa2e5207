// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform shapes flattened source items into the catalog's
// dataset schema. It is pure data mapping: every decision about what to
// do with the resulting records belongs to the reconcile package.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/dcat-sync/internal/source"
	"github.com/pdiddy/dcat-sync/pkg/types"
)

// IdentifierPrefix marks the identifiers this job owns. The retirement
// sweep's authority is scoped to it.
const IdentifierPrefix = "ois-"

// recordIDPrefix builds the provisional "@id" the catalog replaces on create.
const recordIDPrefix = "ams-dcatd:"

const (
	ownerName   = "Gemeente Amsterdam, Onderzoek, Informatie en Statistiek"
	ownerMail   = "algemeen.OIS@amsterdam.nl"
	rootSegment = "Feiten en cijfers"
)

// fileExtensions lists the downloadable file types that become
// distributions; everything else on the source site is navigation or
// embedded content.
var fileExtensions = map[string]bool{"xlsx": true, "xls": true, "zip": true}

// Builder turns source items into datasets.
type Builder struct {
	themes    ThemeMap
	sourceURL string
	now       func() time.Time
}

// NewBuilder builds a Builder. sourceURL is the site base the download
// links hang off; now is injectable for tests.
func NewBuilder(themes ThemeMap, sourceURL string, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{themes: themes, sourceURL: strings.TrimSuffix(sourceURL, "/"), now: now}
}

// Build maps one item to a dataset. Items with no qualifying files yield
// ok=false and are skipped by the caller.
func (b *Builder) Build(item source.Item) (types.Dataset, bool) {
	area, theme, subtheme := splitPath(item.Path)

	title := theme
	if subtheme != "" {
		title += " - " + subtheme
	}
	title += " (" + area + ")"

	today := b.now().Format("2006-01-02")

	var dists []types.Distribution
	var keywords []string
	seen := make(map[string]struct{})
	for _, f := range item.Files {
		ext := extension(f.Filename)
		if !fileExtensions[ext] {
			continue
		}

		dists = append(dists, types.Distribution{
			Title:            f.Title,
			AccessURL:        b.sourceURL + "/downloads/" + ext + "/" + f.Filename,
			ResourceType:     "data",
			DistributionType: "file",
			MediaType:        "application/vnd.ms-excel",
			Classification:   "public",
			License:          "cc-by",
			// The source API carries no publication date; the run date
			// stands in.
			Modified: today,
		})

		for _, tag := range strings.Split(f.Label, ",") {
			tag = cleanKeyword(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			keywords = append(keywords, tag)
		}
	}

	if len(dists) == 0 {
		return types.Dataset{}, false
	}

	ds := types.Dataset{
		ID:            recordIDPrefix + IdentifierPrefix + strconv.Itoa(item.ID),
		Identifier:    IdentifierPrefix + strconv.Itoa(item.ID),
		Title:         title,
		Description:   describe(area, theme, subtheme),
		Status:        types.StatusAvailable,
		Distributions: dists,
		Themes:        []string{"theme:" + b.themes.Slug(theme)},
		Keywords:      keywords,
		License:       "cc-by",
		Authority:     "overheid:Amsterdam",
		Publisher:     types.Agent{Name: ownerName, Mbox: ownerMail},
		ContactPoint:  &types.Contact{Name: ownerName, Email: ownerMail},

		AccrualPeriodicity: "unknown",
		TemporalUnit:       "na",
		Language:           "lang1:nl",
		Owner:              ownerName,
		Objective:          "Verzamelen statistieken",
		Dates:              types.RecordDates{Issued: today, Modified: today},
	}
	return ds, true
}

// splitPath decomposes the breadcrumb "root > area > theme > subtheme".
// Shorter paths leave the trailing parts empty; a path whose area repeats
// the root keeps the root as area; an empty theme falls back to the root
// label so the title never goes blank.
func splitPath(path string) (area, theme, subtheme string) {
	parts := strings.Split(path, " > ")

	root := part(parts, 0)
	area = part(parts, 1)
	theme = strings.TrimSpace(part(parts, 2))
	subtheme = strings.TrimSpace(part(parts, 3))

	if area == rootSegment {
		area = root
	}
	if theme == "" {
		theme = rootSegment
	}
	return area, theme, subtheme
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// describe assembles the HTML description the catalog's UI renders.
func describe(area, theme, subtheme string) string {
	var sb strings.Builder
	sb.WriteString("<p>Diverse datasets met statistieken van Onderzoek, Informatie en Statistiek.</p>")
	sb.WriteString("<p>Thema: " + theme)
	if subtheme != "" {
		sb.WriteString(", <br/>Onderwerp: " + subtheme)
	}
	if strings.TrimSpace(area) != "" {
		sb.WriteString(", <br/>Detailniveau: " + area)
	}
	sb.WriteString("</p>")
	return sb.String()
}

// extension returns the lowercased final filename extension, without dot.
func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// cleanKeyword trims a raw tag and replaces separators the catalog's
// keyword field rejects.
func cleanKeyword(tag string) string {
	replacer := strings.NewReplacer(`\`, "-", "/", "-", "&", "-")
	return strings.TrimSpace(replacer.Replace(tag))
}
