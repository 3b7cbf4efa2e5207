// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the wire-level record types shared across stages.
//
// The catalog speaks DCAT with namespaced property names (dct:, dcat:,
// ams:, overheid:). Those qualified names live only in the JSON struct
// tags here; the rest of the code works with plain Go fields.
package types

// Dataset status values used by the catalog.
const (
	StatusAvailable   = "beschikbaar"
	StatusUnavailable = "niet_beschikbaar"
)

// Dataset is one catalog record. Records pulled from the catalog always
// carry ID and Identifier (plus a server-managed ETag on the wire);
// records freshly built from the source carry provisional values until
// reconciliation adopts the catalog's.
type Dataset struct {
	// ID is the catalog-assigned record id (e.g. "ams-dcatd:ois-20062").
	ID string `json:"@id,omitempty"`

	// Identifier is the stable dataset identifier (e.g. "ois-20062").
	Identifier string `json:"dct:identifier,omitempty"`

	Title       string `json:"dct:title"`
	Description string `json:"dct:description"`

	// Status is StatusAvailable or StatusUnavailable. Retiring a record
	// flips this field; records are never deleted from the catalog.
	Status string `json:"ams:status"`

	Distributions []Distribution `json:"dcat:distribution"`

	Themes   []string `json:"dcat:theme"`
	Keywords []string `json:"dcat:keyword"`

	License   string `json:"ams:license"`
	Authority string `json:"overheid:authority"`

	Publisher    Agent    `json:"dct:publisher"`
	ContactPoint *Contact `json:"dcat:contactPoint,omitempty"`

	AccrualPeriodicity string `json:"dct:accrualPeriodicity"`
	TemporalUnit       string `json:"ams:temporalUnit"`
	Language           string `json:"dct:language"`
	Owner              string `json:"ams:owner"`
	Objective          string `json:"overheidds:doel"`

	Dates RecordDates `json:"foaf:isPrimaryTopicOf"`
}

// Distribution is one downloadable resource attached to a dataset. Its
// AccessURL is built from the source file name and is stable across runs,
// so it serves as the natural key when merging distribution lists.
type Distribution struct {
	Title            string `json:"dct:title"`
	AccessURL        string `json:"dcat:accessURL"`
	ResourceType     string `json:"ams:resourceType"`
	DistributionType string `json:"ams:distributionType"`
	MediaType        string `json:"dcat:mediaType,omitempty"`
	Classification   string `json:"ams:classification"`
	License          string `json:"dct:license"`
	Modified         string `json:"dct:modified"`

	// PersistentLink is assigned by the catalog after creation. The sync
	// never writes it; the merge keeps the catalog's copy of a matched
	// distribution so this link survives every update.
	PersistentLink string `json:"ams:purl,omitempty"`
}

// Agent identifies a publishing organization.
type Agent struct {
	Name string `json:"foaf:name"`
	Mbox string `json:"foaf:mbox"`
}

// Contact is a dataset's contact point.
type Contact struct {
	Name  string `json:"vcard:fn"`
	Email string `json:"vcard:hasEmail"`
}

// RecordDates carries the record's issued/modified dates (ISO dates).
type RecordDates struct {
	Issued   string `json:"dct:issued"`
	Modified string `json:"dct:modified"`
}
