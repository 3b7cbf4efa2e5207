// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog is a thin authenticated client for the target DCAT
// catalog: bulk harvest, create, update, and retire. Updates carry an
// If-Match precondition with the ETag fetched immediately before the PUT;
// a stale precondition surfaces as an error and is never retried here.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dcat-sync/internal/auth"
	"github.com/pdiddy/dcat-sync/pkg/types"
)

// ErrDecode reports a catalog response that is not valid JSON or lacks
// the expected dataset collection.
var ErrDecode = errors.New("catalog response could not be decoded")

// Client issues authenticated requests against one catalog.
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

// NewClient builds a client bound to the session's catalog and token.
func NewClient(session *auth.Session, httpClient *http.Client, userAgent string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(session.BaseURL, "/"),
		token:     session.Token,
		http:      httpClient,
		userAgent: userAgent,
		log:       log,
	}
}

// harvestDoc is the bulk harvest envelope. Datasets stays nil when the
// collection field is absent, which ListAll treats as a decode failure.
type harvestDoc struct {
	Datasets []types.Dataset `json:"dcat:dataset"`
}

// ListAll fetches the catalog's full holdings and indexes them by record
// id. A failure here is fatal to the run: reconciliation must not write
// without a complete baseline.
func (c *Client) ListAll(ctx context.Context) (map[string]types.Dataset, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/harvest", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("harvest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("harvest returned HTTP %d", resp.StatusCode)
	}

	var doc harvestDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if doc.Datasets == nil {
		return nil, fmt.Errorf("%w: missing dcat:dataset collection", ErrDecode)
	}

	datasets := make(map[string]types.Dataset, len(doc.Datasets))
	for _, ds := range doc.Datasets {
		datasets[ds.ID] = ds
	}

	c.log.Debug().Int("count", len(datasets)).Msg("harvested catalog")
	return datasets, nil
}

// Create posts a new record. The provisional id and identifier are
// stripped so the catalog assigns its own.
func (c *Client) Create(ctx context.Context, ds types.Dataset) error {
	ds.ID = ""
	ds.Identifier = ""

	body, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset %q: %w", ds.Title, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/datasets", body)
	if err != nil {
		return err
	}

	c.log.Debug().Str("title", ds.Title).Msg("creating dataset")
	return c.fire(req, "create", ds.Title)
}

// Update fetches the record's current ETag, then PUTs the full record
// with an If-Match precondition. A concurrent modification makes the
// catalog reject the PUT; the resulting error is surfaced to the caller,
// which continues with the next record.
func (c *Client) Update(ctx context.Context, ds types.Dataset) error {
	recordURL := c.baseURL + "/datasets/" + ds.Identifier

	etag, err := c.fetchETag(ctx, recordURL)
	if err != nil {
		return fmt.Errorf("update %s: %w", ds.Identifier, err)
	}

	body, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset %s: %w", ds.Identifier, err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, recordURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("If-Match", etag)

	c.log.Debug().Str("identifier", ds.Identifier).Str("etag", etag).Msg("updating dataset")
	return c.fire(req, "update", ds.Identifier)
}

// Retire flips the record's status to unavailable and updates it in
// place. Records are never deleted from the catalog.
func (c *Client) Retire(ctx context.Context, ds types.Dataset) error {
	ds.Status = types.StatusUnavailable
	return c.Update(ctx, ds)
}

// fetchETag reads the concurrency token from the record's own URL.
func (c *Client) fetchETag(ctx context.Context, recordURL string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, recordURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching etag: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("etag fetch returned HTTP %d", resp.StatusCode)
	}

	etag := resp.Header.Get("Etag")
	if etag == "" {
		return "", errors.New("record carries no Etag header")
	}
	return etag, nil
}

// newRequest builds a request with the bearer token attached. A non-nil
// body implies JSON content.
func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// fire executes a write request and reports a non-2xx status as an error.
func (c *Client) fire(req *http.Request, op, subject string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, subject, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned HTTP %d", op, subject, resp.StatusCode)
	}
	return nil
}
