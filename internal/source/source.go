// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source pulls the upstream site's hierarchical items API and
// flattens it into the item list the transform stage consumes.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dcat-sync/pkg/types"
)

// itemsPath requests the full tree in one page; the path segment is the
// upstream API's page-size cap.
const (
	itemsPath = "/api/get-items/20000"
	filesPath = "/api/get-bestanden/"
)

// Item is one flattened subject from the source site, with the files
// published under it.
type Item struct {
	// ID is the site's subject id (osid). Provisional catalog identifiers
	// are derived from it.
	ID int

	// Path is the subject's breadcrumb, " > "-separated
	// (e.g. "Feiten en cijfers > Amsterdam > Bevolking > Prognoses").
	Path string

	Files []File
}

// File is one downloadable file attached to an item.
type File struct {
	Title    string
	Filename string

	// Label is the site's raw comma-separated keyword string.
	Label string
}

// Client reads the source site's API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	cfg     types.SourceConfig
}

// NewClient builds a source client for cfg.URL.
func NewClient(cfg types.SourceConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	return &Client{baseURL: cfg.URL, http: httpClient, log: log, cfg: cfg}
}

// Wire shapes of the items tree and file listings.
type itemNode struct {
	OSID     int        `json:"osid"`
	Path     string     `json:"path"`
	Children []itemNode `json:"in"`
}

type itemsDoc struct {
	Items []itemNode `json:"in"`
}

type fileNode struct {
	Label string `json:"label"`
	File  struct {
		Filename string `json:"filename"`
		Title    string `json:"titel"`
	} `json:"bestand"`
}

type filesDoc struct {
	Files []fileNode `json:"bestanden"`
}

// Fetch walks the items tree depth-first and returns the flattened item
// list, fetching each item's file listing along the way. Items with a
// non-positive id and duplicates are skipped. Any failure is fatal: a
// partial source pull would make the retirement sweep retire records that
// still exist upstream.
func (c *Client) Fetch(ctx context.Context) ([]Item, error) {
	var doc itemsDoc
	if err := c.getJSON(ctx, c.baseURL+itemsPath, &doc); err != nil {
		return nil, fmt.Errorf("fetching source items: %w", err)
	}

	seen := make(map[int]struct{})
	var items []Item
	for _, node := range doc.Items {
		if err := c.walk(ctx, node, seen, &items); err != nil {
			return nil, err
		}
	}

	c.log.Debug().Int("count", len(items)).Msg("fetched source items")
	return items, nil
}

func (c *Client) walk(ctx context.Context, node itemNode, seen map[int]struct{}, items *[]Item) error {
	if node.OSID <= 0 {
		return nil
	}
	if _, ok := seen[node.OSID]; ok {
		return nil
	}
	seen[node.OSID] = struct{}{}

	files, err := c.fetchFiles(ctx, node.OSID)
	if err != nil {
		return err
	}
	*items = append(*items, Item{ID: node.OSID, Path: node.Path, Files: files})

	for _, child := range node.Children {
		if err := c.walk(ctx, child, seen, items); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) fetchFiles(ctx context.Context, osid int) ([]File, error) {
	var doc filesDoc
	if err := c.getJSON(ctx, c.baseURL+filesPath+strconv.Itoa(osid), &doc); err != nil {
		return nil, fmt.Errorf("fetching files for item %d: %w", osid, err)
	}

	files := make([]File, 0, len(doc.Files))
	for _, f := range doc.Files {
		files = append(files, File{Title: f.File.Title, Filename: f.File.Filename, Label: f.Label})
	}
	return files, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
