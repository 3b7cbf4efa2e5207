// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dcat-sync/pkg/types"
)

const itemsTree = `{
  "in": [
    {
      "osid": 10,
      "path": "Feiten en cijfers > Amsterdam > Bevolking",
      "in": [
        {"osid": 11, "path": "Feiten en cijfers > Amsterdam > Bevolking > Prognoses", "in": []},
        {"osid": 10, "path": "duplicate of parent", "in": []}
      ]
    },
    {"osid": 0, "path": "navigation stub", "in": []},
    {"osid": 20, "path": "Feiten en cijfers > Amsterdam > Verkeer en vervoer", "in": []}
  ]
}`

func sourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-items/20000", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(itemsTree))
	})
	mux.HandleFunc("/api/get-bestanden/", func(w http.ResponseWriter, r *http.Request) {
		osid := r.URL.Path[len("/api/get-bestanden/"):]
		fmt.Fprintf(w, `{"bestanden": [
			{"label": "wonen, werk", "bestand": {"filename": "tabel-%s.xlsx", "titel": "Tabel %s"}}
		]}`, osid, osid)
	})
	return httptest.NewServer(mux)
}

func TestFetch(t *testing.T) {
	ts := sourceServer(t)
	defer ts.Close()

	client := NewClient(types.SourceConfig{URL: ts.URL}, ts.Client(), zerolog.Nop())
	items, err := client.Fetch(context.Background())
	require.NoError(t, err)

	// Depth-first order, duplicate and non-positive ids skipped.
	require.Len(t, items, 3)
	assert.Equal(t, []int{10, 11, 20}, []int{items[0].ID, items[1].ID, items[2].ID})

	require.Len(t, items[0].Files, 1)
	assert.Equal(t, "tabel-10.xlsx", items[0].Files[0].Filename)
	assert.Equal(t, "Tabel 10", items[0].Files[0].Title)
	assert.Equal(t, "wonen, werk", items[0].Files[0].Label)
}

func TestFetch_TransportError(t *testing.T) {
	ts := sourceServer(t)
	ts.Close()

	client := NewClient(types.SourceConfig{URL: ts.URL}, http.DefaultClient, zerolog.Nop())
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
}

func TestFetch_FileListingFailureIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-items/20000", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(itemsTree))
	})
	mux.HandleFunc("/api/get-bestanden/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewClient(types.SourceConfig{URL: ts.URL}, ts.Client(), zerolog.Nop())
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFetch_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	client := NewClient(types.SourceConfig{URL: ts.URL}, ts.Client(), zerolog.Nop())
	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}
