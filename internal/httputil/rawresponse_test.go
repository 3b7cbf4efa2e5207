// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRaw(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus string
		wantHdrs   map[string]string
		wantBody   string
		wantErr    error
	}{
		{
			name:       "status line and headers",
			raw:        "HTTP/1.1 303 See Other\r\nLocation: https://example.com/login\r\nContent-Length: 0\r\n\r\n",
			wantStatus: "HTTP/1.1 303 See Other",
			wantHdrs: map[string]string{
				"Location":       "https://example.com/login",
				"Content-Length": "0",
			},
			wantBody: "",
		},
		{
			name:       "body after terminator",
			raw:        "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhello",
			wantStatus: "HTTP/1.1 200 OK",
			wantHdrs:   map[string]string{"Content-Type": "text/plain"},
			wantBody:   "hello",
		},
		{
			name:       "duplicate header keeps last occurrence",
			raw:        "HTTP/1.1 200 OK\r\nX-Token: first\r\nX-Token: second\r\n\r\n",
			wantStatus: "HTTP/1.1 200 OK",
			wantHdrs:   map[string]string{"X-Token": "second"},
			wantBody:   "",
		},
		{
			name:       "header names are case-sensitive",
			raw:        "HTTP/1.1 303 See Other\r\nlocation: https://lower.example.com/\r\n\r\n",
			wantStatus: "HTTP/1.1 303 See Other",
			wantHdrs:   map[string]string{"location": "https://lower.example.com/"},
			wantBody:   "",
		},
		{
			name:       "line without separator is skipped",
			raw:        "HTTP/1.1 200 OK\r\ngarbage-line\r\nAccept: */*\r\n\r\n",
			wantStatus: "HTTP/1.1 200 OK",
			wantHdrs:   map[string]string{"Accept": "*/*"},
			wantBody:   "",
		},
		{
			name:    "missing terminator",
			raw:     "HTTP/1.1 200 OK\r\nLocation: https://example.com/",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrMalformedResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseRaw([]byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusLine)
			assert.Equal(t, tt.wantHdrs, resp.Headers)
			assert.Equal(t, tt.wantBody, string(resp.Body))
		})
	}
}

func TestDump(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "https://example.com/next")
		w.WriteHeader(http.StatusSeeOther)
	}))
	defer ts.Close()

	resp, err := NoRedirectClient(0).Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := Dump(resp)
	require.NoError(t, err)
	assert.Contains(t, raw.StatusLine, "303")
	assert.Equal(t, "https://example.com/next", raw.Headers["Location"])
}

func TestNoRedirectClient(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/elsewhere", http.StatusSeeOther)
	}))
	defer ts.Close()

	client := NoRedirectClient(0)
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, hits)
}
