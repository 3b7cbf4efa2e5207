// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: raw
// response parsing for the redirect-reading login flow, and a client
// constructor with redirect following disabled.
package httputil

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"
)

// ErrMalformedResponse reports a raw response without a blank-line header
// terminator.
var ErrMalformedResponse = errors.New("malformed response: no header terminator")

// RawResponse is an HTTP response reduced to what the login flow reads:
// the status line, a header lookup, and the body. Header names are kept
// exactly as sent; lookups are case-sensitive and a duplicated name keeps
// its last occurrence.
type RawResponse struct {
	StatusLine string
	Headers    map[string]string
	Body       []byte
}

// ParseRaw parses raw response bytes (status line, header block, blank
// line, body) into a RawResponse. It fails with ErrMalformedResponse when
// the CRLF-CRLF header terminator is missing. Header lines without a
// ": " separator are skipped.
func ParseRaw(b []byte) (RawResponse, error) {
	raw := string(b)
	end := strings.Index(raw, "\r\n\r\n")
	if end < 0 {
		return RawResponse{}, ErrMalformedResponse
	}

	resp := RawResponse{
		Headers: make(map[string]string),
		Body:    []byte(raw[end+4:]),
	}

	for i, line := range strings.Split(raw[:end], "\r\n") {
		if i == 0 {
			resp.StatusLine = line
			continue
		}
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		resp.Headers[name] = value
	}

	return resp, nil
}

// Dump converts a live *http.Response into a RawResponse by re-parsing
// its wire form, so the login flow reads the headers the server actually
// sent rather than net/http's canonicalized view.
func Dump(resp *http.Response) (RawResponse, error) {
	b, err := httputil.DumpResponse(resp, false)
	if err != nil {
		return RawResponse{}, err
	}
	return ParseRaw(b)
}

// NoRedirectClient returns an *http.Client that never follows redirects.
// The login flow's logic is entirely in reading Location headers, so the
// transport must hand back each 3xx as-is.
func NoRedirectClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
