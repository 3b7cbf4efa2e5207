// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package auth obtains a bearer token for the target catalog by scripting
// the identity provider's implicit-grant flow: three redirects that a
// browser would follow interactively, read (never followed) one at a time.
//
// The chain is a linear state machine (authorize requested, credentials
// submitted, token received) where each transition builds the next
// request from the previous response's Location header. The token arrives
// as a query parameter in the final redirect's URL fragment.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/dcat-sync/internal/httputil"
	"github.com/pdiddy/dcat-sync/pkg/types"
)

var (
	// ErrRedirectNotFound reports a chain step whose response carried no
	// Location, neither in the raw headers nor via the transport.
	ErrRedirectNotFound = errors.New("redirect location not found")

	// ErrTokenMissing reports a final redirect without an access_token
	// fragment parameter.
	ErrTokenMissing = errors.New("access token missing from redirect fragment")
)

// Fixed identity-provider parameters for the catalog client registration.
const (
	idpID    = "datapunt"
	clientID = "citydata"
	scope    = "CAT/R CAT/W"

	stateLength = 10
)

// Session holds the bearer token for one run. It is immutable once
// constructed and is never persisted; every invocation builds a new one.
type Session struct {
	Token   string
	BaseURL string
}

// endpoints is an identity-provider/redirect-target pair. The staging and
// production catalogs use different hosts for both.
type endpoints struct {
	authorizeURL string
	redirectURI  string
}

// endpointsFor selects the provider pair by inspecting the catalog URL:
// a host carrying the "acc." prefix is the staging environment.
func endpointsFor(baseURL string) endpoints {
	if strings.Contains(baseURL, "acc.") {
		return endpoints{
			authorizeURL: "https://acc.api.data.amsterdam.nl/oauth2/authorize",
			redirectURI:  "https://acc.data.amsterdam.nl/",
		}
	}
	return endpoints{
		authorizeURL: "https://api.data.amsterdam.nl/oauth2/authorize",
		redirectURI:  "https://data.amsterdam.nl/",
	}
}

// authorizeEndpoint is overridable so tests can point the chain at an
// httptest server.
var authorizeEndpoint = ""

// Authenticate drives the three-step flow against the provider associated
// with cfg.URL and returns a Session carrying the extracted bearer token.
// Any transport failure, missing redirect, or missing token aborts the
// whole operation; there is no retry: a run that cannot log in must not
// touch the catalog.
func Authenticate(ctx context.Context, client *http.Client, cfg types.CatalogConfig) (*Session, error) {
	ep := endpointsFor(cfg.URL)
	if authorizeEndpoint != "" {
		ep.authorizeURL = authorizeEndpoint
	}

	req, err := authorizeRequest(ctx, ep, randomState(stateLength))
	if err != nil {
		return nil, err
	}
	loc, err := step(client, req)
	if err != nil {
		return nil, fmt.Errorf("authorization request: %w", err)
	}

	req, err = credentialsRequest(ctx, loc, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	loc, err = step(client, req)
	if err != nil {
		return nil, fmt.Errorf("credential submission: %w", err)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	loc, err = step(client, req)
	if err != nil {
		return nil, fmt.Errorf("token capture: %w", err)
	}

	token, err := tokenFromFragment(loc)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, BaseURL: cfg.URL}, nil
}

// authorizeRequest builds the implicit-grant authorization request. The
// state value only satisfies the provider; it is not validated on return.
func authorizeRequest(ctx context.Context, ep endpoints, state string) (*http.Request, error) {
	params := url.Values{
		"idp_id":        {idpID},
		"response_type": {"token"},
		"client_id":     {clientID},
		"scope":         {scope},
		"state":         {state},
		"redirect_uri":  {ep.redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.authorizeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating authorization request: %w", err)
	}
	return req, nil
}

// credentialsRequest builds the form POST that submits the credentials to
// the login Location from step one. The password travels in the form body;
// TLS is the only protection.
func credentialsRequest(ctx context.Context, location, username, password string) (*http.Request, error) {
	form := url.Values{
		"type":     {"employee_plus"},
		"email":    {username},
		"password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, location, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating credential request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// step executes one chain request (redirects disabled by the client) and
// returns the Location the response points at.
func step(client *http.Client, req *http.Request) (string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	raw, err := httputil.Dump(resp)
	if err != nil {
		return "", err
	}
	return nextLocation(raw, resp)
}

// nextLocation reads the Location header from the raw response, falling
// back to the transport's resolved redirect target when the raw lookup
// comes up empty. Raw lookup first: the provider is known to send exact
// header casing the canonicalized view would mask.
func nextLocation(raw httputil.RawResponse, resp *http.Response) (string, error) {
	if loc := raw.Headers["Location"]; loc != "" {
		return loc, nil
	}
	if resp != nil {
		if u, err := resp.Location(); err == nil {
			return u.String(), nil
		}
	}
	return "", ErrRedirectNotFound
}

// tokenFromFragment extracts access_token from the fragment of the final
// redirect target, per implicit-grant convention
// (e.g. "https://host/#access_token=abc&token_type=bearer").
func tokenFromFragment(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parsing final redirect %q: %w", location, err)
	}

	fragment, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return "", fmt.Errorf("parsing redirect fragment: %w", err)
	}

	token := fragment.Get("access_token")
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// randomState produces an opaque lowercase state value.
func randomState(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
