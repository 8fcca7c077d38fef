package proxy

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Hop-by-hop headers are connection-scoped and are never cached or forwarded.
var hopByHop = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailers":            {},
	"transfer-encoding":   {},
	"upgrade":             {},
}

// Fetcher retrieves URLs from origin servers over HTTP.
// Its Fetch method satisfies FetchFunc.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wraps client; nil means http.DefaultClient.
// Per-fetch timeouts come from the resolver's context, so the client itself
// does not need one.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch performs a GET for url and returns the status, filtered headers, and
// full body. Transport failures (including ctx timeout) come back as a
// *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: filterHeader(resp.Header),
		Body:   body,
	}, nil
}

// filterHeader copies h without hop-by-hop headers and without Set-Cookie
// (cookies must not be replayed to other clients from cache).
func filterHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		lk := strings.ToLower(k)
		if _, drop := hopByHop[lk]; drop {
			continue
		}
		if lk == "set-cookie" {
			continue
		}
		out[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return out
}
