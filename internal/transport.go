/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"net/http"
)

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

func NewHeaderOverrideTransport(wrapped http.RoundTripper) *HeaderOverrideTransport {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}

	return &HeaderOverrideTransport{wrappedRT: wrapped}
}

// NewBrowserTransport returns a transport which stamps every request with the
// headers a desktop browser would send. Headers the caller already set are
// left alone.
func NewBrowserTransport(wrapped http.RoundTripper,
	userAgent string) *HeaderOverrideTransport {

	if userAgent == "" {
		userAgent = BrowserUserAgent
	}

	t := NewHeaderOverrideTransport(wrapped)
	t.Request = func(req *http.Request) {
		setDefault(req.Header, "User-Agent", userAgent)
		setDefault(req.Header, "Accept",
			"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		setDefault(req.Header, "Accept-Language", "en-US,en;q=0.9")
		setDefault(req.Header, "Cache-Control", "no-cache")
	}

	return t
}

func setDefault(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
