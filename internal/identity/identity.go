// Package identity constructs the browser-like HTTP client identity that all
// outbound probes share. The identity is immutable after construction, so a
// single value is safe to reuse across concurrent checks.
package identity

import (
	"math/rand"
	"net/http"
	"time"
)

// desktopUserAgents is the pool a fresh identity picks from. Upstream pages
// occasionally serve a degraded layout to unknown agents, so these track
// current mainstream browsers.
var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
}

// Identity is the fixed set of request headers presented to upstream sites.
type Identity struct {
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// New picks a random user agent from the pool and pairs it with the given
// referer. The zero referer is valid for probes that do not need one.
func New(referer string) Identity {
	return Identity{
		UserAgent:      desktopUserAgents[rand.Intn(len(desktopUserAgents))],
		Referer:        referer,
		AcceptLanguage: "en-US,en;q=0.5",
	}
}

// Apply sets the identity headers on an outbound request. Headers already
// present are not overwritten, so callers can specialize individual requests.
func (id Identity) Apply(req *http.Request) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", id.UserAgent)
	}
	if id.Referer != "" && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", id.Referer)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", id.AcceptLanguage)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
}

// NewHTTPClient builds the shared probe client. Every probe call is bounded
// by the same timeout; consistency across probes matters more than the exact
// value.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
