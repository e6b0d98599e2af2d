// Package fragment implements the Marketplace probes: the rotating API hash
// resolver, the auction index lookup, and the listing-page prober. All three
// degrade to "no signal" on upstream flakiness; only the engine decides what
// a missing signal means.
package fragment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aotpy/fragcheck/internal/identity"
)

const (
	// DefaultBaseURL is the public marketplace origin.
	DefaultBaseURL = "https://fragment.com"

	defaultAttempts   = 3
	defaultRetryDelay = 1500 * time.Millisecond

	// maxResponseBytes bounds reads of upstream bodies. Listing pages are
	// a few hundred KiB; anything past this is not worth scanning.
	maxResponseBytes = 4 << 20
)

// Client issues read-only requests against the marketplace. It is safe for
// concurrent use: the identity and configuration are immutable after New.
type Client struct {
	baseURL    string
	http       *http.Client
	id         identity.Identity
	logger     *slog.Logger
	attempts   int
	retryDelay time.Duration
}

// Options configures a marketplace client.
type Options struct {
	// BaseURL overrides the marketplace origin (tests point it at a fake).
	BaseURL string

	// Timeout bounds each outbound call.
	Timeout time.Duration

	// Attempts is the total number of tries for the auction lookup,
	// including the first. Zero means the default of 3.
	Attempts int

	// RetryDelay is the fixed pause between auction lookup attempts.
	RetryDelay time.Duration

	Identity identity.Identity
	Logger   *slog.Logger
}

// New creates a marketplace client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:    opts.BaseURL,
		http:       identity.NewHTTPClient(opts.Timeout),
		id:         opts.Identity,
		logger:     opts.Logger,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}
}

// BaseURL returns the marketplace origin the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListingURL returns the public listing page for a username.
func (c *Client) ListingURL(username string) string {
	return c.baseURL + "/username/" + username
}

// get fetches a URL with the client identity applied and returns the bounded
// body together with the HTTP status code.
func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("fragment: create request: %w", err)
	}
	c.id.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fragment: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("fragment: read %s: %w", url, err)
	}
	return body, resp.StatusCode, nil
}
