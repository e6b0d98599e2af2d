// Package telegram probes the public t.me profile pages for username
// existence.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aotpy/fragcheck/internal/identity"
)

// DefaultBaseURL is the public profile page origin.
const DefaultBaseURL = "https://t.me"

// profileTitleMarker appears in the page markup only when the username
// resolves to a real account. Telegram returns 200 with a generic layout for
// unknown names, so the status code alone proves nothing.
const profileTitleMarker = "tgme_page_title"

const maxResponseBytes = 1 << 20

// Prober checks whether a username is registered on Telegram.
type Prober struct {
	baseURL string
	http    *http.Client
	id      identity.Identity
	logger  *slog.Logger
}

// Options configures a Prober.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Identity identity.Identity
	Logger   *slog.Logger
}

// New creates a profile-page prober.
func New(opts Options) *Prober {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Prober{
		baseURL: opts.BaseURL,
		http:    identity.NewHTTPClient(opts.Timeout),
		id:      opts.Identity,
		logger:  opts.Logger,
	}
}

// Exists reports whether the public profile page for username resolves to a
// real account: HTTP 200 and the profile-title marker present in the body.
func (p *Prober) Exists(ctx context.Context, username string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+username, nil)
	if err != nil {
		return false, fmt.Errorf("telegram: create request: %w", err)
	}
	p.id.Apply(req)

	resp, err := p.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("telegram: probe %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("telegram: read profile page: %w", err)
	}

	return bytes.Contains(body, []byte(profileTitleMarker)), nil
}
