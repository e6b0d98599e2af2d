package fragment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aotpy/fragcheck/internal/probe"
)

const (
	searchType   = "usernames"
	searchMethod = "searchAuctions"

	// minValueFields is the smallest tm-value count that still describes a
	// listing. The marketplace renders an empty or truncated fragment for
	// unlisted names, which is a signal in itself, not a failure.
	minValueFields = 3
)

// searchEnvelope is the JSON wrapper the auction API returns. The payload of
// interest is an embedded HTML fragment.
type searchEnvelope struct {
	HTML string `json:"html"`
}

// SearchAuctions resolves a fresh API hash and queries the auction index for
// a username. A nil record with a nil error means the name is not listed.
// Transient failures are retried with a fixed delay up to the configured
// attempt cap; after that the last error is returned and the caller moves on.
func (c *Client) SearchAuctions(ctx context.Context, username string) (*probe.AuctionRecord, error) {
	hash, err := c.ResolveHash(ctx)
	if err != nil {
		// No hash means no API access for this check. Not retried here:
		// the resolver already saw the live page, and the engine treats
		// the lookup as inconclusive either way.
		return nil, fmt.Errorf("fragment: resolve hash: %w", err)
	}

	apiURL := c.baseURL + "/api?hash=" + hash
	form := url.Values{
		"type":   {searchType},
		"query":  {username},
		"method": {searchMethod},
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		rec, err := c.searchOnce(ctx, apiURL, form)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		c.logger.Warn("fragment: auction lookup attempt failed",
			"username", username,
			"attempt", attempt,
			"error", err,
		)
	}

	return nil, fmt.Errorf("fragment: search %s: %d attempts exhausted: %w", username, c.attempts, lastErr)
}

// searchOnce performs a single auction query. It returns (nil, nil) when the
// name is legitimately not listed and an error for anything worth retrying.
func (c *Client) searchOnce(ctx context.Context, apiURL string, form url.Values) (*probe.AuctionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fragment: create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", c.baseURL)
	c.id.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fragment: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fragment: search returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("fragment: read search response: %w", err)
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("fragment: decode search response: %w", err)
	}

	if envelope.HTML == "" {
		return nil, nil
	}

	values := extractValues(envelope.HTML)
	if len(values) < minValueFields {
		return nil, nil
	}

	return &probe.AuctionRecord{
		DisplayTag: values[0],
		Price:      values[1],
		Status:     values[2],
	}, nil
}
