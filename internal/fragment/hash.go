package fragment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrHashNotFound means the landing page loaded but carried no recognizable
// API token. Callers treat it like any other inconclusive probe result.
var ErrHashNotFound = errors.New("fragment: api hash not found")

// ResolveHash fetches the marketplace landing page and extracts the rotating
// token that authorizes API calls. The token rotates without notice, so the
// result is never cached; every logical check that needs API access resolves
// a fresh one.
func (c *Client) ResolveHash(ctx context.Context) (string, error) {
	page, status, err := c.get(ctx, c.baseURL)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fragment: landing page returned %d", status)
	}

	hash, ok := extractHash(page)
	if !ok {
		return "", ErrHashNotFound
	}
	return hash, nil
}
