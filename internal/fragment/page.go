package fragment

import (
	"context"
	"net/http"
	"strings"

	"github.com/aotpy/fragcheck/internal/probe"
)

// Marker phrases scanned on the lowercased listing page. The sold set is
// checked first: a completed sale is the one state the auction API never
// reports, and the whole point of this prober is catching it. None of these
// strings is a stable contract upstream; keep the lists short and literal so
// drift is easy to patch.
var (
	soldMarkers = []string{
		"purchased on",
		"sold on fragment",
	}

	listedMarkers = []string{
		"available for purchase",
		"place a bid",
		"minimum bid",
		"buy now",
	}
)

// ProbeListing fetches the dedicated listing page for a username and scans it
// for sale markers. A non-200 response or unmatched page yields SignalUnknown;
// only transport-level failures surface as errors.
func (c *Client) ProbeListing(ctx context.Context, username string) (probe.PageSignal, error) {
	body, status, err := c.get(ctx, c.ListingURL(username))
	if err != nil {
		return probe.SignalUnknown, err
	}
	if status != http.StatusOK {
		return probe.SignalUnknown, nil
	}
	return classifyListing(body), nil
}

// classifyListing lexically scans a listing page body. First matching
// category wins; sold beats listed.
func classifyListing(body []byte) probe.PageSignal {
	text := strings.ToLower(string(body))
	for _, marker := range soldMarkers {
		if strings.Contains(text, marker) {
			return probe.SignalSold
		}
	}
	for _, marker := range listedMarkers {
		if strings.Contains(text, marker) {
			return probe.SignalListed
		}
	}
	return probe.SignalUnknown
}
