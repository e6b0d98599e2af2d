// Package checker implements the status-resolution engine. It combines three
// independent upstream probes under a fixed precedence order into a single
// outcome per username.
package checker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aotpy/fragcheck/internal/probe"
)

// ListingProber scans the marketplace listing page for sale markers.
// Implemented by fragment.Client.
type ListingProber interface {
	ProbeListing(ctx context.Context, username string) (probe.PageSignal, error)
}

// AuctionSearcher queries the marketplace auction index. A nil record with a
// nil error means the name is not listed. Implemented by fragment.Client.
type AuctionSearcher interface {
	SearchAuctions(ctx context.Context, username string) (*probe.AuctionRecord, error)
}

// ExistenceProber checks whether a username resolves to a real Telegram
// account. Implemented by telegram.Prober.
type ExistenceProber interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// Engine resolves a username to exactly one outcome. It holds no per-check
// state and is safe for concurrent use.
type Engine struct {
	listing    ListingProber
	auctions   AuctionSearcher
	directory  ExistenceProber
	marketBase string
	logger     *slog.Logger
}

// New creates an engine. marketBase is the marketplace origin used to build
// listing URLs in results.
func New(listing ListingProber, auctions AuctionSearcher, directory ExistenceProber, marketBase string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		listing:    listing,
		auctions:   auctions,
		directory:  directory,
		marketBase: marketBase,
		logger:     logger,
	}
}

// Check classifies a username. The raw input is normalized and validated
// first; invalid input fails fast without touching the network.
//
// The probes run strictly in precedence order, short-circuiting on the first
// conclusive signal:
//
//  1. listing page reports a completed sale: sold
//  2. auction index returns a record: available
//  3. Telegram profile exists: taken
//  4. nothing claimed the name: free
//
// The sources can disagree (a name can look taken on Telegram while actively
// re-listed on the marketplace); the fixed order resolves every conflict.
// Probe failures never abort the chain. A probe that errors contributes no
// signal, and only when all three fail outright is the free fallback flagged
// as low confidence.
func (e *Engine) Check(ctx context.Context, raw string) (Result, error) {
	username := Normalize(raw)
	if err := Validate(username); err != nil {
		return Result{}, err
	}

	res := Result{
		Username:  "@" + username,
		Price:     "Unknown",
		CheckedAt: time.Now().UTC(),
	}

	signal, err := e.listing.ProbeListing(ctx, username)
	if err != nil {
		res.ProbeFailures++
		e.logger.Warn("listing probe failed", "username", username, "error", err)
		signal = probe.SignalUnknown
	}
	if signal == probe.SignalSold {
		res.Outcome = OutcomeSold
		res.OnFragment = true
		res.URL = e.listingURL(username)
		res.Message = "Username was already sold on Fragment."
		return res, nil
	}

	record, err := e.auctions.SearchAuctions(ctx, username)
	if err != nil {
		res.ProbeFailures++
		e.logger.Warn("auction lookup failed", "username", username, "error", err)
		record = nil
	}
	if record != nil {
		res.Outcome = OutcomeAvailable
		res.OnFragment = true
		if record.DisplayTag != "" {
			res.Username = record.DisplayTag
		}
		if record.Price != "" {
			res.Price = record.Price
		}
		res.URL = e.listingURL(username)
		res.Message = "Username is listed for sale on Fragment."
		return res, nil
	}

	exists, err := e.directory.Exists(ctx, username)
	if err != nil {
		res.ProbeFailures++
		e.logger.Warn("telegram probe failed", "username", username, "error", err)
	}
	if exists {
		res.Outcome = OutcomeTaken
		res.Message = "Username is registered on Telegram."
		return res, nil
	}

	res.Outcome = OutcomeFree
	res.CanClaim = true
	res.Message = "Username appears to be free."
	if res.ProbeFailures == 3 {
		// Every source was unreachable; nothing actually confirmed the name
		// is unclaimed.
		res.LowConfidence = true
		res.Message = "All upstream checks failed; result is a low-confidence fallback."
	}
	return res, nil
}

func (e *Engine) listingURL(username string) string {
	if e.marketBase == "" {
		return ""
	}
	return e.marketBase + "/username/" + username
}
