package checker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aotpy/fragcheck/internal/probe"
)

var errUpstream = errors.New("upstream unreachable")

type fakeListing struct {
	signal probe.PageSignal
	err    error
	calls  int
}

func (f *fakeListing) ProbeListing(_ context.Context, _ string) (probe.PageSignal, error) {
	f.calls++
	return f.signal, f.err
}

type fakeAuctions struct {
	record *probe.AuctionRecord
	err    error
	calls  int
}

func (f *fakeAuctions) SearchAuctions(_ context.Context, _ string) (*probe.AuctionRecord, error) {
	f.calls++
	return f.record, f.err
}

type fakeDirectory struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeDirectory) Exists(_ context.Context, _ string) (bool, error) {
	f.calls++
	return f.exists, f.err
}

func newTestEngine(l ListingProber, a AuctionSearcher, d ExistenceProber) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(l, a, d, "https://fragment.com", logger)
}

func TestCheck_SoldBeatsEverything(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{signal: probe.SignalSold}
	auctions := &fakeAuctions{record: &probe.AuctionRecord{DisplayTag: "@foo", Price: "500 TON"}}
	directory := &fakeDirectory{exists: true}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if res.Outcome != OutcomeSold {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeSold)
	}
	if !res.OnFragment {
		t.Error("OnFragment = false, want true")
	}
	if res.CanClaim {
		t.Error("CanClaim = true, want false")
	}
	if res.URL != "https://fragment.com/username/foo" {
		t.Errorf("URL = %q", res.URL)
	}

	// Short-circuit: the later probes must never run.
	if auctions.calls != 0 {
		t.Errorf("auction calls = %d, want 0", auctions.calls)
	}
	if directory.calls != 0 {
		t.Errorf("directory calls = %d, want 0", directory.calls)
	}
}

func TestCheck_AuctionRecordMeansAvailable(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{signal: probe.SignalUnknown}
	auctions := &fakeAuctions{record: &probe.AuctionRecord{
		DisplayTag: "@foo",
		Price:      "10,000 TON",
		Status:     "Available",
	}}
	directory := &fakeDirectory{exists: true}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if res.Outcome != OutcomeAvailable {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeAvailable)
	}
	if res.Price != "10,000 TON" {
		t.Errorf("Price = %q, want %q", res.Price, "10,000 TON")
	}
	if res.Username != "@foo" {
		t.Errorf("Username = %q, want %q", res.Username, "@foo")
	}
	if !res.OnFragment {
		t.Error("OnFragment = false, want true")
	}
	if res.CanClaim {
		t.Error("CanClaim = true, want false")
	}
	if directory.calls != 0 {
		t.Errorf("directory calls = %d, want 0", directory.calls)
	}
}

func TestCheck_RecordWithoutPrice(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{}
	auctions := &fakeAuctions{record: &probe.AuctionRecord{DisplayTag: "@foo"}}
	directory := &fakeDirectory{}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.Price != "Unknown" {
		t.Errorf("Price = %q, want %q", res.Price, "Unknown")
	}
}

func TestCheck_TakenOnTelegram(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{signal: probe.SignalUnknown}
	auctions := &fakeAuctions{}
	directory := &fakeDirectory{exists: true}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if res.Outcome != OutcomeTaken {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeTaken)
	}
	if res.OnFragment {
		t.Error("OnFragment = true, want false")
	}
	if res.CanClaim {
		t.Error("CanClaim = true, want false")
	}
}

func TestCheck_FreeWhenNothingClaims(t *testing.T) {
	t.Parallel()

	res, err := newTestEngine(&fakeListing{}, &fakeAuctions{}, &fakeDirectory{}).
		Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if res.Outcome != OutcomeFree {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeFree)
	}
	if !res.CanClaim {
		t.Error("CanClaim = false, want true")
	}
	if res.LowConfidence {
		t.Error("LowConfidence = true, want false")
	}
}

func TestCheck_AllProbesFailingIsLowConfidenceFree(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{err: errUpstream}
	auctions := &fakeAuctions{err: errUpstream}
	directory := &fakeDirectory{err: errUpstream}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v, probes must never surface as hard failures", err)
	}

	if res.Outcome != OutcomeFree {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeFree)
	}
	if !res.LowConfidence {
		t.Error("LowConfidence = false, want true")
	}
	if res.ProbeFailures != 3 {
		t.Errorf("ProbeFailures = %d, want 3", res.ProbeFailures)
	}
}

func TestCheck_AuctionErrorFallsThroughToTelegram(t *testing.T) {
	t.Parallel()

	listing := &fakeListing{}
	auctions := &fakeAuctions{err: errUpstream}
	directory := &fakeDirectory{exists: true}

	res, err := newTestEngine(listing, auctions, directory).Check(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	if res.Outcome != OutcomeTaken {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeTaken)
	}
	if directory.calls != 1 {
		t.Errorf("directory calls = %d, want 1", directory.calls)
	}
	if res.ProbeFailures != 1 {
		t.Errorf("ProbeFailures = %d, want 1", res.ProbeFailures)
	}
}

func TestCheck_InvalidInputSkipsAllProbes(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"foo bar", "", strings.Repeat("x", 33), "dot.ted"} {
		listing := &fakeListing{}
		auctions := &fakeAuctions{}
		directory := &fakeDirectory{}

		_, err := newTestEngine(listing, auctions, directory).Check(context.Background(), raw)
		if !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("Check(%q) error = %v, want ErrInvalidUsername", raw, err)
		}

		if n := listing.calls + auctions.calls + directory.calls; n != 0 {
			t.Errorf("Check(%q) issued %d probe calls, want 0", raw, n)
		}
	}
}

func TestCheck_NormalizationProducesIdenticalResults(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&fakeListing{}, &fakeAuctions{}, &fakeDirectory{exists: true})

	var want Result
	for i, raw := range []string{"@Foo", "foo", " FOO "} {
		res, err := engine.Check(context.Background(), raw)
		if err != nil {
			t.Fatalf("Check(%q) error: %v", raw, err)
		}
		res.CheckedAt = want.CheckedAt // timestamps differ per call
		if i == 0 {
			want = res
			continue
		}
		if res != want {
			t.Errorf("Check(%q) = %+v, want %+v", raw, res, want)
		}
	}

	if want.Username != "@foo" {
		t.Errorf("Username = %q, want %q", want.Username, "@foo")
	}
}
