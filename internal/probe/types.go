// Package probe holds the result types shared between the upstream probers
// and the status-resolution engine.
package probe

// PageSignal is the coarse classification a listing-page scan produces.
type PageSignal int

const (
	// SignalUnknown means the page matched no known marker. It carries no
	// evidential weight; the engine moves on to the next source.
	SignalUnknown PageSignal = iota

	// SignalSold means the page carries a completed-sale marker.
	SignalSold

	// SignalListed means the page carries an active-listing marker
	// (a bid or buy call to action).
	SignalListed
)

// String returns the signal name for logs.
func (s PageSignal) String() string {
	switch s {
	case SignalSold:
		return "sold"
	case SignalListed:
		return "listed"
	default:
		return "unknown"
	}
}

// AuctionRecord is the structured result of a marketplace auction lookup.
// It exists only when the marketplace is actively listing the name; a nil
// record is a legitimate "not listed" signal, not a failure.
type AuctionRecord struct {
	// DisplayTag is the canonical @tag as the marketplace renders it.
	DisplayTag string

	// Price is the listing price text, e.g. "10,000 TON". Empty when the
	// fragment omitted it.
	Price string

	// Status is the textual listing status when present, e.g. "Available".
	Status string
}
