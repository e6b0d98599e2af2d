package checker

import "time"

// Outcome is the four-way classification of a username. Exactly one outcome
// is produced per query.
type Outcome string

const (
	// OutcomeSold means the marketplace already completed a sale of the name.
	OutcomeSold Outcome = "sold"

	// OutcomeAvailable means the marketplace is actively listing the name.
	OutcomeAvailable Outcome = "available"

	// OutcomeTaken means the name is registered on Telegram and not traded
	// on the marketplace.
	OutcomeTaken Outcome = "taken"

	// OutcomeFree means no source claimed the name.
	OutcomeFree Outcome = "free"
)

// Result is the structured answer a check produces.
type Result struct {
	// Username is the canonical @name. When the marketplace reports its own
	// display tag, that spelling wins.
	Username string `json:"username"`

	Outcome Outcome `json:"status"`

	// OnFragment is true when either marketplace signal fired.
	OnFragment bool `json:"on_fragment"`

	// Price is the listing price text, "Unknown" when no price is known.
	Price string `json:"price"`

	// CanClaim is true only for the free outcome: nobody appears to hold
	// the name, so it could be claimed in the Telegram client.
	CanClaim bool `json:"can_claim"`

	Message string `json:"message"`

	// URL points at the marketplace listing when one exists.
	URL string `json:"url,omitempty"`

	// LowConfidence is set when every probe failed outright and the free
	// classification is only a conservative fallback.
	LowConfidence bool `json:"low_confidence,omitempty"`

	CheckedAt time.Time `json:"checked_at"`

	// ProbeFailures counts probes that failed at the transport level during
	// this check. Exposed for metrics, not serialized.
	ProbeFailures int `json:"-"`
}
