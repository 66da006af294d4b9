package service

// Status is the local copy of a technician subscription's billing state.
// Provider-reported strings are normalized into this closed set on ingest;
// anything unrecognized becomes StatusUnknown instead of being stored
// verbatim, so the state machine stays exhaustively checkable.
type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// NormalizeStatus maps a payment-provider status string onto the local set.
// Stripe spells cancellation "canceled"; both spellings fold together.
func NormalizeStatus(raw string) Status {
	switch raw {
	case "none":
		return StatusNone
	case "pending", "incomplete", "trialing":
		return StatusPending
	case "active":
		return StatusActive
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled", "cancelled", "incomplete_expired":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

func (s Status) Known() bool {
	return s != StatusUnknown
}
