package admission

import (
	"context"
	"time"
)

// Item is one candidate news item produced by a collector. It lives for a
// single Evaluate call.
type Item struct {
	Title   string
	Body    string
	Link    string
	RawDate string
	Source  string
}

// FullText is the text the fingerprint and date checks operate on.
func (i Item) FullText() string {
	return i.Title + "\n" + i.Body
}

type Verdict int

const (
	// Admit means the item was delivered and recorded.
	Admit Verdict = iota
	// DuplicateReject means the item's fingerprint was already posted.
	DuplicateReject
	// StaleReject means the item's timestamp fell outside the freshness window.
	StaleReject
	// UndatedReject means no timestamp could be recovered at all.
	UndatedReject
	// DeliveryFailed means the item passed every check but could not be sent;
	// it stays eligible for a later retry.
	DeliveryFailed
)

func (v Verdict) String() string {
	switch v {
	case Admit:
		return "admit"
	case DuplicateReject:
		return "duplicate"
	case StaleReject:
		return "stale"
	case UndatedReject:
		return "undated"
	case DeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// DateParser is the capability the policy needs from the date cascade.
type DateParser interface {
	Parse(raw, fallbackURL string) (time.Time, bool)
}

// Delivery hands a formatted message to the outbound channel.
type Delivery interface {
	SendNews(ctx context.Context, text string) error
}

// ErrorNotifier reports a short structured error description. Implementations
// must be best-effort; failures are swallowed by the caller.
type ErrorNotifier interface {
	NotifyError(ctx context.Context, component, kind, detail string)
}
