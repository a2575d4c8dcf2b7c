package admission

import (
	"time"
)

// Policy decides whether a parsed timestamp makes an item fresh enough to
// publish. Stateless apart from the injected clock, safe for concurrent use.
type Policy struct {
	parser DateParser
	clock  func() time.Time
}

// NewPolicy creates a policy. A nil clock means wall-clock time.
func NewPolicy(parser DateParser, clock func() time.Time) *Policy {
	if clock == nil {
		clock = time.Now
	}
	return &Policy{parser: parser, clock: clock}
}

// IsFresh reports whether ts is not in the future and at most windowHours old.
// The comparison happens in the timestamp's own zone.
func (p *Policy) IsFresh(ts time.Time, windowHours int) bool {
	if ts.IsZero() {
		return false
	}
	now := p.clock().In(ts.Location())
	return !ts.After(now) && now.Sub(ts) <= time.Duration(windowHours)*time.Hour
}

// SameCalendarDay reports whether ts falls on the current calendar date,
// with "current" evaluated in the timestamp's own zone.
func (p *Policy) SameCalendarDay(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	now := p.clock().In(ts.Location())
	ty, tm, td := ts.Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

// CheckNewsDate resolves a timestamp for the item (explicit date first, then
// the item text, with the URL as a fallback inside each attempt) and applies
// the freshness window. An item with no recoverable date is never publishable.
func (p *Policy) CheckNewsDate(text, link, rawDate string, windowHours int, strictToday bool) bool {
	ts, ok := p.resolve(text, link, rawDate)
	if !ok {
		return false
	}

	if !p.IsFresh(ts, windowHours) {
		return false
	}

	if strictToday && !p.SameCalendarDay(ts) {
		return false
	}

	return true
}

// HasDate reports whether any timestamp is recoverable from the item at all,
// which lets the pipeline distinguish undated items from stale ones.
func (p *Policy) HasDate(text, link, rawDate string) bool {
	_, ok := p.resolve(text, link, rawDate)
	return ok
}

func (p *Policy) resolve(text, link, rawDate string) (time.Time, bool) {
	if rawDate != "" {
		if ts, ok := p.parser.Parse(rawDate, link); ok {
			return ts, true
		}
	}
	if text != "" {
		if ts, ok := p.parser.Parse(text, link); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}
