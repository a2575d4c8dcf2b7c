package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parser recovers a publication timestamp from a raw date string, free text,
// or a URL path. Rules are tried in a fixed order, first match wins. The
// parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser. Timestamps without an offset are placed in loc;
// a nil loc means the process-local zone.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc}
}

var ruMonths = map[string]time.Month{
	"января": 1, "февраля": 2, "марта": 3, "апреля": 4, "мая": 5, "июня": 6,
	"июля": 7, "августа": 8, "сентября": 9, "октября": 10, "ноября": 11, "декабря": 12,
}

var enMonths = map[string]time.Month{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
	"sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// rfc2822Layouts covers the date formats seen in syndication feeds.
var rfc2822Layouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var (
	reDayMonthYear = regexp.MustCompile(
		`\b(\d{1,2})[.\-/](\d{1,2})[.\-/](\d{4})` +
			`(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?\b`)

	reYearMonthDay = regexp.MustCompile(
		`\b(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})` +
			`(?:[ T](\d{1,2}):(\d{2})(?::(\d{2}))?)?\b`)

	reHumanDate = regexp.MustCompile(
		`\b(\d{1,2})\s+([А-Яа-яЁёA-Za-z.]+)\s+(\d{4})` +
			`(?:[,\s]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)

	reURLYearMonthDay = regexp.MustCompile(
		`/(20\d{2})/(0?[1-9]|1[0-2])/(0?[1-9]|[12]\d|3[01])(/|$)`)

	reURLDayMonthYear = regexp.MustCompile(
		`/(0?[1-9]|[12]\d|3[01])/(0?[1-9]|1[0-2])/(20\d{2})(/|$)`)
)

// Parse extracts a timestamp from raw, falling back to a date embedded in
// fallbackURL when the text yields nothing. Returns false if every rule fails.
func (p *Parser) Parse(raw, fallbackURL string) (time.Time, bool) {
	text := strings.TrimSpace(raw)

	if text != "" {
		if ts, ok := p.parseRFC2822(text); ok {
			return ts, true
		}
		if ts, ok := p.parseISO(text); ok {
			return ts, true
		}
		if ts, ok := p.parseNumeric(text, reDayMonthYear, false); ok {
			return ts, true
		}
		if ts, ok := p.parseNumeric(text, reYearMonthDay, true); ok {
			return ts, true
		}
		if ts, ok := p.parseHuman(text); ok {
			return ts, true
		}
	}

	if fallbackURL != "" {
		if m := reURLYearMonthDay.FindStringSubmatch(fallbackURL); m != nil {
			if ts, ok := p.makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), 0, 0, 0); ok {
				return ts, true
			}
		}
		if m := reURLDayMonthYear.FindStringSubmatch(fallbackURL); m != nil {
			if ts, ok := p.makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), 0, 0, 0); ok {
				return ts, true
			}
		}
	}

	return time.Time{}, false
}

func (p *Parser) parseRFC2822(text string) (time.Time, bool) {
	for _, layout := range rfc2822Layouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (p *Parser) parseISO(text string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if ts, err := time.ParseInLocation(layout, text, p.loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseNumeric handles the two digit-only forms. yearFirst selects the field
// order of the submatches.
func (p *Parser) parseNumeric(text string, re *regexp.Regexp, yearFirst bool) (time.Time, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	var year, month, day int
	if yearFirst {
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else {
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
	}

	return p.makeDate(year, month, day, atoi(m[4]), atoi(m[5]), atoi(m[6]))
}

func (p *Parser) parseHuman(text string) (time.Time, bool) {
	m := reHumanDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	name := strings.ToLower(strings.Trim(m[2], ". "))
	month, ok := ruMonths[name]
	if !ok {
		month, ok = enMonths[name]
	}
	if !ok {
		return time.Time{}, false
	}

	return p.makeDate(atoi(m[3]), int(month), atoi(m[1]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
}

// makeDate builds a timestamp in the default zone and rejects field
// combinations that time.Date would silently normalize (e.g. day 32).
func (p *Parser) makeDate(year, month, day, hour, min, sec int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}

	ts := time.Date(year, time.Month(month), day, hour, min, sec, 0, p.loc)
	if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day {
		return time.Time{}, false
	}

	return ts, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
