package dates

import (
	"testing"
	"time"
)

func TestParseRFC2822(t *testing.T) {
	p := NewParser(time.UTC)

	ts, ok := p.Parse("Mon, 02 Sep 2024 14:31:00 +0300", "")
	if !ok {
		t.Fatal("Expected RFC2822 date to parse")
	}

	expected := time.Date(2024, 9, 2, 14, 31, 0, 0, time.FixedZone("", 3*3600))
	if !ts.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, ts)
	}

	_, offset := ts.Zone()
	if offset != 3*3600 {
		t.Errorf("Expected +03:00 offset to be preserved, got %d", offset)
	}
}

func TestParseISO(t *testing.T) {
	p := NewParser(time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "with offset",
			input:    "2024-09-02T14:31:00+03:00",
			expected: time.Date(2024, 9, 2, 14, 31, 0, 0, time.FixedZone("", 3*3600)),
		},
		{
			name:     "zulu suffix",
			input:    "2024-09-02T06:00:00Z",
			expected: time.Date(2024, 9, 2, 6, 0, 0, 0, time.UTC),
		},
		{
			name:     "naive placed in default zone",
			input:    "2024-09-02T09:00:00",
			expected: time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := p.Parse(tt.input, "")
			if !ok {
				t.Fatalf("Expected %q to parse", tt.input)
			}
			if !ts.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ts)
			}
		})
	}
}

func TestParseNumericDates(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	p := NewParser(loc)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "day first",
			input:    "02.09.2024",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, loc),
		},
		{
			name:     "day first with time",
			input:    "02.09.2024 14:31",
			expected: time.Date(2024, 9, 2, 14, 31, 0, 0, loc),
		},
		{
			name:     "year first",
			input:    "2024-09-02",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, loc),
		},
		{
			name:     "embedded in text",
			input:    "Опубликовано 02.09.2024 в рубрике Политика",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := p.Parse(tt.input, "")
			if !ok {
				t.Fatalf("Expected %q to parse", tt.input)
			}
			if !ts.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ts)
			}
		})
	}
}

func TestParseHumanDates(t *testing.T) {
	p := NewParser(time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "russian month with time",
			input:    "2 сентября 2024, 09:00",
			expected: time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "russian month without time",
			input:    "15 января 2025",
			expected: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "english month",
			input:    "2 September 2024",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "abbreviated english month",
			input:    "2 Sep. 2024",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := p.Parse(tt.input, "")
			if !ok {
				t.Fatalf("Expected %q to parse", tt.input)
			}
			if !ts.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ts)
			}
		})
	}
}

func TestParseURLFallback(t *testing.T) {
	p := NewParser(time.UTC)

	tests := []struct {
		name     string
		raw      string
		url      string
		expected time.Time
	}{
		{
			name:     "year month day path",
			raw:      "",
			url:      "https://site.example/2024/09/02/article",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "day month year path",
			raw:      "",
			url:      "https://site.example/news/02/09/2024/article",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "text without date falls back to url",
			raw:      "Заголовок без даты",
			url:      "https://site.example/2024/09/02/article",
			expected: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := p.Parse(tt.raw, tt.url)
			if !ok {
				t.Fatalf("Expected URL %q to yield a date", tt.url)
			}
			if !ts.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, ts)
			}
		})
	}
}

func TestParseRejectsInvalidDates(t *testing.T) {
	p := NewParser(time.UTC)

	tests := []struct {
		name  string
		raw   string
		url   string
	}{
		{name: "empty input", raw: "", url: ""},
		{name: "no date in text", raw: "Просто заголовок новости", url: ""},
		{name: "day out of range", raw: "32.01.2024", url: ""},
		{name: "month out of range", raw: "2024-13-01", url: ""},
		{name: "february 30", raw: "30.02.2024", url: ""},
		{name: "url without date path", raw: "", url: "https://site.example/news/article-123"},
		{name: "unknown month name", raw: "2 брюмера 2024", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ts, ok := p.Parse(tt.raw, tt.url); ok {
				t.Errorf("Expected no date, got %v", ts)
			}
		})
	}
}

func TestParseTextBeatsURL(t *testing.T) {
	p := NewParser(time.UTC)

	ts, ok := p.Parse("02.09.2024", "https://site.example/2020/01/01/article")
	if !ok {
		t.Fatal("Expected date to parse")
	}

	expected := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(expected) {
		t.Errorf("Expected text date %v to win over URL date, got %v", expected, ts)
	}
}
