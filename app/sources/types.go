package sources

import (
	"context"

	"github.com/svirin/newswatch/app/admission"
)

const (
	TypeRSS  = "rss"
	TypePage = "page"
	TypeChat = "chat"
)

// Collector produces candidate items from one source kind. Implementations
// are polled by the scheduler and must honor ctx cancellation.
type Collector interface {
	Name() string
	Type() string
	Collect(ctx context.Context) ([]admission.Item, error)
}

// Config describes one watched source, loaded from a yaml file in the
// sources directory. Name derives from the filename.
type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Type     string         `yaml:"type"`
	URL      string         `yaml:"url"`
	Label    string         `yaml:"label"` // Source line in outbound posts; Name when empty
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	PollInterval   int  `yaml:"poll_interval"` // seconds
	MaxItems       int  `yaml:"max_items"`
	Timeout        int  `yaml:"timeout"`         // seconds
	ExtractContent bool `yaml:"extract_content"` // page sources: fetch linked article body
}

type ConfigFilter struct {
	Field    string   `yaml:"field"` // title or body
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// SourceLabel is what goes into the bold source line of a delivered post.
func (c *Config) SourceLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}
