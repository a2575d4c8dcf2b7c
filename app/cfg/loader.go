package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram configuration
	BotToken     string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	TargetChatID string `long:"chat-id" env:"CHAT_ID" description:"Telegram chat ID news are delivered to (required)" required:"true"`

	// Application configuration
	SourcesDir  string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./newswatch.db" description:"Path to the sqlite post log"`
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for source polling"`

	// Admission configuration
	CheckChars    int  `long:"check-chars" env:"CHECK_CHARS" default:"50" description:"Number of leading characters used for duplicate fingerprints"`
	HistorySize   int  `long:"history-size" env:"HISTORY_SIZE" default:"50" description:"Capacity of the duplicate cache and depth of history seeding"`
	WindowHours   int  `long:"window-hours" env:"WINDOW_HOURS" default:"12" description:"Freshness window in hours"`
	NoStrictToday bool `long:"no-strict-today" env:"NO_STRICT_TODAY" description:"Admit items from previous calendar days that are still inside the freshness window"`

	// Polling configuration
	PollInterval int     `long:"poll-interval" env:"POLL_INTERVAL" default:"30" description:"Base poll interval in seconds for sources without their own"`
	Jitter       float64 `long:"jitter" env:"JITTER" default:"0.5" description:"Fraction of the poll interval randomly shaved off each cycle"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Newswatch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Default timezone for timestamps without an offset (e.g., Europe/Moscow)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BotToken:     raw.BotToken,
		TargetChatID: raw.TargetChatID,
		SourcesDir:   raw.SourcesDir,
		DBPath:       raw.DBPath,
		Port:         raw.Port,
		WorkerCount:  raw.WorkerCount,
		CheckChars:   raw.CheckChars,
		HistorySize:  raw.HistorySize,
		WindowHours:  raw.WindowHours,
		StrictToday:  !raw.NoStrictToday,
		PollInterval: raw.PollInterval,
		Jitter:       raw.Jitter,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
