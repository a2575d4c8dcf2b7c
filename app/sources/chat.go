package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/svirin/newswatch/app/admission"
	"github.com/svirin/newswatch/app/telegram"
)

// ChatCollector drains channel posts for every chat-type source through a
// single getUpdates stream. The update offset is global per bot token, so one
// collector must service all chat sources; posts from channels without a
// matching config are consumed and dropped.
type ChatCollector struct {
	client   telegram.Client
	filterer *Filterer

	mu      sync.Mutex
	configs map[string]*Config // lowercase channel username -> config
	offset  int64
}

var _ Collector = (*ChatCollector)(nil)

// Long-poll timeout for getUpdates. Short enough that Stop is not held up by
// an idle poll.
const pollTimeoutSeconds = 5

func NewChatCollector(client telegram.Client) *ChatCollector {
	return &ChatCollector{
		client:   client,
		filterer: NewFilterer(),
		configs:  make(map[string]*Config),
	}
}

func (c *ChatCollector) Name() string { return "chat" }

func (c *ChatCollector) Type() string { return TypeChat }

// Register adds a chat source. The channel username is taken from the
// config URL, which may be a t.me link or a bare @username.
func (c *ChatCollector) Register(config *Config) error {
	username := ChannelUsername(config.URL)
	if username == "" {
		return fmt.Errorf("cannot derive channel username from URL %q", config.URL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[username] = config

	return nil
}

func (c *ChatCollector) SourceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.configs)
}

// Channels returns the registered channel usernames, sorted.
func (c *ChatCollector) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := make([]string, 0, len(c.configs))
	for username := range c.configs {
		channels = append(channels, username)
	}
	sort.Strings(channels)

	return channels
}

// MinPollInterval returns the smallest poll interval (in seconds) among the
// registered chat sources, or 0 when none are registered. The update stream
// is shared, so the collector polls at the pace of its most frequent source.
func (c *ChatCollector) MinPollInterval() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	min := 0
	for _, config := range c.configs {
		if min == 0 || config.Settings.PollInterval < min {
			min = config.Settings.PollInterval
		}
	}

	return min
}

func (c *ChatCollector) Collect(ctx context.Context) ([]admission.Item, error) {
	c.mu.Lock()
	offset := c.offset
	c.mu.Unlock()

	updates, err := c.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}

	var items []admission.Item

	for _, update := range updates {
		if update.UpdateID >= offset {
			offset = update.UpdateID + 1
		}

		post := update.ChannelPost
		if post == nil || post.Text == "" {
			continue
		}

		username := strings.ToLower(post.Chat.Username)

		c.mu.Lock()
		config := c.configs[username]
		c.mu.Unlock()
		if config == nil {
			continue
		}

		item := buildChatItem(post, config)
		items = append(items, c.filterer.Run([]admission.Item{item}, config.Filters)...)
	}

	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()

	return items, nil
}

// buildChatItem turns a channel post into a candidate item. The first line
// serves as the title and channel posts carry no raw date string: the message
// just arrived, so the admission date check runs on the text alone.
func buildChatItem(post *telegram.Message, config *Config) admission.Item {
	lines := strings.SplitN(strings.TrimSpace(post.Text), "\n", 2)

	title := strings.TrimSpace(lines[0])
	body := ""
	if len(lines) > 1 {
		body = strings.TrimSpace(lines[1])
	}

	label := config.SourceLabel()
	if config.Label == "" && post.Chat.Username != "" {
		label = "@" + post.Chat.Username
	}

	return admission.Item{
		Title:  title,
		Body:   body,
		Link:   fmt.Sprintf("https://t.me/%s/%d", post.Chat.Username, post.MessageID),
		Source: label,
	}
}

// ChannelUsername extracts the channel username from a source URL:
// "https://t.me/somechannel", "t.me/somechannel" and "@somechannel" all
// yield "somechannel".
func ChannelUsername(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "t.me/")
	s = strings.TrimPrefix(s, "@")

	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}

	return strings.ToLower(s)
}
