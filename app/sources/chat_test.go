package sources

import (
	"context"
	"testing"

	"github.com/svirin/newswatch/app/telegram"
)

type fakeTelegramClient struct {
	updates    []telegram.Update
	gotOffsets []int64
}

func (c *fakeTelegramClient) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	return nil
}

func (c *fakeTelegramClient) GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error) {
	c.gotOffsets = append(c.gotOffsets, offset)
	return c.updates, nil
}

func channelPost(updateID int64, messageID int64, username, text string) telegram.Update {
	return telegram.Update{
		UpdateID: updateID,
		ChannelPost: &telegram.Message{
			MessageID: messageID,
			Text:      text,
			Chat: telegram.Chat{
				ID:       -100123,
				Username: username,
				Type:     "channel",
			},
		},
	}
}

func chatConfig(name, url string) *Config {
	return &Config{
		Name:     name,
		Type:     TypeChat,
		URL:      url,
		Settings: ConfigSettings{Enabled: true},
	}
}

func TestChatCollectorCollect(t *testing.T) {
	client := &fakeTelegramClient{
		updates: []telegram.Update{
			channelPost(10, 7, "newschannel", "Заголовок новости\nТело новости\nЕщё текст"),
			channelPost(11, 8, "otherchannel", "Пост из чужого канала"),
			channelPost(12, 9, "newschannel", "Только заголовок"),
		},
	}

	collector := NewChatCollector(client)
	if err := collector.Register(chatConfig("news", "https://t.me/NewsChannel")); err != nil {
		t.Fatalf("Expected registration to succeed, got %v", err)
	}

	items, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The post from the unregistered channel is consumed and dropped.
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Заголовок новости" {
		t.Errorf("Expected first line as title, got %q", first.Title)
	}
	if first.Body != "Тело новости\nЕщё текст" {
		t.Errorf("Expected remaining lines as body, got %q", first.Body)
	}
	if first.Link != "https://t.me/newschannel/7" {
		t.Errorf("Expected t.me message link, got %q", first.Link)
	}
	if first.Source != "@newschannel" {
		t.Errorf("Expected @username source, got %q", first.Source)
	}
	if first.RawDate != "" {
		t.Errorf("Expected chat items to carry no raw date, got %q", first.RawDate)
	}

	if items[1].Title != "Только заголовок" || items[1].Body != "" {
		t.Errorf("Expected single-line post handled, got %+v", items[1])
	}
}

func TestChatCollectorOffsetAdvances(t *testing.T) {
	client := &fakeTelegramClient{
		updates: []telegram.Update{
			channelPost(10, 7, "newschannel", "Первый пост"),
			channelPost(12, 8, "newschannel", "Второй пост"),
		},
	}

	collector := NewChatCollector(client)
	if err := collector.Register(chatConfig("news", "@newschannel")); err != nil {
		t.Fatalf("Expected registration to succeed, got %v", err)
	}

	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	client.updates = nil
	if _, err := collector.Collect(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(client.gotOffsets) != 2 {
		t.Fatalf("Expected two polls, got %d", len(client.gotOffsets))
	}
	if client.gotOffsets[0] != 0 {
		t.Errorf("Expected first poll from offset 0, got %d", client.gotOffsets[0])
	}
	if client.gotOffsets[1] != 13 {
		t.Errorf("Expected second poll past the last update, got %d", client.gotOffsets[1])
	}
}

func TestChatCollectorChannels(t *testing.T) {
	collector := NewChatCollector(&fakeTelegramClient{})

	first := chatConfig("zeta", "@zetachannel")
	first.Settings.PollInterval = 60
	second := chatConfig("news", "https://t.me/NewsChannel")
	second.Settings.PollInterval = 15

	for _, config := range []*Config{first, second} {
		if err := collector.Register(config); err != nil {
			t.Fatalf("Expected registration to succeed, got %v", err)
		}
	}

	channels := collector.Channels()
	if len(channels) != 2 || channels[0] != "newschannel" || channels[1] != "zetachannel" {
		t.Errorf("Expected sorted channel usernames, got %v", channels)
	}

	if got := collector.MinPollInterval(); got != 15 {
		t.Errorf("Expected the smallest configured interval, got %d", got)
	}
}

func TestChatCollectorMinPollIntervalEmpty(t *testing.T) {
	collector := NewChatCollector(&fakeTelegramClient{})

	if got := collector.MinPollInterval(); got != 0 {
		t.Errorf("Expected 0 with no registered sources, got %d", got)
	}
}

func TestChatCollectorRegisterRejectsBadURL(t *testing.T) {
	collector := NewChatCollector(&fakeTelegramClient{})

	if err := collector.Register(chatConfig("bad", "")); err == nil {
		t.Error("Expected registration to fail for empty URL")
	}
}

func TestChannelUsername(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://t.me/NewsChannel", "newschannel"},
		{"t.me/newschannel", "newschannel"},
		{"@newschannel", "newschannel"},
		{"https://t.me/newschannel/42", "newschannel"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ChannelUsername(tt.url); got != tt.expected {
			t.Errorf("ChannelUsername(%q): expected %q, got %q", tt.url, tt.expected, got)
		}
	}
}
