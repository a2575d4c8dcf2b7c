package telegram

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeClient struct {
	messages []sentMessage
	updates  []Update
	fail     bool
}

type sentMessage struct {
	chatID    string
	text      string
	parseMode string
}

func (c *fakeClient) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	if c.fail {
		return fmt.Errorf("network error")
	}
	c.messages = append(c.messages, sentMessage{chatID: chatID, text: text, parseMode: parseMode})
	return nil
}

func (c *fakeClient) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	return c.updates, nil
}

func TestSendNews(t *testing.T) {
	client := &fakeClient{}
	sender := NewSender(client, "-100123")

	if err := sender.SendNews(context.Background(), "<b>Источник</b>\nссылка\nтекст"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("Expected one message, got %d", len(client.messages))
	}

	msg := client.messages[0]
	if msg.chatID != "-100123" {
		t.Errorf("Expected chat ID -100123, got %s", msg.chatID)
	}
	if msg.parseMode != "HTML" {
		t.Errorf("Expected HTML parse mode, got %s", msg.parseMode)
	}
}

func TestSendNewsPropagatesFailure(t *testing.T) {
	sender := NewSender(&fakeClient{fail: true}, "-100123")

	if err := sender.SendNews(context.Background(), "text"); err == nil {
		t.Error("Expected send failure to propagate")
	}
}

func TestNotifyError(t *testing.T) {
	client := &fakeClient{}
	sender := NewSender(client, "-100123")

	sender.NotifyError(context.Background(), "lenta-rss", "Poll Failed", "connection refused")

	if len(client.messages) != 1 {
		t.Fatalf("Expected one message, got %d", len(client.messages))
	}

	text := client.messages[0].text
	if !strings.Contains(text, "<b>lenta-rss Error</b>") {
		t.Errorf("Expected component in notification, got %q", text)
	}
	if !strings.Contains(text, "Poll Failed") {
		t.Errorf("Expected error kind in notification, got %q", text)
	}
	if !strings.Contains(text, "connection refused") {
		t.Errorf("Expected detail in notification, got %q", text)
	}
}

func TestNotifyErrorTruncatesDetail(t *testing.T) {
	client := &fakeClient{}
	sender := NewSender(client, "-100123")

	detail := strings.Repeat("я", 500)
	sender.NotifyError(context.Background(), "source", "Error", detail)

	text := client.messages[0].text
	if strings.Contains(text, strings.Repeat("я", 201)) {
		t.Error("Expected detail to be truncated to 200 characters")
	}
	if !strings.Contains(text, strings.Repeat("я", 200)) {
		t.Error("Expected first 200 characters of detail to survive")
	}
}

func TestNotifyErrorSwallowsSendFailure(t *testing.T) {
	sender := NewSender(&fakeClient{fail: true}, "-100123")

	// Must not panic or propagate.
	sender.NotifyError(context.Background(), "source", "Error", "detail")
}
