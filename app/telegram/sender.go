package telegram

import (
	"context"
	"fmt"
	"log/slog"
)

// maxErrorDetail bounds the detail portion of an error notification so a
// runaway error string cannot blow past Telegram's message size limit.
const maxErrorDetail = 200

// Sender delivers formatted news posts and error notifications to the target
// chat over the Bot API.
type Sender struct {
	client Client
	chatID string
}

func NewSender(client Client, chatID string) *Sender {
	return &Sender{client: client, chatID: chatID}
}

// SendNews posts one formatted news message.
func (s *Sender) SendNews(ctx context.Context, text string) error {
	if err := s.client.SendMessage(ctx, s.chatID, text, "HTML"); err != nil {
		return fmt.Errorf("send news message: %w", err)
	}
	return nil
}

// NotifyError sends a short structured error report to the same chat. Best
// effort: a failed notification is logged and dropped, never propagated.
func (s *Sender) NotifyError(ctx context.Context, component, kind, detail string) {
	runes := []rune(detail)
	if len(runes) > maxErrorDetail {
		detail = string(runes[:maxErrorDetail])
	}

	text := fmt.Sprintf("🚨 <b>%s Error</b>\n\n❌ <b>Error:</b> %s\n📝 <b>Details:</b> %s",
		component, kind, detail)

	if err := s.client.SendMessage(ctx, s.chatID, text, "HTML"); err != nil {
		slog.Error("Failed to send error notification", "component", component, "kind", kind, "error", err)
	}
}
