package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client wraps the Telegram Bot API methods the bot needs. The interface
// exists so the sender and the chat collector can be tested against a fake.
type Client interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) error
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error)
}

type BotClient struct {
	client *http.Client
	apiURL string
}

var _ Client = (*BotClient)(nil)

func NewBotClient(token string) *BotClient {
	return &BotClient{
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: fmt.Sprintf("https://api.telegram.org/bot%s", token),
	}
}

// SendMessage posts a text message. Link previews are disabled so a news post
// stays a compact text block.
func (c *BotClient) SendMessage(ctx context.Context, chatID, text, parseMode string) error {
	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}

	var resp apiResponse
	if err := c.post(ctx, "sendMessage", payload, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("telegram sendMessage: %s", resp.Description)
	}
	return nil
}

// GetUpdates long-polls for incoming updates starting at offset.
func (c *BotClient) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}
	if timeout <= 0 {
		timeout = 5
	}
	params.Set("timeout", fmt.Sprintf("%d", timeout))
	params.Set("allowed_updates", `["channel_post"]`)

	var resp getUpdatesResponse
	if err := c.get(ctx, "getUpdates", params, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("telegram getUpdates: %s", resp.Description)
	}
	return resp.Result, nil
}

func (c *BotClient) post(ctx context.Context, method string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *BotClient) get(ctx context.Context, method string, params url.Values, out any) error {
	u := c.apiURL + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
