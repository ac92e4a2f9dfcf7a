package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Telegram caps message text at 4096 characters.
const telegramTextLimit = 4096

// TelegramChannel sends messages via the Telegram Bot API.
type TelegramChannel struct {
	BotToken string
	ChatID   string
	On       bool
	Client   *http.Client
}

// NewTelegramChannel creates a channel with optional proxy support.
func NewTelegramChannel(botToken, chatID string, enabled bool, proxyURL string) *TelegramChannel {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramChannel{
		BotToken: botToken,
		ChatID:   chatID,
		On:       enabled,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramChannel) Name() string  { return "telegram" }
func (t *TelegramChannel) Enabled() bool { return t.On }

// Send sends title and body as one HTML message to the configured chat.
func (t *TelegramChannel) Send(ctx context.Context, msg Message) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	text := truncate(fmt.Sprintf("<b>%s</b>\n\n%s", msg.Title, msg.Body), telegramTextLimit)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		var throttle struct {
			Parameters struct {
				RetryAfter int `json:"retry_after"`
			} `json:"parameters"`
		}
		_ = json.Unmarshal(respBody, &throttle)
		return &RateLimitedError{RetryAfter: time.Duration(throttle.Parameters.RetryAfter) * time.Second}
	}
	return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
}
