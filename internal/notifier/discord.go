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

// Discord caps embed descriptions at 4096 characters.
const discordDescriptionLimit = 4096

// DiscordChannel posts alert embeds to a Discord webhook.
type DiscordChannel struct {
	WebhookURL string
	On         bool
	Client     *http.Client
}

// NewDiscordChannel creates a webhook channel with optional proxy support.
func NewDiscordChannel(webhookURL string, enabled bool, proxyURL string) *DiscordChannel {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &DiscordChannel{
		WebhookURL: webhookURL,
		On:         enabled,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (d *DiscordChannel) Name() string  { return "discord" }
func (d *DiscordChannel) Enabled() bool { return d.On }

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

// Send posts the message as a single embed. Discord answers 204 on
// success and 429 with a retry_after body when throttling.
func (d *DiscordChannel) Send(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"embeds": []discordEmbed{{
			Title:       msg.Title,
			Description: truncate(msg.Body, discordDescriptionLimit),
			Color:       msg.Color,
			Timestamp:   msg.Timestamp.Format(time.RFC3339),
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		var throttle struct {
			RetryAfter float64 `json:"retry_after"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(respBody, &throttle)
		return &RateLimitedError{RetryAfter: time.Duration(throttle.RetryAfter * float64(time.Second))}
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
}
