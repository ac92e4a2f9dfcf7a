package notifier

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// Message is the channel-agnostic alert payload. Channels format and
// truncate it to their own limits.
type Message struct {
	Title     string
	Body      string
	Color     int
	Timestamp time.Time
	Fields    map[string]string
}

// RateLimitedError is returned by a channel when the receiving service
// asks us to slow down. RetryAfter is the server-suggested delay, zero
// when the server gave none.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("channel rate limited, retry after %s", e.RetryAfter)
}

// Channel delivers one message to one endpoint. Transport errors come
// back as plain errors; a rate limit comes back as *RateLimitedError so
// the dispatcher can wait and retry.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, msg Message) error
}

// truncate cuts s to at most limit runes, marking the cut. The cut
// always lands on a rune boundary so the payload stays valid UTF-8.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	const marker = '…'
	runes := []rune(s)
	return string(runes[:limit-1]) + string(marker)
}
