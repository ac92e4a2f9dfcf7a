package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StructureWatch/internal/model"
)

// ErrDataUnavailable signals a transient provider failure. The monitor
// loop retries it via backoff.
var ErrDataUnavailable = errors.New("market data unavailable")

// RateLimitedError is returned when the provider asks us to slow down.
// RetryAfter carries a server-suggested delay, zero if none was given.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Fetcher defines the interface for fetching intraday market data.
type Fetcher interface {
	// FetchIntraday returns bars at the given interval covering the
	// lookback window, oldest first.
	FetchIntraday(ctx context.Context, symbol string, interval, lookback time.Duration) (*model.Series, error)
	Name() string
}
