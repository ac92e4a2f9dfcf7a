package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"StructureWatch/internal/model"
	"StructureWatch/internal/telemetry"
)

// DeliveryPolicy decides what counts as a delivered alert.
type DeliveryPolicy string

const (
	// PolicyAny reports success once any channel delivers.
	PolicyAny DeliveryPolicy = "any"
	// PolicyAll reports success only if every enabled channel delivers.
	PolicyAll DeliveryPolicy = "all"
)

// DispatcherConfig controls retry and delivery semantics.
type DispatcherConfig struct {
	MaxAttempts int            // rate-limit retries per channel
	RetryDelay  time.Duration  // fallback wait when no server delay is given
	Policy      DeliveryPolicy // any | all
	Location    *time.Location // reference timezone for message formatting
}

// Dispatcher delivers alerts through an ordered primary channel list,
// first success wins, plus an independent secondary class (email).
// Delivery never raises an error back to the monitor loop.
type Dispatcher struct {
	primary   []Channel
	secondary []Channel
	cfg       DispatcherConfig
	log       zerolog.Logger
}

func NewDispatcher(primary, secondary []Channel, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyAny
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Dispatcher{primary: primary, secondary: secondary, cfg: cfg, log: log}
}

// Send formats the event and walks the channel lists. It returns true
// when the configured policy is satisfied, false once every channel has
// been exhausted. Failures are logged, never propagated.
func (d *Dispatcher) Send(ctx context.Context, event *model.AlertEvent) bool {
	msg := FormatAlert(event, d.cfg.Location)

	delivered, attempted := 0, 0
	for _, ch := range d.primary {
		if !ch.Enabled() {
			continue
		}
		attempted++
		if d.sendChannel(ctx, ch, msg) {
			delivered++
			if d.cfg.Policy == PolicyAny {
				break
			}
		}
	}

	// Secondary class fires independently of the primary order.
	for _, ch := range d.secondary {
		if !ch.Enabled() {
			continue
		}
		if d.cfg.Policy == PolicyAny && delivered > 0 {
			// Best effort only, outcome no longer decides success.
			d.sendChannel(ctx, ch, msg)
			continue
		}
		attempted++
		if d.sendChannel(ctx, ch, msg) {
			delivered++
		}
	}

	if attempted == 0 {
		d.log.Warn().Str("alert_id", event.ID).Msg("no enabled notification channels")
		return false
	}

	ok := delivered > 0
	if d.cfg.Policy == PolicyAll {
		ok = delivered == attempted
	}
	if !ok {
		d.log.Error().
			Str("alert_id", event.ID).
			Str("symbol", event.Symbol).
			Int("delivered", delivered).
			Int("attempted", attempted).
			Msg("alert delivery failed on all configured channels")
	}
	return ok
}

// sendChannel tries one channel with a bounded rate-limit retry loop.
// A transport error moves straight on to the next channel; only a rate
// limit is worth waiting for.
func (d *Dispatcher) sendChannel(ctx context.Context, ch Channel, msg Message) bool {
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err := ch.Send(ctx, msg)
		if err == nil {
			telemetry.Deliveries.WithLabelValues(ch.Name()).Inc()
			d.log.Info().Str("channel", ch.Name()).Int("attempt", attempt).Msg("alert delivered")
			return true
		}

		var rl *RateLimitedError
		if !errors.As(err, &rl) {
			telemetry.DeliveryFailures.WithLabelValues(ch.Name()).Inc()
			d.log.Warn().Err(err).Str("channel", ch.Name()).Msg("channel send failed")
			return false
		}

		wait := rl.RetryAfter
		if wait <= 0 {
			wait = d.cfg.RetryDelay
		}
		d.log.Warn().
			Str("channel", ch.Name()).
			Dur("retry_after", wait).
			Int("attempt", attempt).
			Int("max_attempts", d.cfg.MaxAttempts).
			Msg("channel rate limited")

		if attempt == d.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
	telemetry.DeliveryFailures.WithLabelValues(ch.Name()).Inc()
	return false
}
