package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StructureWatch/internal/analysis"
	"StructureWatch/internal/collector"
	"StructureWatch/internal/model"
	"StructureWatch/internal/recorder"
	"StructureWatch/internal/telemetry"
)

// AlertSender delivers one transition event. Implemented by the
// notification dispatcher; returns false when every channel failed.
type AlertSender interface {
	Send(ctx context.Context, event *model.AlertEvent) bool
}

// Config holds the per-instrument scheduling parameters.
type Config struct {
	Interval    time.Duration  // polling cadence, also the bar interval
	Lookback    time.Duration  // fetch window
	BackoffBase time.Duration  // first-failure delay
	BackoffCap  time.Duration  // backoff ceiling
	Location    *time.Location // reference timezone for tick alignment
}

// DefaultConfig mirrors the production cadence: 15 minute aligned ticks
// over a 5 day window, backoff 60s doubling up to 900s, New York time.
func DefaultConfig() Config {
	loc, _ := time.LoadLocation("America/New_York")
	return Config{
		Interval:    15 * time.Minute,
		Lookback:    5 * 24 * time.Hour,
		BackoffBase: 60 * time.Second,
		BackoffCap:  900 * time.Second,
		Location:    loc,
	}
}

// Monitor runs the fetch→detect→classify→notify cycle for one
// instrument. Each monitor exclusively owns its cache and structure
// state; failures are absorbed here and never reach sibling monitors.
type Monitor struct {
	symbol     string
	category   string
	fetcher    collector.Fetcher
	cache      *collector.SeriesCache
	detector   *analysis.SwingDetector
	classifier *analysis.StructureClassifier
	sender     AlertSender
	rec        recorder.Recorder
	cfg        Config
	log        zerolog.Logger

	// prevStructure is owned by the run loop but crossed by the daily
	// reset task, hence the mutex.
	mu                sync.Mutex
	prevStructure     model.StructureState
	consecutiveErrors int
}

// New wires a monitor for one instrument.
func New(symbol, category string, fetcher collector.Fetcher, detector *analysis.SwingDetector,
	classifier *analysis.StructureClassifier, sender AlertSender, rec recorder.Recorder,
	cfg Config, log zerolog.Logger) *Monitor {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Monitor{
		symbol:     symbol,
		category:   category,
		fetcher:    fetcher,
		cache:      collector.NewSeriesCache(cfg.Interval),
		detector:   detector,
		classifier: classifier,
		sender:     sender,
		rec:        rec,
		cfg:        cfg,
		log:        log.With().Str("symbol", symbol).Str("category", category).Logger(),
	}
}

// Symbol returns the monitored instrument id.
func (m *Monitor) Symbol() string { return m.symbol }

// Run executes cycles until ctx is cancelled. The first cycle fires
// immediately; afterwards wakes align to interval boundaries, or expand
// into backoff after a failure.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().Msg("monitor started")
	for {
		err := m.runCycle(ctx)

		var wait time.Duration
		if err != nil {
			if ctx.Err() != nil {
				m.log.Info().Msg("monitor stopped")
				return
			}
			wait = m.failureWait(err)
		} else {
			wait = AlignedWait(time.Now(), m.cfg.Interval, m.cfg.Location)
		}

		select {
		case <-ctx.Done():
			m.log.Info().Msg("monitor stopped")
			return
		case <-time.After(wait):
		}
	}
}

// failureWait books the error and picks the replacement wait: the
// server-suggested delay for a rate limit, exponential backoff otherwise.
func (m *Monitor) failureWait(err error) time.Duration {
	m.mu.Lock()
	m.consecutiveErrors++
	errs := m.consecutiveErrors
	m.mu.Unlock()

	wait := BackoffDelay(m.cfg.BackoffBase, m.cfg.BackoffCap, errs)
	var rl *collector.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		wait = rl.RetryAfter
	}

	telemetry.CycleErrors.WithLabelValues(m.symbol).Inc()
	m.log.Error().Err(err).
		Int("consecutive_errors", errs).
		Dur("backoff", wait).
		Msg("monitoring cycle failed")

	if recErr := m.rec.RecordCycleError(&recorder.CycleErrorRow{
		Symbol:            m.symbol,
		ConsecutiveErrors: errs,
		BackoffSeconds:    wait.Seconds(),
		Message:           err.Error(),
		At:                time.Now(),
	}); recErr != nil {
		m.log.Warn().Err(recErr).Msg("record cycle error failed")
	}
	return wait
}

// runCycle performs one fetch→detect→classify→notify pass. The previous
// structure advances only on a definite verdict, and delivery outcome
// never influences classification state.
func (m *Monitor) runCycle(ctx context.Context) error {
	now := time.Now()
	series, ok := m.cache.Get(now)
	if !ok {
		fetched, err := m.fetcher.FetchIntraday(ctx, m.symbol, m.cfg.Interval, m.cfg.Lookback)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		m.cache.Put(fetched, time.Now())
		series = fetched
	}

	swings, err := m.detector.Detect(series)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	prev := m.PreviousStructure()
	verdict, definite := m.classifier.Classify(series, swings, prev)
	if definite {
		if prev.IsSet() && verdict != prev {
			m.emitAlert(ctx, prev, verdict, series.LastClose())
		}
		m.setStructure(verdict)
	}

	m.mu.Lock()
	m.consecutiveErrors = 0
	m.mu.Unlock()
	telemetry.Cycles.WithLabelValues(m.symbol).Inc()
	return nil
}

func (m *Monitor) emitAlert(ctx context.Context, prev, curr model.StructureState, price float64) {
	event := model.NewAlertEvent(m.symbol, m.category, prev, curr, price, time.Now())
	m.log.Info().
		Str("previous", prev.String()).
		Str("current", curr.String()).
		Float64("price", price).
		Msg("market structure changed")

	delivered := m.sender.Send(ctx, event)
	telemetry.Alerts.WithLabelValues(m.symbol).Inc()

	if err := m.rec.RecordAlert(&recorder.AlertRow{
		AlertID:   event.ID,
		Symbol:    event.Symbol,
		Category:  event.Category,
		Previous:  prev.String(),
		Current:   curr.String(),
		Price:     price,
		Delivered: delivered,
		At:        event.Time,
	}); err != nil {
		m.log.Warn().Err(err).Msg("record alert failed")
	}
}

// PreviousStructure returns the last definite verdict, Unset before the
// first classification or after a daily reset.
func (m *Monitor) PreviousStructure() model.StructureState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prevStructure
}

func (m *Monitor) setStructure(s model.StructureState) {
	m.mu.Lock()
	m.prevStructure = s
	m.mu.Unlock()
}

// ResetStructure clears the tracked state back to Unset. The midnight
// task calls this regardless of any in-flight cycle; the next definite
// verdict then counts as a first classification and does not alert.
func (m *Monitor) ResetStructure() {
	m.setStructure(model.StructureUnset)
	m.log.Info().Msg("daily reset completed")
}
