package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Cycles counts completed analysis cycles per instrument.
	Cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "structurewatch_cycles_total",
		Help: "Completed polling cycles",
	}, []string{"symbol"})

	// CycleErrors counts failed cycles per instrument.
	CycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "structurewatch_cycle_errors_total",
		Help: "Polling cycles that ended in backoff",
	}, []string{"symbol"})

	// Alerts counts structure transition alerts per instrument.
	Alerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "structurewatch_alerts_total",
		Help: "Structure transition alerts emitted",
	}, []string{"symbol"})

	// Deliveries counts successful channel deliveries.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "structurewatch_deliveries_total",
		Help: "Successful notification deliveries",
	}, []string{"channel"})

	// DeliveryFailures counts exhausted channel attempts.
	DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "structurewatch_delivery_failures_total",
		Help: "Notification deliveries that failed after retries",
	}, []string{"channel"})
)

// StartMetricsServer exposes /metrics on addr until the process exits.
// Errors are logged, not fatal: telemetry must never take the monitor down.
func StartMetricsServer(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listener started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics listener stopped")
		}
	}()
}
