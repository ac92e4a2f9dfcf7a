package monitor

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StartDailyReset schedules the midnight cold start in the reference
// timezone: every monitor's previous structure drops back to Unset so the
// first verdict of the new day never alerts. Runs independently of the
// polling cadence. Caller stops the returned cron on shutdown.
func StartDailyReset(monitors []*Monitor, cfg Config, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Location))
	_, err := c.AddFunc("0 0 0 * * *", func() {
		for _, m := range monitors {
			m.ResetStructure()
		}
		log.Info().Int("monitors", len(monitors)).Msg("daily structure reset")
	})
	if err != nil {
		return nil, fmt.Errorf("register daily reset: %w", err)
	}
	c.Start()
	return c, nil
}
