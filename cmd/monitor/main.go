package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StructureWatch/internal/analysis"
	"StructureWatch/internal/collector"
	"StructureWatch/internal/config"
	"StructureWatch/internal/monitor"
	"StructureWatch/internal/notifier"
	"StructureWatch/internal/recorder"
	"StructureWatch/internal/telemetry"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	logger.Info().Msg("StructureWatch starting...")

	// .env first so overrides below can see it
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}

	loc, err := time.LoadLocation(cfg.Monitor.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("load timezone")
	}

	// Data source
	var fetcher collector.Fetcher
	if cfg.DataSource.Mock {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Info().Str("source", fetcher.Name()).Msg("data source selected")

	// Notification channels, config order = priority order
	var primary []notifier.Channel
	for _, ch := range cfg.Notifications.Channels {
		switch ch.Type {
		case "discord":
			primary = append(primary, notifier.NewDiscordChannel(ch.WebhookURL, ch.Enabled, cfg.Proxy))
		case "telegram":
			primary = append(primary, notifier.NewTelegramChannel(ch.BotToken, ch.ChatID, ch.Enabled, cfg.Proxy))
		}
	}
	var secondary []notifier.Channel
	if e := cfg.Notifications.Email; e.Enabled {
		secondary = append(secondary, notifier.NewEmailChannel(
			e.SMTPHost, e.SMTPPort, e.Username, e.Password, e.From, e.To, e.Enabled))
	}
	dispatcher := notifier.NewDispatcher(primary, secondary, notifier.DispatcherConfig{
		MaxAttempts: cfg.Notifications.MaxAttempts,
		RetryDelay:  time.Duration(cfg.Notifications.RetryDelaySeconds) * time.Second,
		Policy:      notifier.DeliveryPolicy(cfg.Notifications.Policy),
		Location:    loc,
	}, logger.With().Str("component", "dispatcher").Logger())

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
			logger.Info().Str("path", cfg.Database.SQLitePath).Msg("sqlite recorder opened")
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	if cfg.Telemetry.ListenAddr != "" {
		telemetry.StartMetricsServer(cfg.Telemetry.ListenAddr, logger)
	}

	// Analysis components are shared read-only across monitors.
	detector, err := analysis.NewSwingDetector(analysis.DetectorConfig{
		WindowRadius:     cfg.Monitor.WindowRadius,
		Mode:             analysis.SensitivityMode(cfg.Monitor.SensitivityMode),
		MovementFraction: cfg.Monitor.MinMovementFraction,
		VolatilityFactor: cfg.Monitor.VolatilityFactor,
		ATRPeriod:        14,
		TrendFilterSpan:  cfg.Monitor.TrendFilterSpan,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init swing detector")
	}
	classifier := analysis.NewStructureClassifier(analysis.ClassifierConfig{
		TrendStrengthThreshold: cfg.Monitor.TrendStrengthThreshold,
		TrendSpan:              cfg.Monitor.TrendFilterSpan,
		ATRPeriod:              14,
	})

	monCfg := monitor.Config{
		Interval:    cfg.PollingInterval(),
		Lookback:    cfg.Lookback(),
		BackoffBase: time.Duration(cfg.Monitor.BackoffBaseSeconds) * time.Second,
		BackoffCap:  time.Duration(cfg.Monitor.BackoffCapSeconds) * time.Second,
		Location:    loc,
	}

	var monitors []*monitor.Monitor
	for category, symbols := range cfg.Assets {
		for _, symbol := range symbols {
			monitors = append(monitors, monitor.New(
				symbol, category, fetcher, detector, classifier, dispatcher, rec, monCfg, logger))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, m := range monitors {
		wg.Add(1)
		go func(m *monitor.Monitor) {
			defer wg.Done()
			m.Run(ctx)
		}(m)
	}
	logger.Info().Int("monitors", len(monitors)).Msg("all monitors running")

	resetCron, err := monitor.StartDailyReset(monitors, monCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("start daily reset")
	}
	defer resetCron.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
	wg.Wait()
	logger.Info().Msg("StructureWatch stopped")
}
