package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/collector"
	"TickerLens/internal/config"
	"TickerLens/internal/metrics"
	"TickerLens/internal/model"
	"TickerLens/internal/notifier"
	"TickerLens/internal/scheduler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	runOnStart bool
	rolling    bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis on a schedule and report through Telegram",
		RunE:  runWatch,
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run the analysis once at startup")
	cmd.Flags().BoolVar(&rolling, "rolling", true, "Move the end date to tomorrow on every run")
	return cmd
}

// rollingQuery keeps the configured start and lets the end follow the calendar.
func rollingQuery(cfg *config.Config, roll bool) scheduler.QueryFunc {
	return func() (model.Query, error) {
		end := cfg.Analysis.End
		if roll {
			end = time.Now().UTC().AddDate(0, 0, 1).Format(model.DateLayout)
		}
		return model.NewQuery(cfg.Analysis.Ticker, cfg.Analysis.Start, end, cfg.Analysis.Interval)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateNotifier(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	fetcher, err := collector.NewFetcher(cfg, m)
	if err != nil {
		return err
	}
	exporters, closeAll := buildExporters(cfg)
	defer closeAll()

	runner := analyzer.NewRunner(fetcher, cfg.IndicatorSpec(), m, exporters...)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, runner, tn, rollingQuery(cfg, rolling))
	sched.StateFile = cfg.Schedule.StateFile
	if err := sched.Restore(); err != nil {
		log.Warn().Err(err).Msg("starting without previous summary")
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: cfg.Schedule.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", cfg.Schedule.MetricsAddr).Msg("metrics server listening")

	if runOnStart {
		log.Info().Msg("run-on-start enabled, executing analysis now")
		go sched.RunNow()
	}

	log.Info().Str("ticker", cfg.Analysis.Ticker).Str("cron", cfg.Schedule.Cron).Msg("TickerLens is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
