package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TickerLens/internal/analyzer"
	"TickerLens/internal/collector"
	"TickerLens/internal/metrics"
	"TickerLens/internal/notifier"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis once and print the first rows",
		RunE:  runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	q, err := cfg.Query()
	if err != nil {
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
	res, err := runner.Run(ctx, q)
	if err != nil {
		return err
	}
	if res.SinkErr != nil {
		log.Warn().Err(res.SinkErr).Msg("analysis finished but some outputs failed")
	}

	fmt.Fprint(os.Stdout, notifier.FormatHead(res.Engine.View(), cfg.Analysis.Head))
	return nil
}
