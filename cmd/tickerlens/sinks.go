package main

import (
	"TickerLens/internal/config"
	"TickerLens/internal/export"
	"TickerLens/internal/recorder"

	"github.com/rs/zerolog/log"
)

// buildExporters returns the configured outputs and a func closing whatever they hold open.
func buildExporters(cfg *config.Config) ([]export.Exporter, func()) {
	var exporters []export.Exporter
	closers := []func(){}

	if cfg.Output.CSVPath != "" {
		exporters = append(exporters, export.NewCSVExporter(cfg.Output.CSVPath))
	}
	if cfg.Output.ParquetPath != "" {
		exporters = append(exporters, export.NewParquetExporter(cfg.Output.ParquetPath))
	}
	if cfg.Output.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Output.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, runs will not be recorded")
		} else {
			exporters = append(exporters, recorder.Sink{Recorder: sr})
			closers = append(closers, func() { sr.Close() })
		}
	}

	return exporters, func() {
		for _, c := range closers {
			c()
		}
	}
}
