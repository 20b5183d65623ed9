package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"TickerLens/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	ticker      string
	startDate   string
	endDate     string
	interval    string
	provider    string
	indicators  string
	macdParams  []int
	atrPeriod   int
	bollPeriod  int
	rsiPeriod   int
	csvPath     string
	parquetPath string
	sqlitePath  string
	head        int
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tickerlens",
		Short: "Technical indicators over a ticker's price history",
		Long: `TickerLens downloads the OHLC history of one ticker and appends growth ratios,
moving averages, MACD, ATR, Bollinger Bands and RSI to it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is fine
			_ = godotenv.Load()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "configs/config.yaml", "Path to config file")
	pf.StringVar(&ticker, "ticker", "", "Ticker symbol, e.g. TSLA")
	pf.StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD), inclusive")
	pf.StringVar(&endDate, "end", "", "End date (YYYY-MM-DD), exclusive")
	pf.StringVar(&interval, "interval", "", "Bar interval (1m,2m,5m,15m,30m,60m,90m,1h,1d,5d,1wk,1mo,3mo)")
	pf.StringVar(&provider, "provider", "", "Data source: yahoo, alpaca, rest or mock")
	pf.StringVar(&indicators, "indicators", "", "Comma-separated indicators to compute: macd,atr,boll,rsi or all")
	pf.IntSliceVar(&macdParams, "macd", nil, "MACD fast,slow,signal spans")
	pf.IntVar(&atrPeriod, "atr-period", 0, "ATR period")
	pf.IntVar(&bollPeriod, "boll-period", 0, "Bollinger period")
	pf.IntVar(&rsiPeriod, "rsi-period", 0, "RSI period")
	pf.StringVar(&csvPath, "csv", "", "Write the table to this CSV file")
	pf.StringVar(&parquetPath, "parquet", "", "Write the table to this Parquet file")
	pf.StringVar(&sqlitePath, "sqlite", "", "Record the run in this SQLite database")
	pf.IntVar(&head, "head", 0, "Rows to print after the analysis")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAnalyzeCmd(), newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ticker") {
		cfg.Analysis.Ticker = ticker
	}
	if flags.Changed("start") {
		cfg.Analysis.Start = startDate
	}
	if flags.Changed("end") {
		cfg.Analysis.End = endDate
	}
	if flags.Changed("interval") {
		cfg.Analysis.Interval = interval
	}
	if flags.Changed("provider") {
		cfg.DataSource.Provider = provider
	}
	if flags.Changed("head") {
		cfg.Analysis.Head = head
	}
	if flags.Changed("csv") {
		cfg.Output.CSVPath = csvPath
	}
	if flags.Changed("parquet") {
		cfg.Output.ParquetPath = parquetPath
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLitePath = sqlitePath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("indicators") {
		if err := enableIndicators(cfg, indicators); err != nil {
			return nil, err
		}
	}
	if flags.Changed("macd") {
		if len(macdParams) != 3 {
			return nil, fmt.Errorf("--macd wants fast,slow,signal, got %v", macdParams)
		}
		m := &cfg.Indicators.MACD
		m.Enabled = true
		m.Fast, m.Slow, m.Signal = macdParams[0], macdParams[1], macdParams[2]
	}
	if flags.Changed("atr-period") {
		cfg.Indicators.ATR = config.Window{Enabled: true, Period: atrPeriod}
	}
	if flags.Changed("boll-period") {
		cfg.Indicators.Boll = config.Window{Enabled: true, Period: bollPeriod}
	}
	if flags.Changed("rsi-period") {
		cfg.Indicators.RSI = config.Window{Enabled: true, Period: rsiPeriod}
	}

	setupLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// enableIndicators replaces the enabled set with the listed indicators.
func enableIndicators(cfg *config.Config, list string) error {
	ind := &cfg.Indicators
	ind.MACD.Enabled, ind.ATR.Enabled, ind.Boll.Enabled, ind.RSI.Enabled = false, false, false, false
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "all":
			ind.MACD.Enabled, ind.ATR.Enabled, ind.Boll.Enabled, ind.RSI.Enabled = true, true, true, true
		case "macd":
			ind.MACD.Enabled = true
		case "atr":
			ind.ATR.Enabled = true
		case "boll", "boll_band", "bollinger":
			ind.Boll.Enabled = true
		case "rsi":
			ind.RSI.Enabled = true
		default:
			return fmt.Errorf("unknown indicator %q", name)
		}
	}
	return nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
