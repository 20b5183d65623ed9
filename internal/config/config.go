package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"TickerLens/internal/indicator"
	"TickerLens/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		Ticker   string `yaml:"ticker"`
		Start    string `yaml:"start"`
		End      string `yaml:"end"`
		Interval string `yaml:"interval"`
		Head     int    `yaml:"head"`
	} `yaml:"analysis"`
	Indicators struct {
		MACD struct {
			Enabled bool `yaml:"enabled"`
			Fast    int  `yaml:"fast"`
			Slow    int  `yaml:"slow"`
			Signal  int  `yaml:"signal"`
		} `yaml:"macd"`
		ATR  Window `yaml:"atr"`
		Boll Window `yaml:"boll"`
		RSI  Window `yaml:"rsi"`
	} `yaml:"indicators"`
	DataSource struct {
		Provider       string        `yaml:"provider"` // yahoo, alpaca, rest, mock
		BaseURL        string        `yaml:"base_url"`
		APIKey         string        `yaml:"api_key"`
		APISecret      string        `yaml:"api_secret"`
		RequestsPerSec float64       `yaml:"requests_per_sec"`
		MaxRetries     int           `yaml:"max_retries"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Output struct {
		CSVPath     string `yaml:"csv_path"`
		ParquetPath string `yaml:"parquet_path"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron        string `yaml:"cron"`
		MetricsAddr string `yaml:"metrics_addr"`
		StateFile   string `yaml:"state_file"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Window enables a single-parameter indicator.
type Window struct {
	Enabled bool `yaml:"enabled"`
	Period  int  `yaml:"period"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// zero is meaningful for these (no limit, no retries), so they are seeded before
	// the file is read instead of filled in afterwards
	cfg.DataSource.RequestsPerSec = 2
	cfg.DataSource.MaxRetries = 3

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TICKERLENS_TICKER"); v != "" {
		cfg.Analysis.Ticker = v
	}
	if v := os.Getenv("TICKERLENS_INTERVAL"); v != "" {
		cfg.Analysis.Interval = v
	}
	if v := os.Getenv("TICKERLENS_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.DataSource.APISecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Output.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Schedule.MetricsAddr = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.Schedule.StateFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DATA_SOURCE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.MaxRetries = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.Start == "" {
		cfg.Analysis.Start = model.DefaultStart
	}
	if cfg.Analysis.End == "" {
		cfg.Analysis.End = model.DefaultEnd
	}
	if cfg.Analysis.Interval == "" {
		cfg.Analysis.Interval = string(model.DefaultInterval)
	}
	if cfg.Analysis.Head == 0 {
		cfg.Analysis.Head = 10
	}

	m := &cfg.Indicators.MACD
	if m.Fast == 0 {
		m.Fast = indicator.DefaultMACDFast
	}
	if m.Slow == 0 {
		m.Slow = indicator.DefaultMACDSlow
	}
	if m.Signal == 0 {
		m.Signal = indicator.DefaultMACDSignal
	}
	if cfg.Indicators.ATR.Period == 0 {
		cfg.Indicators.ATR.Period = indicator.DefaultATRPeriod
	}
	if cfg.Indicators.Boll.Period == 0 {
		cfg.Indicators.Boll.Period = indicator.DefaultBollPeriod
	}
	if cfg.Indicators.RSI.Period == 0 {
		cfg.Indicators.RSI.Period = indicator.DefaultRSIPeriod
	}

	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 12 * time.Hour
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if cfg.Schedule.MetricsAddr == "" {
		cfg.Schedule.MetricsAddr = ":9108"
	}
	if cfg.Schedule.StateFile == "" {
		cfg.Schedule.StateFile = "data/tickerlens_state.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if c.Analysis.Ticker == "" {
		return fmt.Errorf("analysis.ticker is required")
	}
	if _, err := model.NewQuery(c.Analysis.Ticker, c.Analysis.Start, c.Analysis.End, c.Analysis.Interval); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and data_source.api_secret are required for alpaca")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.DataSource.RequestsPerSec < 0 {
		return fmt.Errorf("data_source.requests_per_sec must not be negative")
	}
	if c.DataSource.MaxRetries < 0 {
		return fmt.Errorf("data_source.max_retries must not be negative")
	}
	return nil
}

// ValidateNotifier checks the Telegram settings needed by the watch command.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Query builds the validated analysis query.
func (c *Config) Query() (model.Query, error) {
	return model.NewQuery(c.Analysis.Ticker, c.Analysis.Start, c.Analysis.End, c.Analysis.Interval)
}

// IndicatorSpec converts the indicator section into an engine spec.
func (c *Config) IndicatorSpec() indicator.Spec {
	ind := c.Indicators
	return indicator.Spec{
		MACD: ind.MACD.Enabled, MACDFast: ind.MACD.Fast, MACDSlow: ind.MACD.Slow, MACDSignal: ind.MACD.Signal,
		ATR: ind.ATR.Enabled, ATRPeriod: ind.ATR.Period,
		Boll: ind.Boll.Enabled, BollPeriod: ind.Boll.Period,
		RSI: ind.RSI.Enabled, RSIPeriod: ind.RSI.Period,
	}
}
