// Package config holds the run configuration: dataset paths, strategy
// parameters, engine and journal settings. Values come from a YAML
// file with env overrides on top; flags are merged by the CLI after
// loading.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Strategy StrategyConfig `yaml:"strategy"`
	Engine   EngineConfig   `yaml:"engine"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig names the input files for one instrument.
type DataConfig struct {
	Trades     string `yaml:"trades"`
	BBO        string `yaml:"bbo,omitempty"`
	Instrument string `yaml:"instrument"`
}

// StrategyConfig carries the union of all strategy parameters; each
// strategy reads the ones it understands.
type StrategyConfig struct {
	Name        string  `yaml:"name"`
	N           int     `yaml:"n"`
	MaxSize     float64 `yaml:"max_size"`
	Seed        int64   `yaml:"seed"`
	Amount      float64 `yaml:"amount"`
	CandleWidth string  `yaml:"candle_width"` // e.g. "1h", "15m"
	Margin      string  `yaml:"margin"`       // e.g. "1m"
	Fast        int     `yaml:"fast"`
	Slow        int     `yaml:"slow"`
}

// ParseCandleWidth returns the candle bucket width, one hour when
// unset.
func (s StrategyConfig) ParseCandleWidth() (time.Duration, error) {
	if s.CandleWidth == "" {
		return time.Hour, nil
	}
	return time.ParseDuration(s.CandleWidth)
}

// ParseMargin returns the window margin, one minute when unset.
func (s StrategyConfig) ParseMargin() (time.Duration, error) {
	if s.Margin == "" {
		return time.Minute, nil
	}
	return time.ParseDuration(s.Margin)
}

type EngineConfig struct {
	Unwind string `yaml:"unwind"` // "fifo" or "lifo"
}

type JournalConfig struct {
	Type       string `yaml:"type"` // "none", "csv" or "sqlite"
	RunsFile   string `yaml:"runs_file,omitempty"`
	FillsFile  string `yaml:"fills_file,omitempty"`
	EquityFile string `yaml:"equity_file,omitempty"`
	DBPath     string `yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file at path over the defaults, then applies
// env overrides. A .env file in the working directory is honored. An
// empty path skips the file and returns defaults plus env. Call
// Validate once flag values are merged in.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PATH_TRADES"); v != "" {
		cfg.Data.Trades = v
	}
	if v := os.Getenv("PATH_BBO"); v != "" {
		cfg.Data.BBO = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks if the configuration is complete enough to run.
func (c *Config) Validate() error {
	if c.Data.Trades == "" {
		return fmt.Errorf("data.trades is required")
	}
	if c.Data.Instrument == "" {
		return fmt.Errorf("data.instrument is required")
	}

	switch c.Strategy.Name {
	case "random":
		if c.Strategy.N <= 0 {
			return fmt.Errorf("strategy.n must be positive")
		}
		if c.Strategy.MaxSize <= 0 {
			return fmt.Errorf("strategy.max_size must be positive")
		}
	case "candles", "candle-pattern":
		if c.Strategy.Amount <= 0 {
			return fmt.Errorf("strategy.amount must be positive")
		}
		if w, err := c.Strategy.ParseCandleWidth(); err != nil || w <= 0 {
			return fmt.Errorf("strategy.candle_width %q is not a positive duration", c.Strategy.CandleWidth)
		}
		if m, err := c.Strategy.ParseMargin(); err != nil || m < 0 {
			return fmt.Errorf("strategy.margin %q is not a duration", c.Strategy.Margin)
		}
	case "ema-cross", "emacross":
		if c.Strategy.Amount <= 0 {
			return fmt.Errorf("strategy.amount must be positive")
		}
		if c.Strategy.Fast <= 0 {
			return fmt.Errorf("strategy.fast must be positive")
		}
		if c.Strategy.Slow <= c.Strategy.Fast {
			return fmt.Errorf("strategy.slow must exceed strategy.fast")
		}
		if w, err := c.Strategy.ParseCandleWidth(); err != nil || w <= 0 {
			return fmt.Errorf("strategy.candle_width %q is not a positive duration", c.Strategy.CandleWidth)
		}
	case "":
		return fmt.Errorf("strategy.name is required")
	default:
		return fmt.Errorf("unknown strategy: %s", c.Strategy.Name)
	}

	switch c.Engine.Unwind {
	case "", "fifo", "lifo":
	default:
		return fmt.Errorf("engine.unwind must be 'fifo' or 'lifo'")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal runs_file, fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Instrument: "DOGEUSDT",
		},
		Strategy: StrategyConfig{
			Name:        "random",
			N:           100,
			MaxSize:     1000,
			Amount:      1000,
			CandleWidth: "1h",
			Margin:      "1m",
			Fast:        20,
			Slow:        50,
		},
		Engine: EngineConfig{
			Unwind: "fifo",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
