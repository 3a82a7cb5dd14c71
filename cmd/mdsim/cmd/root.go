package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/mdsim/config"
)

var rootCmd = &cobra.Command{
	Use:   "mdsim",
	Short: "An offline backtester for recorded market data",
	Long: `Mdsim replays trading decisions against recorded market data and
scores the outcome.

It provides tools for:
  - Backtesting decision streams against trade/BBO CSV exports
  - Risk and return statistics (Sharpe, Sortino, drawdown, holding time)
  - Bucketing trades into candles
  - Journaling runs to CSV or SQLite and browsing them later`,
}

var (
	cfgPath   string
	verbose   bool
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set log level to debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

// loadConfig reads the config file (defaults when none is given),
// applies the global flags and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	setupLogger(cfg.Log)

	return cfg, nil
}

// setupLogger routes logs to stderr so tables on stdout stay clean.
func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
