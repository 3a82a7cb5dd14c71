package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/mdsim/backtest"
	"github.com/rustyeddy/mdsim/config"
	"github.com/rustyeddy/mdsim/feed"
	"github.com/rustyeddy/mdsim/journal"
	"github.com/rustyeddy/mdsim/market"
	"github.com/rustyeddy/mdsim/sim"
	"github.com/rustyeddy/mdsim/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a strategy against a recorded dataset",
	Long: `Backtest generates a decision stream over the dataset's time span,
replays it through the fill simulator and prints the performance report.

Supported strategies:
  - random:    N evenly spaced decisions with seeded random side and size
  - candles:   hindsight candle entries and exits (needs --candle-width)
  - ema-cross: fast/slow EMA crossover on candle closes (--fast, --slow)

Paths may also come from the config file or the PATH_TRADES / PATH_BBO
environment variables (a .env file is honored).

Example:
  mdsim backtest --trades data/doge-trades.csv.gz --strategy random --n 200 --seed 7`,
	RunE: runBacktest,
}

var (
	btTrades     string
	btBBO        string
	btInstrument string
	btStrategy   string
	btN          int
	btMaxSize    float64
	btSeed       int64
	btAmount     float64
	btWidth      string
	btMargin     string
	btFast       int
	btSlow       int
	btUnwind     string
	btJournal    string
	btDBPath     string
	btRunsFile   string
	btFillsFile  string
	btEquityFile string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btTrades, "trades", "t", "", "path to trades CSV (plain, .gz or .xz)")
	backtestCmd.Flags().StringVar(&btBBO, "bbo", "", "path to BBO CSV (optional)")
	backtestCmd.Flags().StringVarP(&btInstrument, "instrument", "i", "", "instrument label for the run")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "", "strategy name (random, candles, ema-cross)")

	backtestCmd.Flags().IntVar(&btN, "n", 0, "random: number of decisions")
	backtestCmd.Flags().Float64Var(&btMaxSize, "size", 0, "random: maximum size per decision")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", 0, "random: RNG seed")

	backtestCmd.Flags().Float64Var(&btAmount, "amount", 0, "candles, ema-cross: size per entry")
	backtestCmd.Flags().StringVar(&btWidth, "candle-width", "", `candles: bucket width, e.g. "1h"`)
	backtestCmd.Flags().StringVar(&btMargin, "margin", "", `candles: window margin, e.g. "1m"`)
	backtestCmd.Flags().IntVar(&btFast, "fast", 0, "ema-cross: fast EMA period")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 0, "ema-cross: slow EMA period")

	backtestCmd.Flags().StringVar(&btUnwind, "unwind", "", "lot unwind policy (fifo, lifo)")

	backtestCmd.Flags().StringVar(&btJournal, "journal", "", "journal backend (none, csv, sqlite)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB (implies --journal sqlite)")
	backtestCmd.Flags().StringVar(&btRunsFile, "runs-file", "", "CSV journal: runs output file")
	backtestCmd.Flags().StringVar(&btFillsFile, "fills-file", "", "CSV journal: fills output file")
	backtestCmd.Flags().StringVar(&btEquityFile, "equity-file", "", "CSV journal: equity output file")
}

// applyBacktestFlags layers the given flags over the loaded config.
// Empty flags leave the config value alone.
func applyBacktestFlags(cfg *config.Config) {
	if btTrades != "" {
		cfg.Data.Trades = btTrades
	}
	if btBBO != "" {
		cfg.Data.BBO = btBBO
	}
	if btInstrument != "" {
		cfg.Data.Instrument = btInstrument
	}
	if btStrategy != "" {
		cfg.Strategy.Name = btStrategy
	}
	if btN > 0 {
		cfg.Strategy.N = btN
	}
	if btMaxSize > 0 {
		cfg.Strategy.MaxSize = btMaxSize
	}
	if btSeed != 0 {
		cfg.Strategy.Seed = btSeed
	}
	if btAmount > 0 {
		cfg.Strategy.Amount = btAmount
	}
	if btWidth != "" {
		cfg.Strategy.CandleWidth = btWidth
	}
	if btMargin != "" {
		cfg.Strategy.Margin = btMargin
	}
	if btFast > 0 {
		cfg.Strategy.Fast = btFast
	}
	if btSlow > 0 {
		cfg.Strategy.Slow = btSlow
	}
	if btUnwind != "" {
		cfg.Engine.Unwind = btUnwind
	}
	if btJournal != "" {
		cfg.Journal.Type = btJournal
	}
	if btDBPath != "" {
		cfg.Journal.DBPath = btDBPath
		if cfg.Journal.Type == "" || cfg.Journal.Type == "none" {
			cfg.Journal.Type = "sqlite"
		}
	}
	if btRunsFile != "" {
		cfg.Journal.RunsFile = btRunsFile
	}
	if btFillsFile != "" {
		cfg.Journal.FillsFile = btFillsFile
	}
	if btEquityFile != "" {
		cfg.Journal.EquityFile = btEquityFile
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBacktestFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	series, err := feed.Load(cfg.Data)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	strat, err := buildStrategy(cfg, series)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	policy, err := sim.PolicyByName(cfg.Engine.Unwind)
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	runner := &backtest.Runner{
		Engine:   sim.NewEngine(policy),
		Strategy: strat,
		Journal:  j,
		Options:  backtest.RunnerOptions{Dataset: filepath.Base(cfg.Data.Trades)},
	}

	res, err := runner.Run(context.Background(), series)
	if err != nil {
		return err
	}

	backtest.PrintResult(os.Stdout, res)
	return nil
}

func buildStrategy(cfg *config.Config, series *market.Series) (strategies.Strategy, error) {
	width, err := cfg.Strategy.ParseCandleWidth()
	if err != nil {
		return nil, err
	}
	margin, err := cfg.Strategy.ParseMargin()
	if err != nil {
		return nil, err
	}

	// Only candle-driven strategies pay the bucketing cost.
	var candles []market.Candle
	switch cfg.Strategy.Name {
	case "candles", "candle-pattern", "ema-cross", "emacross":
		candles = market.BuildCandles(series.Trades, width)
	}

	return strategies.ByName(cfg.Strategy.Name, strategies.Params{
		N:       cfg.Strategy.N,
		MaxSize: cfg.Strategy.MaxSize,
		Seed:    cfg.Strategy.Seed,
		Amount:  cfg.Strategy.Amount,
		Margin:  margin,
		Fast:    cfg.Strategy.Fast,
		Slow:    cfg.Strategy.Slow,
		Candles: candles,
	})
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(cfg.RunsFile, cfg.FillsFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}
