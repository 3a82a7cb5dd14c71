package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/mdsim/feed"
	"github.com/rustyeddy/mdsim/market"
)

var candlesCmd = &cobra.Command{
	Use:   "candles",
	Short: "Bucket a trade file into candles and print them",
	Long: `Candles buckets a trades CSV into fixed-width OHLC candles with
per-side volume and prints them as a table.

Example:
  mdsim candles --trades data/doge-trades.csv --candle-width 15m`,
	RunE: runCandles,
}

var (
	caTrades string
	caWidth  string
	caLimit  int
)

func init() {
	rootCmd.AddCommand(candlesCmd)

	candlesCmd.Flags().StringVarP(&caTrades, "trades", "t", "", "path to trades CSV (plain, .gz or .xz)")
	candlesCmd.Flags().StringVar(&caWidth, "candle-width", "", `bucket width, e.g. "1h", "15m"`)
	candlesCmd.Flags().IntVar(&caLimit, "limit", 0, "print at most this many candles (0 = all)")
}

func runCandles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if caTrades != "" {
		cfg.Data.Trades = caTrades
	}
	if caWidth != "" {
		cfg.Strategy.CandleWidth = caWidth
	}
	if cfg.Data.Trades == "" {
		return fmt.Errorf("a trades file is required (--trades, config, or PATH_TRADES)")
	}

	trades, err := feed.ReadTrades(cfg.Data.Trades)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}

	width, err := cfg.Strategy.ParseCandleWidth()
	if err != nil {
		return fmt.Errorf("candle width: %w", err)
	}

	candles := market.BuildCandles(trades, width)
	if caLimit > 0 && len(candles) > caLimit {
		candles = candles[:caLimit]
	}

	fmt.Printf("%d candles of %s from %d trades\n\n", len(candles), width, len(trades))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Start", "Open", "High", "Low", "Close", "Buy vol", "Sell vol", "Dir")
	for _, c := range candles {
		table.Append(
			usTime(c.Start),
			fmt.Sprintf("%.6f", c.Open),
			fmt.Sprintf("%.6f", c.High),
			fmt.Sprintf("%.6f", c.Low),
			fmt.Sprintf("%.6f", c.Close),
			fmt.Sprintf("%.4f", c.BuyVolume),
			fmt.Sprintf("%.4f", c.SellVolume),
			direction(c),
		)
	}
	table.Render()
	return nil
}

func direction(c market.Candle) string {
	switch {
	case c.Rising():
		return "up"
	case c.Close < c.Open:
		return "down"
	}
	return "flat"
}

// usTime renders a microsecond timestamp for humans.
func usTime(us int64) string {
	return time.UnixMicro(us).UTC().Format("2006-01-02 15:04:05")
}
