package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/mdsim/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse journaled backtest runs",
	Long: `Runs lists backtest runs recorded in a SQLite journal, most recent
first.

Examples:
  mdsim runs
  mdsim runs --db ./mdsim.sqlite --limit 5
  mdsim runs show 01J8ZQ4X5E6B7C8D9E0F1G2H3J --fills
  mdsim runs show 01J8ZQ4X5E6B7C8D9E0F1G2H3J --org`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var (
	runsDBPath string
	runsLimit  int
	runsOrg    bool
	runsFills  bool
	runsEquity bool
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().StringVarP(&runsDBPath, "db", "d", "./mdsim.sqlite", "path to SQLite journal DB")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "show at most this many runs (0 = all)")

	runsShowCmd.Flags().BoolVar(&runsOrg, "org", false, "print as an Org-mode block")
	runsShowCmd.Flags().BoolVar(&runsFills, "fills", false, "also print the fill log")
	runsShowCmd.Flags().BoolVar(&runsEquity, "equity", false, "also print the equity series")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Run", "Created", "Strategy", "Instrument", "Dataset", "Fills", "PnL", "Sharpe", "Flips")
	for _, r := range runs {
		table.Append(
			r.RunID,
			r.Created.UTC().Format("2006-01-02 15:04"),
			r.Strategy,
			r.Instrument,
			r.Dataset,
			fmt.Sprintf("%d", r.Fills),
			fmt.Sprintf("%.4f", r.TotalPnL),
			num(r.Sharpe),
			fmt.Sprintf("%d", r.Flips),
		)
	}
	table.Render()
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(runsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := context.Background()
	rec, err := j.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	if runsOrg {
		fmt.Println(journal.FormatRunOrg(rec))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	table.Append("Run", rec.RunID)
	table.Append("Created", rec.Created.UTC().Format(time.RFC3339))
	table.Append("Strategy", rec.Strategy)
	table.Append("Instrument", rec.Instrument)
	table.Append("Dataset", rec.Dataset)
	table.Append("Actions", fmt.Sprintf("%d", rec.Actions))
	table.Append("Fills", fmt.Sprintf("%d", rec.Fills))
	table.Append("Unfilled", fmt.Sprintf("%d", rec.Unfilled))
	table.Append("Total PnL", fmt.Sprintf("%.6f", rec.TotalPnL))
	table.Append("Sharpe", num(rec.Sharpe))
	table.Append("Sortino", num(rec.Sortino))
	table.Append("Max drawdown", fmt.Sprintf("%.6f", rec.MaxDrawdown))
	table.Append("Traded volume", fmt.Sprintf("%.6f", rec.TradedVolume))
	table.Append("Avg holding", holdingUS(rec.AvgHoldingUS))
	table.Append("Flips", fmt.Sprintf("%d", rec.Flips))
	table.Render()

	if runsFills {
		fills, err := j.ListFillsByRun(ctx, rec.RunID)
		if err != nil {
			return fmt.Errorf("list fills: %w", err)
		}
		fmt.Printf("\n%d fills\n\n", len(fills))

		ft := tablewriter.NewWriter(os.Stdout)
		ft.Header("Seq", "Time", "Side", "Price", "Size", "Position", "Cash")
		for _, f := range fills {
			ft.Append(
				fmt.Sprintf("%d", f.Seq),
				usTime(f.Timestamp),
				f.Side,
				fmt.Sprintf("%.6f", f.Price),
				fmt.Sprintf("%.6f", f.Size),
				fmt.Sprintf("%.6f", f.Position),
				fmt.Sprintf("%.6f", f.Cash),
			)
		}
		ft.Render()
	}

	if runsEquity {
		points, err := j.ListEquityByRun(ctx, rec.RunID)
		if err != nil {
			return fmt.Errorf("list equity: %w", err)
		}
		fmt.Printf("\n%d equity points\n\n", len(points))

		et := tablewriter.NewWriter(os.Stdout)
		et.Header("Time", "Value")
		for _, p := range points {
			et.Append(usTime(p.Timestamp), fmt.Sprintf("%.6f", p.Value))
		}
		et.Render()
	}
	return nil
}

// num formats a ratio column, NaN as "n/a".
func num(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", x)
}

func holdingUS(us float64) string {
	if us <= 0 {
		return "n/a"
	}
	return time.Duration(us * float64(time.Microsecond)).Round(time.Millisecond).String()
}
