package backtest

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/mdsim/metrics"
)

// PrintResult renders a run's report as a two-column table.
func PrintResult(w io.Writer, res Result) {
	fmt.Fprintf(w, "\nRun %s: %s on %s\n\n", res.RunID, res.Strategy, res.Instrument)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	table.Append("Actions", fmt.Sprintf("%d", res.Actions))
	table.Append("Fills", fmt.Sprintf("%d", len(res.Fills)))
	table.Append("Unfilled", fmt.Sprintf("%d", res.Unfilled))
	table.Append("Total PnL", fmt.Sprintf("%.6f", res.Report.TotalPnL))
	table.Append("Sharpe", ratio(res.Report.Sharpe))
	table.Append("Sortino", ratio(res.Report.Sortino))
	table.Append("Max drawdown", fmt.Sprintf("%.6f", res.Report.MaxDrawdown))
	table.Append("Traded volume", fmt.Sprintf("%.6f", res.Report.TradedVolume))
	table.Append("Avg holding", holdingLabel(res.Report))
	table.Append("Position flips", fmt.Sprintf("%d", res.Report.Flips))
	table.Append("Final position", fmt.Sprintf("%.6f", res.State.Position))
	table.Append("Final cash", fmt.Sprintf("%.6f", res.State.Cash))

	table.Render()
}

// ratio formats a risk ratio, NaN as "n/a".
func ratio(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", x)
}

// holdingLabel shows the average holding time, or "n/a" when the run
// never closed a unit.
func holdingLabel(rep metrics.PerformanceReport) string {
	if rep.ClosedVolume == 0 {
		return "n/a"
	}
	return rep.AvgHoldingTime.Round(time.Millisecond).String()
}
