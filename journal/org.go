package journal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatRunOrg renders a RunRecord as an Org-mode block suitable for
// pasting into a research journal. Structured facts live in a
// PROPERTIES drawer for easy search; the narrative sections are left
// for the human.
func FormatRunOrg(r RunRecord) string {
	heading := fmt.Sprintf("** Run: %s %s (%s)", r.Strategy, r.Instrument, shortID(r.RunID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", r.Strategy))
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", r.Instrument))
	b.WriteString(fmt.Sprintf(":DATASET: %s\n", r.Dataset))
	b.WriteString(fmt.Sprintf(":CREATED: %s\n", r.Created.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":ACTIONS: %d\n", r.Actions))
	b.WriteString(fmt.Sprintf(":FILLS: %d\n", r.Fills))
	b.WriteString(fmt.Sprintf(":UNFILLED: %d\n", r.Unfilled))
	b.WriteString(fmt.Sprintf(":TOTAL_PNL: %.6f\n", r.TotalPnL))
	b.WriteString(fmt.Sprintf(":SHARPE: %s\n", ratio(r.Sharpe)))
	b.WriteString(fmt.Sprintf(":SORTINO: %s\n", ratio(r.Sortino)))
	b.WriteString(fmt.Sprintf(":MAX_DRAWDOWN: %.6f\n", r.MaxDrawdown))
	b.WriteString(fmt.Sprintf(":TRADED_VOLUME: %.6f\n", r.TradedVolume))
	b.WriteString(fmt.Sprintf(":AVG_HOLDING: %s\n", holdingLabel(r.AvgHoldingUS)))
	b.WriteString(fmt.Sprintf(":FLIPS: %d\n", r.Flips))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Setup\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatRunsOrg renders multiple runs separated by blank lines.
func FormatRunsOrg(runs []RunRecord) string {
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRunOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

func ratio(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", x)
}

func holdingLabel(us float64) string {
	if us <= 0 {
		return "n/a"
	}
	return time.Duration(us * float64(time.Microsecond)).Round(time.Millisecond).String()
}
