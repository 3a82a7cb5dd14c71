package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends runs, fills and equity points to three CSV
// files. Every record is flushed immediately so a crashed run still
// leaves readable files behind.
type CSVJournal struct {
	runs   *csv.Writer
	fills  *csv.Writer
	equity *csv.Writer
	rf, ff *os.File
	ef     *os.File
}

func NewCSV(runsPath, fillsPath, equityPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	ff, err := os.Create(fillsPath)
	if err != nil {
		rf.Close()
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		rf.Close()
		ff.Close()
		return nil, err
	}

	j := &CSVJournal{
		runs:   csv.NewWriter(rf),
		fills:  csv.NewWriter(ff),
		equity: csv.NewWriter(ef),
		rf:     rf,
		ff:     ff,
		ef:     ef,
	}

	j.runs.Write([]string{"run_id", "created", "strategy", "instrument", "dataset", "actions", "fills", "unfilled", "total_pnl", "sharpe", "sortino", "max_drawdown", "traded_volume", "avg_holding_us", "flips"})
	j.fills.Write([]string{"run_id", "seq", "timestamp", "side", "price", "size", "position", "cash"})
	j.equity.Write([]string{"run_id", "timestamp", "value"})

	for _, w := range []*csv.Writer{j.runs, j.fills, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(_ context.Context, r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Strategy,
		r.Instrument,
		r.Dataset,
		strconv.Itoa(r.Actions),
		strconv.Itoa(r.Fills),
		strconv.Itoa(r.Unfilled),
		f(r.TotalPnL),
		f(r.Sharpe),
		f(r.Sortino),
		f(r.MaxDrawdown),
		f(r.TradedVolume),
		f(r.AvgHoldingUS),
		strconv.Itoa(r.Flips),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordFill(_ context.Context, rec FillRecord) error {
	err := j.fills.Write([]string{
		rec.RunID,
		strconv.Itoa(rec.Seq),
		strconv.FormatInt(rec.Timestamp, 10),
		rec.Side,
		f(rec.Price),
		f(rec.Size),
		f(rec.Position),
		f(rec.Cash),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordEquity(_ context.Context, e EquityPoint) error {
	err := j.equity.Write([]string{
		e.RunID,
		strconv.FormatInt(e.Timestamp, 10),
		f(e.Value),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.fills, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, file := range []*os.File{j.rf, j.ff, j.ef} {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
