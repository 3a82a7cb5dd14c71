package journal

import (
	"context"
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores the journal in a single database file, creating the
// schema on open.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, strategy, instrument, dataset, actions, fills, unfilled,
		 total_pnl, sharpe, sortino, max_drawdown, traded_volume, avg_holding_us, flips)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Instrument, r.Dataset,
		r.Actions, r.Fills, r.Unfilled,
		r.TotalPnL, nullable(r.Sharpe), nullable(r.Sortino),
		r.MaxDrawdown, r.TradedVolume, r.AvgHoldingUS, r.Flips,
	)
	return err
}

func (j *SQLite) RecordFill(ctx context.Context, rec FillRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO fills
		(run_id, seq, timestamp, side, price, size, position, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Seq, rec.Timestamp, rec.Side,
		rec.Price, rec.Size, rec.Position, rec.Cash,
	)
	return err
}

func (j *SQLite) RecordEquity(ctx context.Context, e EquityPoint) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO equity (run_id, timestamp, value)
		VALUES (?, ?, ?)`,
		e.RunID, e.Timestamp, e.Value,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// nullable maps NaN to NULL so undefined ratios survive the round
// trip through REAL columns.
func nullable(x float64) interface{} {
	if math.IsNaN(x) {
		return nil
	}
	return x
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
