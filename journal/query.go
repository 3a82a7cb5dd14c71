package journal

import (
	"context"
	"database/sql"
	"fmt"
)

const runColumns = `run_id, created, strategy, instrument, dataset, actions, fills, unfilled,
	total_pnl, sharpe, sortino, max_drawdown, traded_volume, avg_holding_us, flips`

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns up to limit runs, most recent first. A limit of
// zero or less means all of them.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	q := `
		SELECT ` + runColumns + `
		FROM runs
		ORDER BY created DESC, run_id DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFillsByRun returns a run's fills in execution order.
func (j *SQLite) ListFillsByRun(ctx context.Context, runID string) ([]FillRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, timestamp, side, price, size, position, cash
		FROM fills
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.Timestamp,
			&rec.Side,
			&rec.Price,
			&rec.Size,
			&rec.Position,
			&rec.Cash,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's mark-to-market series in time order.
func (j *SQLite) ListEquityByRun(ctx context.Context, runID string) ([]EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, timestamp, value
		FROM equity
		WHERE run_id = ?
		ORDER BY timestamp ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var p EquityPoint
		if err := rows.Scan(&p.RunID, &p.Timestamp, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec             RunRecord
		sharpe, sortino sql.NullFloat64
	)
	err := row.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Strategy,
		&rec.Instrument,
		&rec.Dataset,
		&rec.Actions,
		&rec.Fills,
		&rec.Unfilled,
		&rec.TotalPnL,
		&sharpe,
		&sortino,
		&rec.MaxDrawdown,
		&rec.TradedVolume,
		&rec.AvgHoldingUS,
		&rec.Flips,
	)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Sharpe = fromNull(sharpe)
	rec.Sortino = fromNull(sortino)
	return rec, nil
}
