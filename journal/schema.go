package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	instrument TEXT NOT NULL,
	dataset TEXT NOT NULL,
	actions INTEGER NOT NULL,
	fills INTEGER NOT NULL,
	unfilled INTEGER NOT NULL,
	total_pnl REAL NOT NULL,
	sharpe REAL,
	sortino REAL,
	max_drawdown REAL NOT NULL,
	traded_volume REAL NOT NULL,
	avg_holding_us REAL NOT NULL,
	flips INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fills (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	size REAL NOT NULL,
	position REAL NOT NULL,
	cash REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, timestamp);
`
