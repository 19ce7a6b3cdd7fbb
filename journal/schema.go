package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	tx_id INTEGER NOT NULL,
	run_id TEXT NOT NULL,
	account_id INTEGER NOT NULL,
	instrument_id INTEGER NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	executed_at DATETIME NOT NULL,
	PRIMARY KEY (run_id, tx_id)
);

CREATE TABLE IF NOT EXISTS balances (
	account_id INTEGER NOT NULL,
	balance TEXT NOT NULL,
	loan_taken TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_executed_at ON fills(executed_at);
CREATE INDEX IF NOT EXISTS idx_balances_time ON balances(time);
`
