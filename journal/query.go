package journal

import (
	"database/sql"
	"time"

	"github.com/govalues/decimal"
)

// ListFillsByRun returns every fill recorded under one run id, in tx order.
func (j *SQLite) ListFillsByRun(runID string) ([]Fill, error) {
	rows, err := j.db.Query(`
		SELECT tx_id, run_id, account_id, instrument_id, side, quantity, price, executed_at
		FROM fills
		WHERE run_id = ?
		ORDER BY tx_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	return scanFills(rows)
}

// ListFillsBetween returns fills executed within [start, end), oldest first.
func (j *SQLite) ListFillsBetween(start, end time.Time) ([]Fill, error) {
	rows, err := j.db.Query(`
		SELECT tx_id, run_id, account_id, instrument_id, side, quantity, price, executed_at
		FROM fills
		WHERE executed_at >= ? AND executed_at < ?
		ORDER BY executed_at ASC, tx_id ASC`, start, end)
	if err != nil {
		return nil, err
	}
	return scanFills(rows)
}

func scanFills(rows *sql.Rows) ([]Fill, error) {
	defer rows.Close()

	var out []Fill
	for rows.Next() {
		var (
			f     Fill
			price string
		)
		if err := rows.Scan(
			&f.TxID,
			&f.RunID,
			&f.AccountID,
			&f.InstrumentID,
			&f.Side,
			&f.Quantity,
			&price,
			&f.ExecutedAt,
		); err != nil {
			return nil, err
		}
		p, err := decimal.Parse(price)
		if err != nil {
			return nil, err
		}
		f.Price = p
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestBalance returns the most recent balance snapshot for an account.
// Snapshots written within the same timestamp resolve by insertion order.
func (j *SQLite) LatestBalance(accountID int64) (BalanceSnapshot, error) {
	var (
		b       BalanceSnapshot
		balance string
		loan    string
	)
	row := j.db.QueryRow(`
		SELECT account_id, balance, loan_taken, time
		FROM balances
		WHERE account_id = ?
		ORDER BY time DESC, rowid DESC
		LIMIT 1`, accountID)

	if err := row.Scan(&b.AccountID, &balance, &loan, &b.Time); err != nil {
		return BalanceSnapshot{}, err
	}

	var err error
	if b.Balance, err = decimal.Parse(balance); err != nil {
		return BalanceSnapshot{}, err
	}
	if b.LoanTaken, err = decimal.Parse(loan); err != nil {
		return BalanceSnapshot{}, err
	}
	return b, nil
}
