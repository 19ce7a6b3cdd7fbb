package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// One connection keeps concurrent writers serialized instead of
	// surfacing SQLITE_BUSY from a second pool connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f Fill) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(tx_id, run_id, account_id, instrument_id, side, quantity, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.TxID, f.RunID, f.AccountID, f.InstrumentID,
		f.Side, f.Quantity, f.Price.String(), f.ExecutedAt,
	)
	return err
}

func (j *SQLite) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balances
		(account_id, balance, loan_taken, time)
		VALUES (?, ?, ?, ?)`,
		b.AccountID, b.Balance.String(), b.LoanTaken.String(), b.Time,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
