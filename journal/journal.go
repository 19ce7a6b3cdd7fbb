package journal

import (
	"time"

	"github.com/govalues/decimal"
)

// Fill is the durable copy of one committed Buy or Sell.
type Fill struct {
	TxID         int64
	RunID        string
	AccountID    int64
	InstrumentID int64
	Side         string
	Quantity     int64
	Price        decimal.Decimal
	ExecutedAt   time.Time
}

// BalanceSnapshot records an account's balance and loan exposure after a
// mutation.
type BalanceSnapshot struct {
	AccountID int64
	Balance   decimal.Decimal
	LoanTaken decimal.Decimal
	Time      time.Time
}

// Journal is a write-through audit log. The in-memory ledger stays
// authoritative; implementations only persist what already committed.
type Journal interface {
	RecordFill(Fill) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// Noop discards everything. Used when journaling is disabled.
type Noop struct{}

func (Noop) RecordFill(Fill) error               { return nil }
func (Noop) RecordBalance(BalanceSnapshot) error { return nil }
func (Noop) Close() error                        { return nil }
