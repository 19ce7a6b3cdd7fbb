package ledger

import (
	"sync"
	"time"

	"github.com/govalues/decimal"
)

// Side is the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

var (
	// InitialBalance is credited to every account at registration.
	InitialBalance = decimal.MustNew(100000, 0)

	// MaxLoan caps an account's total outstanding loan.
	MaxLoan = decimal.MustNew(100000, 0)

	zero = decimal.MustNew(0, 0)
)

// Account is a point-in-time copy of one account record. Balance can go
// negative only through sequences the engine permits; it is never floored.
type Account struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	LoanTaken decimal.Decimal `json:"loan_taken"`
}

// Instrument is a point-in-time copy of one instrument record.
type Instrument struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int64           `json:"available_quantity"`
}

// Transaction is one committed Buy or Sell. Immutable; ids are assigned in
// commit order.
type Transaction struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"account_id"`
	InstrumentID int64           `json:"instrument_id"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Side         Side            `json:"side"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

// accountRecord is the mutable record behind an Account. All field access
// happens under mu.
type accountRecord struct {
	mu        sync.Mutex
	id        int64
	name      string
	balance   decimal.Decimal
	loanTaken decimal.Decimal
}

func (r *accountRecord) snapshotLocked() Account {
	return Account{
		ID:        r.id,
		Name:      r.name,
		Balance:   r.balance,
		LoanTaken: r.loanTaken,
	}
}

func (r *accountRecord) snapshot() Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

type instrumentRecord struct {
	mu           sync.Mutex
	id           int64
	name         string
	price        decimal.Decimal
	availableQty int64
}

func (r *instrumentRecord) snapshotLocked() Instrument {
	return Instrument{
		ID:                r.id,
		Name:              r.name,
		Price:             r.price,
		AvailableQuantity: r.availableQty,
	}
}

func (r *instrumentRecord) snapshot() Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}
