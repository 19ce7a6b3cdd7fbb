package ledger

import (
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/exchange/journal"
)

// Engine applies trades and loans to the store. Every mutating operation is
// atomic over the records it touches: all validation runs against one locked
// snapshot, and either the whole mutation applies or none of it does.
//
// Lock order is fixed — account before instrument, store log innermost — so
// Buy/Sell pairs can never deadlock against each other or the price updater.
type Engine struct {
	store   *Store
	journal journal.Journal
	runID   string
	log     *zap.Logger
}

// NewEngine wires an engine over store. The journal receives a write-through
// copy of every committed fill and balance change; pass nil to disable.
func NewEngine(store *Store, j journal.Journal, runID string, log *zap.Logger) *Engine {
	if j == nil {
		j = journal.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, journal: j, runID: runID, log: log}
}

// RegisterAccount creates an account with the initial balance and no loan.
func (e *Engine) RegisterAccount(name string) (Account, error) {
	if name == "" {
		return Account{}, fmt.Errorf("account name is empty: %w", ErrInvalidArgument)
	}

	acct, err := e.store.CreateAccount(name)
	if err != nil {
		return Account{}, err
	}

	e.log.Debug("account registered",
		zap.Int64("account_id", acct.ID),
		zap.String("name", acct.Name))
	return acct, nil
}

// RegisterInstrument creates an instrument with a positive price and a
// non-negative starting inventory.
func (e *Engine) RegisterInstrument(name string, price decimal.Decimal, qty int64) (Instrument, error) {
	if name == "" {
		return Instrument{}, fmt.Errorf("instrument name is empty: %w", ErrInvalidArgument)
	}
	if price.Cmp(zero) <= 0 {
		return Instrument{}, fmt.Errorf("price %s must be positive: %w", price, ErrInvalidArgument)
	}
	if qty < 0 {
		return Instrument{}, fmt.Errorf("quantity %d must be non-negative: %w", qty, ErrInvalidArgument)
	}

	inst, err := e.store.CreateInstrument(name, price, qty)
	if err != nil {
		return Instrument{}, err
	}

	e.log.Debug("instrument registered",
		zap.Int64("instrument_id", inst.ID),
		zap.String("name", inst.Name),
		zap.String("price", inst.Price.String()),
		zap.Int64("quantity", inst.AvailableQuantity))
	return inst, nil
}

// TakeLoan credits amount to the account's balance and loan exposure, capped
// so total loanTaken never exceeds MaxLoan. Returns the new balance.
func (e *Engine) TakeLoan(accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Cmp(zero) < 0 {
		return decimal.Decimal{}, fmt.Errorf("loan amount %s is negative: %w", amount, ErrInvalidArgument)
	}

	rec, err := e.store.account(accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	rec.mu.Lock()
	newLoan, err := rec.loanTaken.Add(amount)
	if err != nil {
		rec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute loan: %w", err)
	}
	if newLoan.Cmp(MaxLoan) > 0 {
		rec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("loan %s + %s over limit %s: %w",
			rec.loanTaken, amount, MaxLoan, ErrLoanLimitExceeded)
	}
	newBalance, err := rec.balance.Add(amount)
	if err != nil {
		rec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute balance: %w", err)
	}
	rec.loanTaken = newLoan
	rec.balance = newBalance
	acct := rec.snapshotLocked()
	rec.mu.Unlock()

	e.recordBalance(acct)
	e.log.Debug("loan taken",
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("balance", acct.Balance.String()))
	return acct.Balance, nil
}

// Buy purchases qty units at the instrument's current price. Price and
// inventory are read as one snapshot under the instrument lock, so a racing
// price refresh or trade can never produce a torn cost. Returns the new
// balance.
func (e *Engine) Buy(accountID, instrumentID int64, qty int64) (decimal.Decimal, error) {
	acctRec, instRec, err := e.tradePair(accountID, instrumentID, qty)
	if err != nil {
		return decimal.Decimal{}, err
	}

	acctRec.mu.Lock()
	instRec.mu.Lock()

	cost, err := instRec.price.Mul(decimal.MustNew(qty, 0))
	if err != nil {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute cost: %w", err)
	}
	if acctRec.balance.Cmp(cost) < 0 {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("balance %s < cost %s: %w",
			acctRec.balance, cost, ErrInsufficientBalance)
	}
	if instRec.availableQty < qty {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("available %d < requested %d: %w",
			instRec.availableQty, qty, ErrInsufficientInventory)
	}
	newBalance, err := acctRec.balance.Sub(cost)
	if err != nil {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute balance: %w", err)
	}

	acctRec.balance = newBalance
	instRec.availableQty -= qty
	tx := e.store.appendTransaction(Transaction{
		AccountID:    accountID,
		InstrumentID: instrumentID,
		Quantity:     qty,
		Price:        instRec.price,
		Side:         SideBuy,
		ExecutedAt:   time.Now().UTC(),
	})
	acct := acctRec.snapshotLocked()

	instRec.mu.Unlock()
	acctRec.mu.Unlock()

	e.recordFill(tx)
	e.recordBalance(acct)
	e.log.Debug("buy executed",
		zap.Int64("tx_id", tx.ID),
		zap.Int64("account_id", accountID),
		zap.Int64("instrument_id", instrumentID),
		zap.Int64("quantity", qty),
		zap.String("price", tx.Price.String()))
	return acct.Balance, nil
}

// Sell credits qty units at the instrument's current price and returns them
// to inventory. There is no holdings model: accounts may sell instruments
// they never bought and are credited unconditionally. Returns the new
// balance.
func (e *Engine) Sell(accountID, instrumentID int64, qty int64) (decimal.Decimal, error) {
	acctRec, instRec, err := e.tradePair(accountID, instrumentID, qty)
	if err != nil {
		return decimal.Decimal{}, err
	}

	acctRec.mu.Lock()
	instRec.mu.Lock()

	proceeds, err := instRec.price.Mul(decimal.MustNew(qty, 0))
	if err != nil {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute proceeds: %w", err)
	}
	newBalance, err := acctRec.balance.Add(proceeds)
	if err != nil {
		instRec.mu.Unlock()
		acctRec.mu.Unlock()
		return decimal.Decimal{}, fmt.Errorf("compute balance: %w", err)
	}

	acctRec.balance = newBalance
	instRec.availableQty += qty
	tx := e.store.appendTransaction(Transaction{
		AccountID:    accountID,
		InstrumentID: instrumentID,
		Quantity:     qty,
		Price:        instRec.price,
		Side:         SideSell,
		ExecutedAt:   time.Now().UTC(),
	})
	acct := acctRec.snapshotLocked()

	instRec.mu.Unlock()
	acctRec.mu.Unlock()

	e.recordFill(tx)
	e.recordBalance(acct)
	e.log.Debug("sell executed",
		zap.Int64("tx_id", tx.ID),
		zap.Int64("account_id", accountID),
		zap.Int64("instrument_id", instrumentID),
		zap.Int64("quantity", qty),
		zap.String("price", tx.Price.String()))
	return acct.Balance, nil
}

// tradePair validates quantity and resolves both records before any lock is
// taken.
func (e *Engine) tradePair(accountID, instrumentID, qty int64) (*accountRecord, *instrumentRecord, error) {
	if qty <= 0 {
		return nil, nil, fmt.Errorf("quantity %d must be positive: %w", qty, ErrInvalidArgument)
	}
	acctRec, err := e.store.account(accountID)
	if err != nil {
		return nil, nil, err
	}
	instRec, err := e.store.instrument(instrumentID)
	if err != nil {
		return nil, nil, err
	}
	return acctRec, instRec, nil
}

// Journal writes happen after the record locks are released. The in-memory
// ledger is authoritative; a journal failure is logged, not surfaced.
func (e *Engine) recordFill(tx Transaction) {
	err := e.journal.RecordFill(journal.Fill{
		TxID:         tx.ID,
		RunID:        e.runID,
		AccountID:    tx.AccountID,
		InstrumentID: tx.InstrumentID,
		Side:         string(tx.Side),
		Quantity:     tx.Quantity,
		Price:        tx.Price,
		ExecutedAt:   tx.ExecutedAt,
	})
	if err != nil {
		e.log.Warn("journal fill failed", zap.Int64("tx_id", tx.ID), zap.Error(err))
	}
}

func (e *Engine) recordBalance(acct Account) {
	err := e.journal.RecordBalance(journal.BalanceSnapshot{
		AccountID: acct.ID,
		Balance:   acct.Balance,
		LoanTaken: acct.LoanTaken,
		Time:      time.Now().UTC(),
	})
	if err != nil {
		e.log.Warn("journal balance failed", zap.Int64("account_id", acct.ID), zap.Error(err))
	}
}

// GetAccount returns a consistent copy of one account.
func (e *Engine) GetAccount(id int64) (Account, error) { return e.store.GetAccount(id) }

// GetInstrument returns a consistent copy of one instrument.
func (e *Engine) GetInstrument(id int64) (Instrument, error) { return e.store.GetInstrument(id) }
