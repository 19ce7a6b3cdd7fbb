package ledger

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/govalues/decimal"
)

// Store owns every account, instrument and transaction record. Records are
// reached by id or by unique name; each account and instrument carries its own
// mutex, so operations on disjoint records never contend. The store-level
// mutex guards only the indices and id counters, never a record's fields.
type Store struct {
	mu              sync.RWMutex
	accounts        map[int64]*accountRecord
	instruments     map[int64]*instrumentRecord
	accountNames    map[string]int64
	instrumentNames map[string]int64
	nextAccountID   int64
	nextInstrID     int64

	logMu sync.Mutex
	log   []Transaction
}

func NewStore() *Store {
	return &Store{
		accounts:        make(map[int64]*accountRecord),
		instruments:     make(map[int64]*instrumentRecord),
		accountNames:    make(map[string]int64),
		instrumentNames: make(map[string]int64),
	}
}

// CreateAccount registers a new account with the initial balance. The name
// check and the insert happen under one lock, so two concurrent registrations
// of the same name cannot both succeed.
func (s *Store) CreateAccount(name string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accountNames[name]; ok {
		return Account{}, fmt.Errorf("account %q: %w", name, ErrDuplicateName)
	}

	s.nextAccountID++
	rec := &accountRecord{
		id:        s.nextAccountID,
		name:      name,
		balance:   InitialBalance,
		loanTaken: zero,
	}
	s.accounts[rec.id] = rec
	s.accountNames[name] = rec.id
	return rec.snapshotLocked(), nil
}

// CreateInstrument registers a new instrument. Same check-and-insert
// discipline as CreateAccount.
func (s *Store) CreateInstrument(name string, price decimal.Decimal, qty int64) (Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instrumentNames[name]; ok {
		return Instrument{}, fmt.Errorf("instrument %q: %w", name, ErrDuplicateName)
	}

	s.nextInstrID++
	rec := &instrumentRecord{
		id:           s.nextInstrID,
		name:         name,
		price:        price,
		availableQty: qty,
	}
	s.instruments[rec.id] = rec
	s.instrumentNames[name] = rec.id
	return rec.snapshotLocked(), nil
}

func (s *Store) account(id int64) (*accountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	return rec, nil
}

func (s *Store) instrument(id int64) (*instrumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.instruments[id]
	if !ok {
		return nil, fmt.Errorf("instrument %d: %w", id, ErrInstrumentNotFound)
	}
	return rec, nil
}

// GetAccount returns a consistent copy of one account.
func (s *Store) GetAccount(id int64) (Account, error) {
	rec, err := s.account(id)
	if err != nil {
		return Account{}, err
	}
	return rec.snapshot(), nil
}

// GetInstrument returns a consistent copy of one instrument.
func (s *Store) GetInstrument(id int64) (Instrument, error) {
	rec, err := s.instrument(id)
	if err != nil {
		return Instrument{}, err
	}
	return rec.snapshot(), nil
}

// FindAccountByName resolves a name to an account snapshot.
func (s *Store) FindAccountByName(name string) (Account, error) {
	s.mu.RLock()
	id, ok := s.accountNames[name]
	s.mu.RUnlock()
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	return s.GetAccount(id)
}

// FindInstrumentByName resolves a name to an instrument snapshot.
func (s *Store) FindInstrumentByName(name string) (Instrument, error) {
	s.mu.RLock()
	id, ok := s.instrumentNames[name]
	s.mu.RUnlock()
	if !ok {
		return Instrument{}, fmt.Errorf("instrument %q: %w", name, ErrInstrumentNotFound)
	}
	return s.GetInstrument(id)
}

// SetInstrumentPrice rewrites one instrument's price under that instrument's
// lock. Used by the price updater; trades on other instruments are unaffected.
func (s *Store) SetInstrumentPrice(id int64, price decimal.Decimal) error {
	rec, err := s.instrument(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	rec.price = price
	rec.mu.Unlock()
	return nil
}

// InstrumentIDs returns every instrument id in ascending order.
func (s *Store) InstrumentIDs() []int64 {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.instruments))
	for id := range s.instruments {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// appendTransaction assigns the next log id and appends. Callers holding
// record locks may call this; the log mutex is always innermost.
func (s *Store) appendTransaction(tx Transaction) Transaction {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	tx.ID = int64(len(s.log)) + 1
	s.log = append(s.log, tx)
	return tx
}

// Accounts yields a copy of every account in id order. Each record is copied
// under its own lock at yield time, so a single account is never seen
// mid-mutation, but the listing as a whole is not one global snapshot.
func (s *Store) Accounts() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		s.mu.RLock()
		recs := make([]*accountRecord, 0, len(s.accounts))
		for _, rec := range s.accounts {
			recs = append(recs, rec)
		}
		s.mu.RUnlock()
		sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })

		for _, rec := range recs {
			if !yield(rec.snapshot()) {
				return
			}
		}
	}
}

// Instruments yields a copy of every instrument in id order, with the same
// per-record consistency as Accounts.
func (s *Store) Instruments() iter.Seq[Instrument] {
	return func(yield func(Instrument) bool) {
		s.mu.RLock()
		recs := make([]*instrumentRecord, 0, len(s.instruments))
		for _, rec := range s.instruments {
			recs = append(recs, rec)
		}
		s.mu.RUnlock()
		sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })

		for _, rec := range recs {
			if !yield(rec.snapshot()) {
				return
			}
		}
	}
}

// Transactions yields the committed log in id order. The log is append-only
// and entries are immutable, so the captured prefix stays valid without locks.
func (s *Store) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		s.logMu.Lock()
		txs := s.log[:len(s.log):len(s.log)]
		s.logMu.Unlock()

		for _, tx := range txs {
			if !yield(tx) {
				return
			}
		}
	}
}
