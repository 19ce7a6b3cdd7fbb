package ledger

import (
	"iter"
	"sort"
)

// Read-only projections. Each record is copied under its own lock, so no
// value is observed mid-mutation, but a listing does not freeze the whole
// ledger — reports never serialize readers behind writers.

// Accounts yields every account in id order.
func (e *Engine) Accounts() iter.Seq[Account] { return e.store.Accounts() }

// Instruments yields every instrument in id order.
func (e *Engine) Instruments() iter.Seq[Instrument] { return e.store.Instruments() }

// Transactions yields the committed transaction log in id order.
func (e *Engine) Transactions() iter.Seq[Transaction] { return e.store.Transactions() }

// TopAccounts returns up to n accounts ordered by balance descending, ties
// broken by ascending id.
func (e *Engine) TopAccounts(n int) []Account {
	var accts []Account
	for acct := range e.store.Accounts() {
		accts = append(accts, acct)
	}
	sort.Slice(accts, func(i, j int) bool {
		if c := accts[i].Balance.Cmp(accts[j].Balance); c != 0 {
			return c > 0
		}
		return accts[i].ID < accts[j].ID
	})
	if n >= 0 && len(accts) > n {
		accts = accts[:n]
	}
	return accts
}

// TopInstruments returns up to n instruments ordered by price descending,
// ties broken by ascending id.
func (e *Engine) TopInstruments(n int) []Instrument {
	var insts []Instrument
	for inst := range e.store.Instruments() {
		insts = append(insts, inst)
	}
	sort.Slice(insts, func(i, j int) bool {
		if c := insts[i].Price.Cmp(insts[j].Price); c != 0 {
			return c > 0
		}
		return insts[i].ID < insts[j].ID
	})
	if n >= 0 && len(insts) > n {
		insts = insts[:n]
	}
	return insts
}
