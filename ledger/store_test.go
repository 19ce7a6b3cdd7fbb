package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestStoreLookups(t *testing.T) {
	s := NewStore()

	acct, err := s.CreateAccount("alice")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	inst, err := s.CreateInstrument("ACME", InitialBalance, 10)
	if err != nil {
		t.Fatalf("create instrument: %v", err)
	}

	if got, err := s.GetAccount(acct.ID); err != nil || got.Name != "alice" {
		t.Fatalf("get account: %v %+v", err, got)
	}
	if got, err := s.FindAccountByName("alice"); err != nil || got.ID != acct.ID {
		t.Fatalf("find account: %v %+v", err, got)
	}
	if got, err := s.GetInstrument(inst.ID); err != nil || got.Name != "ACME" {
		t.Fatalf("get instrument: %v %+v", err, got)
	}
	if got, err := s.FindInstrumentByName("ACME"); err != nil || got.ID != inst.ID {
		t.Fatalf("find instrument: %v %+v", err, got)
	}

	if _, err := s.GetAccount(42); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := s.FindAccountByName("bob"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := s.GetInstrument(42); !errors.Is(err, ErrInstrumentNotFound) {
		t.Fatalf("expected ErrInstrumentNotFound, got %v", err)
	}
	if _, err := s.FindInstrumentByName("NOPE"); !errors.Is(err, ErrInstrumentNotFound) {
		t.Fatalf("expected ErrInstrumentNotFound, got %v", err)
	}
}

// Two concurrent registrations of the same name must never both succeed.
func TestConcurrentRegistrationSameName(t *testing.T) {
	s := NewStore()

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.CreateAccount("popular")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateName):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful registration, got %d", succeeded)
	}

	n := 0
	for range s.Accounts() {
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 account, got %d", n)
	}
}

func TestListingsOrderedAndRestartable(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		if _, err := s.CreateAccount(fmt.Sprintf("acct-%d", i)); err != nil {
			t.Fatalf("create account: %v", err)
		}
	}

	seq := s.Accounts()

	// Two full passes over the same sequence yield identical id order.
	for pass := 0; pass < 2; pass++ {
		var prev int64
		n := 0
		for acct := range seq {
			if acct.ID <= prev {
				t.Fatalf("pass %d: ids out of order: %d after %d", pass, acct.ID, prev)
			}
			prev = acct.ID
			n++
		}
		if n != 5 {
			t.Fatalf("pass %d: expected 5 accounts, got %d", pass, n)
		}
	}

	// Early break must not poison the sequence.
	for range seq {
		break
	}
	n := 0
	for range seq {
		n++
	}
	if n != 5 {
		t.Fatalf("sequence not restartable after break: got %d", n)
	}
}
