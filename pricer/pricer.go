// Package pricer refreshes every instrument's price on a fixed interval.
// Prices are exogenous: each sweep assigns a uniform random price in
// [1.00, 100.00] with two decimal places, one instrument lock at a time, so a
// refresh in progress never blocks trades on other instruments.
package pricer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/exchange/ledger"
)

const (
	minPriceCents = 100   // 1.00
	maxPriceCents = 10000 // 100.00
)

type Updater struct {
	store    *ledger.Store
	interval time.Duration
	log      *zap.Logger
}

func New(store *ledger.Store, interval time.Duration, log *zap.Logger) *Updater {
	if log == nil {
		log = zap.NewNop()
	}
	return &Updater{store: store, interval: interval, log: log}
}

// Run sweeps on every tick until ctx is cancelled.
func (u *Updater) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	u.log.Info("price updater started", zap.Duration("interval", u.interval))
	for {
		select {
		case <-ctx.Done():
			u.log.Info("price updater stopped")
			return ctx.Err()
		case <-ticker.C:
			u.Sweep()
		}
	}
}

// Sweep reprices every instrument once and returns how many were updated.
func (u *Updater) Sweep() int {
	n := 0
	for _, id := range u.store.InstrumentIDs() {
		if err := u.store.SetInstrumentPrice(id, randomPrice()); err != nil {
			// Instruments are never deleted, so this only fires if the id
			// vanished between listing and update.
			u.log.Warn("reprice failed", zap.Int64("instrument_id", id), zap.Error(err))
			continue
		}
		n++
	}
	u.log.Debug("price sweep complete", zap.Int("instruments", n))
	return n
}

func randomPrice() decimal.Decimal {
	cents := minPriceCents + rand.Int64N(maxPriceCents-minPriceCents+1)
	return decimal.MustNew(cents, 2)
}
