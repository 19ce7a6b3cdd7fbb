// Package simulate drives the ledger engine with random trades. It is a pure
// client: it calls the same operations any other caller would, in a bounded
// loop with a fixed pacing delay.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/exchange/ledger"
)

const maxOrderQuantity = 10

type Driver struct {
	engine     *ledger.Engine
	traders    int
	iterations int
	pace       time.Duration
	log        *zap.Logger
}

// Stats counts trade outcomes across all traders.
type Stats struct {
	Buys     atomic.Int64
	Sells    atomic.Int64
	Rejected atomic.Int64
}

// New builds a driver running traders goroutines, each issuing iterations
// random trades paced by pace.
func New(engine *ledger.Engine, traders, iterations int, pace time.Duration, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		engine:     engine,
		traders:    traders,
		iterations: iterations,
		pace:       pace,
		log:        log,
	}
}

// Run executes the trading loop until every trader finishes its iterations or
// ctx is cancelled. Rejected trades (insufficient balance or inventory) are
// expected outcomes and only counted.
func (d *Driver) Run(ctx context.Context) (*Stats, error) {
	var accountIDs, instrumentIDs []int64
	for acct := range d.engine.Accounts() {
		accountIDs = append(accountIDs, acct.ID)
	}
	for inst := range d.engine.Instruments() {
		instrumentIDs = append(instrumentIDs, inst.ID)
	}
	if len(accountIDs) == 0 || len(instrumentIDs) == 0 {
		return nil, fmt.Errorf("nothing to trade: %d accounts, %d instruments",
			len(accountIDs), len(instrumentIDs))
	}

	stats := &Stats{}
	g, ctx := errgroup.WithContext(ctx)
	for t := 0; t < d.traders; t++ {
		trader := t
		g.Go(func() error {
			return d.trade(ctx, trader, accountIDs, instrumentIDs, stats)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return stats, err
	}

	d.log.Info("simulation finished",
		zap.Int64("buys", stats.Buys.Load()),
		zap.Int64("sells", stats.Sells.Load()),
		zap.Int64("rejected", stats.Rejected.Load()))
	return stats, nil
}

func (d *Driver) trade(ctx context.Context, trader int, accountIDs, instrumentIDs []int64, stats *Stats) error {
	for i := 0; i < d.iterations; i++ {
		accountID := accountIDs[rand.IntN(len(accountIDs))]
		instrumentID := instrumentIDs[rand.IntN(len(instrumentIDs))]
		qty := int64(rand.IntN(maxOrderQuantity)) + 1

		var err error
		if rand.IntN(2) == 0 {
			_, err = d.engine.Buy(accountID, instrumentID, qty)
			if err == nil {
				stats.Buys.Add(1)
			}
		} else {
			_, err = d.engine.Sell(accountID, instrumentID, qty)
			if err == nil {
				stats.Sells.Add(1)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrInsufficientBalance),
			errors.Is(err, ledger.ErrInsufficientInventory):
			stats.Rejected.Add(1)
			d.log.Debug("trade rejected", zap.Int("trader", trader), zap.Error(err))
		default:
			return fmt.Errorf("trader %d: %w", trader, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.pace):
		}
	}
	return nil
}
