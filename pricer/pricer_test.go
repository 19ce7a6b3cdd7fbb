package pricer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/exchange/ledger"
)

func TestSweepRepricesEveryInstrument(t *testing.T) {
	store := ledger.NewStore()

	// Seed outside the random range so a refresh is always observable.
	seed := decimal.MustNew(500, 0)
	const instruments = 5
	for i := 0; i < instruments; i++ {
		_, err := store.CreateInstrument(fmt.Sprintf("inst-%d", i), seed, 10)
		require.NoError(t, err)
	}

	u := New(store, time.Minute, nil)
	assert.Equal(t, instruments, u.Sweep())

	low := decimal.MustNew(100, 2)    // 1.00
	high := decimal.MustNew(10000, 2) // 100.00
	for inst := range store.Instruments() {
		assert.NotEqual(t, 0, inst.Price.Cmp(seed), "instrument %d not repriced", inst.ID)
		assert.GreaterOrEqual(t, inst.Price.Cmp(low), 0, "price %s below 1.00", inst.Price)
		assert.LessOrEqual(t, inst.Price.Cmp(high), 0, "price %s above 100.00", inst.Price)
	}
}

func TestSweepLeavesInventoryAlone(t *testing.T) {
	store := ledger.NewStore()
	_, err := store.CreateInstrument("ACME", decimal.MustNew(10, 0), 77)
	require.NoError(t, err)

	New(store, time.Minute, nil).Sweep()

	inst, err := store.GetInstrument(1)
	require.NoError(t, err)
	assert.Equal(t, int64(77), inst.AvailableQuantity)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := ledger.NewStore()
	u := New(store, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("updater did not stop after cancel")
	}
}
