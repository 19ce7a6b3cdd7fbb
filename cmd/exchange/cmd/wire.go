package cmd

import (
	"fmt"

	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/exchange/config"
	"github.com/rustyeddy/exchange/journal"
	"github.com/rustyeddy/exchange/ledger"
	"github.com/rustyeddy/exchange/pkg/id"
)

// loadConfig falls back to defaults when no file was given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func newJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.FillsFile, cfg.BalancesFile)
	default:
		return journal.Noop{}, nil
	}
}

// buildEngine assembles the store, journal and engine for one run and
// registers the configured seed accounts and instruments.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*ledger.Store, *ledger.Engine, journal.Journal, string, error) {
	j, err := newJournal(cfg.Journal)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("create journal: %w", err)
	}

	runID := id.New()
	store := ledger.NewStore()
	engine := ledger.NewEngine(store, j, runID, logger)

	for _, name := range cfg.Seed.Accounts {
		if _, err := engine.RegisterAccount(name); err != nil {
			j.Close()
			return nil, nil, nil, "", fmt.Errorf("seed account %s: %w", name, err)
		}
	}
	for _, seed := range cfg.Seed.Instruments {
		price, err := decimal.NewFromFloat64(seed.Price)
		if err != nil {
			j.Close()
			return nil, nil, nil, "", fmt.Errorf("seed instrument %s: %w", seed.Name, err)
		}
		if _, err := engine.RegisterInstrument(seed.Name, price, seed.Quantity); err != nil {
			j.Close()
			return nil, nil, nil, "", fmt.Errorf("seed instrument %s: %w", seed.Name, err)
		}
	}

	return store, engine, j, runID, nil
}
