package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/exchange/internal/dbg"
	"github.com/rustyeddy/exchange/pricer"
	"github.com/rustyeddy/exchange/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a bounded random-trading simulation",
	Long: `Seed the configured accounts and instruments, start the periodic price
updater and run concurrent traders that buy and sell at random until every
trader finishes its iterations.

Example:
  exchange simulate --config exchange.yaml`,
	RunE: runSimulate,
}

var simulateConfigPath string

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(simulateConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := dbg.NewLogger(debug)
	defer logger.Sync()

	store, engine, j, runID, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	interval, err := cfg.Pricing.ParseInterval()
	if err != nil {
		return fmt.Errorf("pricing interval: %w", err)
	}
	pace, err := cfg.Simulator.ParsePace()
	if err != nil {
		return fmt.Errorf("simulator pace: %w", err)
	}

	fmt.Printf("Starting simulation (run %s)\n", runID)
	fmt.Printf("  Traders: %d x %d iterations, pace %s\n",
		cfg.Simulator.Traders, cfg.Simulator.Iterations, pace)
	fmt.Printf("  Accounts: %d  Instruments: %d  Price refresh: %s\n\n",
		len(cfg.Seed.Accounts), len(cfg.Seed.Instruments), interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updater := pricer.New(store, interval, logger)
	go updater.Run(ctx)

	driver := simulate.New(engine, cfg.Simulator.Traders, cfg.Simulator.Iterations, pace, logger)
	stats, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	fmt.Printf("Simulation complete:\n")
	fmt.Printf("  Buys: %d  Sells: %d  Rejected: %d\n\n",
		stats.Buys.Load(), stats.Sells.Load(), stats.Rejected.Load())

	fmt.Println("Final balances:")
	for acct := range engine.Accounts() {
		fmt.Printf("  %-12s balance %s  loan %s\n", acct.Name, acct.Balance, acct.LoanTaken)
	}
	fmt.Println("\nFinal instruments:")
	for inst := range engine.Instruments() {
		fmt.Printf("  %-12s price %s  available %d\n", inst.Name, inst.Price, inst.AvailableQuantity)
	}

	if cfg.Journal.Type == "sqlite" {
		fmt.Printf("\nFills journaled to %s (run %s)\n", cfg.Journal.DBPath, runID)
	}
	return nil
}
