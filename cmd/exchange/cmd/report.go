package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/exchange/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query the journaled fills",
	Long: `Query and display journaled fills from a SQLite journal database.

Subcommands:
  run    - List fills recorded under a run id
  today  - List fills executed today
  day    - List fills executed on a specific day

Examples:
  exchange report run 01J9ZK7M...
  exchange report today
  exchange report day 2026-08-30`,
}

var reportRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "List fills recorded under a run id",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportRun,
}

var reportTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List fills executed today",
	Args:  cobra.NoArgs,
	RunE:  runReportToday,
}

var reportDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List fills executed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDay,
}

var reportDBPath string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRunCmd)
	reportCmd.AddCommand(reportTodayCmd)
	reportCmd.AddCommand(reportDayCmd)

	reportCmd.PersistentFlags().StringVar(&reportDBPath, "db", "./exchange.sqlite", "path to SQLite journal DB")
}

func runReportRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFillsByRun(args[0])
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}
	printFills(fills)
	return nil
}

func runReportToday(cmd *cobra.Command, args []string) error {
	return reportDay(time.Now().Format("2006-01-02"))
}

func runReportDay(cmd *cobra.Command, args []string) error {
	return reportDay(args[0])
}

func reportDay(day string) error {
	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFillsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}
	printFills(fills)
	return nil
}

func printFills(fills []journal.Fill) {
	if len(fills) == 0 {
		fmt.Println("no fills")
		return
	}
	for _, f := range fills {
		fmt.Printf("%s tx %-6d %-4s account %-4d instrument %-4d qty %-4d @ %s\n",
			f.ExecutedAt.Format(time.RFC3339), f.TxID, f.Side,
			f.AccountID, f.InstrumentID, f.Quantity, f.Price)
	}
	fmt.Printf("%d fills\n", len(fills))
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
