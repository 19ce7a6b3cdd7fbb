package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/exchange/httpapi"
	"github.com/rustyeddy/exchange/internal/dbg"
	"github.com/rustyeddy/exchange/pricer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the exchange API server",
	Long: `Start the exchange: the HTTP API, the ledger engine and the periodic
price updater. Seed accounts and instruments from the config file are
registered before the server accepts requests.

Example:
  exchange serve --config exchange.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updater := pricer.New(store, interval, logger)
	go updater.Run(ctx)

	handler := httpapi.NewHandler(engine, logger)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("exchange listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("run_id", runID))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("exchange stopped")
	return nil
}
