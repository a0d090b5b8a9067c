package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmvieira/fundledger-backend/internal/adapter/httpapi"
	"github.com/rmvieira/fundledger-backend/internal/adapter/oracle"
	"github.com/rmvieira/fundledger-backend/internal/adapter/repository/postgres"
	"github.com/rmvieira/fundledger-backend/internal/config"
	"github.com/rmvieira/fundledger-backend/internal/usecase/history"
	"github.com/rmvieira/fundledger-backend/internal/usecase/ledger"
)

func main() {
	configPath := flag.String("config", "", "path to TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fundledger: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	// 1. Database
	db, err := postgres.NewDB(cfg.Database.ConnString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(migrateCtx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready")

	// 2. Repositories and transaction manager
	fundRepo := postgres.NewFundRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	valuationRepo := postgres.NewValuationRepository(db)
	operationRepo := postgres.NewOperationRepository(db)
	txManager := postgres.NewTxManager(db)

	// 3. Price oracle
	quotes := oracle.NewYahooClient(cfg.Oracle.BaseURL, time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second)

	// 4. Services
	ledgerService := ledger.NewLedgerService(fundRepo, positionRepo, valuationRepo, operationRepo, quotes, txManager)
	historyService := history.NewHistoryService(fundRepo, valuationRepo, operationRepo)

	// 5. HTTP server
	srv := httpapi.NewServer(
		httpapi.Config{Port: cfg.Server.Port, APIKey: cfg.Server.APIKey},
		httpapi.NewFundHandler(ledgerService, logger),
		httpapi.NewHistoryHandler(historyService, logger),
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
