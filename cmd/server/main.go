package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/invoice-pay/internal/catalog"
	"github.com/diewo77/invoice-pay/internal/config"
	"github.com/diewo77/invoice-pay/internal/db"
	"github.com/diewo77/invoice-pay/internal/gateway"
	"github.com/diewo77/invoice-pay/internal/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	flush, err := logging.New(cfg.App.LogLevel, cfg.App.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = flush() }()
	l := zap.L().Named("main")

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			l.Fatal("Migration failed", zap.Error(err))
		}
		l.Info("Migrations completed successfully")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			l.Fatal("Migration failed", zap.Error(err))
		}
		l.Info("Migrations completed")
	}

	cat, err := catalog.Load(cfg.App.InvoicesFile)
	if err != nil {
		l.Fatal("Failed to load invoices", zap.String("file", cfg.App.InvoicesFile), zap.Error(err))
	}
	l.Info("Invoices loaded", zap.Int("count", cat.Len()))

	gw := gateway.NewClient(cfg.Payment.Endpoint)
	app, err := NewApp(cfg, cat, gw, dbConn)
	if err != nil {
		l.Fatal("Failed to build app", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.sweepSessions(ctx, time.Minute)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(app),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("payment_endpoint", gw.Endpoint()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	s := <-quit
	l.Warn("Shutdown signal received", zap.String("signal", s.String()))
	cancel()

	// Graceful shutdown with timeout; in-flight submissions settle within PAYMENT_TIMEOUT.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("Error during shutdown", zap.Error(err))
	}
	l.Info("Server stopped gracefully")
}
