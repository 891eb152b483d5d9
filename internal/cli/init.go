// Package cli provides common CLI initialization utilities shared by
// cmd/liquiplanner, cmd/ledger and cmd/ledger-mirror.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"liquiplanner/internal/backend"
	"liquiplanner/internal/config"
	"liquiplanner/internal/ledger"
	applog "liquiplanner/internal/log"
	"liquiplanner/internal/sheets"
	"liquiplanner/internal/sheets/google"
	sheetsmem "liquiplanner/internal/sheets/memory"
	"liquiplanner/internal/storage"
)

// SetupLogger builds the application logger from cfg and makes it the
// slog default. A nil cfg gives the default text logger at info level.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	if cfg != nil {
		if level, err := applog.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = level
		}
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig() *config.Config {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		SetupLogger(nil).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger creates the configured backend and restores the ledger from it.
// The returned backend must be closed by the caller.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*ledger.Ledger, *backend.BackendResult, error) {
	return openLedger(ctx, cfg, logger, ledger.Open)
}

// ViewLedger is OpenLedger for read-only commands. The restored ledger never
// writes back, so malformed records stay in the store.
func ViewLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*ledger.Ledger, *backend.BackendResult, error) {
	return openLedger(ctx, cfg, logger, func(ctx context.Context, store ledger.Store, opts ...ledger.Option) (*ledger.Ledger, ledger.RestoreReport, error) {
		return ledger.View(ctx, store, opts...)
	})
}

type openFunc func(ctx context.Context, store ledger.Store, opts ...ledger.Option) (*ledger.Ledger, ledger.RestoreReport, error)

func openLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger, open openFunc) (*ledger.Ledger, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewPersister(res.KV, cfg.StorageKey)
	l, report, err := open(ctx, store, ledger.WithLogger(logger.WithComponent(applog.ComponentLedger).Slog()))
	if err != nil {
		res.Close()
		return nil, nil, fmt.Errorf("restore ledger: %w", err)
	}

	logger.Info("Ledger restored",
		applog.FieldOperation, applog.OpRestore,
		applog.FieldStorageKey, store.Key(),
		"restored", report.Restored,
		"skipped", len(report.Skipped))
	return l, res, nil
}

// GracefulShutdown returns a context that is cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}

// Server is what RunServer drives; *http.Server satisfies it.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// RunServer serves srv until ctx is cancelled, then shuts it down within
// timeout. Extra background tasks run in the same errgroup and share its
// context.
func RunServer(ctx context.Context, logger *applog.Logger, srv Server, timeout time.Duration, tasks ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}

	return g.Wait()
}

// SheetsWriter returns the Google Sheets client when a spreadsheet is
// configured and an in-memory sheet otherwise.
func SheetsWriter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.RowWriter, error) {
	if !cfg.SheetsEnabled() {
		logger.Warn("No spreadsheet configured, mirroring into memory only")
		return sheetsmem.New(), nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger.WithComponent(applog.ComponentExport).Slog())
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
