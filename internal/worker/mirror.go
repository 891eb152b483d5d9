// Package worker keeps an external copy of the ledger in step with the
// persisted one.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"liquiplanner/internal/amqp"
	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
	applog "liquiplanner/internal/log"
)

// Loader reads the persisted ledger records. *storage.Persister is one.
type Loader = ledger.Source

// Exporter writes a grouped ledger somewhere. *export.SheetsExporter is one.
type Exporter interface {
	Export(ctx context.Context, s core.Summary) error
}

// Mirror reloads the persisted ledger and hands it to an exporter. Every
// change event triggers a full reload, so lost or reordered events only
// delay the mirror until the next one arrives.
type Mirror struct {
	loader   Loader
	exporter Exporter
	logger   *slog.Logger

	mu       sync.Mutex
	lastSync time.Time
	syncs    int
}

func NewMirror(loader Loader, exporter Exporter, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		loader:   loader,
		exporter: exporter,
		logger:   logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleMessage is an amqp.Handler. A returned error makes the consumer
// requeue the message.
func (m *Mirror) HandleMessage(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	m.logger.InfoContext(ctx, "Processing ledger change",
		applog.FieldEventID, msg.EventID.String(),
		applog.FieldOperation, msg.Operation,
		applog.FieldEntryID, msg.EntryID)

	s, err := m.Sync(ctx)
	if err != nil {
		return err
	}
	if s.Totals.Balance.Cents != msg.BalanceCents {
		m.logger.DebugContext(ctx, "Ledger moved on since the event was published",
			applog.FieldEventID, msg.EventID.String(),
			"event_balance_cents", msg.BalanceCents,
			applog.FieldBalance, s.Totals.Balance.Cents)
	}
	return nil
}

// Sync reloads the ledger and exports it. Concurrent calls are serialized.
func (m *Mirror) Sync(ctx context.Context) (core.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, report, err := ledger.View(ctx, m.loader, ledger.WithLogger(m.logger), ledger.WithIDSource(&core.Sequence{}))
	if err != nil {
		return core.Summary{}, fmt.Errorf("load ledger: %w", err)
	}

	s := core.Summary{Groups: l.Groups(), Totals: l.Totals()}
	if err := m.exporter.Export(ctx, s); err != nil {
		return core.Summary{}, err
	}

	m.lastSync = time.Now()
	m.syncs++
	m.logger.InfoContext(ctx, "Ledger mirrored",
		applog.FieldOperation, applog.OpExport,
		applog.FieldEntries, report.Restored,
		"skipped", len(report.Skipped),
		applog.FieldBalance, s.Totals.Balance.Cents)
	return s, nil
}

// Run syncs once, then again every interval until ctx is done. It is the
// fallback for events lost while the worker was down. Failed syncs are
// logged and retried on the next tick.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) error {
	if _, err := m.Sync(ctx); err != nil && ctx.Err() == nil {
		m.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.Sync(ctx); err != nil && ctx.Err() == nil {
				m.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}

// Stats reports how many syncs succeeded and when the last one finished.
func (m *Mirror) Stats() (syncs int, last time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs, m.lastSync
}
