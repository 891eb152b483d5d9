package ledger

import (
	"context"
	"fmt"
	"strings"

	"liquiplanner/internal/core"
	applog "liquiplanner/internal/log"
)

// RestoreReport summarizes a Restore call.
type RestoreReport struct {
	Restored int
	Skipped  []*MalformedRecordError
}

// Restore rebuilds entries from persisted records. Every record goes through
// the same validation as AddEntry; records that fail are skipped and
// reported. Persisted ids are kept when they are valid and unused.
//
// When at least one record was supplied the ledger is regrouped and saved
// once at the end; the returned error then wraps ErrPersist.
func (l *Ledger) Restore(ctx context.Context, records []RawRecord) (RestoreReport, error) {
	if len(records) == 0 {
		return RestoreReport{}, nil
	}

	l.mu.Lock()
	report := l.restoreLocked(ctx, records)
	snap, perr := l.commit(ctx, Change{Op: OpRestore})
	l.mu.Unlock()

	l.notify(ctx, snap)
	return report, perr
}

// restoreLocked appends the valid records to l.entries. Callers hold l.mu.
func (l *Ledger) restoreLocked(ctx context.Context, records []RawRecord) RestoreReport {
	var report RestoreReport
	used := make(map[core.ID]bool, len(l.entries)+len(records))
	for _, e := range l.entries {
		used[e.ID] = true
	}
	// observe every persisted id first so minted ids cannot collide with
	// a record further down the batch
	for _, r := range records {
		if id, err := core.ParseID(r.ID); err == nil {
			l.ids.Observe(id)
		}
	}

	for _, r := range records {
		e, err := l.restoreOne(r, used)
		if err != nil {
			m := &MalformedRecordError{Index: r.Index, ID: strings.TrimSpace(r.ID), Err: err}
			report.Skipped = append(report.Skipped, m)
			l.logger.WarnContext(ctx, "Skipping malformed record",
				applog.FieldComponent, applog.ComponentLedger,
				"index", m.Index, "id", m.ID,
				applog.FieldError, err)
			continue
		}
		used[e.ID] = true
		l.entries = append(l.entries, e)
		report.Restored++
	}
	return report
}

func (l *Ledger) restoreOne(r RawRecord, used map[core.ID]bool) (core.Entry, error) {
	if r.Err != nil {
		return core.Entry{}, r.Err
	}

	date, dateErr := core.ParseDate(r.Date)

	var amount string
	if cents, err := core.CentsFromMinorUnits(r.Amount); err == nil {
		amount = core.Money{Cents: cents}.Decimal()
	}

	kind, err := core.ParseKind(r.Kind)
	if err != nil {
		kind = core.Kind(strings.TrimSpace(r.Kind))
	}

	var e core.Entry
	if id, perr := core.ParseID(r.ID); perr == nil && !used[id] {
		e, err = core.CreateEntryWithID(id, r.Title, amount, kind, date, l.ids)
	} else {
		e, err = core.CreateEntry(r.Title, amount, kind, date, l.ids)
	}
	if err != nil && dateErr != nil {
		err = fmt.Errorf("%w: %w", err, dateErr)
	}
	return e, err
}
