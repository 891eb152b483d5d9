// Package ledger owns the household entries. Every mutation regroups the
// entries into month lists, saves the full collection and then informs
// listeners. Readers always get copies.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"liquiplanner/internal/core"
	applog "liquiplanner/internal/log"
)

// Source reads the persisted records.
type Source interface {
	// Load returns the persisted records, or nil when nothing was saved yet.
	Load(ctx context.Context) ([]RawRecord, error)
}

// Store persists the full entry collection under one record. Save returns
// an error wrapping ErrStale when another writer saved since the last Load
// or Save.
type Store interface {
	Source
	Save(ctx context.Context, entries []core.Entry) error
}

// RawRecord is a persisted entry before validation. Amount holds minor
// units (cents) as text; Err is set when the record could not be decoded
// at all.
type RawRecord struct {
	Index  int
	ID     string
	Title  string
	Amount string
	Kind   string
	Date   string
	Err    error
}

// EntryInput is what a user submits to create an entry.
type EntryInput struct {
	Title  string
	Amount string
	Kind   core.Kind
	Date   core.Date
}

type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpRestore Op = "restore"
)

// Change names the mutation a Snapshot follows. EntryID is zero for restores.
type Change struct {
	Op      Op
	EntryID core.ID
}

// Snapshot is a consistent, caller-owned view of the ledger. Seq grows with
// every mutation; listeners may see snapshots out of order and use it to
// drop older ones.
type Snapshot struct {
	Entries []core.Entry
	Groups  []core.MonthGroup
	Totals  core.Totals
	Change  Change
	Seq     uint64
}

// Listener is invoked after each completed mutation, outside the ledger lock.
type Listener func(ctx context.Context, s Snapshot)

type Option func(*Ledger)

func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) { lg.logger = l }
}

func WithIDSource(ids core.IDSource) Option {
	return func(lg *Ledger) { lg.ids = ids }
}

type Ledger struct {
	mu      sync.Mutex
	store   Store
	ids     core.IDSource
	logger  *slog.Logger
	entries []core.Entry
	summary core.Summary
	seq     uint64

	lmu       sync.Mutex
	listeners map[int]Listener
	nextL     int
}

// New returns an empty ledger backed by store. A nil store keeps the
// ledger in memory only.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:     store,
		ids:       core.NewClock(),
		logger:    slog.Default(),
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Open creates a ledger and restores whatever store holds.
func Open(ctx context.Context, store Store, opts ...Option) (*Ledger, RestoreReport, error) {
	l := New(store, opts...)
	if store == nil {
		return l, RestoreReport{}, nil
	}
	records, err := store.Load(ctx)
	if err != nil {
		return nil, RestoreReport{}, err
	}
	report, err := l.Restore(ctx, records)
	return l, report, err
}

// View restores what src holds into a ledger without a store. Nothing is
// written back, so malformed records stay where they are.
func View(ctx context.Context, src Source, opts ...Option) (*Ledger, RestoreReport, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, RestoreReport{}, err
	}
	l := New(nil, opts...)
	report, err := l.Restore(ctx, records)
	return l, report, err
}

// AddEntry validates in and appends the new entry. A *core.ValidationError
// leaves the ledger untouched. An error wrapping ErrPersist means the entry
// was added but not saved.
func (l *Ledger) AddEntry(ctx context.Context, in EntryInput) (core.Entry, error) {
	l.mu.Lock()
	e, err := core.CreateEntry(in.Title, in.Amount, in.Kind, in.Date, l.ids)
	if err != nil {
		l.mu.Unlock()
		return core.Entry{}, err
	}
	snap, perr := l.mutate(ctx, OpAdd, func(entries []core.Entry) ([]core.Entry, core.ID) {
		// a reload may have brought in an entry holding the same id
		if slices.ContainsFunc(entries, func(x core.Entry) bool { return x.ID == e.ID }) {
			e.ID = l.ids.Next()
		}
		return append(entries, e), e.ID
	})
	l.mu.Unlock()

	l.notify(ctx, snap)
	return e, perr
}

// RemoveEntry deletes the entry with the given id. Unknown ids are ignored.
func (l *Ledger) RemoveEntry(ctx context.Context, id core.ID) error {
	match := func(e core.Entry) bool { return e.ID == id }

	l.mu.Lock()
	if !slices.ContainsFunc(l.entries, match) {
		l.mu.Unlock()
		return nil
	}
	snap, perr := l.mutate(ctx, OpRemove, func(entries []core.Entry) ([]core.Entry, core.ID) {
		return slices.DeleteFunc(entries, match), id
	})
	l.mu.Unlock()

	l.notify(ctx, snap)
	return perr
}

// RemoveEntryString is RemoveEntry for ids arriving as text. Ids that do
// not parse match nothing.
func (l *Ledger) RemoveEntryString(ctx context.Context, raw string) error {
	id, err := core.ParseID(raw)
	if err != nil {
		return nil
	}
	return l.RemoveEntry(ctx, id)
}

// mutate applies fn to the entries and commits. When the store was written
// by someone else in the meantime, the persisted records are reloaded and fn
// is applied once more on top of them. Callers hold l.mu.
func (l *Ledger) mutate(ctx context.Context, op Op, fn func([]core.Entry) ([]core.Entry, core.ID)) (Snapshot, error) {
	var id core.ID
	l.entries, id = fn(l.entries)
	snap, err := l.commit(ctx, Change{Op: op, EntryID: id})
	if !errors.Is(err, ErrStale) {
		return snap, err
	}

	l.logger.InfoContext(ctx, "Store changed by another writer, reloading",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, string(op))
	records, lerr := l.store.Load(ctx)
	if lerr != nil {
		return snap, persistError(lerr)
	}
	l.entries = nil
	l.restoreLocked(ctx, records)
	l.entries, id = fn(l.entries)
	return l.commit(ctx, Change{Op: op, EntryID: id})
}

// commit regroups and saves. Callers hold l.mu.
func (l *Ledger) commit(ctx context.Context, c Change) (Snapshot, error) {
	l.summary = core.Summarize(l.entries)
	l.seq++
	snap := l.snapshotLocked()
	snap.Change = c

	if l.store == nil {
		return snap, nil
	}
	if err := l.store.Save(ctx, slices.Clone(l.entries)); err != nil {
		if !errors.Is(err, ErrStale) {
			l.logger.ErrorContext(ctx, "Failed to persist ledger",
				applog.FieldComponent, applog.ComponentLedger,
				applog.FieldOperation, string(c.Op),
				applog.FieldError, err)
		}
		return snap, persistError(err)
	}
	return snap, nil
}

// Subscribe registers fn and returns a function that removes it again.
func (l *Ledger) Subscribe(fn Listener) (cancel func()) {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	id := l.nextL
	l.nextL++
	l.listeners[id] = fn
	return func() {
		l.lmu.Lock()
		defer l.lmu.Unlock()
		delete(l.listeners, id)
	}
}

func (l *Ledger) notify(ctx context.Context, s Snapshot) {
	l.lmu.Lock()
	fns := make([]Listener, 0, len(l.listeners))
	keys := make([]int, 0, len(l.listeners))
	for k := range l.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fns = append(fns, l.listeners[k])
	}
	l.lmu.Unlock()

	for _, fn := range fns {
		fn(ctx, s)
	}
}

// Entries returns the entries in insertion order.
func (l *Ledger) Entries() []core.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Groups returns the month groups, most recent first.
func (l *Ledger) Groups() []core.MonthGroup {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneGroups(l.summary.Groups)
}

func (l *Ledger) OverallBalance() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.summary.Totals.Balance
}

func (l *Ledger) Totals() core.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.summary.Totals
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	return Snapshot{
		Entries: slices.Clone(l.entries),
		Groups:  cloneGroups(l.summary.Groups),
		Totals:  l.summary.Totals,
		Seq:     l.seq,
	}
}

func cloneGroups(groups []core.MonthGroup) []core.MonthGroup {
	if groups == nil {
		return nil
	}
	out := make([]core.MonthGroup, len(groups))
	for i, g := range groups {
		g.Entries = slices.Clone(g.Entries)
		out[i] = g
	}
	return out
}
