package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
	"liquiplanner/internal/storage/memory"
)

func TestPersisterDefaultKey(t *testing.T) {
	p := NewPersister(memory.New(), "")
	assert.Equal(t, "eintraege", p.Key())
}

func TestPersisterLoadMissing(t *testing.T) {
	p := NewPersister(memory.New(), "")
	records, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestPersisterIDsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	first := ledger.New(NewPersister(kv, ""))
	a, err := first.AddEntry(ctx, ledger.EntryInput{Title: "Miete", Amount: "950", Kind: core.Expense, Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)
	b, err := first.AddEntry(ctx, ledger.EntryInput{Title: "Gehalt", Amount: "2000", Kind: core.Income, Date: core.NewDate(2024, 3, 5)})
	require.NoError(t, err)

	second, report, err := ledger.Open(ctx, NewPersister(kv, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Restored)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, []core.Entry{a, b}, second.Entries())
	assert.Equal(t, first.Groups(), second.Groups())
	assert.Equal(t, int64(105000), second.OverallBalance().Cents)
}

func TestPersisterMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, DefaultKey, `[
		{"_titel":"Miete","_betrag":95000,"_typ":"ausgabe","_datum":"2024-03-01T00:00:00.000Z","_timestamp":1709251200000},
		"garbage",
		{"_titel":"Gehalt","_betrag":200000,"_typ":"einnahme","_datum":"2024-03-05T00:00:00.000Z","_timestamp":1709596800000}
	]`))

	l, report, err := ledger.Open(ctx, NewPersister(kv, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Restored)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Equal(t, int64(105000), l.OverallBalance().Cents)

	// the restore rewrote the record in the current format
	value, _, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	records, err := Decode([]byte(value))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1709251200000", records[0].ID)
	assert.Equal(t, "expense", records[0].Kind)
	assert.Equal(t, "2024-03-01", records[0].Date)
}

func TestPersisterCorruptDocumentIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, DefaultKey, "{{{"))

	_, _, err := ledger.Open(ctx, NewPersister(kv, ""))
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, 1, kv.Writes())
}

// plainKV hides the Swapper of the wrapped store.
type plainKV struct{ KV }

func entryInput(title string) ledger.EntryInput {
	return ledger.EntryInput{Title: title, Amount: "10", Kind: core.Expense, Date: core.NewDate(2024, 3, 1)}
}

func persistedTitles(t *testing.T, kv KV) []string {
	t.Helper()
	records, err := NewPersister(kv, "").Load(context.Background())
	require.NoError(t, err)
	var titles []string
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	return titles
}

func TestTwoWritersKeepBothEntries(t *testing.T) {
	for name, kv := range map[string]KV{
		"swapper": memory.New(),
		"plain":   plainKV{memory.New()},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			web, _, err := ledger.Open(ctx, NewPersister(kv, ""))
			require.NoError(t, err)
			cli, _, err := ledger.Open(ctx, NewPersister(kv, ""))
			require.NoError(t, err)

			_, err = cli.AddEntry(ctx, entryInput("from-cli"))
			require.NoError(t, err)
			_, err = web.AddEntry(ctx, entryInput("from-web"))
			require.NoError(t, err)

			assert.Equal(t, []string{"from-cli", "from-web"}, persistedTitles(t, kv))
			assert.Len(t, web.Entries(), 2)

			// the web ledger is in step again and saves without reloading
			_, err = web.AddEntry(ctx, entryInput("again"))
			require.NoError(t, err)
			assert.Equal(t, []string{"from-cli", "from-web", "again"}, persistedTitles(t, kv))
		})
	}
}

func TestPersisterRejectsStaleSave(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	p := NewPersister(kv, "")

	_, err := p.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, DefaultKey, `[]`))

	err = p.Save(ctx, nil)
	require.ErrorIs(t, err, ledger.ErrStale)
	v, _, _ := kv.Get(ctx, DefaultKey)
	assert.Equal(t, `[]`, v)

	_, err = p.Load(ctx)
	require.NoError(t, err)
	assert.NoError(t, p.Save(ctx, nil))
}

func TestSwap(t *testing.T) {
	files, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	for name, s := range map[string]interface {
		KV
		Swapper
	}{
		"memory": memory.New(),
		"file":   files,
		"sqlite": repo,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := s.Swap(ctx, "k", "", true, "v1")
			require.NoError(t, err)
			assert.False(t, ok, "missing key does not match an expected value")

			ok, err = s.Swap(ctx, "k", "", false, "v1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.Swap(ctx, "k", "", false, "v2")
			require.NoError(t, err)
			assert.False(t, ok, "key exists already")

			ok, err = s.Swap(ctx, "k", "other", true, "v2")
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = s.Swap(ctx, "k", "v1", true, "v2")
			require.NoError(t, err)
			assert.True(t, ok)

			v, found, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "v2", v)
		})
	}
}
