package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquiplanner/internal/core"
)

func march() core.Summary {
	return core.Summarize([]core.Entry{
		{ID: 1, Title: "Gehalt", Amount: core.Money{Cents: 200000}, Kind: core.Income, Date: core.NewDate(2024, 3, 1)},
		{ID: 2, Title: "Miete", Amount: core.Money{Cents: 95000}, Kind: core.Expense, Date: core.NewDate(2024, 3, 1)},
		{ID: 3, Title: "Strom", Amount: core.Money{Cents: 6000}, Kind: core.Expense, Date: core.NewDate(2024, 2, 10)},
	})
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, march()))
	out := buf.String()

	for _, want := range []string{
		"März 2024", "Monatsbilanz 1.050,00 €",
		"Februar 2024", "Monatsbilanz -60,00 €",
		"01.03.2024", "Miete", "-950,00 €", "+2.000,00 €",
		"Einnahmen  2.000,00 €", "Ausgaben   1.010,00 €", "990,00 €",
	} {
		assert.Contains(t, out, want)
	}

	// most recent month first, newest entry first within a month
	assert.Less(t, strings.Index(out, "März 2024"), strings.Index(out, "Februar 2024"))
	assert.Less(t, strings.Index(out, "Miete"), strings.Index(out, "Gehalt"))

	// a buffer is not a terminal
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, core.Summary{}))
	assert.Contains(t, buf.String(), "Noch keine Einträge.")
	assert.Contains(t, buf.String(), "0,00 €")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Miete", truncate("Miete", 5))
	assert.Equal(t, "Stromabschl…", truncate("Stromabschlag", 12))
	assert.Equal(t, "Stromabschlag", truncate("Stromabschlag", 13))
	assert.Len(t, []rune(truncate("Stromabschlag für das ganze Jahr", 26)), 26)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want core.Date
		ok   bool
	}{
		{"15.03.2024", core.NewDate(2024, 3, 15), true},
		{"2024-03-15", core.NewDate(2024, 3, 15), true},
		{" 01.02.2024 ", core.NewDate(2024, 2, 1), true},
		{"31.02.2024", core.Date{}, false},
		{"", core.Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got)
		})
	}
}

func TestValidators(t *testing.T) {
	assert.Error(t, validateTitle("  "))
	assert.NoError(t, validateTitle("Miete"))

	assert.NoError(t, validateAmount("12,50"))
	assert.NoError(t, validateAmount("950"))
	assert.Error(t, validateAmount("-5"))
	assert.Error(t, validateAmount("zwölf"))

	assert.NoError(t, validateDate("01.03.2024"))
	assert.Error(t, validateDate("gestern"))
}

func TestEntryValuesInput(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	v := NewEntryValues(now)
	assert.Equal(t, "15.03.2024", v.Date)
	assert.Equal(t, "expense", v.Kind)

	v.Title = "Gehalt"
	v.Amount = "2.000,00"
	v.Kind = "einnahme"
	in := v.Input()
	assert.Equal(t, "Gehalt", in.Title)
	assert.Equal(t, "2.000,00", in.Amount)
	assert.Equal(t, core.Income, in.Kind)
	assert.True(t, core.NewDate(2024, 3, 15).Equal(in.Date.Time))

	v.Kind = "spende"
	assert.Equal(t, core.Kind("spende"), v.Input().Kind)

	assert.NotNil(t, NewEntryForm(v))
}
