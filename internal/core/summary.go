package core

import (
	"cmp"
	"slices"
)

// MonthGroup holds the entries of one calendar month, most recent first.
type MonthGroup struct {
	Year     int
	Month    int // 1-12
	Entries  []Entry
	Balance  Money
	Income   Money
	Expenses Money
}

// Negative reports whether the month closed below zero. Zero is not negative.
func (g MonthGroup) Negative() bool {
	return g.Balance.Cents < 0
}

// Totals is the overall balance sheet across all entries.
type Totals struct {
	Income   Money
	Expenses Money
	Balance  Money
}

// Summary is the grouped view of a set of entries.
type Summary struct {
	Groups []MonthGroup
	Totals Totals
}

type monthKey struct {
	year, month int
}

// Group partitions entries by calendar month and returns the groups, most
// recent month first, together with the overall balance. The input slice is
// not modified.
func Group(entries []Entry) ([]MonthGroup, Money) {
	s := Summarize(entries)
	return s.Groups, s.Totals.Balance
}

// Summarize is Group plus the income and expense totals.
func Summarize(entries []Entry) Summary {
	index := make(map[monthKey]int)
	var groups []MonthGroup
	var totals Totals

	for _, e := range entries {
		key := monthKey{year: e.Date.Year(), month: e.Date.Month()}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Year: key.year, Month: key.month})
		}
		g := &groups[i]
		g.Entries = append(g.Entries, e)
		g.Balance.Cents += e.Signed()
		if e.Kind == Income {
			g.Income.Cents += e.Amount.Cents
			totals.Income.Cents += e.Amount.Cents
		} else {
			g.Expenses.Cents += e.Amount.Cents
			totals.Expenses.Cents += e.Amount.Cents
		}
		totals.Balance.Cents += e.Signed()
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Entries, compareEntries)
	}
	slices.SortFunc(groups, func(a, b MonthGroup) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})

	return Summary{Groups: groups, Totals: totals}
}

// compareEntries orders by date descending, then id descending.
func compareEntries(a, b Entry) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// Flatten returns the entries of all groups in display order.
func Flatten(groups []MonthGroup) []Entry {
	var out []Entry
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}
