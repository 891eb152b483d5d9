// Package export renders the grouped ledger as spreadsheet rows, as an
// XLSX workbook and into a mirrored Google sheet.
package export

import (
	"liquiplanner/internal/core"
	"liquiplanner/internal/format"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowMonth
	rowEntry
	rowBlank
	rowTotal
)

// row is one spreadsheet row plus what the XLSX writer needs to style it.
type row struct {
	kind     rowKind
	cells    []any
	negative bool
}

// Column titles of the month lists.
var header = []any{"Datum", "Titel", "Typ", "Betrag"}

// monthRows lists every month, most recent first: a header row carrying the
// month balance, then its entries with signed amounts in euros.
func monthRows(s core.Summary) []row {
	rows := []row{{kind: rowHeader, cells: header}}
	for i, g := range s.Groups {
		if i > 0 {
			rows = append(rows, row{kind: rowBlank, cells: []any{}})
		}
		rows = append(rows, row{
			kind:     rowMonth,
			cells:    []any{format.MonthLabel(g.Year, g.Month), "", "Monatsbilanz", g.Balance.Euros()},
			negative: g.Negative(),
		})
		for _, e := range g.Entries {
			rows = append(rows, row{
				kind:     rowEntry,
				cells:    []any{format.Date(e.Date), e.Title, format.KindLabel(e.Kind), signedEuros(e)},
				negative: e.Kind == core.Expense,
			})
		}
	}
	return rows
}

func totalRows(t core.Totals) []row {
	return []row{
		{kind: rowTotal, cells: []any{"Einnahmen", t.Income.Euros()}},
		{kind: rowTotal, cells: []any{"Ausgaben", t.Expenses.Euros()}},
		{kind: rowTotal, cells: []any{"Bilanz", t.Balance.Euros()}, negative: t.Balance.Negative()},
	}
}

func signedEuros(e core.Entry) float64 {
	return core.Money{Cents: e.Signed()}.Euros()
}

func cells(rows []row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.cells
	}
	return out
}

// SheetRows is the content of the mirrored sheet: the month lists, a blank
// row, then the overall balance.
func SheetRows(s core.Summary) [][]any {
	rows := monthRows(s)
	rows = append(rows, row{kind: rowBlank, cells: []any{}}, row{kind: rowMonth, cells: []any{"Gesamtbilanz"}})
	rows = append(rows, totalRows(s.Totals)...)
	return cells(rows)
}

// TotalsRows is the overall balance sheet: Einnahmen, Ausgaben, Bilanz.
func TotalsRows(t core.Totals) [][]any {
	return cells(totalRows(t))
}
