package http

import (
	"time"

	"liquiplanner/internal/core"
	"liquiplanner/internal/format"
	"liquiplanner/internal/ledger"
)

type pageData struct {
	Form   formView
	Months []monthView
	Totals totalsView
}

type formView struct {
	Titel  string
	Betrag string
	Typ    string
	Datum  string
	Errors []string
}

type monthView struct {
	Label        string
	Balance      string
	BalanceClass string
	Entries      []entryView
}

type entryView struct {
	ID     string
	Title  string
	Date   string
	Amount string
	Kind   string
}

type totalsView struct {
	Income       string
	Expenses     string
	Balance      string
	BalanceClass string
}

// emptyForm is the form shown after a successful submission: expense,
// dated today.
func emptyForm(now time.Time) formView {
	return formView{Typ: "ausgabe", Datum: now.Format(time.DateOnly)}
}

// formWithErrors echoes the submitted values next to the error list.
func formWithErrors(f EntryForm, ve *core.ValidationError) formView {
	v := formView{Titel: f.Titel, Betrag: f.Betrag, Typ: f.Typ, Datum: f.Datum}
	if v.Typ == "" {
		v.Typ = "ausgabe"
	}
	if ve != nil {
		v.Errors = format.FieldLabels(ve.Fields)
	}
	return v
}

func monthsView(groups []core.MonthGroup) []monthView {
	out := make([]monthView, 0, len(groups))
	for _, g := range groups {
		mv := monthView{
			Label:        format.MonthLabel(g.Year, g.Month),
			Balance:      format.Money(g.Balance),
			BalanceClass: format.BalanceClass(g.Balance),
			Entries:      make([]entryView, 0, len(g.Entries)),
		}
		for _, e := range g.Entries {
			mv.Entries = append(mv.Entries, entryView{
				ID:     e.ID.String(),
				Title:  e.Title,
				Date:   format.Date(e.Date),
				Amount: format.Signed(e),
				Kind:   kindClass(e.Kind),
			})
		}
		out = append(out, mv)
	}
	return out
}

func kindClass(k core.Kind) string {
	if k == core.Income {
		return "einnahme"
	}
	return "ausgabe"
}

func totalsViewOf(t core.Totals) totalsView {
	return totalsView{
		Income:       format.Money(t.Income),
		Expenses:     format.Money(t.Expenses),
		Balance:      format.Money(t.Balance),
		BalanceClass: format.BalanceClass(t.Balance),
	}
}

func pageOf(s ledger.Snapshot, form formView) pageData {
	return pageData{
		Form:   form,
		Months: monthsView(s.Groups),
		Totals: totalsViewOf(s.Totals),
	}
}

// ledgerJSON is the machine-readable snapshot served by /api/ledger.
type ledgerJSON struct {
	Months []monthJSON `json:"months"`
	Totals totalsJSON  `json:"totals"`
}

type monthJSON struct {
	Year         int         `json:"year"`
	Month        int         `json:"month"`
	BalanceCents int64       `json:"balance_cents"`
	Entries      []entryJSON `json:"entries"`
}

type entryJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
}

type totalsJSON struct {
	IncomeCents   int64 `json:"income_cents"`
	ExpensesCents int64 `json:"expenses_cents"`
	BalanceCents  int64 `json:"balance_cents"`
}

func ledgerJSONOf(s ledger.Snapshot) ledgerJSON {
	out := ledgerJSON{
		Months: make([]monthJSON, 0, len(s.Groups)),
		Totals: totalsJSON{
			IncomeCents:   s.Totals.Income.Cents,
			ExpensesCents: s.Totals.Expenses.Cents,
			BalanceCents:  s.Totals.Balance.Cents,
		},
	}
	for _, g := range s.Groups {
		m := monthJSON{Year: g.Year, Month: g.Month, BalanceCents: g.Balance.Cents, Entries: make([]entryJSON, 0, len(g.Entries))}
		for _, e := range g.Entries {
			m.Entries = append(m.Entries, entryJSON{
				ID:          int64(e.ID),
				Title:       e.Title,
				AmountCents: e.Amount.Cents,
				Kind:        string(e.Kind),
				Date:        e.Date.String(),
			})
		}
		out.Months = append(out.Months, m)
	}
	return out
}
