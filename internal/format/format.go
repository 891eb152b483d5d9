// Package format renders ledger values the way a German household book
// shows them: 1.050,00 €, 01.03.2024, März 2024.
package format

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"liquiplanner/internal/core"
)

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var (
	printerOnce sync.Once
	printer     *message.Printer
)

func german() *message.Printer {
	printerOnce.Do(func() {
		printer = message.NewPrinter(language.German)
	})
	return printer
}

// Amount formats cents as a German decimal without currency, e.g. 1.050,00.
func Amount(m core.Money) string {
	return german().Sprint(number.Decimal(float64(m.Cents)/100, number.Scale(2)))
}

// Money formats cents with the euro sign, e.g. -60,00 €.
func Money(m core.Money) string {
	return Amount(m) + " €"
}

// Signed formats an entry's amount with its sign: +2.000,00 € or -950,00 €.
func Signed(e core.Entry) string {
	if e.Kind == core.Income {
		return "+" + Money(e.Amount)
	}
	return "-" + Money(e.Amount)
}

// Date formats as DD.MM.YYYY.
func Date(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("02.01.2006")
}

// MonthName returns the German month name for 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthLabel renders a month group header, e.g. März 2024.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}

// KindLabel returns Einnahme or Ausgabe.
func KindLabel(k core.Kind) string {
	if k == core.Income {
		return "Einnahme"
	}
	return "Ausgabe"
}

// BalanceClass is the CSS class for a balance: negativ below zero, positiv otherwise.
func BalanceClass(m core.Money) string {
	if m.Negative() {
		return "negativ"
	}
	return "positiv"
}

// FieldLabel returns the form label for an entry field.
func FieldLabel(f core.Field) string {
	switch f {
	case core.FieldTitle:
		return "Titel"
	case core.FieldAmount:
		return "Betrag"
	case core.FieldDate:
		return "Datum"
	case core.FieldKind:
		return "Typ"
	default:
		return string(f)
	}
}

// FieldLabels maps every field of a validation error to its label.
func FieldLabels(fields []core.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = FieldLabel(f)
	}
	return out
}
