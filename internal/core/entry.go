package core

import "strings"

// CreateEntry validates raw input and builds an Entry with a fresh id.
//
// All fields are checked; the returned *ValidationError names every invalid
// one (title, amount, date, kind) in that order. An empty kind means expense.
// No id is minted when validation fails.
func CreateEntry(title, amountRaw string, kind Kind, date Date, ids IDSource) (Entry, error) {
	e, err := buildEntry(title, amountRaw, kind, date)
	if err != nil {
		return Entry{}, err
	}
	e.ID = ids.Next()
	return e, nil
}

// CreateEntryWithID is CreateEntry for records that already carry an id,
// such as restored ones. The id is reported to ids so it is never minted again.
func CreateEntryWithID(id ID, title, amountRaw string, kind Kind, date Date, ids IDSource) (Entry, error) {
	e, err := buildEntry(title, amountRaw, kind, date)
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	ids.Observe(id)
	return e, nil
}

func buildEntry(title, amountRaw string, kind Kind, date Date) (Entry, error) {
	var fields []Field

	title = strings.TrimSpace(title)
	if title == "" {
		fields = append(fields, FieldTitle)
	}
	cents, err := ParseDecimalToCents(amountRaw)
	if err != nil {
		fields = append(fields, FieldAmount)
	}
	if date.Validate() != nil {
		fields = append(fields, FieldDate)
	}
	if kind == "" {
		kind = Expense
	}
	if !kind.Valid() {
		fields = append(fields, FieldKind)
	}

	if len(fields) > 0 {
		return Entry{}, &ValidationError{Fields: fields}
	}
	return Entry{
		Title:  title,
		Amount: Money{Cents: cents},
		Kind:   kind,
		Date:   DateOf(date.Time),
	}, nil
}
