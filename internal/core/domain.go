package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tells whether an entry adds to or subtracts from a balance.
	Kind string

	// ID identifies an entry. Larger ids were created later.
	ID int64

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Entry is one income or expense record. Entries are values: the ledger
	// hands out copies, so a record never changes after creation.
	Entry struct {
		ID     ID
		Title  string
		Amount Money
		Kind   Kind
		Date   Date
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidDate   = errors.New("invalid date")
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// ParseKind maps a textual tag onto a Kind. The German tags written by the
// browser version of the ledger are accepted as well.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "einnahme":
		return Income, nil
	case "expense", "ausgabe":
		return Expense, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID normalizes a textual id, as it arrives from forms and URLs.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidID
	}
	return ID(v), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Compare orders dates by calendar day.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD and RFC 3339 timestamps. Timestamps are
// reduced to their UTC calendar day, which is how browsers serialize
// the value of a date input.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t.UTC()), nil
}

// IsEmpty returns true if the date is zero (absent in a form)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the entry's contribution to a balance: positive for
// income, negative for expenses.
func (e Entry) Signed() int64 {
	if e.Kind == Income {
		return e.Amount.Cents
	}
	return -e.Amount.Cents
}

func (e Entry) Validate() error {
	var fields []Field
	if strings.TrimSpace(e.Title) == "" {
		fields = append(fields, FieldTitle)
	}
	if err := e.Amount.Validate(); err != nil {
		fields = append(fields, FieldAmount)
	}
	if err := e.Date.Validate(); err != nil {
		fields = append(fields, FieldDate)
	}
	if !e.Kind.Valid() {
		fields = append(fields, FieldKind)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
