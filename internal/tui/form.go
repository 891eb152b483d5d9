package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
)

// EntryValues backs the fields of the entry form.
type EntryValues struct {
	Title  string
	Amount string
	Kind   string
	Date   string
}

// NewEntryValues preselects an expense dated today.
func NewEntryValues(now time.Time) *EntryValues {
	return &EntryValues{
		Kind: string(core.Expense),
		Date: now.Format("02.01.2006"),
	}
}

// Input converts the form values. Validation is left to the ledger so the
// form and the web UI reject the same entries.
func (v *EntryValues) Input() ledger.EntryInput {
	kind, err := core.ParseKind(v.Kind)
	if err != nil {
		kind = core.Kind(v.Kind)
	}
	date, _ := ParseDate(v.Date)
	return ledger.EntryInput{
		Title:  v.Title,
		Amount: v.Amount,
		Kind:   kind,
		Date:   date,
	}
}

// ParseDate accepts DD.MM.YYYY besides the ISO forms core.ParseDate reads.
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return core.DateOf(t), nil
	}
	return core.ParseDate(s)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Titel darf nicht leer sein")
	}
	return nil
}

func validateAmount(s string) error {
	if _, err := core.ParseDecimalToCents(s); err != nil {
		return errors.New("Betrag muss eine positive Zahl sein, z.B. 12,50")
	}
	return nil
}

func validateDate(s string) error {
	d, err := ParseDate(s)
	if err != nil || d.Validate() != nil {
		return errors.New("Datum als TT.MM.JJJJ angeben")
	}
	return nil
}

// NewEntryForm builds the interactive form writing into v.
func NewEntryForm(v *EntryValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Titel").
				Value(&v.Title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Betrag").
				Description("In Euro, z.B. 950 oder 12,50").
				Value(&v.Amount).
				Validate(validateAmount),
			huh.NewSelect[string]().
				Title("Typ").
				Options(
					huh.NewOption("Ausgabe", string(core.Expense)),
					huh.NewOption("Einnahme", string(core.Income)),
				).
				Value(&v.Kind),
			huh.NewInput().
				Title("Datum").
				Description("TT.MM.JJJJ").
				Value(&v.Date).
				Validate(validateDate),
		),
	)
}

// ErrAborted is returned when the user leaves the form without submitting.
var ErrAborted = errors.New("eingabe abgebrochen")

// AskEntry runs the form on the terminal.
func AskEntry(now time.Time) (ledger.EntryInput, error) {
	v := NewEntryValues(now)
	if err := NewEntryForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ledger.EntryInput{}, ErrAborted
		}
		return ledger.EntryInput{}, err
	}
	return v.Input(), nil
}
