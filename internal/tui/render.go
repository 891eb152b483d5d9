// Package tui renders the ledger for a terminal and asks for new entries.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"liquiplanner/internal/core"
	"liquiplanner/internal/format"
)

var (
	subtle   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	positive = lipgloss.AdaptiveColor{Light: "#1E7B34", Dark: "#73F59F"}
	negative = lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5F87"}
)

// Styles are bound to the renderer of one output, so colors only appear
// when that output is a terminal.
type Styles struct {
	Month    lipgloss.Style
	ID       lipgloss.Style
	Date     lipgloss.Style
	Title    lipgloss.Style
	Kind     lipgloss.Style
	Amount   lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Summary  lipgloss.Style
	Empty    lipgloss.Style
}

func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Month:    r.NewStyle().Bold(true).MarginTop(1),
		ID:       r.NewStyle().Foreground(subtle).Width(16),
		Date:     r.NewStyle().Width(12),
		Title:    r.NewStyle().Width(28),
		Kind:     r.NewStyle().Width(10),
		Amount:   r.NewStyle().Width(14).Align(lipgloss.Right),
		Positive: r.NewStyle().Foreground(positive),
		Negative: r.NewStyle().Foreground(negative),
		Summary:  r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2).MarginTop(1),
		Empty:    r.NewStyle().Foreground(subtle).Italic(true),
	}
}

// Render writes the month lists, most recent month first, followed by the
// overall balance sheet.
func Render(w io.Writer, s core.Summary) error {
	st := NewStyles(lipgloss.NewRenderer(w))
	_, err := io.WriteString(w, st.Summarize(s)+"\n")
	return err
}

// Summarize returns what Render writes.
func (st Styles) Summarize(s core.Summary) string {
	var b strings.Builder
	if len(s.Groups) == 0 {
		b.WriteString(st.Empty.Render("Noch keine Einträge."))
		b.WriteString("\n")
	}
	for _, g := range s.Groups {
		b.WriteString(st.month(g))
		b.WriteString("\n")
		for _, e := range g.Entries {
			b.WriteString(st.entry(e))
			b.WriteString("\n")
		}
	}
	b.WriteString(st.totals(s.Totals))
	return b.String()
}

func (st Styles) month(g core.MonthGroup) string {
	header := st.Month.Render(format.MonthLabel(g.Year, g.Month))
	return header + "  " + st.balance(g.Balance, "Monatsbilanz")
}

func (st Styles) entry(e core.Entry) string {
	amount := st.Amount.Render(format.Signed(e))
	if e.Kind == core.Expense {
		amount = st.Negative.Render(amount)
	} else {
		amount = st.Positive.Render(amount)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.ID.Render(e.ID.String()),
		st.Date.Render(format.Date(e.Date)),
		st.Title.Render(truncate(e.Title, 26)),
		st.Kind.Render(format.KindLabel(e.Kind)),
		amount,
	)
}

func (st Styles) balance(m core.Money, label string) string {
	text := fmt.Sprintf("%s %s", label, format.Money(m))
	if m.Negative() {
		return st.Negative.Render(text)
	}
	return st.Positive.Render(text)
}

func (st Styles) totals(t core.Totals) string {
	lines := []string{
		fmt.Sprintf("Einnahmen  %s", format.Money(t.Income)),
		fmt.Sprintf("Ausgaben   %s", format.Money(t.Expenses)),
		st.balance(t.Balance, "Bilanz    "),
	}
	return st.Summary.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most n runes, the last one an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
