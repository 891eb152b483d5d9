package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"liquiplanner/internal/core"
)

func TestMoney(t *testing.T) {
	cases := map[int64]string{
		0:         "0,00 €",
		5:         "0,05 €",
		95000:     "950,00 €",
		105000:    "1.050,00 €",
		-6000:     "-60,00 €",
		123456789: "1.234.567,89 €",
	}
	for cents, want := range cases {
		assert.Equal(t, want, Money(core.Money{Cents: cents}), "%d", cents)
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+2.000,00 €", Signed(core.Entry{Kind: core.Income, Amount: core.Money{Cents: 200000}}))
	assert.Equal(t, "-950,00 €", Signed(core.Entry{Kind: core.Expense, Amount: core.Money{Cents: 95000}}))
}

func TestDateAndMonth(t *testing.T) {
	assert.Equal(t, "01.03.2024", Date(core.NewDate(2024, 3, 1)))
	assert.Equal(t, "", Date(core.Date{}))
	assert.Equal(t, "März 2024", MonthLabel(2024, 3))
	assert.Equal(t, "Dezember 2023", MonthLabel(2023, 12))
	assert.Equal(t, "", MonthName(13))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Einnahme", KindLabel(core.Income))
	assert.Equal(t, "Ausgabe", KindLabel(core.Expense))
	assert.Equal(t, "negativ", BalanceClass(core.Money{Cents: -1}))
	assert.Equal(t, "positiv", BalanceClass(core.Money{Cents: 0}))
	assert.Equal(t, []string{"Titel", "Betrag", "Datum", "Typ"},
		FieldLabels([]core.Field{core.FieldTitle, core.FieldAmount, core.FieldDate, core.FieldKind}))
}
