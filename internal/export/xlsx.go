package export

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"liquiplanner/internal/core"
)

const (
	SheetMonths = "Monatslisten"
	SheetTotals = "Gesamtbilanz"
)

// WorkbookXLSX renders the month lists and the overall balance as a workbook
// with one sheet each.
func WorkbookXLSX(s core.Summary) ([]byte, error) {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{Application: "Liqui-Planner"})

	first := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(first, SheetMonths); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := xlsx.NewSheet(SheetTotals); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	_ = xlsx.SetColWidth(SheetMonths, "A", "A", 16)
	_ = xlsx.SetColWidth(SheetMonths, "B", "B", 40)
	_ = xlsx.SetColWidth(SheetMonths, "C", "C", 14)
	_ = xlsx.SetColWidth(SheetMonths, "D", "D", 14)
	_ = xlsx.SetColWidth(SheetTotals, "A", "A", 16)
	_ = xlsx.SetColWidth(SheetTotals, "B", "B", 14)

	if err := writeRows(xlsx, SheetMonths, monthRows(s)); err != nil {
		return nil, err
	}
	if err := writeRows(xlsx, SheetTotals, totalRows(s.Totals)); err != nil {
		return nil, err
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(xlsx *excelize.File, sheet string, rows []row) error {
	for i, r := range rows {
		n := i + 1
		if len(r.cells) == 0 {
			continue
		}
		cells := r.cells
		if err := xlsx.SetSheetRow(sheet, cell('A', n), &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, n, err)
		}

		last := 'A' + rune(len(r.cells)-1)
		style, err := xlsx.NewStyle(rowStyle(r))
		if err != nil {
			return fmt.Errorf("style %s row %d: %w", sheet, n, err)
		}
		_ = xlsx.SetCellStyle(sheet, cell('A', n), cell(last, n), style)

		if _, ok := r.cells[len(r.cells)-1].(float64); ok {
			amount, err := xlsx.NewStyle(mergeStyles(rowStyle(r), euroFormat(), textAlignment("right"), amountColor(r.negative)))
			if err != nil {
				return fmt.Errorf("style %s row %d: %w", sheet, n, err)
			}
			_ = xlsx.SetCellStyle(sheet, cell(last, n), cell(last, n), amount)
		}
	}
	return nil
}

func rowStyle(r row) *excelize.Style {
	switch r.kind {
	case rowHeader:
		return mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"))
	case rowMonth:
		return mergeStyles(defaultStyle(), fontBold(), thinBorder("top"))
	case rowTotal:
		if r.cells[0] == "Bilanz" {
			return mergeStyles(defaultStyle(), fontBold(), thickBorder("top"))
		}
		return defaultStyle()
	default:
		return defaultStyle()
	}
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func euroFormat() *excelize.Style {
	code := `#,##0.00 "€"`
	return &excelize.Style{
		CustomNumFmt: &code,
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

// amountColor paints negative amounts red and the rest green, like the
// balance classes of the web UI.
func amountColor(negative bool) *excelize.Style {
	color := "#1E7B34"
	if negative {
		color = "#B00020"
	}
	return &excelize.Style{
		Font: &excelize.Font{
			Color: color,
		},
	}
}

func textAlignment(a string) *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: a,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 1,
		})
	}
	return s
}

func thickBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 2,
		})
	}
	return s
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
