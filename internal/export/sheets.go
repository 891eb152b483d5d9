package export

import (
	"context"
	"fmt"

	"liquiplanner/internal/core"
	"liquiplanner/internal/sheets"
)

// SheetsExporter mirrors the ledger into one sheet of a spreadsheet.
type SheetsExporter struct {
	writer sheets.RowWriter
	sheet  string
}

// NewSheetsExporter writes to sheet, or to Monatslisten when sheet is empty.
func NewSheetsExporter(w sheets.RowWriter, sheet string) *SheetsExporter {
	if sheet == "" {
		sheet = SheetMonths
	}
	return &SheetsExporter{writer: w, sheet: sheet}
}

func (e *SheetsExporter) Sheet() string {
	return e.sheet
}

// Export clears the sheet and writes SheetRows(s).
func (e *SheetsExporter) Export(ctx context.Context, s core.Summary) error {
	if err := e.writer.ReplaceRows(ctx, e.sheet, SheetRows(s)); err != nil {
		return fmt.Errorf("export to sheet %s: %w", e.sheet, err)
	}
	return nil
}
