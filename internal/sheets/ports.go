// Package sheets defines the outbound port for spreadsheet mirrors.
package sheets

import "context"

// RowWriter replaces the full content of a named sheet. Implementations
// clear the sheet first, so shrinking ledgers leave no stale rows.
type RowWriter interface {
	ReplaceRows(ctx context.Context, sheet string, rows [][]any) error
}
