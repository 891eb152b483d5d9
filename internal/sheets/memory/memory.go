// Package memory is an in-process spreadsheet, used by tests and by the
// mirror worker when no Google spreadsheet is configured.
package memory

import (
	"context"
	"slices"
	"sync"

	"liquiplanner/internal/sheets"
)

var _ sheets.RowWriter = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]any
	writes int
}

func New() *Store {
	return &Store{sheets: make(map[string][][]any)}
}

// ReplaceRows stores a copy of rows under sheet.
func (s *Store) ReplaceRows(_ context.Context, sheet string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = cloneRows(rows)
	s.writes++
	return nil
}

// Rows returns the current content of sheet.
func (s *Store) Rows(sheet string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.sheets[sheet])
}

// Writes returns how many times ReplaceRows was called.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneRows(rows [][]any) [][]any {
	if rows == nil {
		return nil
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
