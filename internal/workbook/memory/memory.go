// Package memory is an in-memory workbook.Source used by tests.
package memory

import (
	"context"
	"fmt"

	"pdw/internal/workbook"
)

type Source struct {
	order  []string
	sheets map[string][][]workbook.Cell
}

var _ workbook.Source = (*Source)(nil)

func New() *Source {
	return &Source{sheets: map[string][][]workbook.Cell{}}
}

// AddSheet registers a sheet; insertion order is workbook order.
func (s *Source) AddSheet(name string, rows [][]workbook.Cell) *Source {
	if _, exists := s.sheets[name]; !exists {
		s.order = append(s.order, name)
	}
	s.sheets[name] = rows
	return s
}

func (s *Source) SheetNames(_ context.Context) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

func (s *Source) Rows(_ context.Context, sheet string) ([][]workbook.Cell, error) {
	rows, ok := s.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet not found: %s", sheet)
	}
	return rows, nil
}
