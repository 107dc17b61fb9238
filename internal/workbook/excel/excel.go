// Package excel reads xlsx workbooks through excelize and exposes them as
// a workbook.Source of typed cells.
package excel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pdw/internal/workbook"
)

type Source struct {
	file *excelize.File
	path string
}

var _ workbook.Source = (*Source)(nil)

// Open opens an xlsx workbook from disk.
func Open(path string) (*Source, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Source{file: file, path: path}, nil
}

func (s *Source) Close() error {
	return s.file.Close()
}

func (s *Source) SheetNames(_ context.Context) ([]string, error) {
	return s.file.GetSheetList(), nil
}

func (s *Source) Rows(_ context.Context, sheet string) ([][]workbook.Cell, error) {
	raw, err := s.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, s.path, err)
	}
	rows := make([][]workbook.Cell, len(raw))
	for i, rawRow := range raw {
		row := make([]workbook.Cell, len(rawRow))
		for j, cell := range rawRow {
			row[j] = classify(cell)
		}
		rows[i] = row
	}
	return rows, nil
}

var errorCodes = map[string]bool{
	"#DIV/0!": true, "#N/A": true, "#NAME?": true, "#NULL!": true,
	"#NUM!": true, "#REF!": true, "#VALUE!": true,
}

// classify maps a raw cell value onto the closed cell-type set. Raw mode
// leaves date cells as day-serial numbers; the extractor decodes those.
func classify(raw string) workbook.Cell {
	if raw == "" {
		return workbook.Empty()
	}
	if errorCodes[raw] {
		return workbook.ErrorCell(raw)
	}
	switch raw {
	case "TRUE":
		return workbook.Boolean(true)
	case "FALSE":
		return workbook.Boolean(false)
	}
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return workbook.Integer(i)
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return workbook.Number(f)
	}
	return workbook.String(raw)
}
