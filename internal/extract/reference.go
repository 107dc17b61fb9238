package extract

import (
	"context"
	"fmt"

	"pdw/internal/core"
	"pdw/internal/workbook"
)

// ReferenceExtractor returns reference sheets verbatim as text, header
// row included; the loader infers the table schema from the result.
type ReferenceExtractor struct {
	src workbook.Source
}

func NewReferenceExtractor(src workbook.Source) *ReferenceExtractor {
	return &ReferenceExtractor{src: src}
}

// Extract reads every row of a reference sheet as text. Table width is
// the first row's width; shorter rows are padded with empty strings and
// longer rows truncated, keeping the row matrix rectangular.
func (e *ReferenceExtractor) Extract(ctx context.Context, sheet string) (core.ReferenceTable, error) {
	rows, err := e.src.Rows(ctx, sheet)
	if err != nil {
		return core.ReferenceTable{}, fmt.Errorf("reference sheet %s: %w", sheet, err)
	}
	table := core.ReferenceTable{Name: sheet}
	if len(rows) == 0 {
		return table, nil
	}

	width := len(rows[0])
	table.Columns = make([]string, width)
	for i := range table.Columns {
		table.Columns[i] = fmt.Sprintf("col%d", i+1)
	}

	table.Rows = make([][]string, len(rows))
	for i, row := range rows {
		text := make([]string, width)
		for j := 0; j < width && j < len(row); j++ {
			text[j] = row[j].Text()
		}
		table.Rows[i] = text
	}
	return table, nil
}
