// Package extract reads the guiding sheet and pulls raw rows out of
// accounting and reference sheets.
package extract

import (
	"context"
	"fmt"
	"strings"

	"pdw/internal/core"
	"pdw/internal/workbook"
)

// Classifier turns the guiding sheet into the run's ordered sheet
// descriptors.
type Classifier struct {
	src workbook.Source
}

func NewClassifier(src workbook.Source) *Classifier {
	return &Classifier{src: src}
}

// Descriptors reads the guiding sheet and emits one descriptor per row
// with a non-empty sheet name, in row order. Rows without a name are
// skipped silently. The accounting and loadable flags are set iff the
// matching cell, trimmed and upper-cased, equals "X".
func (c *Classifier) Descriptors(ctx context.Context, guidingSheet string) ([]core.SheetDescriptor, error) {
	rows, err := c.src.Rows(ctx, guidingSheet)
	if err != nil {
		return nil, fmt.Errorf("guiding sheet %s: %w", guidingSheet, err)
	}

	var descriptors []core.SheetDescriptor
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		name := row[0].Text()
		if name == "" {
			continue
		}
		kind := core.SheetReference
		if flagSet(row[1]) {
			kind = core.SheetAccounting
		}
		descriptors = append(descriptors, core.SheetDescriptor{
			Name:     name,
			Kind:     kind,
			Loadable: flagSet(row[2]),
		})
	}
	return descriptors, nil
}

func flagSet(c workbook.Cell) bool {
	return strings.ToUpper(strings.TrimSpace(c.Text())) == "X"
}
