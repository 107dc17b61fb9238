package extract

import (
	"context"
	"fmt"
	"time"

	"pdw/internal/core"
	"pdw/internal/workbook"
)

// serialEpoch is two days before 1900-01-01: workbook day serials carry
// the legacy off-by-two convention, so serial N lands on epoch+N days.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order on string cells; first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
}

// TransactionExtractor pulls raw transactions out of accounting sheets.
type TransactionExtractor struct {
	src workbook.Source
}

func NewTransactionExtractor(src workbook.Source) *TransactionExtractor {
	return &TransactionExtractor{src: src}
}

// Extract reads the rows after the header of an accounting sheet. Rows
// need at least the five positional columns (date, category, description,
// credit, debit); a row is kept only when date or category is non-empty.
// That pre-filter is looser than the enricher's: it keeps dated rows with
// a blank category so cleanup can account for them.
func (e *TransactionExtractor) Extract(ctx context.Context, sheet string) ([]core.RawTransaction, error) {
	rows, err := e.src.Rows(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("accounting sheet %s: %w", sheet, err)
	}

	var transactions []core.RawTransaction
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		date := DecodeDate(row[0])
		category := row[1].Text()
		if date.IsZero() && category == "" {
			continue
		}
		transactions = append(transactions, core.RawTransaction{
			Date:        date,
			Category:    category,
			Description: row[2].Text(),
			Credit:      amount(row[3]),
			Debit:       amount(row[4]),
			Origin:      sheet,
		})
	}
	return transactions, nil
}

// DecodeDate resolves a cell to a calendar date. Datetime cells convert
// directly, numeric cells are day serials from the legacy epoch, string
// cells try the fixed layout list in order. Undecodable cells yield the
// zero time.
func DecodeDate(c workbook.Cell) time.Time {
	switch c.Kind {
	case workbook.CellDateTime:
		y, m, d := c.Time.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case workbook.CellNumber, workbook.CellInteger:
		serial, _ := c.Float()
		if serial <= 0 {
			return time.Time{}
		}
		return serialEpoch.AddDate(0, 0, int(serial))
	case workbook.CellString:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, c.Str); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func amount(c workbook.Cell) float64 {
	f, ok := c.Float()
	if !ok {
		return 0
	}
	return f
}
