// Package workbook defines the port through which the pipeline reads
// spreadsheet data, together with the closed cell-type set shared by all
// backends.
package workbook

import (
	"context"
	"strconv"
	"time"
)

// Source yields per-sheet rectangular cell matrices. Implementations:
// excel (xlsx files), google (Sheets API), memory (tests).
type Source interface {
	// SheetNames returns the workbook's sheet names in workbook order.
	SheetNames(ctx context.Context) ([]string, error)
	// Rows returns every row of the named sheet.
	Rows(ctx context.Context, sheet string) ([][]Cell, error)
}

// CellKind is the closed type set of a workbook cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellInteger
	CellBool
	CellDateTime
	CellError
)

// Cell is one typed workbook cell.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Int  int64
	Bool bool
	Time time.Time
}

func Empty() Cell                { return Cell{Kind: CellEmpty} }
func String(s string) Cell       { return Cell{Kind: CellString, Str: s} }
func Number(f float64) Cell      { return Cell{Kind: CellNumber, Num: f} }
func Integer(i int64) Cell       { return Cell{Kind: CellInteger, Int: i} }
func Boolean(b bool) Cell        { return Cell{Kind: CellBool, Bool: b} }
func DateTime(t time.Time) Cell  { return Cell{Kind: CellDateTime, Time: t} }
func ErrorCell(code string) Cell { return Cell{Kind: CellError, Str: code} }

// Text renders the cell as a string. Error and empty cells render empty.
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellInteger:
		return strconv.FormatInt(c.Int, 10)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellDateTime:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Float returns the cell's numeric value. String cells are parsed; the
// second return value is false when the cell has no numeric reading.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, true
	case CellInteger:
		return float64(c.Int), true
	case CellString:
		f, err := strconv.ParseFloat(c.Str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// IsEmpty reports whether the cell renders to no text.
func (c Cell) IsEmpty() bool {
	return c.Text() == ""
}
