package core

import (
	"time"
)

// SheetKind tells the pipeline how to extract a sheet. It is decided once
// by the classifier and carried through the run unchanged.
type SheetKind int

const (
	SheetReference SheetKind = iota
	SheetAccounting
)

func (k SheetKind) String() string {
	if k == SheetAccounting {
		return "accounting"
	}
	return "reference"
}

type (
	// SheetDescriptor is one row of the guiding sheet: a sheet name plus
	// the accounting and loadable flags. Descriptor order is processing
	// order downstream.
	SheetDescriptor struct {
		Name     string
		Kind     SheetKind
		Loadable bool
	}

	// RawTransaction is a dirty accounting row straight from the workbook.
	// A zero Date means the cell was absent or undecodable; missing
	// amounts are zero.
	RawTransaction struct {
		Date        time.Time
		Category    string
		Description string
		Credit      float64
		Debit       float64
		Origin      string
	}

	// EnrichedTransaction is the canonical record persisted to the entries
	// table. Date and Category are always present; amounts are rounded to
	// two decimals.
	EnrichedTransaction struct {
		Date        time.Time
		DayOfWeek   string
		Category    string
		Description string
		Credit      float64
		Debit       float64
		Month       string
		Year        string
		MonthLabel  string
		YearMonth   string
		Origin      string
	}

	// ReferenceTable is a reference sheet as a named column set plus a row
	// matrix. Width is fixed by the first sheet row; see extract for the
	// pad/truncate policy applied to ragged rows.
	ReferenceTable struct {
		Name    string
		Columns []string
		Rows    [][]string
	}
)

func (d SheetDescriptor) IsAccounting() bool {
	return d.Kind == SheetAccounting
}
