// Package core holds the domain model of the warehouse and the pure
// transformation rules applied to accounting rows before they are loaded.
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// descriptionReplacer remaps the field separators used by the export
// formats plus two specific glyphs that appear in legacy workbooks. This
// is a fixed substitution table, not Unicode normalization.
var descriptionReplacer = strings.NewReplacer(
	";", "|",
	",", "|",
	"∴", " .'. ",
	"ś", "s",
)

var weekdayLabels = map[time.Weekday]string{
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

var monthLabels = [...]string{
	"01-Janeiro", "02-Fevereiro", "03-Março", "04-Abril",
	"05-Maio", "06-Junho", "07-Julho", "08-Agosto",
	"09-Setembro", "10-Outubro", "11-Novembro", "12-Dezembro",
}

// InvalidMonthLabel is the sentinel for out-of-range month numbers.
const InvalidMonthLabel = "00-Inválido"

// Enrich turns a raw accounting row into its canonical form. The second
// return value is false when the row must be dropped: no date, or a
// category that is blank after trimming. Enrich never fails otherwise.
func Enrich(raw RawTransaction) (EnrichedTransaction, bool) {
	if raw.Date.IsZero() {
		return EnrichedTransaction{}, false
	}
	category := strings.TrimSpace(raw.Category)
	if category == "" {
		return EnrichedTransaction{}, false
	}

	year, month, _ := raw.Date.Date()
	return EnrichedTransaction{
		Date:        raw.Date,
		DayOfWeek:   weekdayLabels[raw.Date.Weekday()],
		Category:    category,
		Description: CleanDescription(raw.Description),
		Credit:      RoundAmount(raw.Credit),
		Debit:       RoundAmount(raw.Debit),
		Month:       fmt.Sprintf("%02d", int(month)),
		Year:        fmt.Sprintf("%d", year),
		MonthLabel:  MonthLabel(int(month)),
		YearMonth:   fmt.Sprintf("%d/%02d", year, int(month)),
		Origin:      raw.Origin,
	}, true
}

// EnrichAll filters and enriches a batch, returning the result sorted by
// date descending. The ordering is a guaranteed post-condition relied on
// by insert order downstream.
func EnrichAll(raws []RawTransaction) []EnrichedTransaction {
	out := make([]EnrichedTransaction, 0, len(raws))
	for _, raw := range raws {
		if enriched, ok := Enrich(raw); ok {
			out = append(out, enriched)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// CleanDescription trims the text and applies the fixed glyph
// substitution table.
func CleanDescription(s string) string {
	return descriptionReplacer.Replace(strings.TrimSpace(s))
}

// RoundAmount rounds to two decimals, half away from zero.
func RoundAmount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// MonthLabel returns the fixed "NN-Month" label for a 1-based month
// number, or the invalid sentinel when out of range.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return InvalidMonthLabel
	}
	return monthLabels[month-1]
}

// WeekdayLabel returns the weekday label used in the canonical record.
func WeekdayLabel(d time.Time) string {
	return weekdayLabels[d.Weekday()]
}
