package core

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestEnrichDropsRowsWithoutEssentials(t *testing.T) {
	cases := []struct {
		name string
		raw  RawTransaction
		keep bool
	}{
		{"complete", RawTransaction{Date: date(2024, 1, 15), Category: "ALM"}, true},
		{"no date", RawTransaction{Category: "ALM"}, false},
		{"no category", RawTransaction{Date: date(2024, 1, 15)}, false},
		{"blank category", RawTransaction{Date: date(2024, 1, 15), Category: "   "}, false},
		{"category needs trim", RawTransaction{Date: date(2024, 1, 15), Category: " ALM "}, true},
	}
	for _, tc := range cases {
		_, ok := Enrich(tc.raw)
		if ok != tc.keep {
			t.Errorf("%s: keep=%v, want %v", tc.name, ok, tc.keep)
		}
	}
}

func TestEnrichRoundsAmounts(t *testing.T) {
	enriched, ok := Enrich(RawTransaction{
		Date:     date(2024, 1, 15),
		Category: "ALM",
		Credit:   100.555,
		Debit:    50.999,
	})
	if !ok {
		t.Fatal("expected row to be kept")
	}
	if enriched.Credit != 100.56 {
		t.Errorf("credit = %v, want 100.56", enriched.Credit)
	}
	if enriched.Debit != 51.0 {
		t.Errorf("debit = %v, want 51.0", enriched.Debit)
	}
}

func TestEnrichCleansDescription(t *testing.T) {
	enriched, ok := Enrich(RawTransaction{
		Date:        date(2024, 1, 15),
		Category:    "ALM",
		Description: "Test; transaction, with∴special chars",
	})
	if !ok {
		t.Fatal("expected row to be kept")
	}
	want := "Test| transaction| with .'. special chars"
	if enriched.Description != want {
		t.Errorf("description = %q, want %q", enriched.Description, want)
	}
}

func TestEnrichTemporalFields(t *testing.T) {
	enriched, _ := Enrich(RawTransaction{Date: date(2024, 1, 15), Category: "ALM", Origin: "CC"})
	if enriched.DayOfWeek != "Segunda-feira" {
		t.Errorf("weekday = %q, want Segunda-feira", enriched.DayOfWeek)
	}
	if enriched.Month != "01" || enriched.Year != "2024" {
		t.Errorf("month/year = %q/%q", enriched.Month, enriched.Year)
	}
	if enriched.MonthLabel != "01-Janeiro" {
		t.Errorf("month label = %q", enriched.MonthLabel)
	}
	if enriched.YearMonth != "2024/01" {
		t.Errorf("year month = %q", enriched.YearMonth)
	}
	if enriched.Origin != "CC" {
		t.Errorf("origin = %q", enriched.Origin)
	}
}

func TestWeekdayLabel(t *testing.T) {
	if got := WeekdayLabel(date(2024, 1, 20)); got != "Sábado" {
		t.Errorf("2024-01-20 = %q, want Sábado", got)
	}
	if got := WeekdayLabel(date(2024, 1, 21)); got != "Domingo" {
		t.Errorf("2024-01-21 = %q, want Domingo", got)
	}
}

func TestMonthLabel(t *testing.T) {
	cases := []struct {
		month int
		want  string
	}{
		{1, "01-Janeiro"},
		{12, "12-Dezembro"},
		{13, "00-Inválido"},
		{0, "00-Inválido"},
	}
	for _, tc := range cases {
		if got := MonthLabel(tc.month); got != tc.want {
			t.Errorf("MonthLabel(%d) = %q, want %q", tc.month, got, tc.want)
		}
	}
}

func TestEnrichAllSortsByDateDescending(t *testing.T) {
	raws := []RawTransaction{
		{Date: date(2024, 1, 10), Category: "A"},
		{Date: date(2024, 3, 5), Category: "B"},
		{Category: "dropped"},
		{Date: date(2024, 2, 1), Category: "C"},
	}
	out := EnrichAll(raws)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Date.After(out[i-1].Date) {
			t.Fatalf("not sorted descending at %d: %v before %v", i, out[i-1].Date, out[i].Date)
		}
	}
	if out[0].Category != "B" || out[2].Category != "A" {
		t.Errorf("unexpected order: %v", out)
	}
}

func TestValueRendering(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NullValue(), ""},
		{IntValue(42), "42"},
		{FloatValue(12.5), "12.5"},
		{TextValue("abc"), "abc"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestValueOf(t *testing.T) {
	if v := ValueOf(nil); v.Kind != ValueNull {
		t.Errorf("nil -> %v", v.Kind)
	}
	if v := ValueOf(int64(7)); v.Kind != ValueInt || v.Int != 7 {
		t.Errorf("int64 -> %+v", v)
	}
	if v := ValueOf(1.25); v.Kind != ValueFloat || v.Float != 1.25 {
		t.Errorf("float64 -> %+v", v)
	}
	if v := ValueOf([]byte("x")); v.Kind != ValueText || v.Text != "x" {
		t.Errorf("bytes -> %+v", v)
	}
}
