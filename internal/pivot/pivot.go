// Package pivot derives cross-tab and summary tables from the loaded
// entries. Pivot columns are discovered at runtime from the declared
// category domain, never configured.
package pivot

import (
	"context"
	"fmt"
	"strings"

	"pdw/internal/core"
	"pdw/internal/storage"
)

// Executor is the slice of the store the builders need.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string) (core.ResultSet, error)
}

var _ Executor = (*storage.Store)(nil)

// Builder synthesizes the monthly and annual pivot tables.
type Builder struct {
	db           Executor
	entriesTable string
	typesTable   string
}

func NewBuilder(db Executor, entriesTable, typesTable string) *Builder {
	return &Builder{db: db, entriesTable: entriesTable, typesTable: typesTable}
}

// CategoryDomain queries the distinct category labels declared in the
// types reference table. Declared-but-unused categories stay in the
// domain; categories appearing only in transactions never enter it.
func (b *Builder) CategoryDomain(ctx context.Context) ([]string, error) {
	rs, err := b.db.Query(ctx, fmt.Sprintf("SELECT Descrição FROM [%s]",
		storage.SanitizeIdentifier(b.typesTable)))
	if err != nil {
		return nil, fmt.Errorf("category domain from %s: %w", b.typesTable, err)
	}
	seen := map[string]bool{}
	var domain []string
	for _, row := range rs.Rows {
		label := row[0].Text
		if row[0].Kind != core.ValueText || label == "" || seen[label] {
			continue
		}
		seen[label] = true
		domain = append(domain, label)
	}
	return domain, nil
}

// Build rebuilds both pivot grains over the same category domain:
// monthly keyed on AnoMes and annual keyed on Ano.
func (b *Builder) Build(ctx context.Context, monthlyTable, annualTable string) error {
	domain, err := b.CategoryDomain(ctx)
	if err != nil {
		return err
	}
	if err := b.buildPivot(ctx, monthlyTable, "AnoMes", domain); err != nil {
		return err
	}
	return b.buildPivot(ctx, annualTable, "Ano", domain)
}

// buildPivot drops any previous pivot of the same name, creates the
// table with one REAL column per category plus the period key, and
// populates it with per-period debit sums, period ascending. Category
// labels come from user-controlled spreadsheet data, so they are
// sanitized before being interpolated as identifiers.
func (b *Builder) buildPivot(ctx context.Context, table, periodKey string, domain []string) error {
	name := storage.SanitizeIdentifier(table)
	entries := storage.SanitizeIdentifier(b.entriesTable)

	if err := b.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS [%s]", name)); err != nil {
		return fmt.Errorf("pivot %s: %w", table, err)
	}

	columns := []string{periodKey + " TEXT"}
	selects := []string{periodKey}
	for _, category := range domain {
		ident := storage.SanitizeIdentifier(category)
		if ident == "" {
			continue
		}
		columns = append(columns, fmt.Sprintf("[%s] REAL", ident))
		selects = append(selects, fmt.Sprintf(
			"COALESCE(SUM(CASE WHEN TIPO = '%s' THEN Debito ELSE 0 END), 0) AS [%s]",
			escapeLiteral(category), ident))
	}

	createStmt := fmt.Sprintf("CREATE TABLE [%s] (%s)", name, strings.Join(columns, ", "))
	if err := b.db.Exec(ctx, createStmt); err != nil {
		return fmt.Errorf("pivot %s: %w", table, err)
	}

	insertStmt := fmt.Sprintf("INSERT INTO [%s] SELECT %s FROM [%s] GROUP BY %s ORDER BY %s",
		name, strings.Join(selects, ", "), entries, periodKey, periodKey)
	if err := b.db.Exec(ctx, insertStmt); err != nil {
		return fmt.Errorf("pivot %s: %w", table, err)
	}
	return nil
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
