package pivot

import (
	"context"
	"fmt"

	"pdw/internal/storage"
)

// SummaryConfig names the derived tables the SummaryBuilder rebuilds
// and the source tables it reads.
type SummaryConfig struct {
	EntriesTable       string
	InstallmentsTable  string
	MonthlySummary     string
	DailyProgress      string
	InstallmentSummary string
}

// SummaryBuilder rebuilds the aggregate tables derived from the entries
// and installments tables. Derived tables are dropped and recreated on
// every run so a rerun never compounds previous results.
type SummaryBuilder struct {
	db  Executor
	cfg SummaryConfig
}

func NewSummaryBuilder(db Executor, cfg SummaryConfig) *SummaryBuilder {
	return &SummaryBuilder{db: db, cfg: cfg}
}

func (s *SummaryBuilder) Build(ctx context.Context) error {
	if err := s.buildMonthlySummaries(ctx); err != nil {
		return err
	}
	if err := s.buildDailyProgress(ctx); err != nil {
		return err
	}
	return s.buildInstallmentSummary(ctx)
}

// buildMonthlySummaries produces three grains of the credit/debit
// position summary: per month and origin, per year and origin, and per
// origin over the whole history. Persisted row order is origin-major,
// periods ascending within each origin.
func (s *SummaryBuilder) buildMonthlySummaries(ctx context.Context) error {
	entries := storage.SanitizeIdentifier(s.cfg.EntriesTable)
	base := storage.SanitizeIdentifier(s.cfg.MonthlySummary)

	grains := []struct {
		table string
		keys  string
		order string
	}{
		{base, "AnoMes, Origem", "Origem, AnoMes"},
		{base + "_ANUAL", "Ano, Origem", "Origem, Ano"},
		{base + "_FULL", "Origem", "Origem"},
	}
	for _, g := range grains {
		if err := s.rebuild(ctx, g.table, fmt.Sprintf(
			`SELECT %[1]s,
			        ROUND(SUM(Credito), 2) AS Credito,
			        ROUND(SUM(Debito), 2) AS Debito,
			        ROUND(SUM(Credito) - SUM(Debito), 2) AS Posição
			 FROM [%[2]s]
			 GROUP BY %[1]s
			 ORDER BY %[3]s`, g.keys, entries, g.order)); err != nil {
			return err
		}
	}
	return nil
}

// buildDailyProgress counts entries per calendar date with a running
// total, newest date first.
func (s *SummaryBuilder) buildDailyProgress(ctx context.Context) error {
	entries := storage.SanitizeIdentifier(s.cfg.EntriesTable)
	return s.rebuild(ctx, s.cfg.DailyProgress, fmt.Sprintf(
		`SELECT Data,
		        COUNT(*) AS Contagem,
		        SUM(COUNT(*)) OVER (ORDER BY Data) AS [Contagem Acumulada]
		 FROM [%s]
		 GROUP BY Data
		 ORDER BY Data DESC`, entries))
}

// buildInstallmentSummary aggregates the installments table per month.
// The difference columns are placeholders the report template fills in
// when comparing against the entries table.
func (s *SummaryBuilder) buildInstallmentSummary(ctx context.Context) error {
	installments := storage.SanitizeIdentifier(s.cfg.InstallmentsTable)
	return s.rebuild(ctx, s.cfg.InstallmentSummary, fmt.Sprintf(
		`SELECT strftime('%%Y-%%m', Data) AS Ano_Mes,
		        COUNT(*) AS Quantidade,
		        ROUND(SUM(Debito), 2) AS Valor,
		        0 AS Diff_QTD,
		        0.0 AS Diff_Vlr
		 FROM [%s]
		 GROUP BY strftime('%%Y-%%m', Data)
		 ORDER BY Ano_Mes DESC`, installments))
}

func (s *SummaryBuilder) rebuild(ctx context.Context, table, selectStmt string) error {
	name := storage.SanitizeIdentifier(table)
	if err := s.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS [%s]", name)); err != nil {
		return fmt.Errorf("summary %s: %w", table, err)
	}
	if err := s.db.Exec(ctx, fmt.Sprintf("CREATE TABLE [%s] AS %s", name, selectStmt)); err != nil {
		return fmt.Errorf("summary %s: %w", table, err)
	}
	return nil
}
