package pivot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pdw/internal/core"
	"pdw/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "pdw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEntries(t *testing.T, store *storage.Store, rows []core.EnrichedTransaction) {
	t.Helper()
	ctx := context.Background()
	loader := storage.NewLoader(store, storage.LoaderConfig{
		EntriesTable:      "LANCAMENTOS_GERAIS",
		TypesTable:        "TiposLancamentos",
		GuidingTable:      "GUIDING",
		InstallmentsTable: "PARCELAMENTOS",
	})
	require.NoError(t, loader.ResetEntries(ctx))
	_, err := loader.InsertTransactions(ctx, rows)
	require.NoError(t, err)
}

func declareCategories(t *testing.T, store *storage.Store, labels ...string) {
	t.Helper()
	ctx := context.Background()
	for i, label := range labels {
		require.NoError(t, store.Exec(ctx,
			"INSERT INTO TiposLancamentos (Código, Descrição) VALUES (?, ?)", i+1, label))
	}
}

func entry(year, month, day int, category string, debit float64) core.EnrichedTransaction {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return core.EnrichedTransaction{
		Date:       date,
		DayOfWeek:  core.WeekdayLabel(date),
		Category:   category,
		Debit:      debit,
		Month:      date.Format("01"),
		Year:       date.Format("2006"),
		MonthLabel: core.MonthLabel(int(date.Month())),
		YearMonth:  date.Format("2006/01"),
		Origin:     "CC",
	}
}

func TestPivotColumnsFollowDeclaredDomain(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	declareCategories(t, store, "Alimentação", "Transporte", "Saúde")
	seedEntries(t, store, []core.EnrichedTransaction{
		entry(2024, 1, 10, "Alimentação", 10),
		entry(2024, 1, 20, "Transporte", 20),
		entry(2024, 1, 25, "Assinaturas", 5), // not declared, must not become a column
	})

	builder := NewBuilder(store, "LANCAMENTOS_GERAIS", "TiposLancamentos")
	require.NoError(t, builder.Build(ctx, "HistoricoGeral", "HistoricoAnual"))

	rs, err := store.Query(ctx, "SELECT * FROM HistoricoGeral")
	require.NoError(t, err)
	require.Equal(t, []string{"AnoMes", "Alimentação", "Transporte", "Saúde"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	require.Equal(t, "2024/01", rs.Rows[0][0].Text)
	require.Equal(t, 10.0, rs.Rows[0][1].Float)
	require.Equal(t, 20.0, rs.Rows[0][2].Float)
	// Declared but never used still yields a zero column.
	require.Equal(t, 0.0, rs.Rows[0][3].Float)
}

func TestAnnualPivotGroupsByYear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	declareCategories(t, store, "Alimentação")
	seedEntries(t, store, []core.EnrichedTransaction{
		entry(2023, 12, 1, "Alimentação", 7),
		entry(2024, 1, 1, "Alimentação", 3),
		entry(2024, 2, 1, "Alimentação", 4),
	})

	builder := NewBuilder(store, "LANCAMENTOS_GERAIS", "TiposLancamentos")
	require.NoError(t, builder.Build(ctx, "HistoricoGeral", "HistoricoAnual"))

	rs, err := store.Query(ctx, "SELECT Ano, Alimentação FROM HistoricoAnual ORDER BY Ano")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	require.Equal(t, "2023", rs.Rows[0][0].Text)
	require.Equal(t, 7.0, rs.Rows[0][1].Float)
	require.Equal(t, "2024", rs.Rows[1][0].Text)
	require.Equal(t, 7.0, rs.Rows[1][1].Float)
}

func TestPivotRebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	declareCategories(t, store, "Alimentação")
	seedEntries(t, store, []core.EnrichedTransaction{entry(2024, 1, 10, "Alimentação", 10)})

	builder := NewBuilder(store, "LANCAMENTOS_GERAIS", "TiposLancamentos")
	require.NoError(t, builder.Build(ctx, "HistoricoGeral", "HistoricoAnual"))
	require.NoError(t, builder.Build(ctx, "HistoricoGeral", "HistoricoAnual"))

	rs, err := store.Query(ctx, "SELECT COUNT(*) FROM HistoricoGeral")
	require.NoError(t, err)
	require.Equal(t, int64(1), rs.Rows[0][0].Int)
}

func summaryConfig() SummaryConfig {
	return SummaryConfig{
		EntriesTable:       "LANCAMENTOS_GERAIS",
		InstallmentsTable:  "PARCELAMENTOS",
		MonthlySummary:     "Resumido_In_Out",
		DailyProgress:      "contagem_diaria",
		InstallmentSummary: "Resumo_Parcelamentos",
	}
}

func TestMonthlySummaryGrains(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rows := []core.EnrichedTransaction{
		entry(2024, 1, 10, "Alimentação", 10),
		entry(2024, 2, 10, "Alimentação", 20),
	}
	rows[0].Credit = 100
	seedEntries(t, store, rows)

	require.NoError(t, NewSummaryBuilder(store, summaryConfig()).Build(ctx))

	rs, err := store.Query(ctx,
		"SELECT AnoMes, Credito, Debito, Posição FROM Resumido_In_Out ORDER BY AnoMes")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	require.Equal(t, "2024/01", rs.Rows[0][0].Text)
	require.Equal(t, 100.0, rs.Rows[0][1].Float)
	require.Equal(t, 10.0, rs.Rows[0][2].Float)
	require.Equal(t, 90.0, rs.Rows[0][3].Float)

	rs, err = store.Query(ctx, "SELECT Ano, Posição FROM Resumido_In_Out_ANUAL")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	require.Equal(t, 70.0, rs.Rows[0][1].Float)

	rs, err = store.Query(ctx, "SELECT Origem, Posição FROM Resumido_In_Out_FULL")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	require.Equal(t, "CC", rs.Rows[0][0].Text)
}

func TestMonthlySummaryRowOrderIsOriginMajor(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	rows := []core.EnrichedTransaction{
		entry(2024, 2, 1, "Alimentação", 5),
		entry(2024, 1, 1, "Alimentação", 10),
		entry(2024, 1, 2, "Alimentação", 20),
	}
	rows[2].Origin = "Cartao"
	seedEntries(t, store, rows)

	require.NoError(t, NewSummaryBuilder(store, summaryConfig()).Build(ctx))

	rs, err := store.Query(ctx,
		"SELECT Origem, AnoMes FROM Resumido_In_Out ORDER BY rowid")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 3)
	require.Equal(t, "CC", rs.Rows[0][0].Text)
	require.Equal(t, "2024/01", rs.Rows[0][1].Text)
	require.Equal(t, "CC", rs.Rows[1][0].Text)
	require.Equal(t, "2024/02", rs.Rows[1][1].Text)
	require.Equal(t, "Cartao", rs.Rows[2][0].Text)
}

func TestDailyProgressAccumulates(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedEntries(t, store, []core.EnrichedTransaction{
		entry(2024, 1, 10, "Alimentação", 1),
		entry(2024, 1, 10, "Alimentação", 2),
		entry(2024, 1, 11, "Alimentação", 3),
	})

	require.NoError(t, NewSummaryBuilder(store, summaryConfig()).Build(ctx))

	rs, err := store.Query(ctx,
		"SELECT Data, Contagem, [Contagem Acumulada] FROM contagem_diaria")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	// Newest date first, running total still in calendar order.
	require.Equal(t, "2024-01-11", rs.Rows[0][0].Text)
	require.Equal(t, int64(1), rs.Rows[0][1].Int)
	require.Equal(t, int64(3), rs.Rows[0][2].Int)
	require.Equal(t, int64(2), rs.Rows[1][2].Int)
}

func TestInstallmentSummary(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seedEntries(t, store, nil)
	for _, row := range [][]any{
		{"2024-01-05", "NU 01/03", "tv", 50.0},
		{"2024-01-20", "NU 02/03", "tv", 50.0},
		{"2024-02-05", "NU 03/03", "tv", 50.0},
	} {
		require.NoError(t, store.Exec(ctx,
			"INSERT INTO PARCELAMENTOS (Data, [Tipo Lançamento], Descricao, Debito) VALUES (?, ?, ?, ?)",
			row...))
	}

	require.NoError(t, NewSummaryBuilder(store, summaryConfig()).Build(ctx))

	rs, err := store.Query(ctx,
		"SELECT Ano_Mes, Quantidade, Valor FROM Resumo_Parcelamentos")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	require.Equal(t, "2024-02", rs.Rows[0][0].Text)
	require.Equal(t, "2024-01", rs.Rows[1][0].Text)
	require.Equal(t, int64(2), rs.Rows[1][1].Int)
	require.Equal(t, 100.0, rs.Rows[1][2].Float)
}
