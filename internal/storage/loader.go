package storage

import (
	"context"
	"fmt"
	"strings"

	"pdw/internal/core"
)

// LoaderConfig names the tables whose lifecycle the Loader owns.
type LoaderConfig struct {
	EntriesTable      string
	TypesTable        string
	GuidingTable      string
	InstallmentsTable string
	DiscardTable      string
	SaveDiscardedRows bool
}

// Loader moves extracted data into the store and keeps the persisted
// schema consistent afterwards.
type Loader struct {
	store *Store
	cfg   LoaderConfig
}

func NewLoader(store *Store, cfg LoaderConfig) *Loader {
	return &Loader{store: store, cfg: cfg}
}

// ResetEntries drops and recreates the canonical entries table. The
// Loader is the sole owner of this table's lifecycle.
func (l *Loader) ResetEntries(ctx context.Context) error {
	entries := SanitizeIdentifier(l.cfg.EntriesTable)
	if err := l.store.DropTable(ctx, entries); err != nil {
		return err
	}
	return l.store.Exec(ctx, fmt.Sprintf(`CREATE TABLE [%s] (
		Data DATE,
		DIA_SEMANA TEXT,
		TIPO TEXT,
		DESCRICAO TEXT,
		Credito REAL,
		Debito REAL,
		Mes TEXT,
		Ano TEXT,
		MES_EXTENSO TEXT,
		AnoMes TEXT,
		Origem TEXT
	)`, entries))
}

// InsertTransactions batch-inserts enriched transactions in input order.
// The batch is all-or-nothing: the first failing row rolls everything
// back and surfaces the table, row index and cause.
func (l *Loader) InsertTransactions(ctx context.Context, transactions []core.EnrichedTransaction) (int, error) {
	entries := SanitizeIdentifier(l.cfg.EntriesTable)
	tx, err := l.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: begin: %w", entries, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO [%s]
		 (Data, DIA_SEMANA, TIPO, DESCRICAO, Credito, Debito, Mes, Ano, MES_EXTENSO, AnoMes, Origem)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, entries))
	if err != nil {
		return 0, fmt.Errorf("insert into %s: prepare: %w", entries, err)
	}
	defer stmt.Close()

	for i, t := range transactions {
		_, err := stmt.ExecContext(ctx,
			t.Date.Format("2006-01-02"),
			t.DayOfWeek,
			t.Category,
			t.Description,
			t.Credit,
			t.Debit,
			t.Month,
			t.Year,
			t.MonthLabel,
			t.YearMonth,
			t.Origin,
		)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: row %d: %w", entries, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert into %s: commit: %w", entries, err)
	}
	return len(transactions), nil
}

// InsertReference creates the reference table when absent (generic colN
// schema sized to the extractor's width), clears it and inserts every
// row positionally. All-or-nothing like the transaction batch.
func (l *Loader) InsertReference(ctx context.Context, table core.ReferenceTable) (int, error) {
	if len(table.Rows) == 0 || len(table.Columns) == 0 {
		return 0, nil
	}
	name := SanitizeIdentifier(table.Name)

	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = fmt.Sprintf("[%s] TEXT", SanitizeIdentifier(col))
	}
	if err := l.store.Exec(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS [%s] (%s)",
		name, strings.Join(columns, ", "))); err != nil {
		return 0, err
	}

	tx, err := l.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM [%s]", name)); err != nil {
		return 0, fmt.Errorf("clear %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO [%s] VALUES (%s)", name, placeholders))
	if err != nil {
		return 0, fmt.Errorf("insert into %s: prepare: %w", name, err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		args := make([]any, len(row))
		for j, cell := range row {
			args[j] = cell
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: row %d: %w", name, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert into %s: commit: %w", name, err)
	}
	return len(table.Rows), nil
}

// StoreGuide persists the run's sheet descriptors into the guiding
// table, replacing the previous run's rows.
func (l *Loader) StoreGuide(ctx context.Context, descriptors []core.SheetDescriptor) error {
	guiding := SanitizeIdentifier(l.cfg.GuidingTable)
	if err := l.store.Exec(ctx, fmt.Sprintf("DELETE FROM [%s]", guiding)); err != nil {
		return err
	}
	for _, d := range descriptors {
		accounting, loadable := "", ""
		if d.IsAccounting() {
			accounting = "X"
		}
		if d.Loadable {
			loadable = "X"
		}
		if err := l.store.Exec(ctx,
			fmt.Sprintf("INSERT INTO [%s] (TABLE_NAME, ACCOUNTING, LOADABLE) VALUES (?, ?, ?)", guiding),
			d.Name, accounting, loadable); err != nil {
			return fmt.Errorf("store guide row %s: %w", d.Name, err)
		}
	}
	return nil
}

// Cleanup removes rows whose key fields are null: date/category for the
// entries table, code/description for the types table, date/type for the
// installments table. When configured, entries rows are archived into
// the discard table before deletion.
func (l *Loader) Cleanup(ctx context.Context) error {
	entries := SanitizeIdentifier(l.cfg.EntriesTable)
	invalid := "(Data IS NULL OR TIPO IS NULL)"

	if l.cfg.SaveDiscardedRows {
		discard := SanitizeIdentifier(l.cfg.DiscardTable)
		if err := l.store.Exec(ctx, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS [%s] AS SELECT * FROM [%s] WHERE 0", discard, entries)); err != nil {
			return err
		}
		if err := l.store.Exec(ctx, fmt.Sprintf(
			"INSERT INTO [%s] SELECT * FROM [%s] WHERE %s", discard, entries, invalid)); err != nil {
			return err
		}
	}

	cleanups := []string{
		fmt.Sprintf("DELETE FROM [%s] WHERE %s", entries, invalid),
		fmt.Sprintf("DELETE FROM [%s] WHERE (Código IS NULL OR Descrição IS NULL)",
			SanitizeIdentifier(l.cfg.TypesTable)),
		fmt.Sprintf("DELETE FROM [%s] WHERE (Data IS NULL OR [Tipo Lançamento] IS NULL)",
			SanitizeIdentifier(l.cfg.InstallmentsTable)),
	}
	for _, query := range cleanups {
		if err := l.store.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// RebuildOriginsView recreates the view of sheets flagged both loadable
// and accounting.
func (l *Loader) RebuildOriginsView(ctx context.Context) error {
	if err := l.store.Exec(ctx, "DROP VIEW IF EXISTS Origens"); err != nil {
		return err
	}
	return l.store.Exec(ctx, fmt.Sprintf(
		`CREATE VIEW Origens AS
		 SELECT TABLE_NAME as nome FROM [%s]
		 WHERE LOADABLE = 'X' AND ACCOUNTING = 'X'`,
		SanitizeIdentifier(l.cfg.GuidingTable)))
}
