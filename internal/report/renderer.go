package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pdw/internal/core"
	"pdw/internal/log"
	"pdw/internal/storage"
)

// Querier is the read side of the store the renderer needs.
type Querier interface {
	Query(ctx context.Context, query string) (core.ResultSet, error)
}

// Config carries the table names and switches the renderer resolves
// placeholders and gates query groups with.
type Config struct {
	QueriesFile        string
	ReportPath         string
	EntriesTable       string
	MonthlyPivot       string
	AnnualPivot        string
	DailyProgress      string
	InstallmentSummary string
	MonthlySummary     string
	DynamicTable       string
	CreatePivot        bool
	RunDynamicReports  bool
	ExportOtherFormats bool
	CompressExports    bool
}

// Renderer executes templated queries against the store and writes each
// result set to its sink.
type Renderer struct {
	db  Querier
	cfg Config
	log *log.Logger
}

func NewRenderer(db Querier, cfg Config, logger *log.Logger) *Renderer {
	return &Renderer{db: db, cfg: cfg, log: logger.WithComponent("report")}
}

// Variables returns the placeholder alias map. The names are part of
// the query-file contract and never change with configuration, only the
// values do.
func (r *Renderer) Variables() map[string]string {
	return map[string]string{
		"entries_table": r.cfg.EntriesTable,
		"full_hist":     r.cfg.MonthlyPivot,
		"anual_hist":    r.cfg.AnnualPivot,
		"day_prog":      r.cfg.DailyProgress,
		"splt_pmnt_res": r.cfg.InstallmentSummary,
		"mont_summ":     r.cfg.MonthlySummary,
		"dyn_rep_tab":   r.cfg.DynamicTable,
	}
}

// GenerateWorkbook renders every enabled query group into the single
// report workbook. A failing template aborts the workbook; previously
// persisted load and pivot results are untouched.
func (r *Renderer) GenerateWorkbook(ctx context.Context) error {
	templates, err := LoadTemplates(r.cfg.QueriesFile)
	if err != nil {
		return err
	}
	vars := r.Variables()

	f := excelize.NewFile()
	defer f.Close()
	written := 0

	if r.cfg.CreatePivot {
		for _, q := range templates.PivotQueries {
			n, err := r.addSheet(ctx, f, Substitute(q.SheetName, vars), Substitute(q.SQL, vars))
			if err != nil {
				return err
			}
			written += n
		}
	}
	for _, q := range templates.StandardQueries {
		n, err := r.addSheet(ctx, f, q.SheetName, Substitute(q.SQL, vars))
		if err != nil {
			return err
		}
		written += n
	}
	if r.cfg.RunDynamicReports {
		n, err := r.addDynamicSheets(ctx, f)
		if err != nil {
			return err
		}
		written += n
	}

	if written > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("report workbook: %w", err)
		}
	}
	if err := f.SaveAs(r.cfg.ReportPath); err != nil {
		return fmt.Errorf("save report workbook %s: %w", r.cfg.ReportPath, err)
	}
	r.log.Info("report workbook written", "path", r.cfg.ReportPath, "sheets", written)
	return nil
}

// addDynamicSheets renders one sheet per row of the dynamic guiding
// table. Each row names a destination table and the sheet label it
// renders under; malformed rows are skipped.
func (r *Renderer) addDynamicSheets(ctx context.Context, f *excelize.File) (int, error) {
	rs, err := r.db.Query(ctx, fmt.Sprintf("SELECT * FROM [%s]",
		storage.SanitizeIdentifier(r.cfg.DynamicTable)))
	if err != nil {
		return 0, fmt.Errorf("dynamic reports from %s: %w", r.cfg.DynamicTable, err)
	}
	written := 0
	for _, row := range rs.Rows {
		if len(row) < 2 || row[0].Kind != core.ValueText || row[1].Kind != core.ValueText {
			continue
		}
		destTable, sheetName := row[0].Text, row[1].Text
		query := fmt.Sprintf("SELECT * FROM [%s]", storage.SanitizeIdentifier(destTable))
		n, err := r.addSheet(ctx, f, sheetName, query)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// addSheet executes one query and writes its result set as a worksheet,
// header row first then typed cell values. Empty result sets produce no
// sheet. Returns the number of sheets written (0 or 1).
func (r *Renderer) addSheet(ctx context.Context, f *excelize.File, name, query string) (int, error) {
	rs, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("report sheet %s: %w", name, err)
	}
	if rs.Empty() {
		r.log.Debug("report sheet skipped, no rows", "sheet", name)
		return 0, nil
	}

	if _, err := f.NewSheet(name); err != nil {
		return 0, fmt.Errorf("report sheet %s: %w", name, err)
	}
	header := make([]any, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	if err := setRow(f, name, 1, header); err != nil {
		return 0, err
	}
	for i, row := range rs.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			switch v.Kind {
			case core.ValueInt:
				cells[j] = v.Int
			case core.ValueFloat:
				cells[j] = v.Float
			case core.ValueText:
				cells[j] = v.Text
			default:
				cells[j] = nil
			}
		}
		if err := setRow(f, name, i+2, cells); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("report sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("report sheet %s: %w", sheet, err)
	}
	return nil
}

// generalEntriesQuery renders the entries table for spreadsheet
// consumption: day-first dates, decimal commas, char(39) prefixes that
// keep period fields textual on import.
func generalEntriesQuery(entriesTable string) string {
	return fmt.Sprintf(`SELECT
		substr(LG.Data, 9, 2) || '-' || substr(LG.Data, 6, 2) || '-' || substr(LG.Data, 1, 4) AS Quando,
		LG.DIA_SEMANA AS [Dia da Semana],
		LG.TIPO AS Tipo,
		LG.DESCRICAO AS [Descricao/Lancamento],
		replace(LG.Credito, '.', ',') AS Credito,
		replace(LG.Debito, '.', ',') AS Debito,
		char(39) || cast(Mes AS text) AS Mes,
		char(39) || cast(Ano AS text) AS Ano,
		char(39) || MES_EXTENSO AS [Mes(Por Extenso)],
		char(39) || cast(AnoMes AS text) AS [Ano/Mes],
		LG.Origem AS Origem
	FROM [%s] LG
	ORDER BY Data DESC`, storage.SanitizeIdentifier(entriesTable))
}

// ExportGeneralEntries writes the presentation view of the entries
// table. CSV is always produced; JSON and XML only when other formats
// are enabled, gzip-compressed in place when configured. Returns the
// paths written.
func (r *Renderer) ExportGeneralEntries(ctx context.Context, basePath string) ([]string, error) {
	rs, err := r.db.Query(ctx, generalEntriesQuery(r.cfg.EntriesTable))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", r.cfg.EntriesTable, err)
	}

	var paths []string
	csvPath := basePath + ".csv"
	if err := WriteCSV(rs, csvPath); err != nil {
		return nil, err
	}
	paths = append(paths, csvPath)

	if r.cfg.ExportOtherFormats {
		sinks := []struct {
			ext   string
			write func(core.ResultSet, string) error
		}{
			{".json", WriteJSON},
			{".xml", WriteXML},
		}
		for _, sink := range sinks {
			path := basePath + sink.ext
			if err := sink.write(rs, path); err != nil {
				return paths, err
			}
			if r.cfg.CompressExports {
				if path, err = Compress(path); err != nil {
					return paths, err
				}
			}
			paths = append(paths, path)
		}
	}
	for _, p := range paths {
		r.log.Info("export written", "path", p, "rows", len(rs.Rows))
	}
	return paths, nil
}
