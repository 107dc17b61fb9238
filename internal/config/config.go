package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// Input
	WorkbookBackend string // "excel" or "sheets"
	InputWorkbook   string
	QueriesFile     string

	// Database
	DatabasePath string

	// Output
	OutputDir  string
	ReportFile string

	// Table names inside the store
	GuidingSheet            string
	TypesTable              string
	EntriesTable            string
	MonthlyPivotTable       string
	AnnualPivotTable        string
	SummaryTable            string
	DailyProgressTable      string
	InstallmentsTable       string
	InstallmentSummaryTable string
	DynamicReportTable      string
	DiscardTable            string

	// Phase switches
	RunLoader          bool
	RunReports         bool
	CreatePivot        bool
	RunDynamicReports  bool
	SaveDiscardedRows  bool
	ExportOtherFormats bool
	CompressExports    bool

	// AMQP (optional; empty URL disables notifications)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		WorkbookBackend: getEnv("PDW_WORKBOOK_BACKEND", "excel"),
		InputWorkbook:   getEnv("PDW_INPUT_FILE", "./input/PDW.xlsx"),
		QueriesFile:     getEnv("PDW_QUERIES_FILE", "./input/PDW_QUERIES.yaml"),

		DatabasePath: getEnv("PDW_DB_PATH", "./database/PDW.db"),

		OutputDir:  getEnv("PDW_OUTPUT_DIR", "./output"),
		ReportFile: getEnv("PDW_REPORT_FILE", "PDW_REPORTS.xlsx"),

		GuidingSheet:            getEnv("PDW_GUIDING_TABLE", "GUIDING"),
		TypesTable:              getEnv("PDW_TYPES_TABLE", "TiposLancamentos"),
		EntriesTable:            getEnv("PDW_ENTRIES_TABLE", "LANCAMENTOS_GERAIS"),
		MonthlyPivotTable:       getEnv("PDW_MONTHLY_PIVOT_TABLE", "HistoricoGeral"),
		AnnualPivotTable:        getEnv("PDW_ANNUAL_PIVOT_TABLE", "HistoricoAnual"),
		SummaryTable:            getEnv("PDW_SUMMARY_TABLE", "Resumido_In_Out"),
		DailyProgressTable:      getEnv("PDW_DAILY_PROGRESS_TABLE", "contagem_diaria"),
		InstallmentsTable:       getEnv("PDW_INSTALLMENTS_TABLE", "PARCELAMENTOS"),
		InstallmentSummaryTable: getEnv("PDW_INSTALLMENT_SUMMARY_TABLE", "Resumo_Parcelamentos"),
		DynamicReportTable:      getEnv("PDW_DYNAMIC_REPORT_TABLE", "General_din_reports"),
		DiscardTable:            getEnv("PDW_DISCARD_TABLE", "discarted_data"),

		RunLoader:          getEnvBool("PDW_RUN_LOADER", true),
		RunReports:         getEnvBool("PDW_RUN_REPORTS", true),
		CreatePivot:        getEnvBool("PDW_CREATE_PIVOT", true),
		RunDynamicReports:  getEnvBool("PDW_RUN_DYNAMIC_REPORTS", true),
		SaveDiscardedRows:  getEnvBool("PDW_SAVE_DISCARDED", false),
		ExportOtherFormats: getEnvBool("PDW_EXPORT_OTHER_FORMATS", false),
		CompressExports:    getEnvBool("PDW_COMPRESS_EXPORTS", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pdw"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "pdw_run_events"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	switch c.WorkbookBackend {
	case "excel":
		if _, err := os.Stat(c.InputWorkbook); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("input workbook does not exist: %s", c.InputWorkbook))
		}
	case "sheets":
		if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using the sheets backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid workbook backend '%s': must be one of [excel sheets]", c.WorkbookBackend))
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DatabasePath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	if c.RunReports {
		if _, err := os.Stat(c.QueriesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("queries file does not exist: %s", c.QueriesFile))
		}
		if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create output directory '%s': %v", c.OutputDir, err))
		}
	}

	for name, value := range map[string]string{
		"guiding table":   c.GuidingSheet,
		"types table":     c.TypesTable,
		"entries table":   c.EntriesTable,
		"monthly pivot":   c.MonthlyPivotTable,
		"annual pivot":    c.AnnualPivotTable,
		"summary table":   c.SummaryTable,
		"dynamic reports": c.DynamicReportTable,
	} {
		if strings.TrimSpace(value) == "" {
			errors = append(errors, fmt.Sprintf("%s name cannot be empty", name))
		}
	}

	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ReportPath is the full path of the report workbook.
func (c *Config) ReportPath() string {
	return filepath.Join(c.OutputDir, c.ReportFile)
}

// EntriesExportBase is the output path, without extension, of the
// general-entries exports.
func (c *Config) EntriesExportBase() string {
	return filepath.Join(c.OutputDir, c.EntriesTable+".v2")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
