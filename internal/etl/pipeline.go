// Package etl orchestrates the run: extraction and load, pivot and
// summary synthesis, report rendering. Phases are strictly sequential
// and the first unrecovered error aborts the run.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pdw/internal/config"
	"pdw/internal/core"
	"pdw/internal/extract"
	"pdw/internal/log"
	"pdw/internal/notify"
	"pdw/internal/pivot"
	"pdw/internal/report"
	"pdw/internal/storage"
	"pdw/internal/workbook"
)

// Pipeline wires one run of the warehouse over a workbook source and a
// store.
type Pipeline struct {
	cfg      *config.Config
	src      workbook.Source
	store    *storage.Store
	notifier *notify.Notifier
	log      *log.Logger
	runID    string
}

func New(cfg *config.Config, src workbook.Source, store *storage.Store, notifier *notify.Notifier, logger *log.Logger) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		cfg:      cfg,
		src:      src,
		store:    store,
		notifier: notifier,
		log:      logger.WithComponent("etl").With("run_id", runID),
		runID:    runID,
	}
}

// RunID identifies this pipeline instance in logs and notifications.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the enabled phases in order: load, pivot, summaries,
// reports. Completed phases persist even when a later phase fails.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()
	p.notifier.Publish(ctx, notify.NewRunEvent(notify.EventRunStarted, p.runID, ""))

	if p.cfg.RunLoader {
		p.log.Phase("loader")
		if err := p.runLoader(ctx); err != nil {
			return fmt.Errorf("loader phase: %w", err)
		}
	}

	if p.cfg.CreatePivot {
		p.log.Phase("pivot")
		if err := p.runPivot(ctx); err != nil {
			return fmt.Errorf("pivot phase: %w", err)
		}
	}

	if p.cfg.RunLoader {
		p.log.Phase("summaries")
		if err := p.runSummaries(ctx); err != nil {
			return fmt.Errorf("summary phase: %w", err)
		}
	}

	if p.cfg.RunReports {
		p.log.Phase("reports")
		if err := p.runReports(ctx); err != nil {
			return fmt.Errorf("report phase: %w", err)
		}
	}

	elapsed := time.Since(started)
	p.log.Info("run completed", "elapsed", elapsed.String())
	p.notifier.Publish(ctx, notify.NewRunEvent(notify.EventRunCompleted, p.runID, elapsed.String()))
	return nil
}

// runLoader walks the guiding sheet's descriptors in row order,
// extracts each loadable sheet, enriches the accounting rows and loads
// everything into the store.
func (p *Pipeline) runLoader(ctx context.Context) error {
	classifier := extract.NewClassifier(p.src)
	descriptors, err := classifier.Descriptors(ctx, p.cfg.GuidingSheet)
	if err != nil {
		return err
	}

	loader := storage.NewLoader(p.store, storage.LoaderConfig{
		EntriesTable:      p.cfg.EntriesTable,
		TypesTable:        p.cfg.TypesTable,
		GuidingTable:      p.cfg.GuidingSheet,
		InstallmentsTable: p.cfg.InstallmentsTable,
		DiscardTable:      p.cfg.DiscardTable,
		SaveDiscardedRows: p.cfg.SaveDiscardedRows,
	})
	if err := loader.ResetEntries(ctx); err != nil {
		return err
	}

	transactions := extract.NewTransactionExtractor(p.src)
	references := extract.NewReferenceExtractor(p.src)

	var raws []core.RawTransaction
	for i, d := range descriptors {
		p.log.Step(i+1, d.Name)
		if !d.Loadable {
			continue
		}
		if d.IsAccounting() {
			rows, err := transactions.Extract(ctx, d.Name)
			if err != nil {
				return err
			}
			p.log.Result("rows extracted", len(rows))
			raws = append(raws, rows...)
			continue
		}
		table, err := references.Extract(ctx, d.Name)
		if err != nil {
			return err
		}
		count, err := loader.InsertReference(ctx, table)
		if err != nil {
			return err
		}
		p.log.Result("reference rows loaded", count)
	}

	enriched := core.EnrichAll(raws)
	p.log.Result("transactions enriched", len(enriched))
	p.log.Result("transactions dropped", len(raws)-len(enriched))

	count, err := loader.InsertTransactions(ctx, enriched)
	if err != nil {
		return err
	}
	p.log.Result("transactions loaded", count)

	if err := loader.StoreGuide(ctx, descriptors); err != nil {
		return err
	}
	if err := loader.Cleanup(ctx); err != nil {
		return err
	}
	return loader.RebuildOriginsView(ctx)
}

func (p *Pipeline) runSummaries(ctx context.Context) error {
	return pivot.NewSummaryBuilder(p.store, pivot.SummaryConfig{
		EntriesTable:       p.cfg.EntriesTable,
		InstallmentsTable:  p.cfg.InstallmentsTable,
		MonthlySummary:     p.cfg.SummaryTable,
		DailyProgress:      p.cfg.DailyProgressTable,
		InstallmentSummary: p.cfg.InstallmentSummaryTable,
	}).Build(ctx)
}

func (p *Pipeline) runPivot(ctx context.Context) error {
	return pivot.NewBuilder(p.store, p.cfg.EntriesTable, p.cfg.TypesTable).
		Build(ctx, p.cfg.MonthlyPivotTable, p.cfg.AnnualPivotTable)
}

func (p *Pipeline) runReports(ctx context.Context) error {
	renderer := report.NewRenderer(p.store, report.Config{
		QueriesFile:        p.cfg.QueriesFile,
		ReportPath:         p.cfg.ReportPath(),
		EntriesTable:       p.cfg.EntriesTable,
		MonthlyPivot:       p.cfg.MonthlyPivotTable,
		AnnualPivot:        p.cfg.AnnualPivotTable,
		DailyProgress:      p.cfg.DailyProgressTable,
		InstallmentSummary: p.cfg.InstallmentSummaryTable,
		MonthlySummary:     p.cfg.SummaryTable,
		DynamicTable:       p.cfg.DynamicReportTable,
		CreatePivot:        p.cfg.CreatePivot,
		RunDynamicReports:  p.cfg.RunDynamicReports,
		ExportOtherFormats: p.cfg.ExportOtherFormats,
		CompressExports:    p.cfg.CompressExports,
	}, p.log)

	if err := renderer.GenerateWorkbook(ctx); err != nil {
		return err
	}
	paths, err := renderer.ExportGeneralEntries(ctx, p.cfg.EntriesExportBase())
	if err != nil {
		return err
	}
	for _, path := range paths {
		p.notifier.Publish(ctx, notify.NewRunEvent(notify.EventExportWritten, p.runID, path))
	}
	return nil
}
