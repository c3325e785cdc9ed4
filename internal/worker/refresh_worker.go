// Package worker consumes dataset refresh notifications and rebuilds the
// derived analytics state.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/badyy8/Ardiin-erh/internal/amqp"
	"github.com/badyy8/Ardiin-erh/internal/export"
	"github.com/badyy8/Ardiin-erh/internal/services"
)

// RefreshWorker reacts to a replaced dataset: it drops memoized bundles,
// rebuilds them warm and optionally pushes the monthly report out.
type RefreshWorker struct {
	analytics *services.AnalyticsService
	exporter  export.ReportWriter
}

func NewRefreshWorker(analytics *services.AnalyticsService, exporter export.ReportWriter) *RefreshWorker {
	return &RefreshWorker{
		analytics: analytics,
		exporter:  exporter,
	}
}

// HandleRefreshMessage processes a single dataset refresh message from AMQP.
// A bundle rebuild failure is returned so the delivery is requeued; an
// export failure is only logged, the refreshed state is already live.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.DatasetRefreshMessage) error {
	slog.InfoContext(ctx, "Processing dataset refresh",
		"rows", msg.Rows,
		"years", msg.Years)

	w.analytics.InvalidateCache()

	for _, year := range msg.Years {
		if _, err := w.analytics.YearBundle(ctx, year); err != nil {
			return fmt.Errorf("rebuild bundle for %d: %w", year, err)
		}
	}

	if err := w.exportLatest(ctx, msg.Years); err != nil {
		slog.ErrorContext(ctx, "Report export failed", "error", err)
	}

	return nil
}

func (w *RefreshWorker) exportLatest(ctx context.Context, years []int) error {
	if w.exporter == nil || len(years) == 0 {
		return nil
	}

	year := years[len(years)-1]
	bundle, err := w.analytics.YearBundle(ctx, year)
	if err != nil {
		return fmt.Errorf("load bundle for export: %w", err)
	}

	ref, err := w.exporter.WriteMonthlyReport(ctx, year, bundle.RewardStats)
	if err != nil {
		return fmt.Errorf("write monthly report: %w", err)
	}

	slog.InfoContext(ctx, "Monthly report exported", "year", year, "sheets_ref", ref)
	return nil
}
