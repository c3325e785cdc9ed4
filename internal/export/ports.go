// Package export defines the outbound report ports and their adapters.
package export

import (
	"context"

	"github.com/badyy8/Ardiin-erh/internal/analytics"
)

// ReportWriter publishes the monthly program report to an external surface.
type ReportWriter interface {
	WriteMonthlyReport(ctx context.Context, year int, stats []analytics.MonthlyRewardStat) (ref string, err error)
}
