package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/badyy8/Ardiin-erh/internal/analytics"
	"github.com/badyy8/Ardiin-erh/internal/cache"
	"github.com/badyy8/Ardiin-erh/internal/core"
	"github.com/badyy8/Ardiin-erh/internal/storage"
)

// Loyalty codes whose monthly volume never clears this share of the total
// are folded out of the per-code summary.
const codeSummaryMinSharePct = 0.5

// Store is the slice of the repository the analytics layer needs.
type Store interface {
	ListTransactions(ctx context.Context, year int) ([]core.Transaction, error)
	Years(ctx context.Context) ([]int, error)
	Lookup(ctx context.Context) (map[string]string, error)
	LatestRun(ctx context.Context) (*storage.RunStats, error)
}

// YearBundle is everything the dashboard shows for one calendar year,
// computed in a single pass over that year's transactions.
type YearBundle struct {
	Year          int                            `json:"year"`
	TotalRows     int                            `json:"total_rows"`
	Customers     int                            `json:"customers"`
	TotalPoints   float64                        `json:"total_points"`
	Thresholds    analytics.Thresholds           `json:"thresholds"`
	Segments      []analytics.SegmentedAggregate `json:"segments"`
	SegmentCounts map[core.Segment]int           `json:"segment_counts"`
	Movers        []analytics.CodeGrowth         `json:"movers"`
	RewardStats   []analytics.MonthlyRewardStat  `json:"reward_stats"`
	GroupVolumes  []analytics.GroupMonthlyVolume `json:"group_volumes"`
	Milestones    []analytics.ReachFrequency     `json:"milestones"`
	Buckets       []analytics.BucketCount        `json:"buckets"`
	Cutoffs       []analytics.CutoffCount        `json:"cutoffs"`
	CodeSummaries []analytics.CodeSummary        `json:"code_summaries"`
	Profile       []analytics.ProfileRow         `json:"profile"`
	CodesByGroup  map[core.Category][]string     `json:"codes_by_group"`
}

// AnalyticsService computes dashboard bundles from the prepared dataset and
// memoizes them per year. Bundles are immutable once built; a dataset
// refresh clears the cache wholesale.
type AnalyticsService struct {
	store   Store
	bundles cache.Cache[*YearBundle]
}

func NewAnalyticsService(store Store, bundles cache.Cache[*YearBundle]) *AnalyticsService {
	return &AnalyticsService{
		store:   store,
		bundles: bundles,
	}
}

// Years lists the calendar years available in the dataset, ascending.
func (s *AnalyticsService) Years(ctx context.Context) ([]int, error) {
	return s.store.Years(ctx)
}

// LatestYear returns the most recent year in the dataset. An empty dataset
// is an error; callers cannot default a year without data.
func (s *AnalyticsService) LatestYear(ctx context.Context) (int, error) {
	years, err := s.store.Years(ctx)
	if err != nil {
		return 0, fmt.Errorf("list years: %w", err)
	}
	if len(years) == 0 {
		return 0, fmt.Errorf("dataset is empty")
	}
	return years[len(years)-1], nil
}

// LatestRun exposes the stats of the most recent dataset load.
func (s *AnalyticsService) LatestRun(ctx context.Context) (*storage.RunStats, error) {
	return s.store.LatestRun(ctx)
}

// YearBundle returns the dashboard bundle for one year, building and
// caching it on first use.
func (s *AnalyticsService) YearBundle(ctx context.Context, year int) (*YearBundle, error) {
	key := fmt.Sprintf("bundle:%d", year)
	if bundle, ok := s.bundles.Get(key); ok {
		return bundle, nil
	}

	bundle, err := s.buildBundle(ctx, year)
	if err != nil {
		return nil, err
	}

	s.bundles.Set(key, bundle)
	return bundle, nil
}

// InvalidateCache drops every memoized bundle. Called when the dataset is
// replaced.
func (s *AnalyticsService) InvalidateCache() {
	s.bundles.Clear()
	slog.Info("Analytics cache invalidated", "component", "analytics")
}

func (s *AnalyticsService) buildBundle(ctx context.Context, year int) (*YearBundle, error) {
	txns, err := s.store.ListTransactions(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %d: %w", year, err)
	}

	lookup, err := s.store.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("load code lookup: %w", err)
	}

	bundle := &YearBundle{Year: year, TotalRows: len(txns)}

	customers := make(map[string]bool)
	for _, t := range txns {
		customers[t.CustomerID] = true
		if t.Amount.Valid {
			bundle.TotalPoints += t.Amount.Value
		}
	}
	bundle.Customers = len(customers)

	// The bundle parts are independent computations over the same read-only
	// slice, so they run in parallel.
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		aggs := analytics.AggregateCustomerMonths(txns)
		bundle.Thresholds = analytics.ComputeThresholds(aggs)
		bundle.Segments = analytics.AssignSegments(aggs, bundle.Thresholds)
		bundle.SegmentCounts = analytics.SegmentCounts(bundle.Segments)
		bundle.Milestones = analytics.MilestoneFrequency(aggs)
		return nil
	})

	g.Go(func() error {
		codeMonthly := analytics.AggregateCodeMonthly(txns)
		bundle.Movers = analytics.FindGrowthCohort(codeMonthly, year, 0)
		return nil
	})

	g.Go(func() error {
		points := analytics.AggregateMonthlyCustomerPoints(txns)
		bundle.Buckets = analytics.BucketCounts(points)
		bundle.Cutoffs = analytics.CutoffCounts(points)
		return nil
	})

	g.Go(func() error {
		bundle.RewardStats = analytics.MonthlyRewardStats(txns)
		bundle.GroupVolumes = analytics.PadGroupMonthly(
			analytics.AggregateGroupMonthly(txns), analytics.YearMonths(txns))
		return nil
	})

	g.Go(func() error {
		bundle.CodeSummaries = analytics.CodeSummaries(txns, lookup, codeSummaryMinSharePct)
		bundle.Profile = analytics.NormalizedProfile(txns)
		bundle.CodesByGroup = analytics.CodesByGroup(txns)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Built analytics bundle",
		"year", year,
		"rows", bundle.TotalRows,
		"customers", bundle.Customers)
	return bundle, nil
}
