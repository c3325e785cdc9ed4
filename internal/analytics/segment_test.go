package analytics

import (
	"testing"

	"github.com/badyy8/Ardiin-erh/internal/core"
)

func definedThresholds() Thresholds {
	return Thresholds{
		TxnQ25:          Threshold{Value: 2, Valid: true},
		TxnQ75:          Threshold{Value: 8, Valid: true},
		DaysQ25:         Threshold{Value: 2, Valid: true},
		DaysQ75:         Threshold{Value: 5, Valid: true},
		PointsQ25:       Threshold{Value: 100, Valid: true},
		PointsQ75:       Threshold{Value: 700, Valid: true},
		AchieversTxnQ25: Threshold{Value: 12, Valid: true},
	}
}

func TestAssignSegment(t *testing.T) {
	th := definedThresholds()

	cases := []struct {
		name string
		agg  CustomerMonthAggregate
		want core.Segment
	}{
		{
			name: "stable: high count and high days",
			agg:  CustomerMonthAggregate{TransactionCount: 9, ActiveDays: 6},
			want: core.SegmentStable,
		},
		{
			name: "trial: low count and low days",
			agg:  CustomerMonthAggregate{TransactionCount: 3, ActiveDays: 4},
			want: core.SegmentTrial,
		},
		{
			name: "irregular: mixed profile matches neither rule",
			agg:  CustomerMonthAggregate{TransactionCount: 9, ActiveDays: 4},
			want: core.SegmentIrregular,
		},
		{
			name: "diligent overrides stable",
			agg:  CustomerMonthAggregate{TransactionCount: 15, ActiveDays: 9},
			want: core.SegmentDiligent,
		},
		{
			name: "successful overrides diligent",
			agg:  CustomerMonthAggregate{TransactionCount: 15, ActiveDays: 9, Reached1000: true},
			want: core.SegmentSuccessful,
		},
		{
			name: "inactive overrides everything",
			agg:  CustomerMonthAggregate{TransactionCount: 1, ActiveDays: 1, Inactive: true},
			want: core.SegmentInactive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AssignSegment(tc.agg, th); got != tc.want {
				t.Errorf("AssignSegment = %q, want %q", got, tc.want)
			}
		})
	}
}

// A customer who crossed the milestone with a single transaction is both
// "reached 1000" and "inactive"; the inactivity rule runs last and wins.
// This override order is existing business logic and must be preserved.
func TestAssignSegmentInactiveOverridesSuccessful(t *testing.T) {
	agg := CustomerMonthAggregate{
		TransactionCount: 1,
		ActiveDays:       1,
		TotalPoints:      5000,
		Reached1000:      true,
		Inactive:         true,
	}
	got := AssignSegment(agg, definedThresholds())
	if got != core.SegmentInactive {
		t.Fatalf("single-transaction achiever = %q, want %q", got, core.SegmentInactive)
	}
}

// With every threshold undefined only the flag-based rules can fire.
func TestAssignSegmentUndefinedThresholds(t *testing.T) {
	var th Thresholds

	if got := AssignSegment(CustomerMonthAggregate{TransactionCount: 9, ActiveDays: 9}, th); got != core.SegmentIrregular {
		t.Errorf("undefined thresholds: got %q, want default %q", got, core.SegmentIrregular)
	}
	if got := AssignSegment(CustomerMonthAggregate{Reached1000: true, TransactionCount: 5}, th); got != core.SegmentSuccessful {
		t.Errorf("undefined thresholds: got %q, want %q", got, core.SegmentSuccessful)
	}
}

func TestComputeThresholds(t *testing.T) {
	// Ten under-1000 active rows with transaction counts 1..10.
	var aggs []CustomerMonthAggregate
	for i := 1; i <= 10; i++ {
		aggs = append(aggs, CustomerMonthAggregate{
			CustomerID:       "C",
			TransactionCount: i,
			ActiveDays:       i,
			TotalPoints:      float64(i * 10),
		})
	}
	// Two achiever rows.
	aggs = append(aggs,
		CustomerMonthAggregate{CustomerID: "A", TransactionCount: 20, TotalPoints: 2000, Reached1000: true},
		CustomerMonthAggregate{CustomerID: "B", TransactionCount: 40, TotalPoints: 4000, Reached1000: true},
	)

	th := ComputeThresholds(aggs)
	if !th.TxnQ25.Valid || th.TxnQ25.Value != 3.25 {
		t.Errorf("TxnQ25 = %+v, want 3.25", th.TxnQ25)
	}
	if !th.TxnQ75.Valid || th.TxnQ75.Value != 7.75 {
		t.Errorf("TxnQ75 = %+v, want 7.75", th.TxnQ75)
	}
	if !th.AchieversTxnQ25.Valid || th.AchieversTxnQ25.Value != 25 {
		t.Errorf("AchieversTxnQ25 = %+v, want 25", th.AchieversTxnQ25)
	}
}

func TestComputeThresholdsEmptySubPopulations(t *testing.T) {
	// Only inactive rows: both sub-populations for the under-1000 cuts are
	// empty and the achiever population is empty.
	aggs := []CustomerMonthAggregate{
		{CustomerID: "C1", TransactionCount: 1, Inactive: true},
	}
	th := ComputeThresholds(aggs)
	if th.TxnQ75.Valid || th.AchieversTxnQ25.Valid {
		t.Error("thresholds over empty sub-populations must be invalid")
	}

	// Segmentation stays total regardless.
	got := AssignSegment(aggs[0], th)
	if got != core.SegmentInactive {
		t.Errorf("got %q, want %q", got, core.SegmentInactive)
	}
}

func TestSegmentCounts(t *testing.T) {
	rows := []SegmentedAggregate{
		{Segment: core.SegmentInactive},
		{Segment: core.SegmentInactive},
		{Segment: core.SegmentStable},
	}
	counts := SegmentCounts(rows)
	if counts[core.SegmentInactive] != 2 || counts[core.SegmentStable] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
