package analytics

import "github.com/badyy8/Ardiin-erh/internal/core"

// Thresholds are the percentile cut-points segmentation runs against,
// computed once per year-scoped dataset.
//
// The "under 1000" population (neither reached the milestone nor inactive)
// contributes the q25/q75 cut-points; the achiever population contributes a
// single q25 of transaction count.
type Thresholds struct {
	TxnQ25          Threshold `json:"txn_q25"`
	TxnQ75          Threshold `json:"txn_q75"`
	DaysQ25         Threshold `json:"days_q25"`
	DaysQ75         Threshold `json:"days_q75"`
	PointsQ25       Threshold `json:"points_q25"`
	PointsQ75       Threshold `json:"points_q75"`
	AchieversTxnQ25 Threshold `json:"achievers_txn_q25"`
}

// SegmentedAggregate is a customer-month aggregate with its assigned segment.
type SegmentedAggregate struct {
	CustomerMonthAggregate
	Segment core.Segment `json:"user_segment"`
}

// ComputeThresholds derives the percentile cut-points from the customer-month
// aggregates. Empty sub-populations leave the corresponding thresholds
// invalid; rules depending on them never fire.
func ComputeThresholds(aggs []CustomerMonthAggregate) Thresholds {
	var underTxns, underDays, underPoints, achieverTxns []float64
	for _, a := range aggs {
		if !a.Reached1000 && !a.Inactive {
			underTxns = append(underTxns, float64(a.TransactionCount))
			underDays = append(underDays, float64(a.ActiveDays))
			underPoints = append(underPoints, a.TotalPoints)
		}
		if a.Reached1000 {
			achieverTxns = append(achieverTxns, float64(a.TransactionCount))
		}
	}

	return Thresholds{
		TxnQ25:          Quantile(underTxns, 0.25),
		TxnQ75:          Quantile(underTxns, 0.75),
		DaysQ25:         Quantile(underDays, 0.25),
		DaysQ75:         Quantile(underDays, 0.75),
		PointsQ25:       Quantile(underPoints, 0.25),
		PointsQ75:       Quantile(underPoints, 0.75),
		AchieversTxnQ25: Quantile(achieverTxns, 0.25),
	}
}

// Segment assignment is an ordered decision list with LAST-match-wins
// semantics: every rule whose condition holds overwrites the previous
// assignment. The order below is existing business logic and must not be
// reordered; in particular the inactivity rule deliberately runs after the
// milestone rule, so a customer who crossed 1000 points with a single
// transaction ends up labeled inactive, not successful.
type segmentRule struct {
	segment core.Segment
	applies func(a CustomerMonthAggregate, th Thresholds) bool
}

var segmentRules = []segmentRule{
	{core.SegmentStable, func(a CustomerMonthAggregate, th Thresholds) bool {
		return atLeast(float64(a.TransactionCount), th.TxnQ75) &&
			above(float64(a.ActiveDays), th.DaysQ75)
	}},
	{core.SegmentTrial, func(a CustomerMonthAggregate, th Thresholds) bool {
		return below(float64(a.TransactionCount), th.TxnQ75) &&
			atMost(float64(a.ActiveDays), th.DaysQ75)
	}},
	{core.SegmentDiligent, func(a CustomerMonthAggregate, th Thresholds) bool {
		return atLeast(float64(a.TransactionCount), th.AchieversTxnQ25)
	}},
	{core.SegmentSuccessful, func(a CustomerMonthAggregate, _ Thresholds) bool {
		return a.Reached1000
	}},
	{core.SegmentInactive, func(a CustomerMonthAggregate, _ Thresholds) bool {
		return a.Inactive
	}},
}

// AssignSegment labels a single customer-month. It is total: with no rule
// firing the default irregular-participant segment stands.
func AssignSegment(a CustomerMonthAggregate, th Thresholds) core.Segment {
	segment := core.SegmentIrregular
	for _, rule := range segmentRules {
		if rule.applies(a, th) {
			segment = rule.segment
		}
	}
	return segment
}

// AssignSegments labels every aggregate, preserving input order.
func AssignSegments(aggs []CustomerMonthAggregate, th Thresholds) []SegmentedAggregate {
	out := make([]SegmentedAggregate, len(aggs))
	for i, a := range aggs {
		out[i] = SegmentedAggregate{
			CustomerMonthAggregate: a,
			Segment:                AssignSegment(a, th),
		}
	}
	return out
}

// SegmentCounts tallies assigned segments.
func SegmentCounts(rows []SegmentedAggregate) map[core.Segment]int {
	counts := make(map[core.Segment]int)
	for _, r := range rows {
		counts[r.Segment]++
	}
	return counts
}
