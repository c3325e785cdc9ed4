package analytics

import "sort"

// Growth-mover detection thresholds. A code qualifies only with strictly
// more than six distinct active months, a strictly positive starting volume,
// strictly more than 20% growth and a final volume strictly above 100k.
const (
	moverMinActiveMonths = 6
	moverMinGrowthPct    = 20.0
	moverMinLastVolume   = 100_000.0
	defaultMoverTopN     = 4
)

// CodeGrowth is one ranked growth-mover: a loyalty code whose monthly award
// volume grew strongly between its first and last active month of the year.
type CodeGrowth struct {
	LoyalCode string  `json:"loyal_code"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	PctChange float64 `json:"pct_increase"`
}

// FindGrowthCohort ranks loyalty codes by percent growth in monthly award
// volume within one year. First and last are taken by data order within the
// year-filtered rows, not by min/max value; AggregateCodeMonthly emits rows
// chronologically per code, which makes them the first and last active month.
// topN <= 0 selects the default of 4. An empty result is valid.
func FindGrowthCohort(rows []CodeMonthlyVolume, year int, topN int) []CodeGrowth {
	if topN <= 0 {
		topN = defaultMoverTopN
	}

	type series struct {
		first, last float64
		haveFirst   bool
		months      map[int]struct{}
	}

	byCode := make(map[string]*series)
	var order []string
	for _, r := range rows {
		if r.Year != year {
			continue
		}
		s := byCode[r.LoyalCode]
		if s == nil {
			s = &series{months: map[int]struct{}{}}
			byCode[r.LoyalCode] = s
			order = append(order, r.LoyalCode)
		}
		if !s.haveFirst {
			s.first = r.TotalPoints
			s.haveFirst = true
		}
		s.last = r.TotalPoints
		s.months[r.MonthNum] = struct{}{}
	}

	var movers []CodeGrowth
	for _, code := range order {
		s := byCode[code]
		if len(s.months) <= moverMinActiveMonths {
			continue
		}
		if s.first <= 0 {
			continue
		}
		pct := (s.last - s.first) / s.first * 100
		if pct <= moverMinGrowthPct || s.last <= moverMinLastVolume {
			continue
		}
		movers = append(movers, CodeGrowth{
			LoyalCode: code,
			First:     s.first,
			Last:      s.last,
			PctChange: pct,
		})
	}

	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].PctChange > movers[j].PctChange
	})
	if len(movers) > topN {
		movers = movers[:topN]
	}
	return movers
}
