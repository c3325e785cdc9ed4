package analytics

import (
	"sort"

	"github.com/badyy8/Ardiin-erh/internal/core"
)

// PointBuckets are the fixed distribution bins for monthly customer totals.
var PointBuckets = []string{
	"0-49", "50-99", "100-199", "200-299", "300-399",
	"400-499", "500-599", "600-699", "700-799",
	"800-899", "900-999", "1000+",
}

// CutoffLevels are the cumulative point thresholds tracked per month.
var CutoffLevels = []float64{400, 500, 600, 700, 800, 900}

// Code excluded from the normalized achiever profile; its one-off insurance
// payouts distort the per-code share picture.
const excludedProfileCode = "10K_PURCH_INSUR"

// ReachFrequency is one row of the milestone frequency table: how many users
// crossed the thousand-point milestone exactly TimesReached months.
type ReachFrequency struct {
	TimesReached  int `json:"times_reached_1000"`
	NumberOfUsers int `json:"number_of_users"`
	Total         int `json:"total"`
}

// BucketCount is the count (and share) of customers whose monthly total fell
// into one point bucket.
type BucketCount struct {
	MonthNum int     `json:"month_num"`
	Bucket   string  `json:"point_bucket"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// CutoffCount is the number of customers at or above a point cutoff in a month.
type CutoffCount struct {
	MonthNum int     `json:"month_num"`
	Cutoff   float64 `json:"cutoff"`
	Count    int     `json:"count"`
}

// CodeSummary is the per-loyalty-code rollup behind the average-award chart.
type CodeSummary struct {
	LoyalCode   string  `json:"loyal_code"`
	Description string  `json:"description"`
	TotalPoints float64 `json:"total_points"`
	TxnCount    int     `json:"txn_count"`
	AvgPoints   float64 `json:"avg_points"`
	SharePct    float64 `json:"share_pct"`
}

// ProfileRow is one cell of the normalized achiever profile: a customer
// month's points from one loyalty code, scaled to a 1000-point basis.
type ProfileRow struct {
	CustomerID       string  `json:"customer_id"`
	MonthNum         int     `json:"month_num"`
	LoyalCode        string  `json:"loyal_code"`
	NormalizedPoints float64 `json:"normalized_points"`
}

// MilestoneFrequency counts, per customer, the months the thousand-point
// milestone was reached, then folds that into a frequency table ordered by
// times reached.
func MilestoneFrequency(aggs []CustomerMonthAggregate) []ReachFrequency {
	perCustomer := make(map[string]int)
	for _, a := range aggs {
		if a.Reached1000 {
			perCustomer[a.CustomerID]++
		}
	}

	freq := make(map[int]int)
	for _, times := range perCustomer {
		freq[times]++
	}

	times := make([]int, 0, len(freq))
	for k := range freq {
		times = append(times, k)
	}
	sort.Ints(times)

	out := make([]ReachFrequency, 0, len(times))
	for _, k := range times {
		out = append(out, ReachFrequency{
			TimesReached:  k,
			NumberOfUsers: freq[k],
			Total:         k * freq[k],
		})
	}
	return out
}

// BucketFor places a monthly point total into its distribution bin.
func BucketFor(points float64) string {
	switch {
	case points < 50:
		return "0-49"
	case points < 100:
		return "50-99"
	case points < 200:
		return "100-199"
	case points < 300:
		return "200-299"
	case points < 400:
		return "300-399"
	case points < 500:
		return "400-499"
	case points < 600:
		return "500-599"
	case points < 700:
		return "600-699"
	case points < 800:
		return "700-799"
	case points < 900:
		return "800-899"
	case points < 1000:
		return "900-999"
	default:
		return "1000+"
	}
}

// BucketCounts bins monthly customer totals and computes each bin's share of
// its month. Buckets with no customers in a month are omitted.
func BucketCounts(rows []MonthlyCustomerPoints) []BucketCount {
	type key struct {
		month  int
		bucket string
	}
	counts := make(map[key]int)
	monthTotals := make(map[int]int)
	for _, r := range rows {
		counts[key{r.MonthNum, BucketFor(r.TotalPoints)}]++
		monthTotals[r.MonthNum]++
	}

	out := make([]BucketCount, 0, len(counts))
	for k, c := range counts {
		bc := BucketCount{MonthNum: k.month, Bucket: k.bucket, Count: c}
		if total := monthTotals[k.month]; total > 0 {
			bc.Percent = float64(c) / float64(total) * 100
		}
		out = append(out, bc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthNum != out[j].MonthNum {
			return out[i].MonthNum < out[j].MonthNum
		}
		return bucketOrder(out[i].Bucket) < bucketOrder(out[j].Bucket)
	})
	return out
}

func bucketOrder(bucket string) int {
	for i, b := range PointBuckets {
		if b == bucket {
			return i
		}
	}
	return len(PointBuckets)
}

// CutoffCounts computes, per month and cutoff level, the number of customers
// whose monthly total reached at least the cutoff.
func CutoffCounts(rows []MonthlyCustomerPoints) []CutoffCount {
	type key struct {
		month  int
		cutoff float64
	}
	counts := make(map[key]int)
	months := make(map[int]bool)
	for _, r := range rows {
		months[r.MonthNum] = true
		for _, c := range CutoffLevels {
			if r.TotalPoints >= c {
				counts[key{r.MonthNum, c}]++
			}
		}
	}

	ordered := make([]int, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Ints(ordered)

	out := make([]CutoffCount, 0, len(ordered)*len(CutoffLevels))
	for _, m := range ordered {
		for _, c := range CutoffLevels {
			out = append(out, CutoffCount{MonthNum: m, Cutoff: c, Count: counts[key{m, c}]})
		}
	}
	return out
}

// CodeSummaries rolls transactions up per loyalty code with averages and
// grand-total shares. Codes whose share is below minSharePct are dropped
// (pass 0 to keep everything). Descriptions come from the lookup table with
// the code itself as fallback. Output is ordered by ascending average.
func CodeSummaries(txns []core.Transaction, lookup map[string]string, minSharePct float64) []CodeSummary {
	type acc struct {
		total float64
		count int
	}
	byCode := make(map[string]*acc)
	var grandTotal float64
	for _, t := range txns {
		a := byCode[t.LoyalCode]
		if a == nil {
			a = &acc{}
			byCode[t.LoyalCode] = a
		}
		if t.Amount.Valid {
			a.total += t.Amount.Value
			grandTotal += t.Amount.Value
		}
		a.count++
	}

	out := make([]CodeSummary, 0, len(byCode))
	for code, a := range byCode {
		s := CodeSummary{
			LoyalCode:   code,
			Description: code,
			TotalPoints: a.total,
			TxnCount:    a.count,
		}
		if desc, ok := lookup[code]; ok && desc != "" {
			s.Description = desc
		}
		if a.count > 0 {
			s.AvgPoints = a.total / float64(a.count)
		}
		if grandTotal > 0 {
			s.SharePct = a.total / grandTotal * 100
		}
		if s.SharePct <= minSharePct && minSharePct > 0 {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgPoints != out[j].AvgPoints {
			return out[i].AvgPoints < out[j].AvgPoints
		}
		return out[i].LoyalCode < out[j].LoyalCode
	})
	return out
}

// NormalizedProfile builds the achiever award-mix profile: for customer
// months whose true monthly total reached the milestone, each loyalty code's
// contribution is rescaled to a 1000-point basis.
func NormalizedProfile(txns []core.Transaction) []ProfileRow {
	type cmKey struct {
		customer string
		month    int
	}
	monthlyTotals := make(map[cmKey]float64)
	for _, t := range txns {
		if t.Amount.Valid {
			monthlyTotals[cmKey{t.CustomerID, t.MonthNum}] += t.Amount.Value
		}
	}

	type cellKey struct {
		customer string
		month    int
		code     string
	}
	cells := make(map[cellKey]float64)
	for _, t := range txns {
		if t.LoyalCode == excludedProfileCode {
			continue
		}
		total := monthlyTotals[cmKey{t.CustomerID, t.MonthNum}]
		if total < core.ThousandPointTarget {
			continue
		}
		if t.Amount.Valid {
			cells[cellKey{t.CustomerID, t.MonthNum, t.LoyalCode}] += t.Amount.Value / total * core.ThousandPointTarget
		}
	}

	out := make([]ProfileRow, 0, len(cells))
	for k, v := range cells {
		out = append(out, ProfileRow{
			CustomerID:       k.customer,
			MonthNum:         k.month,
			LoyalCode:        k.code,
			NormalizedPoints: v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerID != out[j].CustomerID {
			return out[i].CustomerID < out[j].CustomerID
		}
		if out[i].MonthNum != out[j].MonthNum {
			return out[i].MonthNum < out[j].MonthNum
		}
		return out[i].LoyalCode < out[j].LoyalCode
	})
	return out
}

// CodesByGroup maps each category to the sorted distinct loyalty codes
// classified into it.
func CodesByGroup(txns []core.Transaction) map[core.Category][]string {
	seen := make(map[core.Category]map[string]bool)
	for _, t := range txns {
		if seen[t.CodeGroup] == nil {
			seen[t.CodeGroup] = make(map[string]bool)
		}
		seen[t.CodeGroup][t.LoyalCode] = true
	}

	out := make(map[core.Category][]string, len(seen))
	for g, codes := range seen {
		list := make([]string, 0, len(codes))
		for c := range codes {
			list = append(list, c)
		}
		sort.Strings(list)
		out[g] = list
	}
	return out
}
