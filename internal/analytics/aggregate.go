// Package analytics implements the read-only aggregation pipeline over
// prepared reward transactions: customer-month rollups, percentile-based
// segmentation, milestone statistics and the growth-mover detector.
//
// Everything here is a pure function of its inputs. Sums and counts are
// null-safe: missing amounts contribute zero to sums and are excluded from
// non-null counts.
package analytics

import (
	"sort"

	"github.com/badyy8/Ardiin-erh/internal/core"
)

// CustomerMonthAggregate is one row per (customer, month number) within a
// year-scoped dataset.
type CustomerMonthAggregate struct {
	CustomerID       string  `json:"customer_id"`
	MonthNum         int     `json:"month_num"`
	TotalPoints      float64 `json:"total_points"`
	TransactionCount int     `json:"transaction_count"`
	UniqueLoyalCodes int     `json:"unique_loyal_codes"`
	ActiveDays       int     `json:"active_days"`
	Reached1000      bool    `json:"reached_1000"`
	Inactive         bool    `json:"inactive"`
}

// MonthlyCustomerPoints is one row per (month, customer): the month's total.
type MonthlyCustomerPoints struct {
	MonthNum    int     `json:"month_num"`
	MonthName   string  `json:"month_name"`
	CustomerID  string  `json:"customer_id"`
	TotalPoints float64 `json:"total_points"`
}

// CodeMonthlyVolume is the per-loyalty-code monthly award volume, the input
// to trend charts and the growth-mover detector.
type CodeMonthlyVolume struct {
	LoyalCode   string  `json:"loyal_code"`
	Year        int     `json:"year"`
	MonthNum    int     `json:"month_num"`
	YearMonth   string  `json:"year_month"`
	TotalPoints float64 `json:"total_points"`
	TxnCount    int     `json:"txn_count"`
}

// GroupMonthlyVolume is the per-category monthly award volume.
type GroupMonthlyVolume struct {
	CodeGroup   core.Category `json:"code_group"`
	YearMonth   string        `json:"year_month"`
	TotalPoints float64       `json:"total_points"`
	TxnCount    int           `json:"txn_count"`
}

// MonthlyRewardStat summarizes one calendar month of the program.
type MonthlyRewardStat struct {
	YearMonth      string  `json:"year_month"`
	TotalPoints    float64 `json:"total_points"`
	TotalUsers     int     `json:"total_users"`
	PassedThousand int     `json:"num_user_passed_1000"`
	FailedThousand int     `json:"num_user_fail_1000"`
	SuccessPercent float64 `json:"percentage"`
	NewUsers       int     `json:"total_new_users"`
	PointsPerUser  float64 `json:"points_per_user"`
}

type customerMonthKey struct {
	customer string
	month    int
}

// AggregateCustomerMonths produces one row per (customer, month number).
// Input is expected to be year-scoped already; the caller owns that filter.
func AggregateCustomerMonths(txns []core.Transaction) []CustomerMonthAggregate {
	type acc struct {
		total float64
		count int
		codes map[string]struct{}
		days  map[string]struct{}
	}

	buckets := make(map[customerMonthKey]*acc)
	for _, t := range txns {
		k := customerMonthKey{t.CustomerID, t.MonthNum}
		a := buckets[k]
		if a == nil {
			a = &acc{codes: map[string]struct{}{}, days: map[string]struct{}{}}
			buckets[k] = a
		}
		if t.Amount.Valid {
			a.total += t.Amount.Value
		}
		a.count++
		a.codes[t.LoyalCode] = struct{}{}
		a.days[t.ActiveDay()] = struct{}{}
	}

	out := make([]CustomerMonthAggregate, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, CustomerMonthAggregate{
			CustomerID:       k.customer,
			MonthNum:         k.month,
			TotalPoints:      a.total,
			TransactionCount: a.count,
			UniqueLoyalCodes: len(a.codes),
			ActiveDays:       len(a.days),
			Reached1000:      a.total >= core.ThousandPointTarget,
			Inactive:         a.count <= 1,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerID != out[j].CustomerID {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].MonthNum < out[j].MonthNum
	})
	return out
}

// AggregateMonthlyCustomerPoints is the distribution input: one row per
// (month, customer) with the month's point total.
func AggregateMonthlyCustomerPoints(txns []core.Transaction) []MonthlyCustomerPoints {
	totals := make(map[customerMonthKey]float64)
	for _, t := range txns {
		if t.Amount.Valid {
			totals[customerMonthKey{t.CustomerID, t.MonthNum}] += t.Amount.Value
		} else {
			totals[customerMonthKey{t.CustomerID, t.MonthNum}] += 0
		}
	}

	out := make([]MonthlyCustomerPoints, 0, len(totals))
	for k, v := range totals {
		out = append(out, MonthlyCustomerPoints{
			MonthNum:    k.month,
			MonthName:   core.MonthNameUpper(k.month),
			CustomerID:  k.customer,
			TotalPoints: v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthNum != out[j].MonthNum {
			return out[i].MonthNum < out[j].MonthNum
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}

// AggregateCodeMonthly rolls transactions up to (loyalty code, year-month)
// volumes, ordered by code and then chronologically. The chronological order
// within each code is what the mover detector's first/last semantics rely on.
func AggregateCodeMonthly(txns []core.Transaction) []CodeMonthlyVolume {
	type key struct {
		code      string
		yearMonth string
	}
	type acc struct {
		year  int
		month int
		total float64
		count int
	}

	buckets := make(map[key]*acc)
	for _, t := range txns {
		k := key{t.LoyalCode, t.YearMonth}
		a := buckets[k]
		if a == nil {
			a = &acc{year: t.Year, month: t.MonthNum}
			buckets[k] = a
		}
		if t.Amount.Valid {
			a.total += t.Amount.Value
		}
		a.count++
	}

	out := make([]CodeMonthlyVolume, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, CodeMonthlyVolume{
			LoyalCode:   k.code,
			Year:        a.year,
			MonthNum:    a.month,
			YearMonth:   k.yearMonth,
			TotalPoints: a.total,
			TxnCount:    a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoyalCode != out[j].LoyalCode {
			return out[i].LoyalCode < out[j].LoyalCode
		}
		return out[i].YearMonth < out[j].YearMonth
	})
	return out
}

// AggregateGroupMonthly rolls transactions up to (code group, year-month).
func AggregateGroupMonthly(txns []core.Transaction) []GroupMonthlyVolume {
	type key struct {
		group     core.Category
		yearMonth string
	}
	type acc struct {
		total float64
		count int
	}

	buckets := make(map[key]*acc)
	for _, t := range txns {
		k := key{t.CodeGroup, t.YearMonth}
		a := buckets[k]
		if a == nil {
			a = &acc{}
			buckets[k] = a
		}
		if t.Amount.Valid {
			a.total += t.Amount.Value
		}
		a.count++
	}

	out := make([]GroupMonthlyVolume, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, GroupMonthlyVolume{
			CodeGroup:   k.group,
			YearMonth:   k.yearMonth,
			TotalPoints: a.total,
			TxnCount:    a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CodeGroup != out[j].CodeGroup {
			return out[i].CodeGroup < out[j].CodeGroup
		}
		return out[i].YearMonth < out[j].YearMonth
	})
	return out
}

// PadGroupMonthly zero-fills missing (group, month) buckets so chart
// consumers get a dense series. Sparse output is the default; padding is a
// presentation concern, so it lives in its own explicit step.
func PadGroupMonthly(rows []GroupMonthlyVolume, yearMonths []string) []GroupMonthlyVolume {
	groups := make(map[core.Category]bool)
	have := make(map[string]GroupMonthlyVolume, len(rows))
	for _, r := range rows {
		groups[r.CodeGroup] = true
		have[string(r.CodeGroup)+"|"+r.YearMonth] = r
	}

	ordered := make([]core.Category, 0, len(groups))
	for g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	out := make([]GroupMonthlyVolume, 0, len(ordered)*len(yearMonths))
	for _, g := range ordered {
		for _, ym := range yearMonths {
			if r, ok := have[string(g)+"|"+ym]; ok {
				out = append(out, r)
			} else {
				out = append(out, GroupMonthlyVolume{CodeGroup: g, YearMonth: ym})
			}
		}
	}
	return out
}

// MonthlyRewardStats computes the per-month program summary: distributed
// points, participant counts, the thousand-point pass rate and first-time
// participants.
func MonthlyRewardStats(txns []core.Transaction) []MonthlyRewardStat {
	type userMonth struct {
		yearMonth string
		customer  string
	}
	totals := make(map[userMonth]float64)
	monthPoints := make(map[string]float64)
	firstSeen := make(map[string]string)

	for _, t := range txns {
		k := userMonth{t.YearMonth, t.CustomerID}
		if t.Amount.Valid {
			totals[k] += t.Amount.Value
			monthPoints[t.YearMonth] += t.Amount.Value
		} else {
			totals[k] += 0
			monthPoints[t.YearMonth] += 0
		}
		if prev, ok := firstSeen[t.CustomerID]; !ok || t.YearMonth < prev {
			firstSeen[t.CustomerID] = t.YearMonth
		}
	}

	users := make(map[string]int)
	passed := make(map[string]int)
	for k, total := range totals {
		users[k.yearMonth]++
		if total >= core.ThousandPointTarget {
			passed[k.yearMonth]++
		}
	}
	newUsers := make(map[string]int)
	for _, ym := range firstSeen {
		newUsers[ym]++
	}

	months := make([]string, 0, len(users))
	for ym := range users {
		months = append(months, ym)
	}
	sort.Strings(months)

	out := make([]MonthlyRewardStat, 0, len(months))
	for _, ym := range months {
		stat := MonthlyRewardStat{
			YearMonth:      ym,
			TotalPoints:    monthPoints[ym],
			TotalUsers:     users[ym],
			PassedThousand: passed[ym],
			FailedThousand: users[ym] - passed[ym],
			NewUsers:       newUsers[ym],
		}
		if stat.TotalUsers > 0 {
			stat.SuccessPercent = float64(stat.PassedThousand) / float64(stat.TotalUsers) * 100
			stat.PointsPerUser = stat.TotalPoints / float64(stat.TotalUsers)
		}
		out = append(out, stat)
	}
	return out
}

// YearMonths returns the sorted distinct year-month keys present in txns.
func YearMonths(txns []core.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range txns {
		if !seen[t.YearMonth] {
			seen[t.YearMonth] = true
			out = append(out, t.YearMonth)
		}
	}
	sort.Strings(out)
	return out
}

// FilterYear returns the transactions belonging to one calendar year.
func FilterYear(txns []core.Transaction, year int) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Year == year {
			out = append(out, t)
		}
	}
	return out
}

// Years returns the sorted distinct years present in txns.
func Years(txns []core.Transaction) []int {
	seen := make(map[int]bool)
	var out []int
	for _, t := range txns {
		if !seen[t.Year] {
			seen[t.Year] = true
			out = append(out, t.Year)
		}
	}
	sort.Ints(out)
	return out
}
