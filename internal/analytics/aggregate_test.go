package analytics

import (
	"testing"
	"time"

	"github.com/badyy8/Ardiin-erh/internal/core"
)

func makeTxn(customer, journal, code string, amount float64, date time.Time) core.Transaction {
	t := core.Transaction{
		CustomerID: customer,
		JournalID:  journal,
		LoyalCode:  code,
		Amount:     core.ValidPoints(amount),
		TxnDate:    date,
	}
	t.Derive()
	return t
}

func TestAggregateCustomerMonths(t *testing.T) {
	march := func(day int) time.Time {
		return time.Date(2025, time.March, day, 10, 0, 0, 0, time.UTC)
	}
	txns := []core.Transaction{
		makeTxn("C1", "J1", "ARD_SUMMER", 100, march(1)),
		makeTxn("C1", "J2", "ARD_SUMMER", 200, march(1)),
		makeTxn("C1", "J3", "10K_TRANSACTION", 300, march(15)),
	}

	aggs := AggregateCustomerMonths(txns)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate row, got %d", len(aggs))
	}
	a := aggs[0]
	if a.TotalPoints != 600 {
		t.Errorf("TotalPoints = %v, want 600", a.TotalPoints)
	}
	if a.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", a.TransactionCount)
	}
	if a.UniqueLoyalCodes != 2 {
		t.Errorf("UniqueLoyalCodes = %d, want 2", a.UniqueLoyalCodes)
	}
	if a.ActiveDays != 2 {
		t.Errorf("ActiveDays = %d, want 2", a.ActiveDays)
	}
	if a.Inactive {
		t.Error("three transactions must not be flagged inactive")
	}
	if a.Reached1000 {
		t.Error("600 points must not be flagged as reached 1000")
	}
}

func TestAggregateCustomerMonthsFlags(t *testing.T) {
	d := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		makeTxn("C1", "J1", "ARD_SUMMER", 1200, d),
	}
	aggs := AggregateCustomerMonths(txns)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(aggs))
	}
	if !aggs[0].Reached1000 {
		t.Error("1200 points must set Reached1000")
	}
	if !aggs[0].Inactive {
		t.Error("a single transaction must set Inactive")
	}
}

func TestAggregateNullSafeSums(t *testing.T) {
	d := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	missing := core.Transaction{
		CustomerID: "C1", JournalID: "J2", LoyalCode: "ARD_SUMMER",
		Amount: core.MissingPoints(), TxnDate: d,
	}
	missing.Derive()

	txns := []core.Transaction{
		makeTxn("C1", "J1", "ARD_SUMMER", 100, d),
		missing,
	}
	aggs := AggregateCustomerMonths(txns)
	if aggs[0].TotalPoints != 100 {
		t.Errorf("missing amount must contribute zero to sums, got %v", aggs[0].TotalPoints)
	}
	if aggs[0].TransactionCount != 2 {
		t.Errorf("row with missing amount still counts, got %d", aggs[0].TransactionCount)
	}
}

func TestAggregateCodeMonthlyOrder(t *testing.T) {
	txns := []core.Transaction{
		makeTxn("C1", "J1", "B_CODE", 10, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)),
		makeTxn("C2", "J2", "A_CODE", 20, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)),
		makeTxn("C3", "J3", "A_CODE", 30, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
	}
	rows := AggregateCodeMonthly(txns)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Ordered by code, then chronologically within code.
	if rows[0].LoyalCode != "A_CODE" || rows[0].YearMonth != "2025-01" {
		t.Errorf("rows[0] = %v %v, want A_CODE 2025-01", rows[0].LoyalCode, rows[0].YearMonth)
	}
	if rows[1].LoyalCode != "A_CODE" || rows[1].YearMonth != "2025-02" {
		t.Errorf("rows[1] = %v %v, want A_CODE 2025-02", rows[1].LoyalCode, rows[1].YearMonth)
	}
	if rows[2].LoyalCode != "B_CODE" {
		t.Errorf("rows[2] = %v, want B_CODE", rows[2].LoyalCode)
	}
}

func TestMonthlyRewardStats(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		makeTxn("C1", "J1", "X", 1500, jan),
		makeTxn("C2", "J2", "X", 300, jan),
		makeTxn("C1", "J3", "X", 200, feb),
		makeTxn("C3", "J4", "X", 1000, feb),
	}

	stats := MonthlyRewardStats(txns)
	if len(stats) != 2 {
		t.Fatalf("expected 2 months, got %d", len(stats))
	}

	jan25 := stats[0]
	if jan25.YearMonth != "2025-01" {
		t.Fatalf("stats not sorted by month: %v", jan25.YearMonth)
	}
	if jan25.TotalUsers != 2 || jan25.PassedThousand != 1 || jan25.FailedThousand != 1 {
		t.Errorf("jan counts = %d/%d/%d, want 2/1/1",
			jan25.TotalUsers, jan25.PassedThousand, jan25.FailedThousand)
	}
	if jan25.SuccessPercent != 50 {
		t.Errorf("jan success = %v, want 50", jan25.SuccessPercent)
	}
	if jan25.NewUsers != 2 {
		t.Errorf("jan new users = %d, want 2", jan25.NewUsers)
	}

	feb25 := stats[1]
	// C1 was first seen in January; only C3 is new in February.
	if feb25.NewUsers != 1 {
		t.Errorf("feb new users = %d, want 1", feb25.NewUsers)
	}
	// Exactly 1000 counts as passed.
	if feb25.PassedThousand != 1 {
		t.Errorf("feb passed = %d, want 1", feb25.PassedThousand)
	}
}

func TestPadGroupMonthly(t *testing.T) {
	rows := []GroupMonthlyVolume{
		{CodeGroup: core.CategoryInsurance, YearMonth: "2025-01", TotalPoints: 10, TxnCount: 1},
	}
	padded := PadGroupMonthly(rows, []string{"2025-01", "2025-02"})
	if len(padded) != 2 {
		t.Fatalf("expected 2 padded rows, got %d", len(padded))
	}
	if padded[1].YearMonth != "2025-02" || padded[1].TotalPoints != 0 || padded[1].TxnCount != 0 {
		t.Errorf("missing bucket not zero-filled: %+v", padded[1])
	}
}

func TestFilterYearAndYears(t *testing.T) {
	txns := []core.Transaction{
		makeTxn("C1", "J1", "X", 1, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)),
		makeTxn("C1", "J2", "X", 1, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)),
	}
	years := Years(txns)
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Errorf("Years = %v, want [2024 2025]", years)
	}
	if got := FilterYear(txns, 2025); len(got) != 1 || got[0].Year != 2025 {
		t.Errorf("FilterYear(2025) returned %d rows", len(got))
	}
}
