package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MissingCode is the sentinel stored in place of an absent loyalty code.
// It participates in classification like any other code string.
const MissingCode = "None"

// ThousandPointTarget is the monthly point milestone the program rewards.
const ThousandPointTarget = 1000

type (
	// Category is one of the fixed coarse business groups a loyalty code
	// is classified into.
	Category string

	// Segment is the behavioral label assigned to a customer-month.
	Segment string

	// Points is a nullable point amount. Invalid amounts are excluded
	// from sums and non-null counts.
	Points struct {
		Value float64
		Valid bool
	}

	// Transaction is a single reward record, immutable once loaded.
	// The derived fields are filled by Derive at preparation time.
	Transaction struct {
		CustomerID  string
		JournalID   string
		LoyalCode   string
		Amount      Points
		TxnDate     time.Time
		PostDate    time.Time // zero when absent or unparseable
		Description string

		Year      int
		MonthNum  int
		MonthName string
		YearMonth string
		CodeGroup Category
	}
)

const (
	CategoryGeographic  Category = "Geographic Campaigns"
	CategoryAccountOpen Category = "Account Opening"
	CategoryFinancial   Category = "Financial Transactions"
	CategoryInsurance   Category = "Insurance"
	CategoryMerchant    Category = "Merchant & Lifestyle"
	CategorySocial      Category = "Social & Engagement"
	CategoryInvestments Category = "Investments & Securities"
	CategoryCampaigns   Category = "Campaigns & Events"
	CategoryOther       Category = "Other"
)

// Categories lists every category in classification rule order, Other last.
var Categories = []Category{
	CategoryGeographic,
	CategoryAccountOpen,
	CategoryFinancial,
	CategoryInsurance,
	CategoryMerchant,
	CategorySocial,
	CategoryInvestments,
	CategoryCampaigns,
	CategoryOther,
}

const (
	SegmentIrregular  Segment = "Тогтмол_бус_оролцогч"
	SegmentStable     Segment = "Тогтвортой"
	SegmentTrial      Segment = "Туршигч"
	SegmentDiligent   Segment = "Их_чармайлттай"
	SegmentSuccessful Segment = "Амжилттай"
	SegmentInactive   Segment = "Идэвхгүй"
)

var (
	ErrMissingCustomerID = errors.New("missing customer id")
	ErrMissingJournalID  = errors.New("missing journal id")
	ErrInvalidTxnDate    = errors.New("invalid transaction date")
)

// ValidPoints wraps a known-good point amount.
func ValidPoints(v float64) Points {
	return Points{Value: v, Valid: true}
}

// MissingPoints is the null amount produced for unparseable values.
func MissingPoints() Points {
	return Points{}
}

// Validate checks the invariants every retained transaction must hold.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.CustomerID) == "" {
		return ErrMissingCustomerID
	}
	if strings.TrimSpace(t.JournalID) == "" {
		return ErrMissingJournalID
	}
	if t.TxnDate.IsZero() {
		return ErrInvalidTxnDate
	}
	return nil
}

// Derive fills the calendar columns and the code group from TxnDate and
// LoyalCode. Callers must have dropped rows without a valid TxnDate first.
func (t *Transaction) Derive() {
	t.Year = t.TxnDate.Year()
	t.MonthNum = int(t.TxnDate.Month())
	t.MonthName = strings.ToUpper(t.TxnDate.Format("Jan"))
	t.YearMonth = FormatYearMonth(t.TxnDate.Year(), int(t.TxnDate.Month()))
	t.CodeGroup = Classify(t.LoyalCode)
}

// ActiveDay returns the calendar-day key used for distinct active-day counts.
func (t Transaction) ActiveDay() string {
	return t.TxnDate.Format("2006-01-02")
}

// FormatYearMonth renders the "YYYY-MM" bucket key.
func FormatYearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthNameUpper returns the abbreviated upper-case month name for 1-12,
// empty string otherwise.
func MonthNameUpper(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return strings.ToUpper(time.Month(month).String()[:3])
}
