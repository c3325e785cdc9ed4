package core

import (
	"testing"
	"time"
)

func TestTransactionDerive(t *testing.T) {
	txn := Transaction{
		CustomerID: "C1",
		JournalID:  "J1",
		LoyalCode:  "10K_TRANSACTION",
		Amount:     ValidPoints(10),
		TxnDate:    time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC),
	}
	txn.Derive()

	if txn.Year != 2025 {
		t.Errorf("Year = %d", txn.Year)
	}
	if txn.MonthNum != 12 {
		t.Errorf("MonthNum = %d", txn.MonthNum)
	}
	if txn.MonthName != "DEC" {
		t.Errorf("MonthName = %q", txn.MonthName)
	}
	if txn.YearMonth != "2025-12" {
		t.Errorf("YearMonth = %q", txn.YearMonth)
	}
	if txn.CodeGroup != CategoryFinancial {
		t.Errorf("CodeGroup = %q", txn.CodeGroup)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		CustomerID: "C1",
		JournalID:  "J1",
		TxnDate:    time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name string
		txn  Transaction
		want error
	}{
		{"missing customer", Transaction{JournalID: "J1", TxnDate: valid.TxnDate}, ErrMissingCustomerID},
		{"missing journal", Transaction{CustomerID: "C1", TxnDate: valid.TxnDate}, ErrMissingJournalID},
		{"zero date", Transaction{CustomerID: "C1", JournalID: "J1"}, ErrInvalidTxnDate},
	}
	for _, tc := range cases {
		if err := tc.txn.Validate(); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestFormatYearMonth(t *testing.T) {
	if got := FormatYearMonth(2025, 3); got != "2025-03" {
		t.Errorf("FormatYearMonth = %q", got)
	}
	if got := FormatYearMonth(800, 11); got != "0800-11" {
		t.Errorf("FormatYearMonth = %q", got)
	}
}

func TestMonthNameUpper(t *testing.T) {
	if got := MonthNameUpper(1); got != "JAN" {
		t.Errorf("MonthNameUpper(1) = %q", got)
	}
	if got := MonthNameUpper(0); got != "" {
		t.Errorf("MonthNameUpper(0) = %q", got)
	}
	if got := MonthNameUpper(13); got != "" {
		t.Errorf("MonthNameUpper(13) = %q", got)
	}
}

func TestPointsHelpers(t *testing.T) {
	if p := ValidPoints(12.5); !p.Valid || p.Value != 12.5 {
		t.Errorf("ValidPoints = %+v", p)
	}
	if p := MissingPoints(); p.Valid || p.Value != 0 {
		t.Errorf("MissingPoints = %+v", p)
	}
}
