// Package loader reads raw reward transaction records and the loyalty-code
// lookup table, and turns them into prepared, classified transactions.
//
// Sources are interchangeable: a delimited file export or a MariaDB/MySQL
// table. Preparation itself is source-agnostic and deterministic.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/badyy8/Ardiin-erh/internal/core"
)

// RawRecord is one unparsed transaction row as read from a source.
type RawRecord struct {
	CustCode  string
	Jrno      string
	LoyalCode string
	TxnAmount string
	TxnDate   string
	PostDate  string
	TxnDesc   string
}

// Source yields raw transaction rows from some backing medium.
type Source interface {
	ReadTransactions(ctx context.Context) ([]RawRecord, error)
}

// Stats summarizes one preparation run.
type Stats struct {
	RawRows         int
	DroppedTestRows int
	DroppedBadDates int
	Retained        int
	Years           []int
}

// Explicit test data that must never reach the analytical dataset.
const (
	testDescription = "Тест"
	testLoyalCode   = "LUNAR_RDXQR"
)

// Accepted transaction date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

var requiredColumns = []string{"CUST_CODE", "JRNO", "LOYAL_CODE", "TXN_AMOUNT", "TXN_DATE"}

// CSVSource reads raw transactions from a delimited export file.
type CSVSource struct {
	Path string
}

// ReadTransactions parses the whole file. A missing file or a header without
// the required columns is a fatal error; the pipeline cannot proceed without
// base data.
func (s *CSVSource) ReadTransactions(ctx context.Context) ([]RawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		records = append(records, RawRecord{
			CustCode:  cols.get(row, "CUST_CODE"),
			Jrno:      cols.get(row, "JRNO"),
			LoyalCode: cols.get(row, "LOYAL_CODE"),
			TxnAmount: cols.get(row, "TXN_AMOUNT"),
			TxnDate:   cols.get(row, "TXN_DATE"),
			PostDate:  cols.get(row, "POST_DATE"),
			TxnDesc:   cols.get(row, "TXN_DESC"),
		})
	}

	slog.InfoContext(ctx, "Read raw transactions", "path", s.Path, "rows", len(records))
	return records, nil
}

type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("source is missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) get(row []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Prepare cleans raw rows into classified transactions:
// test rows are removed, missing loyalty codes become the sentinel, rows
// without a parseable transaction date are dropped, amounts are coerced with
// invalid values becoming missing, and the calendar/code-group columns are
// derived. Row-level date failures are not reported individually; the
// returned Stats carry the aggregate counts.
func Prepare(ctx context.Context, raws []RawRecord, showProgress bool) ([]core.Transaction, Stats) {
	stats := Stats{RawRows: len(raws)}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(raws)))
	}

	years := make(map[int]bool)
	out := make([]core.Transaction, 0, len(raws))
	for _, raw := range raws {
		if bar != nil {
			_ = bar.Add(1)
		}

		if strings.TrimSpace(raw.TxnDesc) == testDescription || raw.LoyalCode == testLoyalCode {
			stats.DroppedTestRows++
			continue
		}

		txnDate, ok := parseDate(raw.TxnDate)
		if !ok {
			stats.DroppedBadDates++
			continue
		}
		postDate, _ := parseDate(raw.PostDate)

		code := raw.LoyalCode
		if strings.TrimSpace(code) == "" {
			code = core.MissingCode
		}

		txn := core.Transaction{
			CustomerID:  raw.CustCode,
			JournalID:   raw.Jrno,
			LoyalCode:   code,
			Amount:      parseAmount(raw.TxnAmount),
			TxnDate:     txnDate,
			PostDate:    postDate,
			Description: CleanDescription(raw.TxnDesc),
		}
		txn.Derive()

		years[txn.Year] = true
		out = append(out, txn)
	}

	stats.Retained = len(out)
	for y := range years {
		stats.Years = append(stats.Years, y)
	}
	sort.Ints(stats.Years)

	slog.InfoContext(ctx, "Prepared transactions",
		"raw_rows", stats.RawRows,
		"dropped_test", stats.DroppedTestRows,
		"dropped_bad_dates", stats.DroppedBadDates,
		"retained", stats.Retained,
		"years", stats.Years)
	return out, stats
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(s string) core.Points {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return core.MissingPoints()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.MissingPoints()
	}
	return core.ValidPoints(v)
}

// CleanDescription normalizes free-text transaction descriptions: known
// misspellings of the crypto-week campaign are unified, dots removed and the
// whole string lowercased.
func CleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	desc = strings.ReplaceAll(desc, "Крипто Вик", "Crypto Week")
	desc = strings.ReplaceAll(desc, "Кривто Вик", "Crypto Week")
	desc = strings.ReplaceAll(desc, ".", "")
	return strings.ToLower(desc)
}
