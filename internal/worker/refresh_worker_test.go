package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/badyy8/Ardiin-erh/internal/amqp"
	"github.com/badyy8/Ardiin-erh/internal/analytics"
	"github.com/badyy8/Ardiin-erh/internal/cache"
	"github.com/badyy8/Ardiin-erh/internal/core"
	"github.com/badyy8/Ardiin-erh/internal/services"
	"github.com/badyy8/Ardiin-erh/internal/storage"
)

type stubStore struct {
	txns      []core.Transaction
	listCalls int
}

func (s *stubStore) ListTransactions(ctx context.Context, year int) ([]core.Transaction, error) {
	s.listCalls++
	var out []core.Transaction
	for _, t := range s.txns {
		if year == 0 || t.Year == year {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) Years(ctx context.Context) ([]int, error) {
	seen := map[int]bool{}
	var years []int
	for _, t := range s.txns {
		if !seen[t.Year] {
			seen[t.Year] = true
			years = append(years, t.Year)
		}
	}
	return years, nil
}

func (s *stubStore) Lookup(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *stubStore) LatestRun(ctx context.Context) (*storage.RunStats, error) {
	return nil, nil
}

type stubExporter struct {
	calls int
	year  int
	err   error
}

func (e *stubExporter) WriteMonthlyReport(ctx context.Context, year int, stats []analytics.MonthlyRewardStat) (string, error) {
	e.calls++
	e.year = year
	if e.err != nil {
		return "", e.err
	}
	return "Monthly!A1:H2", nil
}

func workerTxn(cust string, year int) core.Transaction {
	t := core.Transaction{
		CustomerID: cust,
		JournalID:  "J-" + cust,
		LoyalCode:  "ARD_APP",
		Amount:     core.ValidPoints(100),
		TxnDate:    time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	t.Derive()
	return t
}

func newWorkerService(store services.Store) *services.AnalyticsService {
	return services.NewAnalyticsService(store, cache.NewLRUCache[*services.YearBundle](8, time.Minute))
}

func TestHandleRefreshMessage(t *testing.T) {
	store := &stubStore{txns: []core.Transaction{workerTxn("C1", 2024), workerTxn("C2", 2025)}}
	svc := newWorkerService(store)
	exporter := &stubExporter{}
	w := NewRefreshWorker(svc, exporter)
	ctx := context.Background()

	// Warm the cache, then refresh; the stale bundle must be rebuilt.
	if _, err := svc.YearBundle(ctx, 2025); err != nil {
		t.Fatalf("warm bundle: %v", err)
	}
	readsBefore := store.listCalls

	msg := amqp.NewDatasetRefreshMessage(2, []int{2024, 2025})
	if err := w.HandleRefreshMessage(ctx, msg); err != nil {
		t.Fatalf("HandleRefreshMessage: %v", err)
	}

	if store.listCalls != readsBefore+2 {
		t.Errorf("expected both years rebuilt from storage, got %d extra reads", store.listCalls-readsBefore)
	}
	if exporter.calls != 1 || exporter.year != 2025 {
		t.Errorf("exporter should run once for the latest year, got calls=%d year=%d", exporter.calls, exporter.year)
	}
}

func TestHandleRefreshMessageExportFailureIsNotFatal(t *testing.T) {
	store := &stubStore{txns: []core.Transaction{workerTxn("C1", 2025)}}
	svc := newWorkerService(store)
	exporter := &stubExporter{err: errors.New("quota exceeded")}
	w := NewRefreshWorker(svc, exporter)

	msg := amqp.NewDatasetRefreshMessage(1, []int{2025})
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("export failure should not fail the refresh: %v", err)
	}
	if exporter.calls != 1 {
		t.Errorf("exporter calls = %d, want 1", exporter.calls)
	}
}

func TestHandleRefreshMessageWithoutExporter(t *testing.T) {
	store := &stubStore{txns: []core.Transaction{workerTxn("C1", 2025)}}
	w := NewRefreshWorker(newWorkerService(store), nil)

	msg := amqp.NewDatasetRefreshMessage(1, []int{2025})
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleRefreshMessage without exporter: %v", err)
	}
}
