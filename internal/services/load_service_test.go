package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/badyy8/Ardiin-erh/internal/loader"
	"github.com/badyy8/Ardiin-erh/internal/storage"
)

type fakeSource struct {
	records []loader.RawRecord
	err     error
}

func (f *fakeSource) ReadTransactions(ctx context.Context) ([]loader.RawRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newLoadTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "rewards.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadServiceRun(t *testing.T) {
	source := &fakeSource{records: []loader.RawRecord{
		{CustCode: "C1", Jrno: "J1", LoyalCode: "ARD_APP", TxnAmount: "100", TxnDate: "2025-03-01 10:00:00", TxnDesc: "Ard app"},
		{CustCode: "C2", Jrno: "J2", LoyalCode: "BAGANUUR", TxnAmount: "250", TxnDate: "2024-07-15 09:30:00", TxnDesc: "Baganuur"},
		{CustCode: "C3", Jrno: "J3", LoyalCode: "ARD_APP", TxnAmount: "50", TxnDate: "not-a-date", TxnDesc: "bad row"},
		{CustCode: "C4", Jrno: "J4", LoyalCode: "ARD_APP", TxnAmount: "10", TxnDate: "2025-03-02 10:00:00", TxnDesc: "Тест"},
	}}
	repo := newLoadTestRepo(t)
	svc := NewLoadService(source, repo, nil, false)

	stats, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stats.RawRows != 4 {
		t.Errorf("raw rows = %d, want 4", stats.RawRows)
	}
	if stats.DroppedTestRows != 1 {
		t.Errorf("dropped test rows = %d, want 1", stats.DroppedTestRows)
	}
	if stats.DroppedBadDates != 1 {
		t.Errorf("dropped bad dates = %d, want 1", stats.DroppedBadDates)
	}
	if stats.Retained != 2 {
		t.Errorf("retained = %d, want 2", stats.Retained)
	}

	txns, err := repo.ListTransactions(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("stored transactions = %d, want 2", len(txns))
	}

	run, err := repo.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run == nil || run.Retained != 2 {
		t.Errorf("run stats = %+v, want retained 2", run)
	}
}

func TestLoadServiceRunReplacesDataset(t *testing.T) {
	repo := newLoadTestRepo(t)

	first := &fakeSource{records: []loader.RawRecord{
		{CustCode: "C1", Jrno: "J1", LoyalCode: "ARD_APP", TxnAmount: "100", TxnDate: "2025-03-01 10:00:00"},
		{CustCode: "C2", Jrno: "J2", LoyalCode: "ARD_APP", TxnAmount: "200", TxnDate: "2025-03-02 10:00:00"},
	}}
	if _, err := NewLoadService(first, repo, nil, false).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := &fakeSource{records: []loader.RawRecord{
		{CustCode: "C9", Jrno: "J9", LoyalCode: "BAGANUUR", TxnAmount: "500", TxnDate: "2025-04-01 10:00:00"},
	}}
	if _, err := NewLoadService(second, repo, nil, false).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	txns, err := repo.ListTransactions(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("stored transactions = %d, want 1 after replace", len(txns))
	}
	if txns[0].CustomerID != "C9" {
		t.Errorf("customer = %q, want C9", txns[0].CustomerID)
	}
}

func TestLoadServiceRunSourceError(t *testing.T) {
	repo := newLoadTestRepo(t)
	svc := NewLoadService(&fakeSource{err: errors.New("connection reset")}, repo, nil, false)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestLoadServiceLoadLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookup.csv")
	data := "LOYAL_CODE,TXN_DESC\nARD_APP,ард апп урамшуулал\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write lookup: %v", err)
	}

	repo := newLoadTestRepo(t)
	svc := NewLoadService(&fakeSource{}, repo, nil, false)

	if err := svc.LoadLookup(context.Background(), path); err != nil {
		t.Fatalf("load lookup: %v", err)
	}

	lookup, err := repo.Lookup(context.Background())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if lookup["ARD_APP"] != "Ард апп урамшуулал" {
		t.Errorf("lookup[ARD_APP] = %q, want capitalized description", lookup["ARD_APP"])
	}
}
