package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/badyy8/Ardiin-erh/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository holds the prepared reward dataset. One load run replaces
// the previous dataset atomically, so readers never observe a half-written
// table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RunStats records the outcome of one dataset load.
type RunStats struct {
	LoadedAt        time.Time `json:"loaded_at"`
	RawRows         int       `json:"raw_rows"`
	DroppedTestRows int       `json:"dropped_test_rows"`
	DroppedBadDates int       `json:"dropped_bad_dates"`
	Retained        int       `json:"retained"`
}

const dateLayout = "2006-01-02 15:04:05"

// ReplaceTransactions swaps in a freshly prepared dataset in a single
// transaction and records the run stats alongside it.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, txns []core.Transaction, stats RunStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			customer_id, journal_id, loyal_code, amount,
			txn_date, post_date, description,
			year, month_num, month_name, year_month, code_group
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		var amount sql.NullFloat64
		if t.Amount.Valid {
			amount = sql.NullFloat64{Float64: t.Amount.Value, Valid: true}
		}
		var postDate sql.NullString
		if !t.PostDate.IsZero() {
			postDate = sql.NullString{String: t.PostDate.Format(dateLayout), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			t.CustomerID, t.JournalID, t.LoyalCode, amount,
			t.TxnDate.Format(dateLayout), postDate, t.Description,
			t.Year, t.MonthNum, t.MonthName, t.YearMonth, string(t.CodeGroup),
		); err != nil {
			return fmt.Errorf("insert transaction %s/%s: %w", t.CustomerID, t.JournalID, err)
		}
	}

	loadedAt := stats.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dataset_runs (loaded_at, raw_rows, dropped_test_rows, dropped_bad_dates, retained)
		VALUES (?, ?, ?, ?, ?)`,
		loadedAt.Format(dateLayout), stats.RawRows, stats.DroppedTestRows, stats.DroppedBadDates, stats.Retained,
	); err != nil {
		return fmt.Errorf("record dataset run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Dataset replaced in SQLite", "rows", len(txns))
	return nil
}

// ListTransactions returns the prepared dataset for one calendar year in
// stored order. Year 0 returns everything.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, year int) ([]core.Transaction, error) {
	query := `
		SELECT customer_id, journal_id, loyal_code, amount,
		       txn_date, post_date, description,
		       year, month_num, month_name, year_month, code_group
		FROM transactions`
	args := []any{}
	if year != 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			amount   sql.NullFloat64
			txnDate  string
			postDate sql.NullString
			group    string
		)
		if err := rows.Scan(
			&t.CustomerID, &t.JournalID, &t.LoyalCode, &amount,
			&txnDate, &postDate, &t.Description,
			&t.Year, &t.MonthNum, &t.MonthName, &t.YearMonth, &group,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if amount.Valid {
			t.Amount = core.ValidPoints(amount.Float64)
		}
		if t.TxnDate, err = time.Parse(dateLayout, txnDate); err != nil {
			return nil, fmt.Errorf("parse txn_date %q: %w", txnDate, err)
		}
		if postDate.Valid {
			if t.PostDate, err = time.Parse(dateLayout, postDate.String); err != nil {
				return nil, fmt.Errorf("parse post_date %q: %w", postDate.String, err)
			}
		}
		t.CodeGroup = core.Category(group)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// Years lists the distinct calendar years present in the dataset, ascending.
func (r *SQLiteRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT year FROM transactions ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ReplaceLookup swaps the loyalty-code description table.
func (r *SQLiteRepository) ReplaceLookup(ctx context.Context, lookup map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM code_lookup`); err != nil {
		return fmt.Errorf("clear code lookup: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO code_lookup (loyal_code, description) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare lookup insert: %w", err)
	}
	defer stmt.Close()

	for code, desc := range lookup {
		if _, err := stmt.ExecContext(ctx, code, desc); err != nil {
			return fmt.Errorf("insert lookup %s: %w", code, err)
		}
	}
	return tx.Commit()
}

// Lookup returns the loyalty-code description table.
func (r *SQLiteRepository) Lookup(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT loyal_code, description FROM code_lookup`)
	if err != nil {
		return nil, fmt.Errorf("query code lookup: %w", err)
	}
	defer rows.Close()

	lookup := make(map[string]string)
	for rows.Next() {
		var code, desc string
		if err := rows.Scan(&code, &desc); err != nil {
			return nil, fmt.Errorf("scan lookup row: %w", err)
		}
		lookup[code] = desc
	}
	return lookup, rows.Err()
}

// LatestRun returns the stats of the most recent dataset load, or nil when
// no load has happened yet.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (*RunStats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT loaded_at, raw_rows, dropped_test_rows, dropped_bad_dates, retained
		FROM dataset_runs ORDER BY id DESC LIMIT 1`)

	var (
		stats    RunStats
		loadedAt string
	)
	err := row.Scan(&loadedAt, &stats.RawRows, &stats.DroppedTestRows, &stats.DroppedBadDates, &stats.Retained)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan dataset run: %w", err)
	}
	if stats.LoadedAt, err = time.Parse(dateLayout, loadedAt); err != nil {
		return nil, fmt.Errorf("parse loaded_at %q: %w", loadedAt, err)
	}
	return &stats, nil
}
