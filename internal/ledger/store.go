package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    products_per_category INTEGER NOT NULL,
    reviews_per_product INTEGER NOT NULL,
    max_scan INTEGER NOT NULL,
    meta_scanned INTEGER NOT NULL,
    review_scanned INTEGER NOT NULL,
    output_path TEXT NOT NULL,
    products_written INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ingest_run_categories (
    run_id TEXT NOT NULL REFERENCES ingest_runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    category TEXT NOT NULL,
    collected INTEGER NOT NULL,
    emitted INTEGER NOT NULL,
    PRIMARY KEY (run_id, position)
);
`

// CategoryCount is one category's collection outcome within a run.
type CategoryCount struct {
	Name      string
	Collected int
	Emitted   int
}

// Run is one recorded ingest run.
type Run struct {
	ID                  string
	StartedAt           time.Time
	FinishedAt          time.Time
	ProductsPerCategory int
	ReviewsPerProduct   int
	MaxScan             int
	MetaScanned         int
	ReviewScanned       int
	OutputPath          string
	ProductsWritten     int
	Categories          []CategoryCount
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun persists one completed run and its per-category counts.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_runs (
            id, started_at, finished_at,
            products_per_category, reviews_per_product, max_scan,
            meta_scanned, review_scanned, output_path, products_written
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.ProductsPerCategory,
		run.ReviewsPerProduct,
		run.MaxScan,
		run.MetaScanned,
		run.ReviewScanned,
		run.OutputPath,
		run.ProductsWritten,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, category := range run.Categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ingest_run_categories (run_id, position, category, collected, emitted)
             VALUES (?, ?, ?, ?, ?)`,
			run.ID, position, category.Name, category.Collected, category.Emitted,
		)
		if err != nil {
			return fmt.Errorf("insert run category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at,
                products_per_category, reviews_per_product, max_scan,
                meta_scanned, review_scanned, output_path, products_written
         FROM ingest_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID, &started, &finished,
			&run.ProductsPerCategory, &run.ReviewsPerProduct, &run.MaxScan,
			&run.MetaScanned, &run.ReviewScanned, &run.OutputPath, &run.ProductsWritten,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		if runs[i].Categories, err = s.runCategories(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) runCategories(ctx context.Context, runID string) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, collected, emitted
         FROM ingest_run_categories WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run categories: %w", err)
	}
	defer rows.Close()

	var categories []CategoryCount
	for rows.Next() {
		var category CategoryCount
		if err := rows.Scan(&category.Name, &category.Collected, &category.Emitted); err != nil {
			return nil, fmt.Errorf("scan run category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
