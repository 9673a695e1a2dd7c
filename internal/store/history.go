package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reviewarena/arena/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// History is the run-history ledger on modernc.org/sqlite (pure Go, no CGO).
// It records every pipeline invocation and its per-task outcomes so past
// runs can be inspected after the fact. Result artifacts themselves live on
// disk; the ledger is bookkeeping only.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at the given path.
func OpenHistory(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes access through Go's pool, so concurrent worker goroutines
	// recording task outcomes never hit "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &History{db: db}, nil
}

// NewULID generates a new ULID string.
func NewULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (h *History) Migrate(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := h.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := h.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StartRun records the beginning of a pipeline run and returns it.
func (h *History) StartRun(ctx context.Context, phase string, force bool, prFilter, modelFilter string) (*models.Run, error) {
	run := &models.Run{
		ID:          NewULID(),
		Phase:       phase,
		Force:       force,
		PRFilter:    prFilter,
		ModelFilter: modelFilter,
		StartedAt:   time.Now().UTC(),
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, phase, force_rerun, pr_filter, model_filter, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Phase, boolToInt(run.Force), run.PRFilter, run.ModelFilter, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordTask appends one task outcome to a run.
func (h *History) RecordTask(ctx context.Context, rec *models.TaskRecord) error {
	if rec.ID == "" {
		rec.ID = NewULID()
	}
	rec.CreatedAt = time.Now().UTC()
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO task_records (id, run_id, mode, pr_id, model_id, status, detail, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Mode, rec.PRID, rec.ModelID, rec.Status, rec.Detail, rec.ElapsedMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task record: %w", err)
	}
	return nil
}

// FinishRun stamps a run's totals and finish time.
func (h *History) FinishRun(ctx context.Context, run *models.Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	_, err := h.db.ExecContext(ctx,
		`UPDATE runs SET tasks = ?, failed = ?, skipped = ?, finished_at = ? WHERE id = ?`,
		run.Tasks, run.Failed, run.Skipped, now, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest-first, up to limit (0 = all).
func (h *History) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `SELECT id, phase, force_rerun, pr_filter, model_filter, tasks, failed, skipped, started_at, finished_at
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var r models.Run
		var force int
		if err := rows.Scan(&r.ID, &r.Phase, &force, &r.PRFilter, &r.ModelFilter,
			&r.Tasks, &r.Failed, &r.Skipped, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Force = force != 0
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// ListTasks returns the task outcomes of one run in insertion order.
func (h *History) ListTasks(ctx context.Context, runID string) ([]*models.TaskRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, run_id, mode, pr_id, model_id, status, detail, elapsed_ms, created_at
		FROM task_records WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var recs []*models.TaskRecord
	for rows.Next() {
		var t models.TaskRecord
		if err := rows.Scan(&t.ID, &t.RunID, &t.Mode, &t.PRID, &t.ModelID,
			&t.Status, &t.Detail, &t.ElapsedMS, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task record: %w", err)
		}
		recs = append(recs, &t)
	}
	return recs, rows.Err()
}
