package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/storage"
	"github.com/dyike/AdvisorGo/pkg/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

// Store keeps run history in SQLite: one row per run and one per task output.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Recorder = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, wrap("open history", err)
	}
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    ticker TEXT NOT NULL,
    company_name TEXT,
    market TEXT,
    model TEXT,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    report_path TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_outputs (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    task TEXT NOT NULL,
    agent TEXT,
    content TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    PRIMARY KEY(run_id, task)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return wrap("init schema", err)
	}
	return nil
}

func (s *Store) StartRun(ctx context.Context, run storage.RunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if run.Status == "" {
		run.Status = storage.StatusRunning
	}
	now := s.now().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, ticker, company_name, market, model, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    model=excluded.model,
    status=excluded.status,
    updated_at=excluded.updated_at
`, run.ID, run.Ticker, run.CompanyName, run.Market, run.Model, run.Status, now, now)
	if err != nil {
		return wrap("insert run", err)
	}
	return nil
}

// RecordTask stores a task output; re-recording a task replaces its content.
func (s *Store) RecordTask(ctx context.Context, runID string, out models.TaskOutput) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO task_outputs (run_id, seq, task, agent, content, created_at)
VALUES (?, (SELECT COUNT(*) + 1 FROM task_outputs WHERE run_id = ?), ?, ?, ?, ?)
ON CONFLICT(run_id, task) DO UPDATE SET
    agent=excluded.agent,
    content=excluded.content
`, runID, runID, out.Task, out.Agent, out.Text, s.now().Format(timeLayout))
	if err != nil {
		return wrap("insert task output", err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, run storage.RunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return nil
	}
	if run.Status == "" {
		run.Status = storage.StatusDone
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE runs
SET status = ?,
    model = CASE WHEN ? <> '' THEN ? ELSE model END,
    error = ?,
    report_path = ?,
    updated_at = ?
WHERE id = ?
`, run.Status, run.Model, run.Model, run.Error, run.ReportPath, s.now().Format(timeLayout), run.ID)
	if err != nil {
		return wrap("update run", err)
	}
	return nil
}

// ListRuns returns the latest runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ticker, company_name, market, model, status, error, report_path, created_at, updated_at
FROM runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, wrap("list runs", err)
	}
	defer rows.Close()

	var runs []storage.RunRecord
	for rows.Next() {
		var (
			rec                storage.RunRecord
			created, updated   string
			company, mkt, name sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Ticker, &company, &mkt, &name, &rec.Status, &rec.Error, &rec.ReportPath, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CompanyName, rec.Market, rec.Model = company.String, mkt.String, name.String
		rec.CreatedAt = parseTime(created)
		rec.UpdatedAt = parseTime(updated)
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return runs, nil
}

func (s *Store) ListTaskOutputs(ctx context.Context, runID string) ([]storage.TaskRecord, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, seq, task, agent, content, created_at
FROM task_outputs
WHERE run_id = ?
ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, wrap("list task outputs", err)
	}
	defer rows.Close()

	var out []storage.TaskRecord
	for rows.Next() {
		var (
			rec     storage.TaskRecord
			agent   sql.NullString
			created string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Output.Task, &agent, &rec.Output.Text, &created); err != nil {
			return nil, fmt.Errorf("scan task output: %w", err)
		}
		rec.Output.Agent = agent.String
		rec.CreatedAt = parseTime(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list task outputs rows: %w", err)
	}
	return out, nil
}

// OpenRecorder opens the history store, degrading to storage.Noop when the
// database cannot be opened.
func OpenRecorder(dbPath string) (storage.Recorder, func() error) {
	s, err := Open(dbPath)
	if err != nil {
		log.Printf("[History] disabled: %v", err)
		return storage.Noop{}, func() error { return nil }
	}
	return s, s.Close
}

// wrap keeps storage.ErrReadOnly in the chain for read-only failures.
func wrap(op string, err error) error {
	if sqlite.IsReadOnly(err) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrReadOnly, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseTime(raw string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
