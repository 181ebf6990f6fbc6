package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/yardops-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS yard_runs (
	id         TEXT PRIMARY KEY,
	site       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	report     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_yard_runs_site ON yard_runs(site);
CREATE INDEX IF NOT EXISTS idx_yard_runs_status ON yard_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, site string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO yard_runs (id, site, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, site, model.RunStatusRunning, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create run")
	}

	return &model.Run{
		ID:        id,
		Site:      site,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, report *model.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE yard_runs SET status = ?, report = ?, updated_at = ? WHERE id = ?`,
		model.RunStatusComplete, string(reportJSON), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE yard_runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		model.RunStatusFailed, cause, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: fail run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, site, status, report, error, created_at, updated_at FROM yard_runs WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, site, status, report, error, created_at, updated_at FROM yard_runs WHERE 1=1`
	var args []any
	if filter.Site != "" {
		query += ` AND site = ?`
		args = append(args, filter.Site)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var (
		run        model.Run
		reportJSON sql.NullString
		cause      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Site, &run.Status, &reportJSON, &cause, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var report model.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal report")
		}
		run.Report = &report
	}
	if cause.Valid {
		run.Error = cause.String
	}
	return &run, nil
}
