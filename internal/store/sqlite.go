package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joescharf/sb/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
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

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// revToNull converts an optional revision for SQLite storage.
func revToNull(r *models.Revision) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

func nullToRev(n sql.NullInt64) *models.Revision {
	if !n.Valid {
		return nil
	}
	r := models.Revision(n.Int64)
	return &r
}

// --- Archived sessions ---

func (s *SQLiteStore) ArchiveSession(ctx context.Context, a *models.ArchivedSession) error {
	if a.ID == "" {
		a.ID = models.NewULID()
	}
	if a.EndedAt.IsZero() {
		a.EndedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archived_sessions (id, working_copy, bad_revision, good_revision, culprit_revision, suspect_count, skip_count, outcome, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.WorkingCopy, revToNull(a.Bad), revToNull(a.Good), revToNull(a.Culprit),
		a.SuspectCount, a.SkipCount, string(a.Outcome), a.StartedAt, a.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.ArchivedSession, error) {
	a := &models.ArchivedSession{}
	var bad, good, culprit sql.NullInt64
	var outcome string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, working_copy, bad_revision, good_revision, culprit_revision, suspect_count, skip_count, outcome, started_at, ended_at
		FROM archived_sessions WHERE id = ?`, id,
	).Scan(&a.ID, &a.WorkingCopy, &bad, &good, &culprit,
		&a.SuspectCount, &a.SkipCount, &outcome, &a.StartedAt, &a.EndedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	a.Bad = nullToRev(bad)
	a.Good = nullToRev(good)
	a.Culprit = nullToRev(culprit)
	a.Outcome = models.SessionOutcome(outcome)
	return a, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, workingCopy string, limit int) ([]*models.ArchivedSession, error) {
	query := `SELECT id, working_copy, bad_revision, good_revision, culprit_revision, suspect_count, skip_count, outcome, started_at, ended_at
		FROM archived_sessions`
	var args []any

	if workingCopy != "" {
		query += " WHERE working_copy = ?"
		args = append(args, workingCopy)
	}
	query += " ORDER BY ended_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*models.ArchivedSession
	for rows.Next() {
		a := &models.ArchivedSession{}
		var bad, good, culprit sql.NullInt64
		var outcome string

		if err := rows.Scan(&a.ID, &a.WorkingCopy, &bad, &good, &culprit,
			&a.SuspectCount, &a.SkipCount, &outcome, &a.StartedAt, &a.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		a.Bad = nullToRev(bad)
		a.Good = nullToRev(good)
		a.Culprit = nullToRev(culprit)
		a.Outcome = models.SessionOutcome(outcome)
		sessions = append(sessions, a)
	}
	return sessions, rows.Err()
}
