package history

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"sitedeploy/internal/logger"
)

// Deployment is one recorded provisioning run.
type Deployment struct {
	ID        int64
	Subdomain string
	RepoURL   string
	HTTPS     bool
	Outcome   string
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Store persists run history in a local sqlite database. It is strictly
// best-effort: the deployment never fails because history could not be
// written.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// Open opens (creating if necessary) the history database at path and
// bootstraps the schema.
func Open(path string, log logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database: %s", path)
	}

	store := &Store{db: db, logger: log}
	if err := store.bootstrap(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) bootstrap() error {
	const schema = `
CREATE TABLE IF NOT EXISTS deployments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	subdomain  TEXT NOT NULL,
	repo_url   TEXT NOT NULL DEFAULT '',
	https      INTEGER NOT NULL DEFAULT 0,
	outcome    TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_deployments_subdomain ON deployments(subdomain);
`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to bootstrap history schema")
	}
	return nil
}

// Record inserts one deployment row. Errors are logged and swallowed.
func (s *Store) Record(d Deployment) {
	https := 0
	if d.HTTPS {
		https = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO deployments (subdomain, repo_url, https, outcome, elapsed_ms) VALUES (?, ?, ?, ?, ?)`,
		d.Subdomain, d.RepoURL, https, d.Outcome, d.Elapsed.Milliseconds(),
	)
	if err != nil && s.logger != nil {
		s.logger.Warn("Failed to record deployment history: %v", err)
	}
}

// Recent returns the newest limit deployments, newest first.
func (s *Store) Recent(limit int) ([]Deployment, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, subdomain, repo_url, https, outcome, elapsed_ms, created_at
		 FROM deployments ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query deployment history")
	}
	defer rows.Close()

	var result []Deployment
	for rows.Next() {
		var d Deployment
		var https int
		var elapsedMS int64
		if err := rows.Scan(&d.ID, &d.Subdomain, &d.RepoURL, &https, &d.Outcome, &elapsedMS, &d.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan deployment row")
		}
		d.HTTPS = https != 0
		d.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		result = append(result, d)
	}
	return result, rows.Err()
}
