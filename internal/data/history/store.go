package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Snapshot summarizes one completed run for trend inspection. It stores
// aggregate counts only, never the records themselves.
type Snapshot struct {
	Timestamp   time.Time
	Root        string
	FileCount   int
	RecordCount int
	DomainCount int
	CacheHit    bool
	Duration    time.Duration
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  ts_utc TEXT NOT NULL,
  root TEXT NOT NULL,
  file_count INTEGER NOT NULL,
  record_count INTEGER NOT NULL,
  domain_count INTEGER NOT NULL,
  cache_hit INTEGER NOT NULL DEFAULT 0,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (root, ts_utc)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_utc);
`)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveSnapshot(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	cacheHit := 0
	if snapshot.CacheHit {
		cacheHit = 1
	}

	_, err := s.db.Exec(`
INSERT INTO snapshots (ts_utc, root, file_count, record_count, domain_count, cache_hit, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(root, ts_utc) DO UPDATE SET
  file_count=excluded.file_count,
  record_count=excluded.record_count,
  domain_count=excluded.domain_count,
  cache_hit=excluded.cache_hit,
  duration_ms=excluded.duration_ms
`,
		snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
		snapshot.Root,
		snapshot.FileCount,
		snapshot.RecordCount,
		snapshot.DomainCount,
		cacheHit,
		snapshot.Duration.Milliseconds(),
	)
	return err
}

// RecentSnapshots returns up to limit snapshots for root, newest first.
func (s *Store) RecentSnapshots(root string, limit int) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
SELECT ts_utc, root, file_count, record_count, domain_count, cache_hit, duration_ms
FROM snapshots
WHERE root = ?
ORDER BY ts_utc DESC
LIMIT ?
`, root, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, limit)
	for rows.Next() {
		var (
			tsRaw      string
			cacheHit   int
			durationMS int64
			snapshot   Snapshot
		)
		if err := rows.Scan(
			&tsRaw,
			&snapshot.Root,
			&snapshot.FileCount,
			&snapshot.RecordCount,
			&snapshot.DomainCount,
			&cacheHit,
			&durationMS,
		); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts
		snapshot.CacheHit = cacheHit != 0
		snapshot.Duration = time.Duration(durationMS) * time.Millisecond
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// Prune keeps the newest keep snapshots per root and deletes the rest.
func (s *Store) Prune(root string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep <= 0 {
		return nil
	}

	_, err := s.db.Exec(`
DELETE FROM snapshots
WHERE root = ? AND ts_utc NOT IN (
  SELECT ts_utc FROM snapshots WHERE root = ? ORDER BY ts_utc DESC LIMIT ?
)
`, root, root, keep)
	return err
}
