package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ Store = (*SQLite)(nil)

// SQLite is the local durable store: single-writer in-memory mutation with a
// synchronous full-state snapshot to a SQLite table after every committed
// transaction. One JSON payload per collection.
type SQLite struct {
	*Memory
	db   *sql.DB
	mu   sync.Mutex
	path string
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "olilab.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &SQLite{Memory: NewMemory(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := Snapshot{}
	targets := map[string]any{
		colItems:         &snap.Items,
		colUsers:         &snap.Users,
		colLogs:          &snap.Logs,
		colSuggestions:   &snap.Suggestions,
		colComments:      &snap.Comments,
		colLogComments:   &snap.LogComments,
		colNotifications: &snap.Notifications,
	}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		target, ok := targets[bucket]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if loaded {
		s.ImportState(snap)
	}
	return nil
}

func (s *SQLite) persist() (retErr error) {
	snap := s.ExportState()
	payloads := map[string]any{
		colItems:         snap.Items,
		colUsers:         snap.Users,
		colLogs:          snap.Logs,
		colSuggestions:   snap.Suggestions,
		colComments:      snap.Comments,
		colLogComments:   snap.LogComments,
		colNotifications: snap.Notifications,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range collections {
		data, err := json.Marshal(payloads[bucket])
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err := tx.Exec(
			`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			bucket, data,
		); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunTransaction applies fn in memory, then snapshots to SQLite. A failed
// snapshot restores the prior in-memory state so an errored transaction is
// never observable in later reads.
func (s *SQLite) RunTransaction(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.ExportState()
	if err := s.Memory.RunTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		s.ImportState(prior)
		return err
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *SQLite) Path() string { return s.path }
