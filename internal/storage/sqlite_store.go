package storage

import (
	"buildwatch/internal/providers"
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

const sqliteUpsert = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SQLiteStore keeps one row per key, so a write only touches the key it
// changes. Update runs inside a transaction under the store lock.
type SQLiteStore struct {
	mu      sync.Mutex
	sqlDB   *sql.DB
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewSQLiteStore(path string, logger providers.Logger, metrics providers.MetricsProviderInterface) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB, logger: logger, metrics: metrics}, nil
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getRaw(q queryRower, key string) ([]byte, bool, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) Get(key string, dst any) (bool, error) {
	raw, ok, err := getRaw(s.sqlDB, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if _, err := s.sqlDB.Exec(sqliteUpsert, key, string(raw), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sqlDB.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Update(key string, dst any, fn func(found bool) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	raw, found, err := getRaw(tx, key)
	if err != nil {
		return err
	}
	if found {
		if err = json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
	}

	if err = fn(found); err != nil {
		if errors.Is(err, ErrNoChange) {
			_ = tx.Rollback()
			return nil
		}
		return err
	}

	encoded, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if _, err = tx.Exec(sqliteUpsert, key, string(encoded), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (s *SQLiteStore) Reload() (Document, error) {
	rows, err := s.sqlDB.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("select all: %w", err)
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		doc[key] = json.RawMessage(value)
	}
	return doc, rows.Err()
}

func (s *SQLiteStore) Snapshot() ([]byte, error) {
	doc, err := s.Reload()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *SQLiteStore) Restore(data []byte) (err error) {
	doc, err := parseDocument(bytes.TrimSpace(data))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	now := time.Now().UnixMilli()
	for key, value := range doc {
		if _, err = tx.Exec(sqliteUpsert, key, string(value), now); err != nil {
			return fmt.Errorf("restore %q: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
