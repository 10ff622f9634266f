// Package storage holds the key-value document every durable entity lives in.
//
// Two engines implement Store: FileStore keeps the whole mapping in memory and
// rewrites one JSON file on every mutation, SQLiteStore keeps one row per key.
// Callers only see the Store interface.
package storage

import (
	"buildwatch/internal/providers"
	"buildwatch/internal/structures"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

const (
	KeyTitles        = "titles"
	KeyAnnouncements = "announcements"
	KeyAdmins        = "admins"
	KeyTemplates     = "templates"
	KeyUsers         = "users"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var (
	// ErrNoChange aborts an Update without writing anything.
	ErrNoChange = errors.New("storage: no change")
	// ErrInvalidSnapshot is returned by Restore for data that is not a JSON object.
	ErrInvalidSnapshot = errors.New("storage: snapshot is not a JSON object")
)

// Document is the full persisted mapping, key to raw JSON value.
type Document map[string]json.RawMessage

type Store interface {
	// Get decodes the value stored under key into dst and reports whether the key exists.
	Get(key string, dst any) (bool, error)
	// Set overwrites key and persists synchronously.
	Set(key string, value any) error
	Remove(key string) error
	// Update runs a read-modify-write of key under the store lock: the current
	// value is decoded into dst, fn mutates dst, and dst is written back unless
	// fn returns an error (ErrNoChange skips the write without failing).
	Update(key string, dst any, fn func(found bool) error) error
	// Reload re-reads the backing storage, discarding in-memory state.
	Reload() (Document, error)
	// Snapshot returns the whole mapping as one indented JSON document.
	Snapshot() ([]byte, error)
	// Restore replaces the whole mapping with a snapshot.
	Restore(data []byte) error
	Close() error
}

func NewStore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Store, error) {
	var (
		store Store
		err   error
	)
	switch conf.Storage.Driver {
	case DriverSQLite:
		store, err = NewSQLiteStore(conf.Storage.FilePath, logger, metrics)
	case DriverJSON, "":
		store, err = NewFileStore(conf.Storage.FilePath, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = EnsureDefaults(store, conf.Auth.AdminTokens); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}
	logger.Infof(providers.TypeApp, "Store ready (%s) at %s", conf.Storage.Driver, conf.Storage.FilePath)
	return store, nil
}

func parseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	if doc == nil {
		return nil, ErrInvalidSnapshot
	}
	return doc, nil
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
