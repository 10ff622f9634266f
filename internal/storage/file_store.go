package storage

import (
	"buildwatch/internal/providers"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// FileStore keeps the mapping in memory and rewrites the whole file on every
// mutation. The file is replaced through a temp file and rename so a reader
// never sees a half written document.
type FileStore struct {
	mu      sync.Mutex
	path    string
	data    Document
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewFileStore(path string, logger providers.Logger, metrics providers.MetricsProviderInterface) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileStore{
		path:    path,
		data:    Document{},
		logger:  logger,
		metrics: metrics,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = Document{}
			return s.writeFile([]byte("{}"))
		}
		return fmt.Errorf("read store file: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		s.data = Document{}
		return nil
	}

	doc, err := parseDocument(raw)
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Store file %s is invalid, resetting to empty: %s", s.path, err)
		s.data = Document{}
		return nil
	}
	s.data = doc
	return nil
}

func (s *FileStore) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode(key, dst)
}

func (s *FileStore) decode(key string, dst any) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneDocument(s.data)
	next[key] = raw
	return s.commit(next)
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	next := cloneDocument(s.data)
	delete(next, key)
	return s.commit(next)
}

func (s *FileStore) Update(key string, dst any, fn func(found bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.decode(key, dst)
	if err != nil {
		return err
	}
	if err = fn(found); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	raw, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	next := cloneDocument(s.data)
	next[key] = raw
	return s.commit(next)
}

func (s *FileStore) Reload() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	return cloneDocument(s.data), nil
}

func (s *FileStore) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.data, "", "  ")
}

func (s *FileStore) Restore(data []byte) error {
	doc, err := parseDocument(bytes.TrimSpace(data))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(doc)
}

func (s *FileStore) Close() error {
	return nil
}

// commit persists next and swaps it in only once the file write succeeded.
func (s *FileStore) commit(next Document) error {
	start := time.Now()
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err = s.writeFile(data); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	s.data = next
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (s *FileStore) writeFile(data []byte) error {
	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, s.path)
}
