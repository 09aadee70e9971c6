package cache_store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// Entry is the on-disk layout: one JSON file per key under the cache root.
// An entry is valid only when its Version matches the current run's version;
// anything else is a miss.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Hash      string          `json:"hash"`
}

// Store is a content-addressed cache of prior generation results. Corruption
// or I/O failure never fails a run, it only forces a recompute.
type Store struct {
	root    string
	version string
	mutex   sync.RWMutex
}

// NewStore creates a cache store rooted at dir. If dir is empty, it defaults
// to ".docgen-cache" in the current working directory.
func NewStore(dir string, version string) (*Store, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = filepath.Join(cwd, ".docgen-cache")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{root: dir, version: version}, nil
}

// keyFile hashes the key string so arbitrary keys (including path separators)
// map to a safe filename.
func (s *Store) keyFile(key string) string {
	return filepath.Join(s.root, fmt.Sprintf("%016x.json", xxh3.HashString(key)))
}

// Get reads the value stored under key into out. It returns false, never an
// error, on missing file, parse failure, or version mismatch.
func (s *Store) Get(key string, out interface{}) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(s.keyFile(key))
	if err != nil {
		return false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}
	if entry.Version != s.version {
		return false
	}
	if err := json.Unmarshal(entry.Data, out); err != nil {
		return false
	}
	return true
}

// Set stores value under key. The write is atomic: the entry is written to a
// temp file and renamed into place, so a failed write leaves the prior state.
func (s *Store) Set(key string, value interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	entry := Entry{
		Data:      raw,
		Timestamp: time.Now(),
		Version:   s.version,
		Hash:      fmt.Sprintf("%016x", xxh3.HashString(key)),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	path := s.keyFile(key)
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit cache file: %w", err)
	}
	return nil
}

// Has reports whether a valid entry exists for key under the current version.
func (s *Store) Has(key string) bool {
	var ignored json.RawMessage
	return s.Get(key, &ignored)
}

// Delete removes the entry for key. Missing entries are not an error.
func (s *Store) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.keyFile(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every cache entry under the root.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	files, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		os.Remove(filepath.Join(s.root, file.Name()))
	}
	return nil
}

// Stats returns basic storage statistics for the reset-cache command.
func (s *Store) Stats() (map[string]interface{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	files, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	count := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		totalSize += info.Size()
		count++
	}

	stats := make(map[string]interface{})
	stats["cache_files"] = count
	stats["total_size"] = totalSize
	stats["cache_dir"] = s.root
	return stats, nil
}

// Dir returns the cache root directory.
func (s *Store) Dir() string {
	return s.root
}
