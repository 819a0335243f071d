package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFileExtension = ".json"

// DefaultTTL is how long a narrative stays cached.
const DefaultTTL = 24 * time.Hour

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as JSON files in one directory. It is safe for
// concurrent use.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration
	now       func() time.Time

	mu sync.RWMutex
}

// NewFileStore creates the directory if needed. A disabled store accepts every
// call and returns ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttl time.Duration) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false, now: time.Now}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{directory: directory, enabled: true, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the store's clock. Exposed for testing.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Get returns the entry for key, ErrCacheNotFound, or ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	path := s.path(key)
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	if entry.IsExpired(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return &entry, nil
}

// Set writes text under key, replacing any existing entry.
func (s *FileStore) Set(key, model, text string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	now := s.now()
	data, err := json.MarshalIndent(Entry{
		Key:       key,
		Model:     model,
		Text:      text,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(s.ttl).UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tempPath := path + ".tmp"
	if err = os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	return s.sweep(func(*Entry) bool { return true })
}

// CleanupExpired removes expired or unreadable entries and returns how many
// were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	now := s.now()
	return s.sweep(func(e *Entry) bool { return e == nil || e.IsExpired(now) })
}

// Count returns the number of entries on disk, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.files()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// IsEnabled reports whether caching is active.
func (s *FileStore) IsEnabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// sweep removes every entry for which remove returns true. remove receives nil
// for files that cannot be decoded.
func (s *FileStore) sweep(remove func(*Entry) bool) (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.files()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range files {
		var entry *Entry
		if data, readErr := os.ReadFile(path); readErr == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil {
				entry = &e
			}
		}
		if !remove(entry) {
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), rmErr)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) files() ([]string, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == cacheFileExtension {
			files = append(files, filepath.Join(s.directory, e.Name()))
		}
	}
	return files, nil
}

// path maps a key to its file. Keys from Key are hex and need no escaping.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, filepath.Base(key)+cacheFileExtension)
}
