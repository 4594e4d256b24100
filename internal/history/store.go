// Package history persists the per-site navigation history: for every base
// URL, the last visited URLs in most-recently-visited-first order.
package history

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxEntriesPerSite caps the retained history per base URL.
const maxEntriesPerSite = 5

// Store is a file-backed map of base URL to recent URLs. Every mutation is
// persisted atomically before it returns.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string][]string
	logger  *zap.Logger
}

// NewStore opens the store at path, loading existing content. A missing
// file yields an empty store.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string][]string),
		logger:  logger.Named("history"),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			return nil, fmt.Errorf("failed to parse history file %s: %w", path, err)
		}
	}
	return s, nil
}

// Append records a visit. A URL already present for the base URL is
// relocated to the front instead of duplicated; the list never exceeds
// five entries.
func (s *Store) Append(baseURL, visited string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := s.entries[baseURL]
	updated := make([]string, 0, len(urls)+1)
	updated = append(updated, visited)
	for _, u := range urls {
		if u == visited {
			continue
		}
		updated = append(updated, u)
	}
	if len(updated) > maxEntriesPerSite {
		updated = updated[:maxEntriesPerSite]
	}
	s.entries[baseURL] = updated

	return s.persistLocked()
}

// Get returns the recorded URLs for a base URL, most recent first. The
// returned slice is a copy.
func (s *Store) Get(baseURL string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := s.entries[baseURL]
	out := make([]string, len(urls))
	copy(out, urls)
	return out
}

// persistLocked writes the whole map through a temp file and rename so a
// crash mid-write never corrupts the store. Caller holds s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	s.logger.Debug("History persisted", zap.String("path", s.path), zap.Int("sites", len(s.entries)))
	return nil
}

// BaseURL reduces a URL to its scheme+host grouping key.
func BaseURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q has no scheme or host", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
