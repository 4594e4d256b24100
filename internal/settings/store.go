// Package settings persists the externally-owned engine settings and the
// per-website prompt overrides blended into fill and ghost-writer cycles.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WebsiteOverride carries the prompts an operator pinned for one base URL.
type WebsiteOverride struct {
	FillerPrompt      string `json:"fillerPrompt,omitempty"`
	GhostWriterPrompt string `json:"ghostWriterPrompt,omitempty"`
}

// stored is the on-disk shape: the settings plus the override map.
type stored struct {
	schemas.Settings
	WebsiteOverrides map[string]WebsiteOverride `json:"websiteOverrides,omitempty"`
}

// Store is the file-backed settings store. Loading merges the file over the
// construction-time defaults, so a partial file never zeroes a setting.
type Store struct {
	mu       sync.Mutex
	path     string
	defaults schemas.Settings
	logger   *zap.Logger
}

// NewStore builds a store. The file is read lazily on Load.
func NewStore(path string, defaults schemas.Settings, logger *zap.Logger) *Store {
	return &Store{
		path:     path,
		defaults: defaults,
		logger:   logger.Named("settings"),
	}
}

// Load returns the effective settings: the file content merged over the
// defaults. A missing file yields the defaults unchanged.
func (s *Store) Load() (schemas.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return schemas.Settings{}, err
	}
	return st.Settings, nil
}

// Save replaces the persisted settings, preserving any website overrides
// already on disk.
func (s *Store) Save(settings schemas.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return err
	}
	st.Settings = settings
	return s.persistLocked(st)
}

// Overrides returns the prompt overrides recorded for a base URL.
func (s *Store) Overrides(baseURL string) (WebsiteOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return WebsiteOverride{}, err
	}
	return st.WebsiteOverrides[baseURL], nil
}

// SetOverride records prompt overrides for a base URL. Empty prompts clear
// the entry.
func (s *Store) SetOverride(baseURL string, o WebsiteOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return err
	}
	if st.WebsiteOverrides == nil {
		st.WebsiteOverrides = make(map[string]WebsiteOverride)
	}
	if o == (WebsiteOverride{}) {
		delete(st.WebsiteOverrides, baseURL)
	} else {
		st.WebsiteOverrides[baseURL] = o
	}
	return s.persistLocked(st)
}

// EffectivePrompts blends the prompt sources for one site: an explicit
// per-call prompt wins, then the site override, then the stored default.
func (s *Store) EffectivePrompts(baseURL, customFiller, customGhostWriter string) (filler, ghostWriter string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return "", "", err
	}
	override := st.WebsiteOverrides[baseURL]

	filler = firstNonEmpty(customFiller, override.FillerPrompt, st.Filler.Prompt)
	ghostWriter = firstNonEmpty(customGhostWriter, override.GhostWriterPrompt, st.GhostWriter.Prompt)
	return filler, ghostWriter, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Store) loadLocked() (stored, error) {
	st := stored{Settings: s.defaults}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return stored{}, fmt.Errorf("failed to read settings file %s: %w", s.path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &st); err != nil {
			return stored{}, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
		}
	}
	return st, nil
}

func (s *Store) persistLocked(st stored) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	s.logger.Debug("Settings persisted", zap.String("path", s.path))
	return nil
}
