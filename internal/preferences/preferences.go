// Package preferences persists UI preferences in a YAML file.
package preferences

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
)

// Density controls how much detail each account row shows.
type Density string

const (
	DensityFull    Density = "full"
	DensityCompact Density = "compact"
)

func normalizeDensity(v any) Density {
	if s, ok := v.(string); ok && Density(s) == DensityCompact {
		return DensityCompact
	}
	return DensityFull
}

// Preferences is the persisted UI state.
type Preferences struct {
	Density          Density  `yaml:"card_density"`
	MaskedAccountIDs []string `yaml:"masked_account_ids"`
	HeaderCollapsed  bool     `yaml:"header_collapsed"`
	SessionCollapsed bool     `yaml:"session_collapsed"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{Density: DensityFull, MaskedAccountIDs: []string{}}
}

// rawPreferences accepts any value so malformed entries can be dropped
// instead of failing the whole file.
type rawPreferences struct {
	Density          any   `yaml:"card_density"`
	HeaderCollapsed  any   `yaml:"header_collapsed"`
	SessionCollapsed any   `yaml:"session_collapsed"`
	MaskedAccountIDs []any `yaml:"masked_account_ids"`
}

func (r rawPreferences) normalize() Preferences {
	p := Defaults()
	for _, v := range r.MaskedAccountIDs {
		if s, ok := v.(string); ok {
			p.MaskedAccountIDs = append(p.MaskedAccountIDs, s)
		}
	}
	p.Density = normalizeDensity(r.Density)
	p.HeaderCollapsed = r.HeaderCollapsed == true
	p.SessionCollapsed = r.SessionCollapsed == true
	return p
}

// Parse decodes preferences. Invalid documents yield the defaults.
func Parse(data []byte) Preferences {
	var raw rawPreferences
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Defaults()
	}
	return raw.normalize()
}

// Store holds preferences and writes every change to disk.
type Store struct {
	path  string
	prefs Preferences
	mu    sync.RWMutex
}

// Load reads preferences from path. A missing or corrupt file yields the
// defaults; only an empty path is an error.
func Load(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences path is empty")
	}

	s := &Store{path: path, prefs: Defaults()}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.prefs = Parse(data)
	case os.IsNotExist(err):
	default:
		logger.Warn("failed to read preferences, using defaults", "path", path, "error", err)
	}
	return s, nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.prefs
	p.MaskedAccountIDs = slices.Clone(p.MaskedAccountIDs)
	return p
}

// IsMasked reports whether the account's email should be hidden.
func (s *Store) IsMasked(accountID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.prefs.MaskedAccountIDs, accountID)
}

// ToggleMasked flips masking for accountID and returns the new state.
func (s *Store) ToggleMasked(accountID string) (bool, error) {
	var masked bool
	err := s.update(func(p *Preferences) {
		if i := slices.Index(p.MaskedAccountIDs, accountID); i >= 0 {
			p.MaskedAccountIDs = slices.Delete(slices.Clone(p.MaskedAccountIDs), i, i+1)
			return
		}
		p.MaskedAccountIDs = append(slices.Clone(p.MaskedAccountIDs), accountID)
		masked = true
	})
	return masked, err
}

// SetMasked replaces the set of masked account ids.
func (s *Store) SetMasked(ids []string) error {
	return s.update(func(p *Preferences) {
		p.MaskedAccountIDs = slices.Clone(ids)
		if p.MaskedAccountIDs == nil {
			p.MaskedAccountIDs = []string{}
		}
	})
}

// SetDensity sets the row density. Unknown values fall back to full.
func (s *Store) SetDensity(d Density) error {
	return s.update(func(p *Preferences) {
		p.Density = normalizeDensity(string(d))
	})
}

// ToggleDensity switches between full and compact rows.
func (s *Store) ToggleDensity() (Density, error) {
	var next Density
	err := s.update(func(p *Preferences) {
		if p.Density == DensityCompact {
			p.Density = DensityFull
		} else {
			p.Density = DensityCompact
		}
		next = p.Density
	})
	return next, err
}

// SetHeaderCollapsed collapses or expands the summary header.
func (s *Store) SetHeaderCollapsed(collapsed bool) error {
	return s.update(func(p *Preferences) { p.HeaderCollapsed = collapsed })
}

// SetSessionCollapsed collapses or expands the current session card.
func (s *Store) SetSessionCollapsed(collapsed bool) error {
	return s.update(func(p *Preferences) { p.SessionCollapsed = collapsed })
}

// update applies fn and persists the result. The in-memory value changes
// even if writing fails.
func (s *Store) update(fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	fn(&next)
	s.prefs = next

	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
