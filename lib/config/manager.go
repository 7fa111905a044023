package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"threepole/lib/dto"
	"threepole/lib/utils/logging"

	"github.com/fsnotify/fsnotify"
)

// settleDelay gives editors time to finish writing before a reload.
const settleDelay = 100 * time.Millisecond

// Change reports which files changed on disk.
type Change struct {
	Profiles    bool
	Preferences bool
}

// Manager owns the in-memory copy of the config files. It is safe for
// concurrent use.
type Manager struct {
	dir    string
	logger logging.Logger

	mu          sync.RWMutex
	profiles    Profiles
	preferences Preferences
}

// NewManager creates dir if needed and loads both files from it. Missing
// files yield defaults.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	m := &Manager{
		dir:    dir,
		logger: logging.NewLogger("CONFIG"),
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name)
}

// Load re-reads both files from disk.
func (m *Manager) Load() error {
	profiles, err := loadProfiles(m.path(ProfilesFile))
	if err != nil {
		return err
	}
	preferences, err := loadPreferences(m.path(PreferencesFile))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = profiles
	m.preferences = preferences
	return nil
}

// SelectedProfile implements playerdata.ProfileProvider.
func (m *Manager) SelectedProfile() (dto.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profiles.SelectedProfile == nil {
		return dto.Profile{}, false
	}
	return *m.profiles.SelectedProfile, true
}

func (m *Manager) Profiles() Profiles {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles.Clone()
}

func (m *Manager) Preferences() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preferences
}

// SetProfiles persists profiles and reports whether they differ from the
// previous value.
func (m *Manager) SetProfiles(profiles Profiles) (bool, error) {
	profiles = profiles.Clone().dedupe()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := writeYAML(m.path(ProfilesFile), profiles); err != nil {
		return false, err
	}
	changed := !m.profiles.Equal(profiles)
	m.profiles = profiles
	return changed, nil
}

// SetPreferences persists preferences and reports whether they differ from
// the previous value.
func (m *Manager) SetPreferences(preferences Preferences) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := writeYAML(m.path(PreferencesFile), preferences); err != nil {
		return false, err
	}
	changed := m.preferences != preferences
	m.preferences = preferences
	return changed, nil
}

// Watch reloads files edited outside the process and calls onChange when
// their content differs from memory. Writes made through the Manager do not
// trigger onChange. Watch blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context, onChange func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic replaces swap the inode under a file watch
	if err := watcher.Add(m.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	m.logger.Info("CONFIG_WATCH_STARTED", map[string]any{logging.DIRECTORY: m.dir})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			var change Change
			switch filepath.Base(event.Name) {
			case ProfilesFile:
				change.Profiles = true
			case PreferencesFile:
				change.Preferences = true
			default:
				continue
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settleDelay):
			}

			if change = m.reload(change); change.Profiles || change.Preferences {
				m.logger.Info("CONFIG_FILE_CHANGED", map[string]any{
					logging.FILENAME: filepath.Base(event.Name),
				})
				onChange(change)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("FILE_WATCHER_ERROR", err, nil)
		}
	}
}

// reload re-reads the files flagged in change and returns which of them
// actually differ from memory. Unparseable files keep the previous value.
func (m *Manager) reload(change Change) Change {
	var result Change

	if change.Profiles {
		profiles, err := loadProfiles(m.path(ProfilesFile))
		if err != nil {
			m.logger.Warn("CONFIG_RELOAD_FAILED", err, map[string]any{logging.FILENAME: ProfilesFile})
		} else {
			m.mu.Lock()
			result.Profiles = !m.profiles.Equal(profiles)
			m.profiles = profiles
			m.mu.Unlock()
		}
	}

	if change.Preferences {
		preferences, err := loadPreferences(m.path(PreferencesFile))
		if err != nil {
			m.logger.Warn("CONFIG_RELOAD_FAILED", err, map[string]any{logging.FILENAME: PreferencesFile})
		} else {
			m.mu.Lock()
			result.Preferences = m.preferences != preferences
			m.preferences = preferences
			m.mu.Unlock()
		}
	}

	return result
}
