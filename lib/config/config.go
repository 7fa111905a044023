// Package config persists the user's saved profiles and display preferences
// as YAML files in the config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"threepole/lib/dto"

	"gopkg.in/yaml.v3"
)

const (
	ProfilesFile    = "profiles.yaml"
	PreferencesFile = "preferences.yaml"
)

type Profiles struct {
	SavedProfiles   []dto.Profile `yaml:"saved_profiles" json:"savedProfiles"`
	SelectedProfile *dto.Profile  `yaml:"selected_profile" json:"selectedProfile"`
}

func (p Profiles) Clone() Profiles {
	clone := Profiles{SavedProfiles: slices.Clone(p.SavedProfiles)}
	if clone.SavedProfiles == nil {
		clone.SavedProfiles = []dto.Profile{}
	}
	if p.SelectedProfile != nil {
		selected := *p.SelectedProfile
		clone.SelectedProfile = &selected
	}
	return clone
}

func (p Profiles) Equal(other Profiles) bool {
	if !slices.Equal(p.SavedProfiles, other.SavedProfiles) {
		return false
	}
	if p.SelectedProfile == nil || other.SelectedProfile == nil {
		return p.SelectedProfile == other.SelectedProfile
	}
	return *p.SelectedProfile == *other.SelectedProfile
}

// dedupe drops repeated saved profiles, keeping the first occurrence.
func (p Profiles) dedupe() Profiles {
	seen := make(map[dto.Profile]struct{}, len(p.SavedProfiles))
	unique := make([]dto.Profile, 0, len(p.SavedProfiles))
	for _, profile := range p.SavedProfiles {
		if _, ok := seen[profile]; ok {
			continue
		}
		seen[profile] = struct{}{}
		unique = append(unique, profile)
	}
	p.SavedProfiles = unique
	return p
}

type Preferences struct {
	EnableOverlay             bool `yaml:"enable_overlay" json:"enableOverlay"`
	DisplayDailyClears        bool `yaml:"display_daily_clears" json:"displayDailyClears"`
	DisplayClearNotifications bool `yaml:"display_clear_notifications" json:"displayClearNotifications"`
	DisplayMilliseconds       bool `yaml:"display_milliseconds" json:"displayMilliseconds"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EnableOverlay:             true,
		DisplayDailyClears:        true,
		DisplayClearNotifications: true,
		DisplayMilliseconds:       true,
	}
}

func loadProfiles(path string) (Profiles, error) {
	profiles := Profiles{SavedProfiles: []dto.Profile{}}
	if err := readYAML(path, &profiles); err != nil {
		return Profiles{}, err
	}
	return profiles.dedupe(), nil
}

func loadPreferences(path string) (Preferences, error) {
	preferences := DefaultPreferences()
	if err := readYAML(path, &preferences); err != nil {
		return Preferences{}, err
	}
	return preferences, nil
}

// readYAML decodes path into out. A missing file leaves out untouched.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeYAML replaces path atomically so watchers never observe a partial file.
func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
