package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"threepole/lib/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hunter  = dto.Profile{MembershipType: 3, MembershipId: "4611686018467284386"}
	warlock = dto.Profile{MembershipType: 1, MembershipId: "4611686018429999999"}
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewManager_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	m, err := NewManager(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, DefaultPreferences(), m.Preferences())
	assert.Empty(t, m.Profiles().SavedProfiles)
	_, ok := m.SelectedProfile()
	assert.False(t, ok)
}

func TestNewManager_LoadsAndDeduplicatesProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProfilesFile, `
saved_profiles:
  - {account_platform: 3, account_id: "4611686018467284386"}
  - {account_platform: 1, account_id: "4611686018429999999"}
  - {account_platform: 3, account_id: "4611686018467284386"}
selected_profile: {account_platform: 1, account_id: "4611686018429999999"}
`)

	m, err := NewManager(dir)

	require.NoError(t, err)
	assert.Equal(t, []dto.Profile{hunter, warlock}, m.Profiles().SavedProfiles)
	selected, ok := m.SelectedProfile()
	require.True(t, ok)
	assert.Equal(t, warlock, selected)
}

func TestNewManager_PartialPreferencesKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, PreferencesFile, "enable_overlay: false\n")

	m, err := NewManager(dir)

	require.NoError(t, err)
	assert.Equal(t, Preferences{
		EnableOverlay:             false,
		DisplayDailyClears:        true,
		DisplayClearNotifications: true,
		DisplayMilliseconds:       true,
	}, m.Preferences())
}

func TestNewManager_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ProfilesFile, "saved_profiles: {nope")

	_, err := NewManager(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), ProfilesFile)
}

func TestManager_SetProfilesPersists(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	changed, err := m.SetProfiles(Profiles{
		SavedProfiles:   []dto.Profile{hunter, hunter},
		SelectedProfile: &hunter,
	})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = m.SetProfiles(Profiles{SavedProfiles: []dto.Profile{hunter}, SelectedProfile: &hunter})
	require.NoError(t, err)
	assert.False(t, changed)

	reloaded, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, []dto.Profile{hunter}, reloaded.Profiles().SavedProfiles)
	selected, ok := reloaded.SelectedProfile()
	require.True(t, ok)
	assert.Equal(t, hunter, selected)
}

func TestManager_ProfilesAreCopies(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	_, err = m.SetProfiles(Profiles{SavedProfiles: []dto.Profile{hunter}, SelectedProfile: &hunter})
	require.NoError(t, err)

	profiles := m.Profiles()
	profiles.SavedProfiles[0] = warlock
	profiles.SelectedProfile.MembershipId = "0"

	selected, _ := m.SelectedProfile()
	assert.Equal(t, hunter, selected)
	assert.Equal(t, hunter, m.Profiles().SavedProfiles[0])
}

func TestManager_SetPreferences(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	prefs := DefaultPreferences()
	prefs.DisplayMilliseconds = false
	changed, err := m.SetPreferences(prefs)
	require.NoError(t, err)
	assert.True(t, changed)

	reloaded, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, prefs, reloaded.Preferences())
}

func TestManager_WatchReportsExternalEdits(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	changes := make(chan Change, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, func(c Change) { changes <- c })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Let the watcher register before editing
	time.Sleep(50 * time.Millisecond)

	writeFile(t, dir, ProfilesFile, `
saved_profiles:
  - {account_platform: 3, account_id: "4611686018467284386"}
selected_profile: {account_platform: 3, account_id: "4611686018467284386"}
`)

	select {
	case change := <-changes:
		assert.True(t, change.Profiles)
		assert.False(t, change.Preferences)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	selected, ok := m.SelectedProfile()
	require.True(t, ok)
	assert.Equal(t, hunter, selected)
}

func TestManager_WatchIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	changes := make(chan Change, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, func(c Change) { changes <- c })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(50 * time.Millisecond)

	_, err = m.SetProfiles(Profiles{SavedProfiles: []dto.Profile{hunter}, SelectedProfile: &hunter})
	require.NoError(t, err)
	writeFile(t, dir, PreferencesFile, "display_daily_clears: false\n")

	select {
	case change := <-changes:
		assert.False(t, change.Profiles, "own write reported as external change")
		assert.True(t, change.Preferences)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	assert.False(t, m.Preferences().DisplayDailyClears)
}
