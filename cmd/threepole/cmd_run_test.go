package main

import (
	"errors"
	"testing"

	"threepole/lib/config"
	"threepole/lib/dto"
	"threepole/lib/messaging/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct {
	routes []string
}

func (p *failingPublisher) PublishMessage(route string, body any) error {
	p.routes = append(p.routes, route)
	return errors.New("hub closed")
}

func (p *failingPublisher) PublishRawMessage(route string, body []byte) error {
	return p.PublishMessage(route, body)
}

func TestOnConfigChange_AppliesWhenPublishFails(t *testing.T) {
	store, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	profile := dto.Profile{MembershipType: 3, MembershipId: "4611686018467284386"}
	_, err = store.SetProfiles(config.Profiles{SavedProfiles: []dto.Profile{profile}, SelectedProfile: &profile})
	require.NoError(t, err)

	publisher := &failingPublisher{}
	resets := 0
	var applied []config.Preferences
	handle := onConfigChange(store, publisher, func() { resets++ }, func(p config.Preferences) {
		applied = append(applied, p)
	})

	handle(config.Change{Profiles: true, Preferences: true})

	assert.Equal(t, []string{routing.ProfilesUpdate, routing.PreferencesUpdate}, publisher.routes)
	assert.Equal(t, 1, resets)
	assert.Equal(t, []config.Preferences{config.DefaultPreferences()}, applied)
}

func TestOnConfigChange_OnlyChangedFile(t *testing.T) {
	store, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	publisher := &failingPublisher{}
	resets := 0
	applies := 0
	handle := onConfigChange(store, publisher, func() { resets++ }, func(config.Preferences) { applies++ })

	handle(config.Change{Preferences: true})

	assert.Equal(t, []string{routing.PreferencesUpdate}, publisher.routes)
	assert.Zero(t, resets)
	assert.Equal(t, 1, applies)
}
