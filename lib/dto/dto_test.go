package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerDataStatus_CloneIsDeep(t *testing.T) {
	msg := "boom"
	status := PlayerDataStatus{
		LastUpdate: &PlayerData{
			CurrentActivity: CurrentActivity{ActivityInfo: &ActivityInfo{Name: "Vault of Glass", ActivityModes: []int{4}}},
			ActivityHistory: []CompletedActivity{{InstanceId: "1", Modes: []int{4, 7}}},
			ProfileInfo:     ProfileInfo{CharacterIds: []string{"a"}},
		},
		Error: &msg,
	}

	clone := status.Clone()
	clone.LastUpdate.CurrentActivity.ActivityInfo.ActivityModes[0] = 99
	clone.LastUpdate.ActivityHistory[0].Modes[0] = 99
	clone.LastUpdate.ProfileInfo.CharacterIds[0] = "b"
	*clone.Error = "changed"

	assert.Equal(t, 4, status.LastUpdate.CurrentActivity.ActivityInfo.ActivityModes[0])
	assert.Equal(t, 4, status.LastUpdate.ActivityHistory[0].Modes[0])
	assert.Equal(t, "a", status.LastUpdate.ProfileInfo.CharacterIds[0])
	assert.Equal(t, "boom", *status.Error)
}

func TestPlayerDataStatus_EmptyJSON(t *testing.T) {
	raw, err := json.Marshal(PlayerDataStatus{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastUpdate":null,"error":null}`, string(raw))
}

func TestCompletedActivity_Equal(t *testing.T) {
	period := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	a := CompletedActivity{Period: period, InstanceId: "1", Modes: []int{4}, Completed: true}
	b := a
	b.Modes = []int{4}

	assert.True(t, a.Equal(b))
	b.Modes = []int{4, 7}
	assert.False(t, a.Equal(b))
	assert.Equal(t, 0, ComparePeriod(a, b))
}
