package dto

import (
	"slices"
	"time"
)

// LatestCharacterActivity is the live activity of a single character.
// A CurrentActivityHash of 0 means the character is not in an activity.
type LatestCharacterActivity struct {
	CharacterId         string    `json:"characterId"`
	DateActivityStarted time.Time `json:"dateActivityStarted"`
	CurrentActivityHash uint32    `json:"currentActivityHash"`
}

// CharacterActivities is the component 204 view of a profile.
// Activities is nil when the profile's activity data is privacy gated.
type CharacterActivities struct {
	Privacy    int
	Activities []LatestCharacterActivity
}

type ActivityInfo struct {
	Name            string `json:"name"`
	ActivityModes   []int  `json:"activityModes"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

func (a ActivityInfo) Clone() ActivityInfo {
	a.ActivityModes = slices.Clone(a.ActivityModes)
	return a
}

type CompletedActivity struct {
	Period                  time.Time `json:"period"`
	InstanceId              string    `json:"instanceId"`
	ActivityHash            uint32    `json:"activityHash"`
	Modes                   []int     `json:"modes"`
	Completed               bool      `json:"completed"`
	ActivityDuration        string    `json:"activityDuration"`
	ActivityDurationSeconds int       `json:"activityDurationSeconds"`
}

// Equal compares every field, including modes.
func (c CompletedActivity) Equal(o CompletedActivity) bool {
	return c.Period.Equal(o.Period) &&
		c.InstanceId == o.InstanceId &&
		c.ActivityHash == o.ActivityHash &&
		slices.Equal(c.Modes, o.Modes) &&
		c.Completed == o.Completed &&
		c.ActivityDuration == o.ActivityDuration &&
		c.ActivityDurationSeconds == o.ActivityDurationSeconds
}

// ComparePeriod orders completed activities by period.
func ComparePeriod(a, b CompletedActivity) int {
	return a.Period.Compare(b.Period)
}
