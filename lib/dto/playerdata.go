package dto

import (
	"slices"
	"time"
)

// CurrentActivity is what the player is believed to be doing now.
// ActivityInfo is nil when there is no open or resolvable activity.
type CurrentActivity struct {
	StartDate    time.Time     `json:"startDate"`
	ActivityHash uint32        `json:"activityHash"`
	ActivityInfo *ActivityInfo `json:"activityInfo"`
}

func (c CurrentActivity) Clone() CurrentActivity {
	if c.ActivityInfo != nil {
		info := c.ActivityInfo.Clone()
		c.ActivityInfo = &info
	}
	return c
}

type PlayerData struct {
	CurrentActivity CurrentActivity     `json:"currentActivity"`
	ActivityHistory []CompletedActivity `json:"activityHistory"`
	ProfileInfo     ProfileInfo         `json:"profileInfo"`
}

func (p PlayerData) Clone() PlayerData {
	p.CurrentActivity = p.CurrentActivity.Clone()
	p.ActivityHistory = slices.Clone(p.ActivityHistory)
	for i := range p.ActivityHistory {
		p.ActivityHistory[i].Modes = slices.Clone(p.ActivityHistory[i].Modes)
	}
	p.ProfileInfo = p.ProfileInfo.Clone()
	return p
}

// PlayerDataStatus is the snapshot published to UI surfaces. LastUpdate and
// Error are independent: a failed tick keeps the last good data.
type PlayerDataStatus struct {
	LastUpdate *PlayerData `json:"lastUpdate"`
	Error      *string     `json:"error"`
	RunId      string      `json:"runId,omitempty"`
}

func (s PlayerDataStatus) Clone() PlayerDataStatus {
	if s.LastUpdate != nil {
		data := s.LastUpdate.Clone()
		s.LastUpdate = &data
	}
	if s.Error != nil {
		msg := *s.Error
		s.Error = &msg
	}
	return s
}
