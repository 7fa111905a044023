package playerdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"threepole/lib/dto"
	"threepole/lib/services/sources"
	"threepole/lib/web/bungie"
)

var (
	testProfile = dto.Profile{MembershipType: 3, MembershipId: "4611686018467284386"}
	errOffline  = errors.New("offline")
)

type historyCall struct {
	characterId string
	page        int
}

// fakeBungie scripts the remote API for one profile.
type fakeBungie struct {
	mu sync.Mutex

	activities    dto.CharacterActivities
	activitiesErr error

	profileInfo dto.ProfileInfo
	profileErr  error

	definitions   map[uint32]dto.ActivityInfo
	definitionErr error

	pages        map[string][][]dto.CompletedActivity
	historyErr   error
	historyCalls []historyCall
	currentCalls int

	// One entry per refresh: "current", or "history" for a character's first page
	refreshes []string
}

func newFakeBungie() *fakeBungie {
	return &fakeBungie{
		profileInfo: dto.ProfileInfo{DisplayName: "Guardian", DisplayTag: 1234, CharacterIds: []string{"111"}},
		definitions: map[uint32]dto.ActivityInfo{
			1234: {Name: "Vault of Glass", ActivityModes: []int{2, 4}},
			5678: {Name: "Last Wish", ActivityModes: []int{4}},
		},
		pages: map[string][][]dto.CompletedActivity{},
	}
}

func (f *fakeBungie) setActivities(activities ...dto.LatestCharacterActivity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = dto.CharacterActivities{Privacy: 1, Activities: activities}
}

func (f *fakeBungie) setPages(characterId string, pages ...[]dto.CompletedActivity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[characterId] = pages
}

func (f *fakeBungie) calls() []historyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]historyCall(nil), f.historyCalls...)
}

func (f *fakeBungie) refreshLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refreshes...)
}

func (f *fakeBungie) GetCharacterActivities(ctx context.Context, profile dto.Profile) (dto.CharacterActivities, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentCalls++
	f.refreshes = append(f.refreshes, "current")
	if f.activitiesErr != nil {
		return dto.CharacterActivities{}, f.activitiesErr
	}
	return f.activities, nil
}

func (f *fakeBungie) GetActivityHistoryPage(ctx context.Context, profile dto.Profile, characterId string, page int) ([]dto.CompletedActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, historyCall{characterId, page})
	if page == 0 {
		f.refreshes = append(f.refreshes, "history")
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	pages := f.pages[characterId]
	if page >= len(pages) {
		return []dto.CompletedActivity{}, nil
	}
	return pages[page], nil
}

func (f *fakeBungie) GetProfileInfo(ctx context.Context, profile dto.Profile) (dto.ProfileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return dto.ProfileInfo{}, f.profileErr
	}
	return f.profileInfo, nil
}

func (f *fakeBungie) GetActivityDefinition(ctx context.Context, activityHash uint32) (dto.ActivityInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.definitionErr != nil {
		return dto.ActivityInfo{}, f.definitionErr
	}
	info, ok := f.definitions[activityHash]
	if !ok {
		return dto.ActivityInfo{}, &bungie.ResponseError{Kind: bungie.KindResponseMissing}
	}
	return info, nil
}

func newTestEngine(fake *fakeBungie, now time.Time) (*Engine, *sources.ProfileInfoSource) {
	profiles := sources.NewProfileInfoSource(fake)
	engine := NewEngine(fake, profiles, sources.NewActivityInfoSource(fake))
	engine.now = func() time.Time { return now }
	return engine, profiles
}

func completed(instanceId string, period time.Time) dto.CompletedActivity {
	return dto.CompletedActivity{
		Period:                  period,
		InstanceId:              instanceId,
		ActivityHash:            1234,
		Modes:                   []int{7, 4},
		Completed:               true,
		ActivityDuration:        "30m 0s",
		ActivityDurationSeconds: 1800,
	}
}
