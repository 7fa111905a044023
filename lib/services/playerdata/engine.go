package playerdata

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"threepole/lib/dto"
	"threepole/lib/utils/logging"
	"threepole/lib/web/bungie"
)

// Daily reset hour (UTC) anchoring the history window
const ResetHour = 17

var (
	ErrNoProfile       = errors.New("No profile set")
	ErrProfilePrivate  = errors.New("Profile is private")
	ErrNoCharacterData = errors.New("No character data for profile")
)

// Client is the subset of the Bungie client the engine polls.
type Client interface {
	GetCharacterActivities(ctx context.Context, profile dto.Profile) (dto.CharacterActivities, error)
	GetActivityHistoryPage(ctx context.Context, profile dto.Profile, characterId string, page int) ([]dto.CompletedActivity, error)
}

type ProfileInfoCache interface {
	Get(ctx context.Context, profile dto.Profile) (dto.ProfileInfo, error)
	SetCharacters(profile dto.Profile, characterIds []string) bool
}

type ActivityInfoCache interface {
	Get(ctx context.Context, activityHash uint32) (dto.ActivityInfo, error)
}

// Engine holds the last known current activity and history for one polling
// task and decides whether a fresh observation is a meaningful change.
//
// Each refresh kind holds its own lock for the whole refresh, network calls
// included, so two refreshes of the same kind never interleave. New state is
// built on the side and committed only when the refresh succeeds.
type Engine struct {
	client     Client
	profiles   ProfileInfoCache
	activities ActivityInfoCache
	now        func() time.Time
	logger     logging.Logger

	currentMu sync.Mutex
	current   dto.CurrentActivity

	historyMu sync.Mutex
	history   []dto.CompletedActivity
}

func NewEngine(client Client, profiles ProfileInfoCache, activities ActivityInfoCache) *Engine {
	return &Engine{
		client:     client,
		profiles:   profiles,
		activities: activities,
		now:        time.Now,
		logger:     logging.NewLogger("PLAYERDATA_ENGINE"),
	}
}

// HistoryCutoff returns 17:00 UTC today, or 17:00 UTC yesterday when that is
// still in the future.
func HistoryCutoff(now time.Time) time.Time {
	now = now.UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), ResetHour, 0, 0, 0, time.UTC)
	if cutoff.After(now) {
		cutoff = cutoff.AddDate(0, 0, -1)
	}
	return cutoff
}

func (e *Engine) Current() dto.CurrentActivity {
	e.currentMu.Lock()
	defer e.currentMu.Unlock()
	return e.current.Clone()
}

func (e *Engine) History() []dto.CompletedActivity {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	history := make([]dto.CompletedActivity, len(e.history))
	for i, activity := range e.history {
		activity.Modes = slices.Clone(activity.Modes)
		history[i] = activity
	}
	return history
}

// latestActivity splits activities into character ids and the activity with the
// newest start date. Equal start dates keep the first seen.
func latestActivity(activities []dto.LatestCharacterActivity) ([]string, dto.LatestCharacterActivity) {
	characterIds := make([]string, 0, len(activities))
	latest := activities[0]
	for _, activity := range activities {
		characterIds = append(characterIds, activity.CharacterId)
		if activity.DateActivityStarted.After(latest.DateActivityStarted) {
			latest = activity
		}
	}
	slices.Sort(characterIds)
	return characterIds, latest
}

// RefreshCurrent fetches the live character activities and reports whether the
// current activity changed. Only a strictly newer start date replaces the
// remembered activity; a different hash at the same start date is ignored.
func (e *Engine) RefreshCurrent(ctx context.Context, profile dto.Profile) (bool, error) {
	e.currentMu.Lock()
	defer e.currentMu.Unlock()

	res, err := e.client.GetCharacterActivities(ctx, profile)
	if err != nil {
		return false, err
	}
	if res.Activities == nil {
		return false, ErrProfilePrivate
	}
	if len(res.Activities) == 0 {
		return false, ErrNoCharacterData
	}

	characterIds, latest := latestActivity(res.Activities)
	if !latest.DateActivityStarted.After(e.current.StartDate) {
		return false, nil
	}

	next := dto.CurrentActivity{
		StartDate:    latest.DateActivityStarted,
		ActivityHash: latest.CurrentActivityHash,
	}

	if latest.CurrentActivityHash != 0 {
		info, err := e.activities.Get(ctx, latest.CurrentActivityHash)
		switch {
		case bungie.IsResponseMissing(err):
			e.logger.Debug("ACTIVITY_DEFINITION_MISSING", map[string]any{
				logging.ACTIVITY_HASH: latest.CurrentActivityHash,
			})
		case err != nil:
			return false, err
		case strings.TrimSpace(info.Name) == "":
			e.logger.Debug("ACTIVITY_NAME_EMPTY", map[string]any{
				logging.ACTIVITY_HASH: latest.CurrentActivityHash,
			})
		default:
			next.ActivityInfo = &info
		}
	}

	// A cancelled task must not commit anything
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e.profiles.SetCharacters(profile, characterIds)
	e.current = next

	e.logger.Debug("CURRENT_ACTIVITY_CHANGED", map[string]any{
		logging.MEMBERSHIP_ID: profile.MembershipId,
		logging.ACTIVITY_HASH: next.ActivityHash,
		logging.START_DATE:    next.StartDate.Format(time.RFC3339),
	})
	return true, nil
}

// RefreshHistory collects today's completed activities for every character
// and reports whether the newest one changed.
func (e *Engine) RefreshHistory(ctx context.Context, profile dto.Profile) (bool, error) {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()

	info, err := e.profiles.Get(ctx, profile)
	if err != nil {
		return false, err
	}

	cutoff := HistoryCutoff(e.now())
	collected := make(map[string]dto.CompletedActivity)

	for _, characterId := range info.CharacterIds {
		if err := e.collectCharacterHistory(ctx, profile, characterId, cutoff, collected); err != nil {
			return false, err
		}
	}

	fresh := make([]dto.CompletedActivity, 0, len(collected))
	for _, activity := range collected {
		fresh = append(fresh, activity)
	}
	slices.SortFunc(fresh, func(a, b dto.CompletedActivity) int {
		if c := dto.ComparePeriod(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.InstanceId, b.InstanceId)
	})
	slices.Reverse(fresh)

	switch {
	case len(e.history) == 0 && len(fresh) == 0:
		return false, nil
	case len(e.history) > 0 && len(fresh) > 0 && !e.history[0].Period.Before(fresh[0].Period):
		return false, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.history = fresh

	e.logger.Debug("ACTIVITY_HISTORY_CHANGED", map[string]any{
		logging.MEMBERSHIP_ID: profile.MembershipId,
		logging.COUNT:         len(fresh),
		logging.CUTOFF:        cutoff.Format(time.RFC3339),
	})
	return true, nil
}

// collectCharacterHistory pages through a character's history until a page is
// empty or contains an activity older than cutoff. That page is still used.
func (e *Engine) collectCharacterHistory(ctx context.Context, profile dto.Profile, characterId string, cutoff time.Time, collected map[string]dto.CompletedActivity) error {
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		activities, err := e.client.GetActivityHistoryPage(ctx, profile, characterId, page)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			return nil
		}

		crossedCutoff := false
		for _, activity := range activities {
			if activity.Period.Before(cutoff) {
				crossedCutoff = true
				continue
			}
			if activity.Completed {
				collected[activity.InstanceId] = activity
			}
		}

		if crossedCutoff {
			e.logger.Debug("HISTORY_CUTOFF_REACHED", map[string]any{
				logging.CHARACTER_ID: characterId,
				logging.PAGE:         page,
			})
			return nil
		}
	}
}
