package playerdata

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"threepole/lib/dto"
	"threepole/lib/messaging/publishing"
	"threepole/lib/messaging/routing"
	"threepole/lib/monitoring/tracker_metrics"
	"threepole/lib/utils/logging"

	"github.com/google/uuid"
)

const (
	DefaultInterval     = time.Second
	DefaultHistoryEvery = 6
)

type State int32

const (
	StateIdle State = iota
	StateStarting
	StatePolling
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StatePolling:
		return "polling"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ProfileProvider returns the currently selected profile, if any.
type ProfileProvider interface {
	SelectedProfile() (dto.Profile, bool)
}

type PollerConfig struct {
	Client     Client
	Profiles   ProfileInfoCache
	Activities ActivityInfoCache
	Selected   ProfileProvider
	Publisher  publishing.MessagePublisher

	// Interval between ticks. Defaults to DefaultInterval.
	Interval time.Duration
	// Every HistoryEvery-th tick refreshes history instead of the current activity.
	HistoryEvery int
	// Now is used for the history cutoff. Defaults to time.Now.
	Now func() time.Time
}

// Poller owns a single cancellable polling task and the published snapshot.
type Poller struct {
	config PollerConfig
	logger logging.Logger
	state  atomic.Int32

	taskMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statusMu sync.Mutex
	status   dto.PlayerDataStatus

	newTicker func(time.Duration) (<-chan time.Time, func())
}

func newTimeTicker(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

func NewPoller(config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.HistoryEvery <= 0 {
		config.HistoryEvery = DefaultHistoryEvery
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Poller{
		config:    config,
		logger:    logging.NewLogger("PLAYERDATA_POLLER"),
		newTicker: newTimeTicker,
	}
}

func (p *Poller) State() State {
	return State(p.state.Load())
}

func (p *Poller) setState(state State) {
	p.state.Store(int32(state))
	tracker_metrics.PollerState.Set(float64(state))
}

// Reset cancels the running task, waits for it to exit, clears the published
// snapshot and starts a fresh task for the currently selected profile.
func (p *Poller) Reset(ctx context.Context) {
	p.taskMu.Lock()
	defer p.taskMu.Unlock()

	p.stopLocked()

	p.statusMu.Lock()
	p.status = dto.PlayerDataStatus{}
	p.publishLocked()
	p.statusMu.Unlock()

	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	runId := uuid.NewString()
	go p.run(taskCtx, runId, done)
}

// Stop cancels the running task and waits for it to exit.
func (p *Poller) Stop() {
	p.taskMu.Lock()
	defer p.taskMu.Unlock()
	p.stopLocked()
	p.setState(StateIdle)
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

// GetData returns the current snapshot without blocking. It reports false
// when the snapshot is being written.
func (p *Poller) GetData() (dto.PlayerDataStatus, bool) {
	if !p.statusMu.TryLock() {
		return dto.PlayerDataStatus{}, false
	}
	defer p.statusMu.Unlock()
	return p.status.Clone(), true
}

type task struct {
	poller  *Poller
	runId   string
	profile dto.Profile
	engine  *Engine
	fields  map[string]any
}

func (p *Poller) run(ctx context.Context, runId string, done chan struct{}) {
	defer close(done)

	profile, ok := p.config.Selected.SelectedProfile()
	if !ok {
		p.setState(StateIdle)
		p.logger.Info("NO_PROFILE_SELECTED", map[string]any{logging.RUN_ID: runId})
		p.fail(ctx, runId, ErrNoProfile)
		return
	}

	engine := NewEngine(p.config.Client, p.config.Profiles, p.config.Activities)
	engine.now = p.config.Now

	t := &task{
		poller:  p,
		runId:   runId,
		profile: profile,
		engine:  engine,
		fields: map[string]any{
			logging.RUN_ID:          runId,
			logging.MEMBERSHIP_TYPE: profile.MembershipType,
			logging.MEMBERSHIP_ID:   profile.MembershipId,
		},
	}

	p.logger.Info("POLLER_STARTED", t.fields)
	p.setState(StateStarting)
	started := t.start(ctx)

	ticks, stopTicker := p.newTicker(p.config.Interval)
	defer stopTicker()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("POLLER_STOPPED", t.fields)
			return
		case <-ticks:
		}

		if !started {
			started = t.start(ctx)
			continue
		}

		tick++
		if tick%p.config.HistoryEvery == 0 {
			t.refresh(ctx, "history", engine.RefreshHistory)
		} else {
			t.refresh(ctx, "current", engine.RefreshCurrent)
		}
	}
}

// start performs the initial current activity and history fetch and publishes
// the result once.
func (t *task) start(ctx context.Context) bool {
	p := t.poller

	if _, err := p.config.Profiles.Get(ctx, t.profile); err != nil {
		p.fail(ctx, t.runId, fmt.Errorf("Failed to get profile info: %w", err))
		return false
	}

	_, err := t.engine.RefreshCurrent(ctx, t.profile)
	if err == nil {
		_, err = t.engine.RefreshHistory(ctx, t.profile)
	}
	if err != nil {
		p.fail(ctx, t.runId, err)
		return false
	}

	return t.commit(ctx)
}

func (t *task) refresh(ctx context.Context, kind string, refresh func(context.Context, dto.Profile) (bool, error)) {
	p := t.poller

	changed, err := refresh(ctx, t.profile)
	if ctx.Err() != nil {
		return
	}

	switch {
	case err != nil:
		tracker_metrics.RefreshOutcomes.WithLabelValues(kind, "error").Inc()
		p.fail(ctx, t.runId, err)
	case changed:
		tracker_metrics.RefreshOutcomes.WithLabelValues(kind, "changed").Inc()
		t.commit(ctx)
	default:
		tracker_metrics.RefreshOutcomes.WithLabelValues(kind, "unchanged").Inc()
		if p.State() == StateError {
			// Recovered without a change: clear the error
			t.commit(ctx)
		}
	}
}

// commit publishes the engine's state as the new snapshot and clears any error.
func (t *task) commit(ctx context.Context) bool {
	p := t.poller

	info, err := p.config.Profiles.Get(ctx, t.profile)
	if err != nil {
		p.fail(ctx, t.runId, fmt.Errorf("Failed to get profile info: %w", err))
		return false
	}
	data := dto.PlayerData{
		CurrentActivity: t.engine.Current(),
		ActivityHistory: t.engine.History(),
		ProfileInfo:     info,
	}

	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if ctx.Err() != nil {
		return false
	}

	p.status.LastUpdate = &data
	p.status.Error = nil
	p.status.RunId = t.runId
	p.setState(StatePolling)
	p.publishLocked()
	return true
}

// fail records err in the snapshot, keeping the last successful data.
func (p *Poller) fail(ctx context.Context, runId string, err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	p.logger.Warn("PLAYERDATA_REFRESH_FAILED", err, map[string]any{
		logging.RUN_ID: runId,
	})

	msg := err.Error()
	p.status.Error = &msg
	p.status.RunId = runId
	if p.State() != StateIdle {
		p.setState(StateError)
	}
	p.publishLocked()
}

func (p *Poller) publishLocked() {
	if p.config.Publisher == nil {
		return
	}
	if err := p.config.Publisher.PublishMessage(routing.PlayerDataUpdate, p.status); err != nil {
		p.logger.Warn("PLAYERDATA_PUBLISH_FAILED", err, nil)
	}
}
