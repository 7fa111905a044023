package overlay

import (
	"context"
	"strings"
	"sync"
	"time"

	"threepole/lib/messaging/publishing"
	"threepole/lib/messaging/routing"
	"threepole/lib/monitoring/tracker_metrics"
	"threepole/lib/utils/logging"
)

const DefaultInterval = 200 * time.Millisecond

type action string

const (
	actionShow       action = "show"
	actionHide       action = "hide"
	actionFullscreen action = "fullscreen"
	actionSelf       action = "self"
)

type Config struct {
	Windows WindowSystem
	// Surface is optional. Without one the tracker only publishes events.
	Surface   Surface
	Publisher publishing.MessagePublisher
	// Target is the executable name to follow, matched case-insensitively.
	Target   string
	Interval time.Duration
}

// Tracker polls the foreground window and keeps the overlay surface on top
// of the target application's window.
type Tracker struct {
	config Config
	logger logging.Logger

	// names memoizes handle -> executable name for the process lifetime.
	// Only the loop goroutine touches it.
	names map[Handle]string

	// Last applied state. known is false until the first show or hide.
	known    bool
	visible  bool
	geometry Geometry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTracker(config Config) *Tracker {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Tracker{
		config: config,
		logger: logging.NewLogger("WINDOW_TRACKER"),
		names:  make(map[Handle]string),
	}
}

// Start launches the tracking loop. It is a no-op if already running.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	t.logger.Info("WINDOW_TRACKER_STARTED", map[string]any{
		logging.EXECUTABLE: t.config.Target,
		logging.INTERVAL:   t.config.Interval.String(),
	})
	go t.run(loopCtx, done)
}

// Stop halts the loop, waits for it to exit and hides the overlay.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil

	t.hide()
	t.logger.Info("WINDOW_TRACKER_STOPPED", nil)
}

func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		t.tick()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) tick() action {
	act := t.poll()
	tracker_metrics.OverlayTicks.WithLabelValues(string(act)).Inc()
	return act
}

func (t *Tracker) poll() action {
	windows := t.config.Windows

	fullscreen, err := windows.IsExclusiveFullscreen()
	if err != nil {
		t.logger.Debug("FULLSCREEN_QUERY_FAILED", map[string]any{logging.REASON: err.Error()})
	}
	if fullscreen {
		t.hide()
		return actionFullscreen
	}

	foreground, err := windows.ForegroundWindow()
	if err != nil || foreground == 0 {
		t.hide()
		return actionHide
	}

	if t.config.Surface != nil && foreground == t.config.Surface.Handle() {
		return actionSelf
	}

	name, ok := t.processName(foreground)
	if !ok || !strings.EqualFold(name, t.config.Target) {
		t.hide()
		return actionHide
	}

	rect, err := windows.WindowRect(foreground)
	if err != nil {
		t.logger.Debug("WINDOW_RECT_FAILED", map[string]any{
			logging.WINDOW: uint64(foreground),
			logging.REASON: err.Error(),
		})
		t.hide()
		return actionHide
	}

	t.show(rect.Geometry())
	return actionShow
}

// processName resolves the owning executable of window. Failed lookups are
// not memoized so the next tick tries again.
func (t *Tracker) processName(window Handle) (string, bool) {
	if name, ok := t.names[window]; ok {
		return name, true
	}

	name, err := t.config.Windows.ProcessName(window)
	if err != nil {
		t.logger.Debug("PROCESS_LOOKUP_FAILED", map[string]any{
			logging.WINDOW: uint64(window),
			logging.REASON: err.Error(),
		})
		return "", false
	}

	t.names[window] = name
	return name, true
}

func (t *Tracker) show(geometry Geometry) {
	if t.known && t.visible && t.geometry == geometry {
		return
	}

	if surface := t.config.Surface; surface != nil {
		if err := surface.SetGeometry(geometry); err != nil {
			t.logger.Warn("OVERLAY_GEOMETRY_FAILED", err, map[string]any{logging.RECT: geometry})
			return
		}
		if !t.visible || !t.known {
			if err := surface.Show(); err != nil {
				t.logger.Warn("OVERLAY_SHOW_FAILED", err, nil)
				return
			}
		}
	}

	route := routing.OverlayShow
	if t.known && t.visible {
		route = routing.OverlayGeometry
	}
	t.known = true
	t.visible = true
	t.geometry = geometry
	t.publish(route, geometry)
}

func (t *Tracker) hide() {
	if t.known && !t.visible {
		return
	}

	if surface := t.config.Surface; surface != nil {
		if err := surface.Hide(); err != nil {
			t.logger.Warn("OVERLAY_HIDE_FAILED", err, nil)
			return
		}
	}

	t.known = true
	t.visible = false
	t.publish(routing.OverlayHide, nil)
}

func (t *Tracker) publish(route string, body any) {
	if t.config.Publisher == nil {
		return
	}
	if err := t.config.Publisher.PublishMessage(route, body); err != nil {
		t.logger.Warn("OVERLAY_PUBLISH_FAILED", err, map[string]any{logging.EVENT: route})
	}
}
