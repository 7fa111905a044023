package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"threepole/lib/messaging/publishing"
	"threepole/lib/messaging/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overlayHandle Handle = 7

type fakeWindows struct {
	mu sync.Mutex

	fullscreen    bool
	foreground    Handle
	foregroundErr error
	names         map[Handle]string
	nameErr       error
	rects         map[Handle]Rect
	lookups       map[Handle]int
}

func newFakeWindows() *fakeWindows {
	return &fakeWindows{
		names:   map[Handle]string{},
		rects:   map[Handle]Rect{},
		lookups: map[Handle]int{},
	}
}

func (f *fakeWindows) focus(window Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.foreground = window
}

func (f *fakeWindows) IsExclusiveFullscreen() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullscreen, nil
}

func (f *fakeWindows) ForegroundWindow() (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.foreground, f.foregroundErr
}

func (f *fakeWindows) ProcessName(window Handle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups[window]++
	if f.nameErr != nil {
		return "", f.nameErr
	}
	name, ok := f.names[window]
	if !ok {
		return "", errors.New("no such process")
	}
	return name, nil
}

func (f *fakeWindows) WindowRect(window Handle) (Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rect, ok := f.rects[window]
	if !ok {
		return Rect{}, errors.New("no such window")
	}
	return rect, nil
}

type fakeSurface struct {
	mu       sync.Mutex
	visible  bool
	geometry Geometry
	shows    int
	hides    int
}

func (s *fakeSurface) Handle() Handle { return overlayHandle }

func (s *fakeSurface) SetGeometry(geometry Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry = geometry
	return nil
}

func (s *fakeSurface) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	s.shows++
	return nil
}

func (s *fakeSurface) Hide() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
	s.hides++
	return nil
}

func (s *fakeSurface) state() (bool, Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.geometry
}

type harness struct {
	windows  *fakeWindows
	surface  *fakeSurface
	tracker  *Tracker
	messages <-chan publishing.Message
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	windows := newFakeWindows()
	windows.names[42] = "game.exe"
	windows.rects[42] = Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}
	windows.names[43] = "firefox"

	hub := publishing.NewHub(64)
	messages, unsubscribe := hub.Subscribe()
	t.Cleanup(unsubscribe)

	surface := &fakeSurface{}
	return &harness{
		windows: windows,
		surface: surface,
		tracker: NewTracker(Config{
			Windows:   windows,
			Surface:   surface,
			Publisher: hub,
			Target:    "game.exe",
			Interval:  5 * time.Millisecond,
		}),
		messages: messages,
	}
}

func (h *harness) next(t *testing.T) publishing.Message {
	t.Helper()
	select {
	case msg := <-h.messages:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return publishing.Message{}
	}
}

func (h *harness) assertNoEvent(t *testing.T) {
	t.Helper()
	select {
	case msg := <-h.messages:
		t.Fatalf("unexpected event %q", msg.Route)
	default:
	}
}

func TestTracker_ShowsOverTargetWindow(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)

	assert.Equal(t, actionShow, h.tracker.tick())

	visible, geometry := h.surface.state()
	assert.True(t, visible)
	assert.Equal(t, Geometry{X: 100, Y: 100, Width: 800, Height: 600}, geometry)

	msg := h.next(t)
	assert.Equal(t, routing.OverlayShow, msg.Route)
	var published Geometry
	require.NoError(t, json.Unmarshal(msg.Body, &published))
	assert.Equal(t, geometry, published)
}

func TestTracker_ExclusiveFullscreenHides(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)
	h.tracker.tick()
	h.next(t)

	h.windows.mu.Lock()
	h.windows.fullscreen = true
	h.windows.mu.Unlock()

	assert.Equal(t, actionFullscreen, h.tracker.tick())
	visible, _ := h.surface.state()
	assert.False(t, visible)
	assert.Equal(t, routing.OverlayHide, h.next(t).Route)
}

func TestTracker_HidesForOtherApplications(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)
	h.tracker.tick()
	h.next(t)

	h.windows.focus(43)
	assert.Equal(t, actionHide, h.tracker.tick())
	assert.Equal(t, routing.OverlayHide, h.next(t).Route)

	// Already hidden: no repeated event
	assert.Equal(t, actionHide, h.tracker.tick())
	h.assertNoEvent(t)
}

func TestTracker_MatchIsCaseInsensitive(t *testing.T) {
	h := newHarness(t)
	h.windows.names[42] = "Game.EXE"
	h.windows.focus(42)

	assert.Equal(t, actionShow, h.tracker.tick())
}

func TestTracker_OwnWindowKeepsState(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)
	h.tracker.tick()
	h.next(t)

	h.windows.focus(overlayHandle)
	assert.Equal(t, actionSelf, h.tracker.tick())

	visible, _ := h.surface.state()
	assert.True(t, visible)
	h.assertNoEvent(t)
	assert.Zero(t, h.windows.lookups[overlayHandle])
}

func TestTracker_FollowsTargetGeometry(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)
	h.tracker.tick()
	h.next(t)

	// Unchanged rectangle publishes nothing
	h.tracker.tick()
	h.assertNoEvent(t)

	h.windows.mu.Lock()
	h.windows.rects[42] = Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	h.windows.mu.Unlock()

	h.tracker.tick()
	msg := h.next(t)
	assert.Equal(t, routing.OverlayGeometry, msg.Route)
	_, geometry := h.surface.state()
	assert.Equal(t, Geometry{Width: 1920, Height: 1080}, geometry)
	assert.Equal(t, 1, h.surface.shows)
}

func TestTracker_MemoizesProcessNames(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)

	for range 5 {
		h.tracker.tick()
	}
	h.windows.focus(43)
	h.tracker.tick()
	h.windows.focus(42)
	h.tracker.tick()

	assert.Equal(t, 1, h.windows.lookups[42])
	assert.Equal(t, 1, h.windows.lookups[43])
}

func TestTracker_FailedLookupHidesAndIsRetried(t *testing.T) {
	h := newHarness(t)
	h.windows.nameErr = errors.New("permission denied")
	h.windows.focus(42)

	assert.Equal(t, actionHide, h.tracker.tick())
	assert.Equal(t, actionHide, h.tracker.tick())
	assert.Equal(t, 2, h.windows.lookups[42])

	h.windows.mu.Lock()
	h.windows.nameErr = nil
	h.windows.mu.Unlock()

	assert.Equal(t, actionShow, h.tracker.tick())
	assert.Equal(t, 3, h.windows.lookups[42])
}

func TestTracker_NoForegroundWindowHides(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, actionHide, h.tracker.tick())

	h.windows.foregroundErr = errors.New("display closed")
	h.windows.foreground = 42
	assert.Equal(t, actionHide, h.tracker.tick())
}

func TestTracker_RectFailureHides(t *testing.T) {
	h := newHarness(t)
	h.windows.names[44] = "game.exe"
	h.windows.focus(44)

	assert.Equal(t, actionHide, h.tracker.tick())
}

func TestTracker_StartStop(t *testing.T) {
	h := newHarness(t)
	h.windows.focus(42)

	h.tracker.Start(context.Background())
	h.tracker.Start(context.Background())
	assert.True(t, h.tracker.Running())

	require.Eventually(t, func() bool {
		visible, _ := h.surface.state()
		return visible
	}, time.Second, 5*time.Millisecond)

	h.tracker.Stop()
	assert.False(t, h.tracker.Running())
	visible, _ := h.surface.state()
	assert.False(t, visible, "stopping hides the overlay")

	h.tracker.Stop()
}
