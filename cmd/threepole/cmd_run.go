package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"threepole/lib/config"
	"threepole/lib/env"
	"threepole/lib/messaging/publishing"
	"threepole/lib/messaging/routing"
	"threepole/lib/monitoring"
	"threepole/lib/platform/x11"
	"threepole/lib/services/overlay"
	"threepole/lib/services/playerdata"
	"threepole/lib/services/sources"
	"threepole/lib/utils/logging"
	"threepole/lib/web/ui"

	"github.com/urfave/cli/v3"
)

type RunCmd struct {
	flags *Flags

	overlayWindow uint64
	uiPort        string
	metricsPort   string
	target        string
}

func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Poll player data, track the game window and serve the UI API",
		UsageText: "threepole run [--overlay-window id]",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:        "overlay-window",
				Usage:       "X11 id of the overlay window to move and resize (events only when unset)",
				Sources:     cli.EnvVars("THREEPOLE_OVERLAY_WINDOW"),
				Destination: &cmd.overlayWindow,
			},
			&cli.StringFlag{
				Name:        "ui-port",
				Usage:       "localhost port for the UI API",
				Value:       env.UIPort,
				Destination: &cmd.uiPort,
			},
			&cli.StringFlag{
				Name:        "metrics-port",
				Usage:       "localhost port for /metrics (disabled when empty)",
				Value:       env.MetricsPort,
				Destination: &cmd.metricsPort,
			},
			&cli.StringFlag{
				Name:        "target",
				Usage:       "executable name of the game window to follow",
				Value:       env.TargetExecutable,
				Destination: &cmd.target,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cmd.flags.Store
	monitoring.ServeMetrics(ctx, cmd.metricsPort)

	client := newBungieClient()
	profiles := sources.NewProfileInfoSource(client)
	activities := sources.NewActivityInfoSource(client)
	hub := publishing.NewHub(publishing.DefaultBufferSize)

	poller := playerdata.NewPoller(playerdata.PollerConfig{
		Client:     client,
		Profiles:   profiles,
		Activities: activities,
		Selected:   store,
		Publisher:  hub,
	})
	poller.Reset(ctx)
	defer poller.Stop()

	tracker, closeDisplay := cmd.newTracker(hub)
	defer closeDisplay()
	applyPreferences := func(preferences config.Preferences) {
		if tracker == nil {
			return
		}
		if preferences.EnableOverlay {
			tracker.Start(ctx)
		} else {
			tracker.Stop()
		}
	}
	applyPreferences(store.Preferences())
	if tracker != nil {
		defer tracker.Stop()
	}

	go func() {
		err := store.Watch(ctx, onConfigChange(store, hub, func() { poller.Reset(ctx) }, applyPreferences))
		if err != nil {
			logger.Warn("CONFIG_WATCH_FAILED", err, map[string]any{
				logging.DIRECTORY: store.Dir(),
			})
		}
	}()

	server := ui.NewServer(ui.Config{
		Status:     poller,
		Store:      store,
		Profiles:   profiles,
		Activities: activities,
		Search:     client,
		Events:     hub,
		Publisher:  hub,
		OnProfilesChanged: func() {
			poller.Reset(ctx)
		},
		OnPreferencesChanged: applyPreferences,
	})
	if err := server.ListenAndServe(ctx, cmd.uiPort); err != nil {
		return fmt.Errorf("ui server: %w", err)
	}

	logger.Info("THREEPOLE_SHUTDOWN", nil)
	return nil
}

// newTracker connects to the X display. Without one the window tracker is
// disabled and the rest of the app keeps running.
func (cmd *RunCmd) newTracker(hub *publishing.Hub) (*overlay.Tracker, func()) {
	display, err := x11.Open()
	if err != nil {
		logger.Warn("WINDOW_TRACKER_DISABLED", err, nil)
		return nil, func() {}
	}

	trackerConfig := overlay.Config{
		Windows:   display,
		Publisher: hub,
		Target:    cmd.target,
	}
	if cmd.overlayWindow != 0 {
		trackerConfig.Surface = display.Window(uint32(cmd.overlayWindow))
	}
	return overlay.NewTracker(trackerConfig), display.Close
}

type configReader interface {
	Profiles() config.Profiles
	Preferences() config.Preferences
}

// onConfigChange broadcasts config edited outside the process and applies it.
// A failed broadcast does not stop the change from being applied.
func onConfigChange(store configReader, publisher publishing.MessagePublisher, reset func(), apply func(config.Preferences)) func(config.Change) {
	return func(change config.Change) {
		if change.Profiles {
			if err := publisher.PublishMessage(routing.ProfilesUpdate, store.Profiles()); err != nil {
				logger.Warn("CONFIG_PUBLISH_FAILED", err, map[string]any{logging.EVENT: routing.ProfilesUpdate})
			}
			reset()
		}
		if change.Preferences {
			preferences := store.Preferences()
			if err := publisher.PublishMessage(routing.PreferencesUpdate, preferences); err != nil {
				logger.Warn("CONFIG_PUBLISH_FAILED", err, map[string]any{logging.EVENT: routing.PreferencesUpdate})
			}
			apply(preferences)
		}
	}
}
