package main

import (
	"context"
	"fmt"
	"os"

	"threepole/lib/config"
	"threepole/lib/env"
	"threepole/lib/monitoring"
	"threepole/lib/utils/logging"

	"github.com/urfave/cli/v3"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

var logger = logging.NewLogger("THREEPOLE")

func main() {
	flushSentry, recoverSentry := logger.InitSentry()
	defer flushSentry()
	defer recoverSentry()

	flags := &Flags{}

	app := &cli.Command{
		Name:      "threepole",
		Usage:     "Track Destiny 2 activity and keep an overlay on the game window",
		UsageText: "threepole [global options] command [command options]",
		Version:   fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       logging.Info,
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "config-dir",
				Usage:       "directory holding profiles.yaml and preferences.yaml",
				Sources:     cli.EnvVars("THREEPOLE_CONFIG_DIR"),
				Value:       env.ConfigDir,
				Destination: &flags.ConfigDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if !logging.SetLogLevel(flags.LogLevel) {
				return ctx, fmt.Errorf("invalid log level %q", flags.LogLevel)
			}
			if err := env.Validate(); err != nil {
				return ctx, err
			}

			store, err := config.NewManager(flags.ConfigDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Store = store

			monitoring.Register()
			return ctx, nil
		},
	}

	app = NewRunCmd(flags).Register(app)
	app = NewSearchCmd(flags).Register(app)

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("THREEPOLE_EXITED_WITH_ERROR", err, nil)
		flushSentry()
		os.Exit(1)
	}
}
