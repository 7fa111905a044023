package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"threepole/lib/dto"

	"github.com/urfave/cli/v3"
)

type SearchCmd struct {
	flags *Flags

	selectFirst bool
}

func NewSearchCmd(flags *Flags) *SearchCmd {
	return &SearchCmd{flags: flags}
}

func (cmd *SearchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "search",
		Usage:       "Find a player by Bungie name",
		UsageText:   "threepole search [--select] <name#code>",
		Description: "Prints every account matching the Bungie name. With --select the first match is saved and becomes the tracked profile.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "select",
				Usage:       "save and select the first match",
				Destination: &cmd.selectFirst,
			},
		},
		Action: cmd.run,
	})

	return app
}

// parseBungieName splits "name#1234". The name itself may contain '#'.
func parseBungieName(s string) (string, int, error) {
	i := strings.LastIndex(s, "#")
	if i <= 0 || i == len(s)-1 {
		return "", 0, fmt.Errorf("expected <name#code>, got %q", s)
	}
	code, err := strconv.Atoi(s[i+1:])
	if err != nil || code < 0 || code > 9999 {
		return "", 0, fmt.Errorf("invalid name code %q", s[i+1:])
	}
	return s[:i], code, nil
}

func (cmd *SearchCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one <name#code> argument")
	}
	name, code, err := parseBungieName(c.Args().First())
	if err != nil {
		return err
	}

	results, err := newBungieClient().SearchDestinyPlayerByBungieName(ctx, name, code)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := c.Root().Writer
	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No players found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPLATFORM\tID")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s#%04d\t%d\t%s\n", r.DisplayName, r.DisplayTag, r.MembershipType, r.MembershipId)
	}
	_ = w.Flush()

	if !cmd.selectFirst {
		return nil
	}
	return cmd.selectProfile(results[0].Profile, c)
}

func (cmd *SearchCmd) selectProfile(profile dto.Profile, c *cli.Command) error {
	store := cmd.flags.Store
	profiles := store.Profiles()
	if !slices.Contains(profiles.SavedProfiles, profile) {
		profiles.SavedProfiles = append(profiles.SavedProfiles, profile)
	}
	profiles.SelectedProfile = &profile

	if _, err := store.SetProfiles(profiles); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Selected %s\n", profile)
	return nil
}
