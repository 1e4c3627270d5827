package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/annosync/pkg/iojson"
)

type ResetCmd struct {
	flags *Flags

	nodes []string
	all   bool
}

// NewResetCmd creates a new reset command.
func NewResetCmd(flags *Flags) *ResetCmd {
	return &ResetCmd{flags: flags}
}

// Register adds the reset command to the application.
func (cmd *ResetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "reset",
		Usage:     "Clear sync records so annotations sync again",
		UsageText: "annosync reset --node <id> [--node <id>] | --all",
		Description: `Clears sync records. A cleared annotation is treated as never
synced: the next run will create a fresh issue for it.

This only touches local state; existing GitHub issues are not closed
or deleted.

Examples:
  annosync reset --node "1:23"
  annosync reset --all`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "node",
				Aliases:     []string{"n"},
				Usage:       "item ID to clear (repeatable)",
				Destination: &cmd.nodes,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "clear every sync record",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ResetCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.all && len(cmd.nodes) == 0 {
		return fmt.Errorf("nothing to reset: pass --node <id> or --all")
	}
	if cmd.all && len(cmd.nodes) > 0 {
		return fmt.Errorf("--all and --node are mutually exclusive")
	}

	reset := 0
	if cmd.all {
		n, err := cmd.flags.Tracker.ResetAll(ctx)
		if err != nil {
			return err
		}
		reset = n
	} else {
		for _, node := range cmd.nodes {
			if err := cmd.flags.Tracker.Reset(ctx, node); err != nil {
				return err
			}
			reset++
		}
	}

	return iojson.Write(struct {
		Reset int `json:"reset"`
	}{Reset: reset})
}
