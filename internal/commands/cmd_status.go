package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/internal/core/vault"
	"github.com/colonyops/steward/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags
	json  bool
}

func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Rebuild the dashboard and print a summary",
		UsageText: "steward status [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the snapshot as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.flags.App.Status.Refresh(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(snap)
	}

	fmt.Printf("needs action: %d, pending approval: %d, done: %d\n",
		snap.Counts[vault.StateNeedsAction],
		snap.Counts[vault.StatePendingApproval],
		snap.Counts[vault.StateDone])
	fmt.Printf("dashboard: %s\n", snap.DashboardPath)
	return nil
}
