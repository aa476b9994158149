package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/pkg/iojson"
)

type ProcessCmd struct {
	flags *Flags
	json  bool
}

func NewProcessCmd(flags *Flags) *ProcessCmd {
	return &ProcessCmd{flags: flags}
}

func (cmd *ProcessCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "process",
		Usage:     "Classify Needs_Action items and write plans",
		UsageText: "steward process [options]",
		Description: `Scans Needs_Action, classifies each item, and writes a plan document
into Plans. Items that already have a plan are skipped, so process is
safe to re-run.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the batch result as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ProcessCmd) run(ctx context.Context, c *cli.Command) error {
	res, err := cmd.flags.App.Lifecycle.ProcessPending(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(res)
	}

	fmt.Printf("processed %d, skipped %d, failed %d\n", res.Processed, res.Skipped, res.Failed)
	return nil
}
