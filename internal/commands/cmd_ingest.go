package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/pkg/iojson"
)

type IngestCmd struct {
	flags *Flags
	json  bool
}

func NewIngestCmd(flags *Flags) *IngestCmd {
	return &IngestCmd{flags: flags}
}

func (cmd *IngestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ingest",
		Usage:     "One-shot scan of Inbox for new drops",
		UsageText: "steward ingest [options]",
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

func (cmd *IngestCmd) run(ctx context.Context, c *cli.Command) error {
	res, err := cmd.flags.App.Inbox.Scan(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(res)
	}

	fmt.Printf("ingested %d, skipped %d, failed %d\n", res.Processed, res.Skipped, res.Failed)
	return nil
}
