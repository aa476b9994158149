package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/internal/steward"
	"github.com/colonyops/steward/pkg/iojson"
)

type CompleteCmd struct {
	flags *Flags
	json  bool
}

func NewCompleteCmd(flags *Flags) *CompleteCmd {
	return &CompleteCmd{flags: flags}
}

func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "complete",
		Usage:     "Mark a task as done and archive it",
		UsageText: "steward complete <task-id> [options]",
		Description: `Archives every document matching the task id into Done and writes a
completion summary. Matching is case-insensitive on filename stems;
near misses are reported as suggestions.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the completion result as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *CompleteCmd) run(ctx context.Context, c *cli.Command) error {
	taskID := c.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: steward complete <task-id>")
	}

	res, err := cmd.flags.App.Lifecycle.Complete(ctx, taskID)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(res)
	}

	switch res.Status {
	case steward.StatusCompleted:
		fmt.Printf("completed %q (%d file(s) archived, took %s)\n", taskID, res.Archived, res.Duration)
		fmt.Printf("summary: %s\n", res.SummaryPath)
	case steward.StatusAlreadyCompleted:
		fmt.Printf("%q was already completed %s\n", taskID, humanize.Time(res.CompletedAt))
	case steward.StatusNotFoundSuggestions:
		fmt.Printf("no task matches %q, did you mean:\n  %s\n", taskID, strings.Join(res.Suggestions, "\n  "))
	default:
		fmt.Printf("no task matches %q\n", taskID)
	}

	return nil
}
