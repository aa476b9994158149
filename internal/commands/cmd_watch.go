package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

type WatchCmd struct {
	flags *Flags
}

func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Watch Inbox and ingest new drops",
		UsageText: "steward watch",
		Description: `Runs a catch-up scan of Inbox, then blocks on filesystem events. Each
new drop becomes an actionable document in Needs_Action; the original
file stays in Inbox. Stop with Ctrl-C.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s\n", cmd.flags.Config.Inbox)

	err := cmd.flags.App.Inbox.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
