package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/internal/core/vault"
)

type InitCmd struct {
	flags *Flags
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create the vault directory layout",
		UsageText: "steward init [options]",
		Description: `Creates the state directories under the vault root:

  Inbox, Needs_Action, Plans, Pending_Approval, Approved, Rejected,
  Done, and Logs.

Existing directories and their contents are left untouched, so init is
safe to re-run.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Config.EnsureDirs(); err != nil {
		return err
	}

	fmt.Printf("vault ready at %s\n", cmd.flags.Config.Root)
	for _, state := range vault.States() {
		fmt.Printf("  %s\n", cmd.flags.Config.DirFor(state))
	}
	return nil
}
