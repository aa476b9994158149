package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/steward/internal/core/approval"
	"github.com/colonyops/steward/internal/steward"
	"github.com/colonyops/steward/pkg/iojson"
)

type ApprovalCmd struct {
	flags *Flags
	json  bool

	// request flags
	actionType string
	subject    string
	to         string
	amount     string
	account    string
	draft      string
	platform   string
	scheduled  string
	operation  string
	path       string
	reason     string

	// watch flags
	interval time.Duration
	budget   time.Duration

	// decide flags
	reject bool
}

func NewApprovalCmd(flags *Flags) *ApprovalCmd {
	return &ApprovalCmd{flags: flags}
}

func (cmd *ApprovalCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "emit results as JSON",
		Destination: &cmd.json,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "approval",
		Aliases:   []string{"approve"},
		Usage:     "Create and resolve approval requests",
		UsageText: "steward approval <subcommand> [options]",
		Commands: []*cli.Command{
			{
				Name:      "request",
				Usage:     "File an approval request for a sensitive action",
				UsageText: "steward approval request --type <type> [options]",
				Description: `Writes an approval request document into Pending_Approval. The request
expires automatically after the deadline for its action type: 24h for
payments and file operations, 72h for social posts, 48h otherwise.

Action types: payment, email_send, social_post, file_operation, other.`,
				Flags: []cli.Flag{
					jsonFlag,
					&cli.StringFlag{
						Name:        "type",
						Usage:       "action type",
						Required:    true,
						Destination: &cmd.actionType,
					},
					&cli.StringFlag{
						Name:        "subject",
						Usage:       "short description (purpose, title, or email subject)",
						Destination: &cmd.subject,
					},
					&cli.StringFlag{
						Name:        "to",
						Usage:       "payee or email recipient",
						Destination: &cmd.to,
					},
					&cli.StringFlag{
						Name:        "amount",
						Usage:       "payment amount, free-form (e.g. \"$1,200\")",
						Destination: &cmd.amount,
					},
					&cli.StringFlag{
						Name:        "account",
						Usage:       "payment source account",
						Destination: &cmd.account,
					},
					&cli.StringFlag{
						Name:        "draft",
						Usage:       "draft content for emails, posts, and other actions",
						Destination: &cmd.draft,
					},
					&cli.StringFlag{
						Name:        "platform",
						Usage:       "social platform name",
						Destination: &cmd.platform,
					},
					&cli.StringFlag{
						Name:        "scheduled",
						Usage:       "when the post should go out",
						Destination: &cmd.scheduled,
					},
					&cli.StringFlag{
						Name:        "operation",
						Usage:       "file operation (delete, move, ...)",
						Destination: &cmd.operation,
					},
					&cli.StringFlag{
						Name:        "path",
						Usage:       "file the operation targets",
						Destination: &cmd.path,
					},
					&cli.StringFlag{
						Name:        "reason",
						Usage:       "why the file operation is needed",
						Destination: &cmd.reason,
					},
				},
				Action: cmd.runRequest,
			},
			{
				Name:      "watch",
				Usage:     "Poll a pending request until it resolves",
				UsageText: "steward approval watch <action-id> [options]",
				Description: `Blocks until the request is approved, rejected, expired, or the
monitoring budget runs out. A human decision is made by moving the
request file into Approved or Rejected.`,
				Flags: []cli.Flag{
					jsonFlag,
					&cli.DurationFlag{
						Name:        "interval",
						Usage:       "poll interval (defaults to the vault poll interval)",
						Destination: &cmd.interval,
					},
					&cli.DurationFlag{
						Name:        "budget",
						Usage:       "stop watching after this long (0 = until expiry)",
						Destination: &cmd.budget,
					},
				},
				Action: cmd.runWatch,
			},
			{
				Name:      "decide",
				Usage:     "Approve or reject a pending request",
				UsageText: "steward approval decide <action-id> [--reject]",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.BoolFlag{
						Name:        "reject",
						Usage:       "reject instead of approve",
						Destination: &cmd.reject,
					},
				},
				Action: cmd.runDecide,
			},
		},
	})
	return app
}

func (cmd *ApprovalCmd) details() (approval.Details, error) {
	switch approval.ActionType(cmd.actionType) {
	case approval.ActionPayment:
		return approval.Payment{
			Amount:  cmd.amount,
			To:      cmd.to,
			Purpose: cmd.subject,
			Account: cmd.account,
		}, nil
	case approval.ActionEmailSend:
		return approval.Email{
			To:    cmd.to,
			Subj:  cmd.subject,
			Draft: cmd.draft,
		}, nil
	case approval.ActionSocialPost:
		return approval.SocialPost{
			Platform:  cmd.platform,
			Content:   cmd.draft,
			Scheduled: cmd.scheduled,
		}, nil
	case approval.ActionFileOperation:
		return approval.FileOperation{
			Operation: cmd.operation,
			Path:      cmd.path,
			Reason:    cmd.reason,
		}, nil
	case approval.ActionOther:
		return approval.Generic{
			Title:   cmd.subject,
			Content: cmd.draft,
		}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", cmd.actionType)
	}
}

func (cmd *ApprovalCmd) runRequest(ctx context.Context, c *cli.Command) error {
	details, err := cmd.details()
	if err != nil {
		return err
	}

	res, err := cmd.flags.App.Approvals.Request(ctx, details)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(res)
	}

	fmt.Printf("approval requested: %s\n", res.ActionID)
	fmt.Printf("  risk: %s, expires in %s\n", res.Risk, res.ExpiresIn)
	fmt.Printf("  %s\n", res.Path)
	return nil
}

func (cmd *ApprovalCmd) runWatch(ctx context.Context, c *cli.Command) error {
	actionID := c.Args().First()
	if actionID == "" {
		return fmt.Errorf("usage: steward approval watch <action-id>")
	}

	path := filepath.Join(cmd.flags.Config.PendingApproval, approval.Filename(actionID))
	outcome, err := cmd.flags.App.Approvals.Monitor(ctx, path, steward.MonitorOptions{
		Interval: cmd.interval,
		Budget:   cmd.budget,
	})
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(outcome)
	}

	fmt.Printf("%s: %s\n", actionID, outcome.Decision)
	return nil
}

func (cmd *ApprovalCmd) runDecide(ctx context.Context, c *cli.Command) error {
	actionID := c.Args().First()
	if actionID == "" {
		return fmt.Errorf("usage: steward approval decide <action-id> [--reject]")
	}

	outcome, err := cmd.flags.App.Approvals.Decide(ctx, actionID, !cmd.reject)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(outcome)
	}

	fmt.Printf("%s: %s\n", actionID, outcome.Decision)
	return nil
}
