package steward

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/approval"
	"github.com/colonyops/steward/internal/core/triage"
	"github.com/colonyops/steward/internal/core/vault"
)

// Approvals owns the human-in-the-loop gate: creating approval request
// documents in Pending_Approval and watching them until a decision,
// expiry, or monitoring budget resolves them.
type Approvals struct {
	store         *vault.Store
	cfg           vault.Config
	activity      *activity.Log
	log           zerolog.Logger
	knownContacts []string
	now           func() time.Time
}

// NewApprovals creates the approvals service. knownContacts feeds the
// email risk allow-list.
func NewApprovals(store *vault.Store, act *activity.Log, knownContacts []string, log zerolog.Logger) *Approvals {
	return &Approvals{
		store:         store,
		cfg:           store.Config(),
		activity:      act,
		log:           log.With().Str("component", "approvals").Logger(),
		knownContacts: knownContacts,
		now:           time.Now,
	}
}

// RequestResult describes a freshly created approval request.
type RequestResult struct {
	Path      string      `json:"path"`
	ActionID  string      `json:"action_id"`
	Risk      triage.Risk `json:"risk"`
	ExpiresAt time.Time   `json:"expires_at"`
	ExpiresIn string      `json:"expires_in"`
}

// Request writes an approval request document into Pending_Approval and
// returns its identity. The expiry deadline is fixed at creation time
// from the action type's policy.
func (a *Approvals) Request(ctx context.Context, d approval.Details) (RequestResult, error) {
	if err := ctx.Err(); err != nil {
		return RequestResult{}, err
	}

	now := a.now()
	actionID := approval.ActionID(d.ActionType(), now, d.Subject())
	risk := d.Risk(a.knownContacts)
	ttl := approval.TTL(d.ActionType())
	expires := now.Add(ttl)

	if p, ok := d.(approval.Payment); ok {
		if _, parsed := p.AmountValue(); !parsed {
			a.log.Warn().Str("amount", p.Amount).Str("action_id", actionID).
				Msg("payment amount not parseable, risk graded without it")
		}
	}

	meta := vault.Frontmatter{
		Type:       "approval_request",
		ActionType: string(d.ActionType()),
		ActionID:   actionID,
		Subject:    d.Subject(),
		RiskLevel:  string(risk),
		Status:     "pending_approval",
		Decision:   string(approval.DecisionPending),
		Created:    now,
		Expires:    expires,
	}

	body := renderRequestBody(d, risk, expires)
	path := filepath.Join(a.cfg.PendingApproval, approval.Filename(actionID))
	if err := a.store.Write(path, meta, body); err != nil {
		return RequestResult{}, fmt.Errorf("write approval request: %w", err)
	}

	a.record(activity.EventApprovalRequested, actionID,
		fmt.Sprintf("%s - %s (risk=%s)", d.ActionType(), d.Subject(), risk))

	a.log.Info().Str("action_id", actionID).Str("risk", string(risk)).
		Time("expires", expires).Msg("approval requested")

	return RequestResult{
		Path:      path,
		ActionID:  actionID,
		Risk:      risk,
		ExpiresAt: expires,
		ExpiresIn: ttl.String(),
	}, nil
}

// MonitorOptions tunes the watch loop. A zero Interval falls back to the
// vault poll interval; a zero Budget means watch until expiry.
type MonitorOptions struct {
	Interval time.Duration
	Budget   time.Duration
}

// Outcome is the resolution of a monitored approval request.
type Outcome struct {
	Decision approval.Decision `json:"decision"`
	Path     string            `json:"path"`
}

// Monitor polls an approval request until it resolves. Resolution order
// per tick: a human move to Approved/ or Rejected/ wins over local
// expiry, then the document's own deadline, then the monitoring budget.
// Budget exhaustion and expiry both relocate the file to Rejected but
// record distinct decisions. Cancellation is honored between ticks only.
func (a *Approvals) Monitor(ctx context.Context, path string, opts MonitorOptions) (Outcome, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = a.cfg.PollInterval
	}

	start := a.now()
	name := filepath.Base(path)

	a.log.Info().Str("name", name).Dur("interval", interval).Msg("monitoring approval request")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tickErrs := 0
	for {
		outcome, done, err := a.check(name, start, opts.Budget)
		if err != nil {
			tickErrs++
			a.log.Warn().Str("name", name).Int("errors", tickErrs).Err(err).
				Msg("approval check failed, will retry")

			// A healthy check honors the budget itself by timing the
			// request out; this guard keeps a request that cannot be
			// read (or exists nowhere) from pinning the loop forever.
			if opts.Budget > 0 && a.now().Sub(start) >= opts.Budget {
				return Outcome{}, fmt.Errorf("monitoring budget exhausted after %d failed checks: %w", tickErrs, err)
			}
		} else if done {
			return outcome, nil
		}

		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// check performs one poll of the request. done=false means still
// pending.
func (a *Approvals) check(name string, start time.Time, budget time.Duration) (Outcome, bool, error) {
	pendingPath := filepath.Join(a.cfg.PendingApproval, name)

	doc, err := a.store.Read(pendingPath)
	if errors.Is(err, vault.ErrNotExist) {
		// Gone from Pending_Approval: a human moved it. The file's new
		// location is authoritative even when the deadline has passed.
		return a.resolveMoved(name)
	}
	if err != nil {
		return Outcome{}, false, err
	}

	now := a.now()

	if !doc.Meta.Expires.IsZero() && now.After(doc.Meta.Expires) {
		return a.expire(doc, approval.DecisionExpired, "request expired")
	}

	if budget > 0 && now.Sub(start) >= budget {
		return a.expire(doc, approval.DecisionTimeout, "monitoring budget exhausted")
	}

	return Outcome{}, false, nil
}

// resolveMoved locates a request after a human relocated it and stamps
// the matching decision.
func (a *Approvals) resolveMoved(name string) (Outcome, bool, error) {
	for _, candidate := range []struct {
		dir      string
		decision approval.Decision
	}{
		{a.cfg.Approved, approval.DecisionApproved},
		{a.cfg.Rejected, approval.DecisionRejected},
	} {
		path := filepath.Join(candidate.dir, name)
		doc, err := a.store.Read(path)
		if errors.Is(err, vault.ErrNotExist) {
			continue
		}
		if err != nil {
			return Outcome{}, false, err
		}

		if !approval.Decision(doc.Meta.Decision).Terminal() {
			doc.Meta.Decision = string(candidate.decision)
			doc.Meta.Status = string(candidate.decision)
			if err := a.store.Write(path, doc.Meta, doc.Body); err != nil {
				return Outcome{}, false, fmt.Errorf("stamp decision: %w", err)
			}
		}

		a.record(activity.EventApprovalDecision, doc.Meta.ActionID, string(candidate.decision))
		a.log.Info().Str("name", name).Str("decision", string(candidate.decision)).
			Msg("approval resolved by operator")

		return Outcome{Decision: candidate.decision, Path: path}, true, nil
	}

	return Outcome{}, false, fmt.Errorf("request %s missing from pending, approved, and rejected", name)
}

// expire moves a still-pending request to Rejected with the given
// terminal decision.
func (a *Approvals) expire(doc vault.Document, decision approval.Decision, detail string) (Outcome, bool, error) {
	name := filepath.Base(doc.Path)

	newPath, err := a.store.Move(a.cfg.PendingApproval, a.cfg.Rejected, name)
	if errors.Is(err, vault.ErrNotExist) {
		// Raced with a human move between the read and the rename.
		return a.resolveMoved(name)
	}
	if err != nil {
		return Outcome{}, false, err
	}

	doc.Meta.Decision = string(decision)
	doc.Meta.Status = string(vault.StateRejected)
	if err := a.store.Write(newPath, doc.Meta, doc.Body); err != nil {
		return Outcome{}, false, fmt.Errorf("stamp %s: %w", decision, err)
	}

	a.record(activity.EventApprovalDecision, doc.Meta.ActionID,
		fmt.Sprintf("%s - %s", decision, detail))
	a.log.Info().Str("name", name).Str("decision", string(decision)).Msg(detail)

	return Outcome{Decision: decision, Path: newPath}, true, nil
}

// Decide resolves a pending request programmatically, standing in for
// the human file move.
func (a *Approvals) Decide(ctx context.Context, actionID string, approve bool) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	name := approval.Filename(actionID)
	dst := a.cfg.Rejected
	decision := approval.DecisionRejected
	if approve {
		dst = a.cfg.Approved
		decision = approval.DecisionApproved
	}

	newPath, err := a.store.Move(a.cfg.PendingApproval, dst, name)
	if err != nil {
		return Outcome{}, err
	}

	doc, err := a.store.Read(newPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("restamp after decision: %w", err)
	}
	doc.Meta.Decision = string(decision)
	doc.Meta.Status = string(decision)
	if err := a.store.Write(newPath, doc.Meta, doc.Body); err != nil {
		return Outcome{}, fmt.Errorf("restamp after decision: %w", err)
	}

	a.record(activity.EventApprovalDecision, actionID, string(decision))

	return Outcome{Decision: decision, Path: newPath}, nil
}

func renderRequestBody(d approval.Details, risk triage.Risk, expires time.Time) string {
	return fmt.Sprintf(`# Approval Required: %s

**Action Type:** %s
**Risk Level:** %s
**Expires:** %s

## Details
%s

## To Approve
Move this file to the Approved folder.

## To Reject
Move this file to the Rejected folder.

If no decision is made before the deadline, the request is treated as
rejected.`,
		d.Subject(), d.ActionType(), risk, expires.Format("2006-01-02 15:04:05"), d.Specifics())
}

// record appends to the activity log, logging and continuing on failure.
func (a *Approvals) record(event, id, detail string) {
	if err := a.activity.Record(event, id, detail); err != nil {
		a.log.Warn().Err(err).Str("event", event).Msg("activity log append failed")
	}
}
