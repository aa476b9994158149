// Package steward wires the vault store, the classification engine, and
// the activity log into the lifecycle services behind the CLI.
package steward

import (
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/vault"
)

// ErrIllegalTransition is returned when a requested move is not an edge
// of the lifecycle graph.
var ErrIllegalTransition = errors.New("illegal lifecycle transition")

// Lifecycle transition event names.
const (
	eventPlan     = "plan"
	eventGate     = "gate"
	eventApprove  = "approve"
	eventReject   = "reject"
	eventComplete = "complete"
)

// lifecycleEvents encodes the legal state graph. There are no back-edges:
// the only paths out of Pending_Approval are the explicit human decision
// edges, and everything terminal funnels into Done.
var lifecycleEvents = fsm.Events{
	{Name: eventPlan, Src: []string{string(vault.StateNeedsAction)}, Dst: string(vault.StatePlans)},
	{Name: eventGate, Src: []string{
		string(vault.StateNeedsAction),
		string(vault.StatePlans),
	}, Dst: string(vault.StatePendingApproval)},
	{Name: eventApprove, Src: []string{string(vault.StatePendingApproval)}, Dst: string(vault.StateApproved)},
	{Name: eventReject, Src: []string{string(vault.StatePendingApproval)}, Dst: string(vault.StateRejected)},
	{Name: eventComplete, Src: []string{
		string(vault.StateInbox),
		string(vault.StateNeedsAction),
		string(vault.StatePlans),
		string(vault.StatePendingApproval),
		string(vault.StateApproved),
		string(vault.StateRejected),
	}, Dst: string(vault.StateDone)},
}

// eventFor maps a target state to the event that reaches it.
var eventFor = map[vault.State]string{
	vault.StatePlans:           eventPlan,
	vault.StatePendingApproval: eventGate,
	vault.StateApproved:        eventApprove,
	vault.StateRejected:        eventReject,
	vault.StateDone:            eventComplete,
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to vault.State) bool {
	event, ok := eventFor[to]
	if !ok {
		return false
	}
	machine := fsm.NewFSM(string(from), lifecycleEvents, fsm.Callbacks{})
	return machine.Can(event)
}

// Lifecycle owns guarded transitions between state directories, plan
// creation, and task completion.
type Lifecycle struct {
	store    *vault.Store
	cfg      vault.Config
	activity *activity.Log
	log      zerolog.Logger
	now      func() time.Time
}

// NewLifecycle creates the lifecycle service.
func NewLifecycle(store *vault.Store, act *activity.Log, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		store:    store,
		cfg:      store.Config(),
		activity: act,
		log:      log.With().Str("component", "lifecycle").Logger(),
		now:      time.Now,
	}
}

// Transition relocates a named document along a legal edge and restamps
// its cached status field. A missing source means another process
// already performed the move; that is reported as vault.ErrNotExist and
// callers treat it as success-elsewhere, not failure.
func (l *Lifecycle) Transition(name string, from, to vault.State) (string, error) {
	if !CanTransition(from, to) {
		return "", fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
	}

	newPath, err := l.store.Move(l.cfg.DirFor(from), l.cfg.DirFor(to), name)
	if err != nil {
		return "", err
	}

	doc, err := l.store.Read(newPath)
	if err != nil {
		return newPath, fmt.Errorf("restamp after move: %w", err)
	}
	doc.Meta.Status = string(to)
	if err := l.store.Write(newPath, doc.Meta, doc.Body); err != nil {
		return newPath, fmt.Errorf("restamp after move: %w", err)
	}

	l.log.Debug().Str("name", name).Str("from", string(from)).Str("to", string(to)).
		Msg("document transitioned")

	return newPath, nil
}

// record appends to the activity log, logging and continuing on failure
// so audit hiccups never abort an operation.
func (l *Lifecycle) record(event, id, detail string) {
	if err := l.activity.Record(event, id, detail); err != nil {
		l.log.Warn().Err(err).Str("event", event).Msg("activity log append failed")
	}
}
