package steward

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/vault"
)

// App bundles the vault store and every lifecycle service. Commands hold
// a pointer to one App populated during CLI startup.
type App struct {
	Config    vault.Config
	Store     *vault.Store
	Activity  *activity.Log
	Lifecycle *Lifecycle
	Approvals *Approvals
	Status    *Status
	Inbox     *InboxWatcher
}

// NewApp wires all services over one vault configuration.
func NewApp(cfg vault.Config, knownContacts []string, log zerolog.Logger) *App {
	store := vault.NewStore(cfg, log)
	act := activity.New(cfg.Logs)

	return &App{
		Config:    cfg,
		Store:     store,
		Activity:  act,
		Lifecycle: NewLifecycle(store, act, log),
		Approvals: NewApprovals(store, act, knownContacts, log),
		Status:    NewStatus(store, act, log),
		Inbox:     NewInboxWatcher(store, act, log),
	}
}
