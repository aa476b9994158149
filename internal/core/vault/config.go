// Package vault implements the directory-backed document store. Every
// tracked item lives as a markdown document with YAML frontmatter inside
// one of the state directories under the vault root; a document's state
// is encoded by its physical location.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// State identifies a lifecycle stage. Each state maps 1:1 to a directory
// under the vault root.
type State string

const (
	StateInbox           State = "inbox"
	StateNeedsAction     State = "needs_action"
	StatePlans           State = "plans"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StateRejected        State = "rejected"
	StateDone            State = "done"
)

// States returns all lifecycle states in scan order.
func States() []State {
	return []State{
		StateInbox,
		StateNeedsAction,
		StatePlans,
		StatePendingApproval,
		StateApproved,
		StateRejected,
		StateDone,
	}
}

// Config names the vault root, every state directory, and the poll
// cadence for the approval monitor. All components receive it explicitly;
// nothing discovers paths on its own.
type Config struct {
	Root            string        `yaml:"root"`
	Inbox           string        `yaml:"inbox"`
	NeedsAction     string        `yaml:"needs_action"`
	Plans           string        `yaml:"plans"`
	PendingApproval string        `yaml:"pending_approval"`
	Approved        string        `yaml:"approved"`
	Rejected        string        `yaml:"rejected"`
	Done            string        `yaml:"done"`
	Logs            string        `yaml:"logs"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

// DefaultConfig returns a Config rooted at the given directory using the
// conventional directory names.
func DefaultConfig(root string) Config {
	return Config{
		Root:            root,
		Inbox:           filepath.Join(root, "Inbox"),
		NeedsAction:     filepath.Join(root, "Needs_Action"),
		Plans:           filepath.Join(root, "Plans"),
		PendingApproval: filepath.Join(root, "Pending_Approval"),
		Approved:        filepath.Join(root, "Approved"),
		Rejected:        filepath.Join(root, "Rejected"),
		Done:            filepath.Join(root, "Done"),
		Logs:            filepath.Join(root, "Logs"),
		PollInterval:    5 * time.Minute,
	}
}

// Load reads a YAML config file and overlays it on the defaults for the
// given root. A missing file is not an error; the defaults are returned.
func Load(path string, root string) (Config, error) {
	cfg := DefaultConfig(root)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}

	return cfg, nil
}

// DirFor returns the directory backing a state.
func (c Config) DirFor(state State) string {
	switch state {
	case StateInbox:
		return c.Inbox
	case StateNeedsAction:
		return c.NeedsAction
	case StatePlans:
		return c.Plans
	case StatePendingApproval:
		return c.PendingApproval
	case StateApproved:
		return c.Approved
	case StateRejected:
		return c.Rejected
	case StateDone:
		return c.Done
	default:
		return ""
	}
}

// EnsureDirs creates every vault directory that does not yet exist.
func (c Config) EnsureDirs() error {
	dirs := []string{c.Logs}
	for _, s := range States() {
		dirs = append(dirs, c.DirFor(s))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create vault dir %s: %w", dir, err)
		}
	}
	return nil
}
