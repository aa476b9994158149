package steward

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/task"
	"github.com/colonyops/steward/internal/core/vault"
)

const dashboardName = "Dashboard.md"

// Status aggregates the vault into a point-in-time snapshot and renders
// the operator dashboard.
type Status struct {
	store    *vault.Store
	cfg      vault.Config
	activity *activity.Log
	log      zerolog.Logger
	now      func() time.Time
}

// NewStatus creates the status service.
func NewStatus(store *vault.Store, act *activity.Log, log zerolog.Logger) *Status {
	return &Status{
		store:    store,
		cfg:      store.Config(),
		activity: act,
		log:      log.With().Str("component", "status").Logger(),
		now:      time.Now,
	}
}

// Snapshot is a point-in-time view of the vault. Everything except
// GeneratedAt is derived purely from vault contents, so two snapshots of
// an unchanged vault render identically apart from the timestamp.
type Snapshot struct {
	GeneratedAt    time.Time                  `json:"generated_at"`
	Counts         map[vault.State]int        `json:"counts"`
	ByPriority     map[task.Priority][]string `json:"by_priority,omitempty"`
	CompletedToday []string                   `json:"completed_today,omitempty"`
	RecentActivity []string                   `json:"recent_activity,omitempty"`
	Duplicates     []string                   `json:"duplicates,omitempty"`
	DashboardPath  string                     `json:"dashboard_path"`
}

// Refresh scans the vault, builds a snapshot, and rewrites the dashboard
// document at the vault root. An empty vault yields all-zero counts.
func (s *Status) Refresh(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		GeneratedAt:   s.now(),
		Counts:        map[vault.State]int{},
		ByPriority:    map[task.Priority][]string{},
		DashboardPath: filepath.Join(s.cfg.Root, dashboardName),
	}

	seen := map[string]int{}
	for _, state := range vault.States() {
		paths, err := s.store.List(s.cfg.DirFor(state), "*.md")
		if err != nil {
			return Snapshot{}, fmt.Errorf("count %s: %w", state, err)
		}
		snap.Counts[state] = len(paths)
		for _, path := range paths {
			seen[vault.Stem(path)]++
		}
	}

	// A stem living in two state directories means a move half-failed or
	// someone copied instead of moving.
	for stem, n := range seen {
		if n > 1 {
			snap.Duplicates = append(snap.Duplicates, stem)
		}
	}
	sort.Strings(snap.Duplicates)
	for _, stem := range snap.Duplicates {
		s.log.Warn().Str("stem", stem).Msg("document present in more than one state directory")
	}

	if err := s.bucketNeedsAction(&snap); err != nil {
		return Snapshot{}, err
	}

	completed, err := s.completedToday(snap.GeneratedAt)
	if err != nil {
		return Snapshot{}, err
	}
	snap.CompletedToday = completed

	entries, err := s.activity.Tail(10)
	if err != nil {
		s.log.Warn().Err(err).Msg("activity tail failed, dashboard omits recent activity")
	}
	snap.RecentActivity = entries

	if err := os.WriteFile(snap.DashboardPath, []byte(s.render(snap)), 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("write dashboard: %w", err)
	}

	s.log.Debug().Int("needs_action", snap.Counts[vault.StateNeedsAction]).
		Int("pending_approval", snap.Counts[vault.StatePendingApproval]).
		Msg("dashboard refreshed")

	return snap, nil
}

// bucketNeedsAction groups actionable items by their stamped priority.
func (s *Status) bucketNeedsAction(snap *Snapshot) error {
	docs, _, err := s.store.ListDocs(s.cfg.NeedsAction, "*.md")
	if err != nil {
		return fmt.Errorf("bucket needs_action: %w", err)
	}

	for _, doc := range docs {
		p := task.ParsePriority(doc.Meta.Priority)
		snap.ByPriority[p] = append(snap.ByPriority[p], doc.Stem())
	}
	for _, stems := range snap.ByPriority {
		sort.Strings(stems)
	}

	return nil
}

// completedToday lists Done documents whose file modification time falls
// on the snapshot's calendar day, most recent first, capped at 10.
func (s *Status) completedToday(now time.Time) ([]string, error) {
	paths, err := s.store.List(s.cfg.Done, "*.md")
	if err != nil {
		return nil, fmt.Errorf("scan done: %w", err)
	}

	type entry struct {
		stem  string
		mtime time.Time
	}
	var todays []entry

	year, month, day := now.Date()
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		my, mm, md := info.ModTime().Date()
		if my == year && mm == month && md == day {
			todays = append(todays, entry{stem: vault.Stem(path), mtime: info.ModTime()})
		}
	}

	sort.Slice(todays, func(i, j int) bool { return todays[i].mtime.After(todays[j].mtime) })
	if len(todays) > 10 {
		todays = todays[:10]
	}

	stems := make([]string, 0, len(todays))
	for _, e := range todays {
		stems = append(stems, e.stem)
	}

	return stems, nil
}

var stateLabels = []struct {
	state vault.State
	label string
}{
	{vault.StateInbox, "Inbox"},
	{vault.StateNeedsAction, "Needs Action"},
	{vault.StatePlans, "Plans"},
	{vault.StatePendingApproval, "Pending Approval"},
	{vault.StateApproved, "Approved"},
	{vault.StateRejected, "Rejected"},
	{vault.StateDone, "Done"},
}

func (s *Status) render(snap Snapshot) string {
	var b strings.Builder

	b.WriteString("# Dashboard\n\n")
	fmt.Fprintf(&b, "**Last Updated:** %s\n\n", snap.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Task Counts\n\n")
	b.WriteString("| State | Count |\n|---|---|\n")
	for _, sl := range stateLabels {
		fmt.Fprintf(&b, "| %s | %d |\n", sl.label, snap.Counts[sl.state])
	}
	b.WriteString("\n")

	wrotePriority := false
	for _, p := range task.Priorities() {
		stems := snap.ByPriority[p]
		if len(stems) == 0 {
			continue
		}
		if !wrotePriority {
			b.WriteString("## Needs Action by Priority\n\n")
			wrotePriority = true
		}
		fmt.Fprintf(&b, "### %s\n", strings.ToUpper(string(p)[:1])+string(p)[1:])
		for _, stem := range stems {
			fmt.Fprintf(&b, "- %s\n", stem)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Completed Today\n\n")
	if len(snap.CompletedToday) == 0 {
		b.WriteString("Nothing completed yet today.\n")
	} else {
		for _, stem := range snap.CompletedToday {
			fmt.Fprintf(&b, "- %s\n", stem)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Recent Activity\n\n")
	if len(snap.RecentActivity) == 0 {
		b.WriteString("No activity recorded today.\n")
	} else {
		for _, line := range snap.RecentActivity {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return b.String()
}
