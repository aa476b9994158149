package steward

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/task"
	"github.com/colonyops/steward/internal/core/vault"
)

// CompleteStatus is the structured outcome of a completion attempt.
type CompleteStatus string

const (
	StatusCompleted           CompleteStatus = "completed"
	StatusAlreadyCompleted    CompleteStatus = "already_completed"
	StatusNotFound            CompleteStatus = "not_found"
	StatusNotFoundSuggestions CompleteStatus = "not_found_with_suggestions"
)

const maxSuggestions = 5

// CompleteResult reports the outcome of Complete. It is always a
// structured result, never a bare error, so a missing task surfaces as
// suggestions instead of a fault.
type CompleteResult struct {
	Status      CompleteStatus `json:"status"`
	Message     string         `json:"message"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Archived    int            `json:"archived,omitempty"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	Duration    string         `json:"duration,omitempty"`
	SummaryPath string         `json:"summary_path,omitempty"`
}

type taskMatch struct {
	doc   vault.Document
	state vault.State
}

// Complete archives every document whose filename stem fuzzy-matches
// taskID into Done and emits exactly one summary per task id. The
// operation is idempotent: completing an already-done task reports
// already_completed with the original timestamp.
func (l *Lifecycle) Complete(ctx context.Context, taskID string) (CompleteResult, error) {
	if err := ctx.Err(); err != nil {
		return CompleteResult{}, err
	}

	matches, err := l.findTask(taskID)
	if err != nil {
		return CompleteResult{}, err
	}

	if len(matches) == 0 {
		suggestions, err := l.suggest(taskID)
		if err != nil {
			return CompleteResult{}, err
		}
		if len(suggestions) == 0 {
			return CompleteResult{
				Status:  StatusNotFound,
				Message: fmt.Sprintf("task %q not found", taskID),
			}, nil
		}
		return CompleteResult{
			Status:      StatusNotFoundSuggestions,
			Message:     fmt.Sprintf("task %q not found, did you mean: %s", taskID, strings.Join(suggestions, ", ")),
			Suggestions: suggestions,
		}, nil
	}

	for _, m := range matches {
		if m.state != vault.StateDone {
			continue
		}
		completedAt := m.doc.Meta.CompletedAt
		return CompleteResult{
			Status:      StatusAlreadyCompleted,
			Message:     fmt.Sprintf("task %q was already completed", taskID),
			CompletedAt: completedAt,
		}, nil
	}

	now := l.now()
	first := matches[0].doc
	archived := 0

	for _, m := range matches {
		if err := l.archive(m, now); err != nil {
			l.log.Error().Str("path", m.doc.Path).Err(err).Msg("archive failed, continuing batch")
			continue
		}
		archived++
	}

	if archived == 0 {
		return CompleteResult{}, fmt.Errorf("complete %q: no matched file could be archived", taskID)
	}

	duration := completionDuration(first.Meta.Created, now)
	summaryPath, err := l.writeSummary(taskID, first, now, duration)
	if err != nil {
		return CompleteResult{}, err
	}

	subject := first.Meta.Subject
	if subject == "" {
		subject = taskID
	}
	l.record(activity.EventCompleted, taskID, subject)

	return CompleteResult{
		Status:      StatusCompleted,
		Message:     fmt.Sprintf("task %q completed", taskID),
		Archived:    archived,
		CompletedAt: now,
		Duration:    duration,
		SummaryPath: summaryPath,
	}, nil
}

// findTask locates every document whose stem contains taskID,
// case-insensitively, across all state directories.
func (l *Lifecycle) findTask(taskID string) ([]taskMatch, error) {
	needle := strings.ToLower(taskID)

	var matches []taskMatch
	for _, state := range vault.States() {
		docs, _, err := l.store.ListDocs(l.cfg.DirFor(state), "*.md")
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if strings.Contains(strings.ToLower(doc.Stem()), needle) {
				matches = append(matches, taskMatch{doc: doc, state: state})
			}
		}
	}

	return matches, nil
}

// suggest returns stems close to taskID: either containing it as a
// substring or within edit distance 2.
func (l *Lifecycle) suggest(taskID string) ([]string, error) {
	needle := strings.ToLower(taskID)

	var suggestions []string
	seen := map[string]bool{}
	for _, state := range vault.States() {
		paths, err := l.store.List(l.cfg.DirFor(state), "*.md")
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			stem := vault.Stem(path)
			lower := strings.ToLower(stem)
			if seen[lower] {
				continue
			}
			if strings.Contains(lower, needle) || levenshtein.ComputeDistance(needle, lower) <= 2 {
				seen[lower] = true
				suggestions = append(suggestions, stem)
			}
		}
	}

	sort.Strings(suggestions)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions, nil
}

// archive stamps completion metadata on one matched document and
// relocates it into Done. The new copy is written before the original
// is removed so no window exists where the document is nowhere.
func (l *Lifecycle) archive(m taskMatch, now time.Time) error {
	meta := m.doc.Meta
	meta.Status = "completed"
	if meta.CompletedAt.IsZero() {
		meta.CompletedAt = now
	}

	body := m.doc.Body + fmt.Sprintf("\n\n## Completion Note\nCompleted on %s.", now.Format("2006-01-02 15:04:05"))

	donePath := filepath.Join(l.cfg.Done, filepath.Base(m.doc.Path))
	if err := l.store.Write(donePath, meta, body); err != nil {
		return err
	}

	if err := os.Remove(m.doc.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove original %s: %w", m.doc.Path, err)
	}

	return nil
}

// writeSummary emits the single per-task summary document in Done.
func (l *Lifecycle) writeSummary(taskID string, first vault.Document, now time.Time, duration string) (string, error) {
	subject := first.Meta.Subject
	if subject == "" {
		subject = first.Stem()
	}

	completed := task.CompletedSteps(task.ParseSteps(first.Body))
	var stepLines []string
	for _, s := range completed {
		stepLines = append(stepLines, "- [x] "+s.Text)
	}
	if len(stepLines) == 0 {
		stepLines = []string{"- [x] Task completed"}
	}

	body := fmt.Sprintf(`# Task Completion Summary

**Task:** %s
**Completed:** %s
**Duration:** %s

## Steps Taken
%s

## Outcome
Task has been completed and archived.`,
		subject, now.Format(time.RFC3339), duration, strings.Join(stepLines, "\n"))

	meta := vault.Frontmatter{
		Type:        "summary",
		TaskID:      taskID,
		Subject:     subject,
		Status:      "completed",
		Created:     first.Meta.Created,
		CompletedAt: now,
	}

	path := filepath.Join(l.cfg.Done, "SUMMARY_"+taskID+".md")
	if err := l.store.Write(path, meta, body); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	return path, nil
}

func completionDuration(created, now time.Time) string {
	if created.IsZero() || now.Before(created) {
		return "unknown"
	}
	return now.Sub(created).Round(time.Second).String()
}
