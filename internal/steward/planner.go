package steward

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/task"
	"github.com/colonyops/steward/internal/core/triage"
	"github.com/colonyops/steward/internal/core/vault"
)

// BatchResult reports a batch operation's per-item outcome. One bad
// document never blocks the rest; failures are counted alongside
// successes.
type BatchResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ProcessPending classifies every item in Needs_Action and writes a plan
// for each. Planning is non-destructive: the original stays in place
// until a terminal decision, so re-running is safe. Items that already
// have a plan are skipped.
func (l *Lifecycle) ProcessPending(ctx context.Context) (BatchResult, error) {
	docs, failed, err := l.store.ListDocs(l.cfg.NeedsAction, "*.md")
	if err != nil {
		return BatchResult{}, fmt.Errorf("scan needs_action: %w", err)
	}

	res := BatchResult{Failed: failed}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		planned, err := l.planItem(doc)
		switch {
		case err != nil:
			res.Failed++
			l.log.Error().Str("path", doc.Path).Err(err).Msg("planning failed, continuing batch")
		case planned:
			res.Processed++
		default:
			res.Skipped++
		}
	}

	return res, nil
}

// planItem classifies one item and writes its plan document. Returns
// false when a plan already exists.
func (l *Lifecycle) planItem(doc vault.Document) (bool, error) {
	planPath := filepath.Join(l.cfg.Plans, "PLAN_"+doc.Stem()+".md")
	if _, err := l.store.Read(planPath); err == nil {
		return false, nil
	} else if !errors.Is(err, vault.ErrNotExist) {
		return false, err
	}

	kind := task.ParseKind(doc.Meta.Type)
	priority := task.ParsePriority(doc.Meta.Priority)

	// Classification is idempotent: already-stamped results are kept.
	category := task.Category(doc.Meta.Category)
	score := doc.Meta.PriorityScore
	if kind == task.KindEmail && category == "" {
		category = triage.Categorize(doc.Meta.Subject, doc.Meta.From, doc.Body)
	}
	if score == 0 {
		score = triage.Score(triage.Input{
			Subject:  doc.Meta.Subject,
			Body:     doc.Body,
			Priority: priority,
			Category: category,
		})
	}

	subject := doc.Meta.Subject
	if subject == "" {
		subject = firstLine(doc.Body)
	}
	if subject == "" {
		subject = "Task from " + doc.Stem()
	}

	steps := PlanSteps(kind, priority)

	meta := vault.Frontmatter{
		Type:          string(kind),
		TaskID:        doc.Stem(),
		SourceFile:    doc.Path,
		Subject:       subject,
		Priority:      string(priority),
		PriorityScore: score,
		Status:        "planned",
		Created:       l.now(),
	}
	if kind == task.KindEmail {
		meta.Category = string(category)
	}

	body := renderPlanBody(subject, kind, priority, doc.Body, steps)
	if err := l.store.Write(planPath, meta, body); err != nil {
		return false, err
	}

	// Stamp classification results back onto the original so rescoring
	// never flips categories underneath an operator.
	if kind == task.KindEmail && doc.Meta.Category == "" {
		doc.Meta.Category = string(category)
		doc.Meta.PriorityScore = score
		if err := l.store.Write(doc.Path, doc.Meta, doc.Body); err != nil {
			l.log.Warn().Str("path", doc.Path).Err(err).Msg("could not stamp classification on original")
		}
	}

	if priority.Urgent() {
		l.log.Info().Str("task", doc.Stem()).Str("priority", string(priority)).
			Msg("urgent item planned")
	}

	l.record(activity.EventPlanCreated, doc.Stem(),
		fmt.Sprintf("%s priority=%s score=%d", subject, priority, score))

	return true, nil
}

// PlanSteps synthesizes the action checklist for an item. Generic review
// steps always lead; kind-specific steps follow; urgent priorities
// insert an escalation step near the front and append a notify-operator
// step.
func PlanSteps(kind task.Kind, priority task.Priority) []task.Step {
	steps := []task.Step{
		{Text: "Review the original request in detail"},
		{Text: "Determine the appropriate priority level per policy"},
	}

	switch kind {
	case task.KindEmail:
		steps = append(steps,
			task.Step{Text: "Draft a response following communication guidelines"},
			task.Step{Text: "Check for approval requirements based on content"},
			task.Step{Text: "Send response or escalate as needed"},
		)
	case task.KindFileDrop:
		steps = append(steps,
			task.Step{Text: "Review the dropped file content"},
			task.Step{Text: "Determine appropriate action based on file type and content"},
			task.Step{Text: "Process file according to policy"},
		)
	case task.KindPayment:
		steps = append(steps,
			task.Step{Text: "Verify payment details and recipient"},
			task.Step{Text: "Check approval requirements based on amount"},
			task.Step{Text: "Process payment or escalate for approval"},
		)
	default:
		steps = append(steps, task.Step{Text: "Analyze the request and determine appropriate action steps"})
	}

	switch priority {
	case task.PriorityHigh:
		steps = insertStep(steps, 1, task.Step{Text: "Prioritize this task based on high priority status"})
		steps = append(steps, task.Step{Text: "Escalate to human operator if needed"})
	case task.PriorityCritical:
		steps = insertStep(steps, 1, task.Step{Text: "Handle immediately as critical priority task"})
		steps = append(steps, task.Step{Text: "Notify human operator of critical task"})
	}

	return append(steps, task.Step{Text: "Document completion and update status"})
}

func insertStep(steps []task.Step, at int, step task.Step) []task.Step {
	steps = append(steps, task.Step{})
	copy(steps[at+1:], steps[at:])
	steps[at] = step
	return steps
}

func renderPlanBody(subject string, kind task.Kind, priority task.Priority, original string, steps []task.Step) string {
	analysis := fmt.Sprintf("The task is of type %q with priority %q.", kind, priority)
	if preview := previewText(original, 200); preview != "" {
		analysis += " Original content: " + preview
	}

	return fmt.Sprintf(`# Task: %s

## Objective
Process and complete the requested task based on the original item.

## Analysis
%s

## Action Steps
%s

## Success Criteria
All action steps executed and documented.`,
		subject, analysis, task.RenderSteps(steps))
}

func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "# "))
		if line != "" {
			return previewText(line, 100)
		}
	}
	return ""
}

// previewText truncates to n runes, never splitting a multi-byte
// character.
func previewText(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
