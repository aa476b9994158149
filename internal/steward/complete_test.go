package steward

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/steward/internal/core/vault"
)

func TestComplete(t *testing.T) {
	app := newTestApp(t)

	created := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	app.Lifecycle.now = func() time.Time { return completed }

	meta := vault.Frontmatter{Subject: "Invoice reminder", Status: "needs_action", Created: created}
	body := "# Task\n\n- [x] Review the original request in detail\n- [ ] Send response or escalate as needed"
	require.NoError(t, app.Store.Write(
		filepath.Join(app.Config.NeedsAction, "invoice_reminder.md"), meta, body))

	res, err := app.Lifecycle.Complete(context.Background(), "invoice_reminder")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 1, res.Archived)
	assert.Equal(t, completed, res.CompletedAt)
	assert.Equal(t, "2h30m0s", res.Duration)

	t.Run("original is gone and archive is stamped", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(app.Config.NeedsAction, "invoice_reminder.md"))
		assert.True(t, os.IsNotExist(err))

		doc, err := app.Store.Read(filepath.Join(app.Config.Done, "invoice_reminder.md"))
		require.NoError(t, err)
		assert.Equal(t, "completed", doc.Meta.Status)
		assert.Equal(t, completed, doc.Meta.CompletedAt)
		assert.Contains(t, doc.Body, "## Completion Note")
	})

	t.Run("summary lists completed steps", func(t *testing.T) {
		summary, err := app.Store.Read(res.SummaryPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(app.Config.Done, "SUMMARY_invoice_reminder.md"), res.SummaryPath)
		assert.Equal(t, "summary", summary.Meta.Type)
		assert.Contains(t, summary.Body, "- [x] Review the original request in detail")
		assert.NotContains(t, summary.Body, "Send response or escalate as needed")
	})

	t.Run("completing again reports already completed", func(t *testing.T) {
		later := completed.Add(2 * time.Hour)
		app.Lifecycle.now = func() time.Time { return later }

		res, err := app.Lifecycle.Complete(context.Background(), "invoice_reminder")
		require.NoError(t, err)
		assert.Equal(t, StatusAlreadyCompleted, res.Status)
		assert.Equal(t, completed, res.CompletedAt)
	})
}

func TestComplete_ArchivesPlanAlongside(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.Store.Write(
		filepath.Join(app.Config.NeedsAction, "invoice_reminder.md"),
		vault.Frontmatter{Subject: "Invoice reminder"}, "body"))
	require.NoError(t, app.Store.Write(
		filepath.Join(app.Config.Plans, "PLAN_invoice_reminder.md"),
		vault.Frontmatter{Subject: "Invoice reminder", TaskID: "invoice_reminder"}, "- [ ] step"))

	res, err := app.Lifecycle.Complete(context.Background(), "invoice_reminder")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 2, res.Archived)

	for _, name := range []string{"invoice_reminder.md", "PLAN_invoice_reminder.md", "SUMMARY_invoice_reminder.md"} {
		_, err := os.Stat(filepath.Join(app.Config.Done, name))
		assert.NoError(t, err, name)
	}
}

func TestComplete_NotFound(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.Store.Write(
		filepath.Join(app.Config.NeedsAction, "invoice_reminder.md"),
		vault.Frontmatter{Subject: "Invoice reminder"}, "body"))

	t.Run("near miss yields suggestions", func(t *testing.T) {
		res, err := app.Lifecycle.Complete(context.Background(), "invoice_remindr")
		require.NoError(t, err)
		assert.Equal(t, StatusNotFoundSuggestions, res.Status)
		assert.Contains(t, res.Suggestions, "invoice_reminder")
	})

	t.Run("no resemblance yields plain not found", func(t *testing.T) {
		res, err := app.Lifecycle.Complete(context.Background(), "zzzzzzzzzz")
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, res.Status)
		assert.Empty(t, res.Suggestions)
	})
}
