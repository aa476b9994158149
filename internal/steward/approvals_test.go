package steward

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/steward/internal/core/approval"
	"github.com/colonyops/steward/internal/core/triage"
)

func TestApprovals_Request(t *testing.T) {
	app := newTestApp(t)

	now := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	app.Approvals.now = func() time.Time { return now }

	res, err := app.Approvals.Request(context.Background(), approval.Payment{
		Amount:  "$1,200",
		To:      "Acme Supplies",
		Purpose: "Vendor invoice 42",
	})
	require.NoError(t, err)

	assert.Equal(t, "payment_20260831_140509_Vendor_invoice_42", res.ActionID)
	assert.Equal(t, triage.RiskHigh, res.Risk)
	assert.Equal(t, now.Add(24*time.Hour), res.ExpiresAt)
	assert.Equal(t, "24h0m0s", res.ExpiresIn)

	doc, err := app.Store.Read(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "approval_request", doc.Meta.Type)
	assert.Equal(t, "payment", doc.Meta.ActionType)
	assert.Equal(t, "pending", doc.Meta.Decision)
	assert.Equal(t, "high", doc.Meta.RiskLevel)
	assert.Equal(t, now.Add(24*time.Hour), doc.Meta.Expires)
	assert.Contains(t, doc.Body, "**Amount:** $1,200")
	assert.Contains(t, doc.Body, "Move this file to the Approved folder")
}

func TestApprovals_Monitor(t *testing.T) {
	ctx := context.Background()

	t.Run("expired request resolves on the first check", func(t *testing.T) {
		app := newTestApp(t)

		past := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
		app.Approvals.now = func() time.Time { return past }
		res, err := app.Approvals.Request(ctx, approval.Email{
			To: "stranger@example.net", Subj: "Re: your inquiry", Draft: "Thanks for reaching out.",
		})
		require.NoError(t, err)

		app.Approvals.now = func() time.Time { return past.Add(72 * time.Hour) }

		outcome, err := app.Approvals.Monitor(ctx, res.Path, MonitorOptions{Interval: time.Hour})
		require.NoError(t, err)
		assert.Equal(t, approval.DecisionExpired, outcome.Decision)

		doc, err := app.Store.Read(filepath.Join(app.Config.Rejected, filepath.Base(res.Path)))
		require.NoError(t, err)
		assert.Equal(t, "expired", doc.Meta.Decision)
	})

	t.Run("human move to approved is authoritative", func(t *testing.T) {
		app := newTestApp(t)

		res, err := app.Approvals.Request(ctx, approval.SocialPost{
			Platform: "mastodon", Content: "We are hiring.",
		})
		require.NoError(t, err)

		name := filepath.Base(res.Path)
		require.NoError(t, os.Rename(res.Path, filepath.Join(app.Config.Approved, name)))

		outcome, err := app.Approvals.Monitor(ctx, res.Path, MonitorOptions{Interval: 10 * time.Millisecond})
		require.NoError(t, err)
		assert.Equal(t, approval.DecisionApproved, outcome.Decision)

		doc, err := app.Store.Read(outcome.Path)
		require.NoError(t, err)
		assert.Equal(t, "approved", doc.Meta.Decision)
	})

	t.Run("budget exhaustion times out the request", func(t *testing.T) {
		app := newTestApp(t)

		res, err := app.Approvals.Request(ctx, approval.FileOperation{
			Operation: "delete", Path: "/srv/archive/old.tar",
		})
		require.NoError(t, err)

		clock := app.Approvals.now()
		app.Approvals.now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}

		outcome, err := app.Approvals.Monitor(ctx, res.Path, MonitorOptions{
			Interval: 10 * time.Millisecond,
			Budget:   30 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, approval.DecisionTimeout, outcome.Decision)

		doc, err := app.Store.Read(outcome.Path)
		require.NoError(t, err)
		assert.Equal(t, "timeout", doc.Meta.Decision)
		assert.Equal(t, "rejected", doc.Meta.Status)
	})

	t.Run("budget bounds a request that exists nowhere", func(t *testing.T) {
		app := newTestApp(t)

		clock := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
		app.Approvals.now = func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}

		path := filepath.Join(app.Config.PendingApproval, approval.Filename("payment_20260831_150000_ghost"))
		_, err := app.Approvals.Monitor(ctx, path, MonitorOptions{
			Interval: 10 * time.Millisecond,
			Budget:   30 * time.Second,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "budget exhausted")
	})

	t.Run("cancellation stops the watch", func(t *testing.T) {
		app := newTestApp(t)

		res, err := app.Approvals.Request(ctx, approval.Generic{Title: "misc", Content: "details"})
		require.NoError(t, err)

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = app.Approvals.Monitor(cancelCtx, res.Path, MonitorOptions{Interval: time.Hour})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestApprovals_Decide(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	res, err := app.Approvals.Request(ctx, approval.Email{
		To: "known@example.com", Subj: "Weekly sync notes", Draft: "Notes attached.",
	})
	require.NoError(t, err)
	assert.Equal(t, triage.RiskLow, res.Risk)

	outcome, err := app.Approvals.Decide(ctx, res.ActionID, true)
	require.NoError(t, err)
	assert.Equal(t, approval.DecisionApproved, outcome.Decision)
	assert.Equal(t, filepath.Join(app.Config.Approved, approval.Filename(res.ActionID)), outcome.Path)

	doc, err := app.Store.Read(outcome.Path)
	require.NoError(t, err)
	assert.Equal(t, "approved", doc.Meta.Decision)
	assert.Equal(t, "approved", doc.Meta.Status)
}
