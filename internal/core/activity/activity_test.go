package activity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Record(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 8, 31, 9, 15, 30, 0, time.UTC)
	log := NewAt(dir, func() time.Time { return ts })

	require.NoError(t, log.Record(EventCompleted, "invoice_reminder", "archived to Done"))
	require.NoError(t, log.Record(EventApprovalRequested, "payment_x", "payment - vendor invoice"))

	data, err := os.ReadFile(filepath.Join(dir, "2026-08-31.txt"))
	require.NoError(t, err)

	assert.Equal(t,
		"[09:15:30] COMPLETED: invoice_reminder - archived to Done\n"+
			"[09:15:30] APPROVAL_REQUESTED: payment_x - payment - vendor invoice\n",
		string(data))
}

func TestLog_Tail(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	log := NewAt(dir, func() time.Time { return ts })

	t.Run("missing file yields empty tail", func(t *testing.T) {
		entries, err := log.Tail(10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("caps and reverses entries", func(t *testing.T) {
		require.NoError(t, log.Record(EventPlanCreated, "a", "one"))
		require.NoError(t, log.Record(EventPlanCreated, "b", "two"))
		require.NoError(t, log.Record(EventPlanCreated, "c", "three"))

		entries, err := log.Tail(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Contains(t, entries[0], "c - three")
		assert.Contains(t, entries[1], "b - two")
	})
}
