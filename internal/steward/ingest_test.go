package steward

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxWatcher_Scan(t *testing.T) {
	app := newTestApp(t)
	app.Inbox.now = func() time.Time {
		return time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC)
	}

	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "report.txt"),
		[]byte("Q3 numbers are ready for review."), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "upload.tmp"), []byte("x"), 0o644))

	res, err := app.Inbox.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 1}, res)

	doc, err := app.Store.Read(filepath.Join(app.Config.NeedsAction, "FILE_report.md"))
	require.NoError(t, err)
	assert.Equal(t, "file_drop", doc.Meta.Type)
	assert.Equal(t, "New file: report.txt", doc.Meta.Subject)
	assert.Equal(t, "medium", doc.Meta.Priority)
	assert.Contains(t, doc.Body, "**File:** report.txt")
	assert.Contains(t, doc.Body, "Q3 numbers are ready for review.")

	t.Run("original drop is left in place", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(app.Config.Inbox, "report.txt"))
		assert.NoError(t, err)
	})

	t.Run("second scan skips ingested drops", func(t *testing.T) {
		res, err := app.Inbox.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, BatchResult{Skipped: 1}, res)
	})
}

func TestInboxWatcher_BinaryPreview(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "blob.bin"),
		[]byte{0x00, 0x01, 0x02, 0xff}, 0o644))

	_, err := app.Inbox.Scan(context.Background())
	require.NoError(t, err)

	doc, err := app.Store.Read(filepath.Join(app.Config.NeedsAction, "FILE_blob.md"))
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "(binary content)")
}

func TestInboxWatcher_WatchPicksUpDrop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Inbox.Watch(ctx) }()

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "note.txt"), []byte("call the vendor"), 0o644))

	target := filepath.Join(app.Config.NeedsAction, "FILE_note.md")
	require.Eventually(t, func() bool {
		_, err := os.Stat(target)
		return err == nil
	}, 5*time.Second, 25*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

func TestInboxWatcher_WatchOverlappingDrops(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Inbox.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "alpha.txt"), []byte("first drop"), 0o644))

	// Land a second drop inside the first one's debounce window.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(
		filepath.Join(app.Config.Inbox, "beta.txt"), []byte("second drop"), 0o644))

	for _, name := range []string{"FILE_alpha.md", "FILE_beta.md"} {
		target := filepath.Join(app.Config.NeedsAction, name)
		require.Eventually(t, func() bool {
			_, err := os.Stat(target)
			return err == nil
		}, 5*time.Second, 25*time.Millisecond, name)
	}

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}
