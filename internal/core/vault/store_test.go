package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultConfig(t.TempDir())
	require.NoError(t, cfg.EnsureDirs())

	return NewStore(cfg, zerolog.Nop())
}

func TestStore_WriteRead(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.Config().NeedsAction, "TASK_invoice_reminder.md")

	meta := Frontmatter{Type: "generic", Subject: "Invoice reminder", Priority: "medium", Status: "pending"}
	require.NoError(t, store.Write(path, meta, "Send the reminder."))

	doc, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, meta, doc.Meta)
	assert.Equal(t, "Send the reminder.", doc.Body)
	assert.Equal(t, "TASK_invoice_reminder", doc.Stem())
}

func TestStore_Read_MissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read(filepath.Join(store.Config().Done, "nope.md"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestStore_Read_NoHeader(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.Config().Inbox, "raw.md")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no header"), 0o644))

	doc, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, Frontmatter{}, doc.Meta)
	assert.Equal(t, "plain text, no header", doc.Body)
}

func TestStore_Move(t *testing.T) {
	t.Run("relocates between state dirs", func(t *testing.T) {
		store := newTestStore(t)
		cfg := store.Config()

		src := filepath.Join(cfg.Plans, "PLAN_weekly_report.md")
		require.NoError(t, store.Write(src, Frontmatter{Type: "generic"}, "plan body"))

		newPath, err := store.Move(cfg.Plans, cfg.Done, "PLAN_weekly_report.md")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.Done, "PLAN_weekly_report.md"), newPath)

		assert.NoFileExists(t, src)
		assert.FileExists(t, newPath)
	})

	t.Run("missing source reports ErrNotExist", func(t *testing.T) {
		store := newTestStore(t)
		cfg := store.Config()

		_, err := store.Move(cfg.Plans, cfg.Done, "ghost.md")
		assert.ErrorIs(t, err, ErrNotExist)
	})
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	cfg := store.Config()

	require.NoError(t, store.Write(filepath.Join(cfg.NeedsAction, "EMAIL_one.md"), Frontmatter{}, "a"))
	require.NoError(t, store.Write(filepath.Join(cfg.NeedsAction, "EMAIL_two.md"), Frontmatter{}, "b"))
	require.NoError(t, store.Write(filepath.Join(cfg.NeedsAction, "FILE_drop.md"), Frontmatter{}, "c"))

	emails, err := store.List(cfg.NeedsAction, "EMAIL_*.md")
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	all, err := store.List(cfg.NeedsAction, "*.md")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.List(filepath.Join(cfg.Root, "missing"), "*.md")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ListDocs_SkipsUnreadable(t *testing.T) {
	store := newTestStore(t)
	cfg := store.Config()

	require.NoError(t, store.Write(filepath.Join(cfg.Plans, "PLAN_good.md"), Frontmatter{Subject: "ok"}, "fine"))

	// A document with garbage frontmatter still reads; only I/O errors count
	// as failures.
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Plans, "PLAN_garbled.md"), []byte("---\n: :\n---\nbody"), 0o644))

	docs, failed, err := store.ListDocs(cfg.Plans, "*.md")
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Len(t, docs, 2)
}

func TestConfig_StateMapping(t *testing.T) {
	cfg := DefaultConfig("/vault")

	seen := map[string]bool{}
	for _, state := range States() {
		dir := cfg.DirFor(state)
		require.NotEmpty(t, dir)
		assert.False(t, seen[dir], "state %s shares a directory", state)
		seen[dir] = true
	}

	assert.Empty(t, cfg.DirFor(State("bogus")))
}
