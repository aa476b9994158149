package steward

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/steward/internal/core/activity"
	"github.com/colonyops/steward/internal/core/vault"
)

// InboxWatcher turns raw files dropped into Inbox into actionable
// documents in Needs_Action. The original drop is left untouched; the
// watcher only ever creates.
type InboxWatcher struct {
	store       *vault.Store
	cfg         vault.Config
	activity    *activity.Log
	log         zerolog.Logger
	debounceDur time.Duration
	now         func() time.Time
}

// NewInboxWatcher creates the ingestion watcher.
func NewInboxWatcher(store *vault.Store, act *activity.Log, log zerolog.Logger) *InboxWatcher {
	return &InboxWatcher{
		store:       store,
		cfg:         store.Config(),
		activity:    act,
		log:         log.With().Str("component", "inbox-watcher").Logger(),
		debounceDur: 200 * time.Millisecond,
		now:         time.Now,
	}
}

// Scan ingests every unprocessed file currently sitting in Inbox. Used
// both as the catch-up pass before watching and as the one-shot CLI
// path.
func (w *InboxWatcher) Scan(ctx context.Context) (BatchResult, error) {
	entries, err := os.ReadDir(w.cfg.Inbox)
	if err != nil {
		if os.IsNotExist(err) {
			return BatchResult{}, nil
		}
		return BatchResult{}, fmt.Errorf("scan inbox: %w", err)
	}

	var res BatchResult
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if entry.IsDir() || w.shouldIgnore(entry.Name()) {
			continue
		}

		ingested, err := w.ingest(filepath.Join(w.cfg.Inbox, entry.Name()))
		switch {
		case err != nil:
			res.Failed++
			w.log.Error().Str("name", entry.Name()).Err(err).Msg("ingest failed, continuing scan")
		case ingested:
			res.Processed++
		default:
			res.Skipped++
		}
	}

	return res, nil
}

// Watch blocks on Inbox filesystem events until ctx is cancelled. A
// catch-up scan runs first so drops made while nothing was watching are
// not lost.
func (w *InboxWatcher) Watch(ctx context.Context) error {
	if _, err := w.Scan(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create inbox watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.Inbox); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Inbox, err)
	}

	w.log.Info().Str("dir", w.cfg.Inbox).Msg("watching inbox")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			// Debounce: let writers finish, collecting every drop seen
			// during the window so none is lost.
			changed := map[string]bool{event.Name: true}
			w.settle(ctx, watcher, changed)

			for _, path := range sortedKeys(changed) {
				if info, err := os.Stat(path); err != nil || info.IsDir() {
					continue
				}

				ingested, err := w.ingest(path)
				if err != nil {
					w.log.Error().Str("path", path).Err(err).Msg("ingest failed")
				} else if ingested {
					w.log.Info().Str("name", filepath.Base(path)).Msg("inbox file ingested")
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("inbox watcher error")
		}
	}
}

// settle drains queued events into changed until the debounce window
// passes quietly. Every relevant drop seen while settling joins the
// set; nothing is discarded.
func (w *InboxWatcher) settle(ctx context.Context, watcher *fsnotify.Watcher, changed map[string]bool) {
	debounce := time.NewTimer(w.debounceDur)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(e) {
				continue
			}
			changed[e.Name] = true
			if !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(w.debounceDur)
		case <-debounce.C:
			return
		}
	}
}

func (w *InboxWatcher) relevant(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
		return false
	}
	return !w.shouldIgnore(filepath.Base(e.Name))
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ingest creates the actionable document for one inbox file. Returns
// false when the target already exists.
func (w *InboxWatcher) ingest(path string) (bool, error) {
	name := filepath.Base(path)
	target := filepath.Join(w.cfg.NeedsAction, "FILE_"+vault.Stem(name)+".md")

	if _, err := w.store.Read(target); err == nil {
		return false, nil
	} else if !errors.Is(err, vault.ErrNotExist) {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat drop: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read drop: %w", err)
	}

	now := w.now()
	meta := vault.Frontmatter{
		Type:       "file_drop",
		SourceFile: path,
		Subject:    "New file: " + name,
		Priority:   "medium",
		Status:     "needs_action",
		Created:    now,
	}

	body := fmt.Sprintf(`# New File Dropped

**File:** %s
**Size:** %s
**Detected:** %s

## Content Preview
%s`,
		name, humanize.Bytes(uint64(info.Size())), now.Format("2006-01-02 15:04:05"),
		contentPreview(data))

	if err := w.store.Write(target, meta, body); err != nil {
		return false, err
	}

	if err := w.activity.Record(activity.EventIngested, vault.Stem(name), name); err != nil {
		w.log.Warn().Err(err).Msg("activity log append failed")
	}

	return true, nil
}

func (w *InboxWatcher) shouldIgnore(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, suffix := range []string{".tmp", ".lock", ".swp", ".swx", "~", ".part", ".crdownload"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// contentPreview returns the first 500 characters when the drop looks
// like text; binary drops get a placeholder.
func contentPreview(data []byte) string {
	if len(data) == 0 {
		return "(empty file)"
	}
	for _, b := range data[:min(len(data), 512)] {
		if b == 0 {
			return "(binary content)"
		}
	}
	return previewText(string(data), 500)
}
