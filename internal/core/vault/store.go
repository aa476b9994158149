package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Sentinel errors for store operations.
var (
	// ErrNotExist is returned when a document is missing from its
	// expected location. For moves, callers treat this as "another
	// process already transitioned the document".
	ErrNotExist = errors.New("document does not exist")
)

// Document is a single vault document: structured metadata plus a
// free-text body.
type Document struct {
	Path string
	Meta Frontmatter
	Body string
}

// Stem returns the document's filename without its extension.
func (d Document) Stem() string {
	return Stem(d.Path)
}

// Stem returns a path's filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Store provides typed read/write access to vault documents and atomic
// relocation between state directories.
type Store struct {
	cfg Config
	log zerolog.Logger
}

// NewStore creates a store over the given vault configuration.
func NewStore(cfg Config, log zerolog.Logger) *Store {
	return &Store{
		cfg: cfg,
		log: log.With().Str("component", "vault").Logger(),
	}
}

// Config returns the vault configuration the store was built with.
func (s *Store) Config() Config {
	return s.cfg
}

// Read loads a document from path. A missing header degrades to empty
// metadata with the whole content as body; only an I/O failure is an
// error.
func (s *Store) Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, fmt.Errorf("read %s: %w", path, ErrNotExist)
		}
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	meta, body := ParseDocument(string(data))
	return Document{Path: path, Meta: meta, Body: body}, nil
}

// Write serializes a document to path, creating the parent directory if
// needed.
func (s *Store) Write(path string, meta Frontmatter, body string) error {
	content, err := RenderDocument(meta, body)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// Move relocates a named document from srcDir to dstDir and returns the
// new path. It prefers an atomic rename; when rename fails across
// volumes it falls back to write-new-then-delete-old, so a crash in
// between leaves at most one extra copy, never zero copies. A missing
// source returns ErrNotExist.
func (s *Store) Move(srcDir, dstDir, name string) (string, error) {
	src := filepath.Join(srcDir, name)
	dst := filepath.Join(dstDir, name)

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("move %s: %w", name, ErrNotExist)
		}
		return "", fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dstDir, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	// Cross-volume fallback: create in the new location before deleting
	// from the old one.
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("move %s: %w", name, ErrNotExist)
		}
		return "", fmt.Errorf("move read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("move write %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Str("src", src).Str("dst", dst).Err(err).
			Msg("move left a duplicate behind")
	}

	return dst, nil
}

// List returns the paths of documents in dir whose names match the glob
// pattern. Order is the filesystem default; callers needing determinism
// sort explicitly. A missing directory yields an empty list.
func (s *Store) List(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	return paths, nil
}

// ListDocs reads every matching document in dir. Documents that fail to
// read are skipped and counted rather than aborting the batch.
func (s *Store) ListDocs(dir, pattern string) ([]Document, int, error) {
	paths, err := s.List(dir, pattern)
	if err != nil {
		return nil, 0, err
	}

	docs := make([]Document, 0, len(paths))
	failed := 0
	for _, path := range paths {
		doc, err := s.Read(path)
		if err != nil {
			failed++
			s.log.Warn().Str("path", path).Err(err).Msg("skipping unreadable document")
			continue
		}
		docs = append(docs, doc)
	}

	return docs, failed, nil
}
