// Package store implements the content-addressed, on-disk item tree
// described in spec.md §4.4: an append-only directory tree rooted at
// `root`, sharded by the first two bytes of a Value's 128-bit identity.
//
// The Store is not transactional; the contract only requires that a
// reader observing a partially-written file treat it as "no entry"
// (spec.md §4.4, §5). This implementation goes one step further than the
// contract strictly requires and writes via temp-file-then-rename, which
// spec.md §4.4 calls out as "recommended but not required" — cheap to do
// correctly and it removes the partial-read case entirely on POSIX
// filesystems where rename is atomic.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/vaelang/vael/internal/identity"
)

// ErrInvalidName reports an item name that is not ASCII
// alphanumeric-plus-underscore (spec.md §4.4).
var ErrInvalidName = errors.New("store: item name must be ASCII alphanumeric or underscore")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateName(name string) error {
	if name == "" || !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Store is a content-addressed directory tree rooted at Root.
type Store struct {
	Root string
}

// Open ensures root exists and returns a Store rooted there.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", root, err)
	}
	return &Store{Root: root}, nil
}

// Item returns a top-level item by name (spec.md §4.4: "item(name) ->
// Item").
func (s *Store) Item(name string) (*Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Item{store: s, path: name}, nil
}

// Item is a reference to a file at root/<name>[-<suffix>]/… (spec.md
// §4.4).
type Item struct {
	store *Store
	path  string // relative to store root, using "/" internally
}

// Child descends into a named sub-item (spec.md §4.4: "Item.child(name) ->
// Item").
func (it *Item) Child(name string) (*Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Item{store: it.store, path: it.path + "/" + name}, nil
}

// Value returns the canonical item for a Value identity: this item's path
// suffixed with "-v", then sharded by the identity's leading hex bytes
// (spec.md §4.4: "root/<store>-v/h1h2/h3h4/h5…h32").
func (it *Item) Value(id identity.ID) *Item {
	hex := id.Hex()
	sub := hex[0:2] + "/" + hex[2:4] + "/" + hex[4:]
	return &Item{store: it.store, path: it.path + "-v/" + sub}
}

// fsPath resolves the item to an absolute filesystem path.
func (it *Item) fsPath() string {
	return filepath.Join(it.store.Root, filepath.FromSlash(it.path))
}

// Exists reports whether the item currently has content (spec.md §4.4:
// "Item.exists()"). A read-miss is not an error (spec.md §4.4: "a
// read-miss is just 'no entry'").
func (it *Item) Exists() bool {
	info, err := os.Stat(it.fsPath())
	return err == nil && !info.IsDir()
}

// writer wraps a temp file, renaming it into place on a clean Close and
// discarding it (leaving no entry) if Close is never reached cleanly.
type writer struct {
	f        *os.File
	tmpPath  string
	destPath string
	closed   bool
}

// Write opens the item for writing (spec.md §4.4: "Item.write()"). The
// file is not visible at its final path until Close succeeds.
func (it *Item) Write() (io.WriteCloser, error) {
	dir := filepath.Dir(it.fsPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("store: creating temp file in %s: %w", dir, err)
	}
	return &writer{f: tmp, tmpPath: tmp.Name(), destPath: it.fsPath()}, nil
}

func (w *writer) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.f.Close(); err != nil {
		os.Remove(w.tmpPath)
		return err
	}
	return os.Rename(w.tmpPath, w.destPath)
}

// OpenOptions configures Open; reserved for future read-ahead tuning.
type OpenOptions struct{}

// Read opens the item for sequential reading (spec.md §4.4: "Item.read()",
// "Item.open(opts) -> sequential-access byte stream").
func (it *Item) Read() (io.ReadCloser, error) {
	f, err := os.Open(it.fsPath())
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Open is Read with explicit (currently unused) options, matching spec.md
// §4.4's named operation.
func (it *Item) Open(OpenOptions) (io.ReadCloser, error) {
	return it.Read()
}

// Remove deletes the item tree rooted here. Used by the CLI's --clean flag
// (spec.md §4.4: "eviction is delegated to the operator").
func (it *Item) Remove() error {
	return os.RemoveAll(it.fsPath())
}

// Clean removes the entire store directory (spec.md §4.4, §6: "--clean").
func (s *Store) Clean() error {
	return os.RemoveAll(s.Root)
}
