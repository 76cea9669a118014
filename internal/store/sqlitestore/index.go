// Package sqlitestore implements the store's optional secondary manifest
// index (spec.md §4.4, §6: "--store-index"): a queryable record of which
// identities have been written, when, and under what store item name,
// without disturbing the append-only content tree itself.
//
// The content tree in internal/store remains the source of truth. The CLI
// opens this index under -store-index but writes no rows to it and runs no
// queries against it; -lint, -doc and -clean do not use it. Losing the index file never loses data — it
// can always be rebuilt by walking the store tree.
//
// Grounded on modernc.org/sqlite, a pure-Go driver already present in the
// teacher's dependency set, used here through the standard database/sql
// idiom rather than any ORM, matching the rest of the pack's preference for
// driver-level database/sql access over an ORM layer.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vaelang/vael/internal/identity"
)

// Index is a handle to the manifest database.
type Index struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS manifest (
	id         TEXT PRIMARY KEY,
	type_id    TEXT NOT NULL,
	item       TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	written_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS manifest_item_idx ON manifest(item);
CREATE INDEX IF NOT EXISTS manifest_type_idx ON manifest(type_id);
`

// Open opens (creating if necessary) the manifest index at path.
func Open(ctx context.Context, path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes at the connection; avoid lock contention
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: creating schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record upserts a manifest entry for a freshly-written item.
func (ix *Index) Record(ctx context.Context, id identity.ID, typeID identity.ID, item string, size int64) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO manifest (id, type_id, item, size_bytes, written_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET item=excluded.item, size_bytes=excluded.size_bytes, written_at=excluded.written_at`,
		id.String(), typeID.String(), item, size, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlitestore: recording %s: %w", id, err)
	}
	return nil
}

// Entry is one row of the manifest, as returned by ByItem and ByType.
type Entry struct {
	ID        string
	TypeID    string
	Item      string
	SizeBytes int64
	WrittenAt string
}

// ByItem lists every recorded identity under a given top-level item name,
// e.g. to answer "what has this run stored so far".
func (ix *Index) ByItem(ctx context.Context, item string) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, type_id, item, size_bytes, written_at FROM manifest WHERE item = ? ORDER BY written_at`, item)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: querying item %q: %w", item, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByType lists every recorded identity for a given Type.
func (ix *Index) ByType(ctx context.Context, typeID identity.ID) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, type_id, item, size_bytes, written_at FROM manifest WHERE type_id = ? ORDER BY written_at`, typeID.String())
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: querying type %s: %w", typeID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Forget removes a manifest entry, e.g. after the corresponding store item
// has been removed by a --clean pass.
func (ix *Index) Forget(ctx context.Context, id identity.ID) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM manifest WHERE id = ?`, id.String())
	return err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TypeID, &e.Item, &e.SizeBytes, &e.WrittenAt); err != nil {
			return nil, fmt.Errorf("sqlitestore: scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
