package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/store/sqlitestore"
)

func TestRecordAndByItem(t *testing.T) {
	ctx := context.Background()
	ix, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer ix.Close()

	typ := identity.NewType("vael.test.Thing", nil)
	id := identity.Derive(typ, nil)
	require.NoError(t, ix.Record(ctx, id, typ.ID(), "values", 42))

	entries, err := ix.ByItem(ctx, "values")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, id.String(), entries[0].ID)
	require.EqualValues(t, 42, entries[0].SizeBytes)
}

func TestRecordUpsertsOnConflict(t *testing.T) {
	ctx := context.Background()
	ix, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer ix.Close()

	typ := identity.NewType("vael.test.Thing", nil)
	id := identity.Derive(typ, nil)
	require.NoError(t, ix.Record(ctx, id, typ.ID(), "values", 1))
	require.NoError(t, ix.Record(ctx, id, typ.ID(), "values", 2))

	entries, err := ix.ByItem(ctx, "values")
	require.NoError(t, err)
	require.Len(t, entries, 1, "re-recording the same identity should upsert, not duplicate")
	require.EqualValues(t, 2, entries[0].SizeBytes)
}

func TestByTypeFiltersByTypeID(t *testing.T) {
	ctx := context.Background()
	ix, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer ix.Close()

	t1 := identity.NewType("vael.test.A", nil)
	t2 := identity.NewType("vael.test.B", nil)
	id1 := identity.Derive(t1, nil)
	id2 := identity.Derive(t2, nil)
	require.NoError(t, ix.Record(ctx, id1, t1.ID(), "values", 1))
	require.NoError(t, ix.Record(ctx, id2, t2.ID(), "values", 1))

	entries, err := ix.ByType(ctx, t1.ID())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, id1.String(), entries[0].ID)
}

func TestForgetDeletesEntry(t *testing.T) {
	ctx := context.Background()
	ix, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	defer ix.Close()

	typ := identity.NewType("vael.test.Thing", nil)
	id := identity.Derive(typ, nil)
	require.NoError(t, ix.Record(ctx, id, typ.ID(), "values", 1))
	require.NoError(t, ix.Forget(ctx, id))

	entries, err := ix.ByItem(ctx, "values")
	require.NoError(t, err)
	require.Empty(t, entries)
}
