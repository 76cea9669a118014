package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/evaluator"
	"github.com/vaelang/vael/internal/loader"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/value"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countingEvaluator(calls *int) loader.ScriptEvaluator {
	return func(ctx context.Context, rc *rtctx.Context, file string, source []byte) (*value.Value, *diagnostics.Error) {
		*calls++
		return value.Const(evaluator.TString, value.String(string(source)), source), nil
	}
}

func TestResolveAppendsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mathlib.vl", "")
	ld := loader.New(nil, nil)
	resolved, err := ld.Resolve(dir, "mathlib")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "mathlib.vl"), resolved)
}

func TestResolveDescendsIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "mod.vl", "")

	ld := loader.New(nil, nil)
	resolved, err := ld.Resolve(dir, "pkg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(sub, "mod.vl"), resolved)
}

func TestResolveSearchesSearchPathInOrder(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeFile(t, dir2, "shared.vl", "")

	ld := loader.New([]string{dir1, dir2}, nil)
	resolved, err := ld.Resolve(t.TempDir(), "shared")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir2, "shared.vl"), resolved)
}

func TestLoadCachesByCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vl", "hello")
	var calls int
	ld := loader.New(nil, nil)
	ld.Eval = countingEvaluator(&calls)

	rc := &rtctx.Context{}
	_, err := ld.Load(context.Background(), rc, dir, "a")
	require.Nil(t, err)
	_, err = ld.Load(context.Background(), rc, dir, "a")
	require.Nil(t, err)
	require.Equal(t, 1, calls, "second Load of the same resolved path should hit the cache")
}

func TestLoadDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vl", "self-loading")

	ld := loader.New(nil, nil)
	ld.Eval = func(ctx context.Context, rc *rtctx.Context, file string, source []byte) (*value.Value, *diagnostics.Error) {
		return ld.Load(ctx, rc, dir, "a")
	}

	_, err := ld.Load(context.Background(), &rtctx.Context{}, dir, "a")
	require.NotNil(t, err)
	require.Equal(t, diagnostics.KindResolution, err.Kind)
	require.Contains(t, err.Error(), "already loading")
	require.Equal(t, 0, ld.Pending(), "a failed cyclic load must not leave inProgress entries behind")
}

func TestLoadMissingFileIsResolutionError(t *testing.T) {
	ld := loader.New(nil, nil)
	_, err := ld.Load(context.Background(), &rtctx.Context{}, t.TempDir(), "nope")
	require.NotNil(t, err)
	require.Equal(t, diagnostics.KindResolution, err.Kind)
}

func TestFindWorkspaceRootWalksToFurthestAncestor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "workspace.vl", "")
	mid := filepath.Join(root, "mid")
	require.NoError(t, os.Mkdir(mid, 0o755))
	writeFile(t, mid, "workspace.vl", "")
	leaf := filepath.Join(mid, "leaf")
	require.NoError(t, os.Mkdir(leaf, 0o755))

	found := loader.FindWorkspaceRoot(leaf)
	require.Equal(t, root, found, "FindWorkspaceRoot should return the topmost ancestor carrying workspace.vl")
}

func TestFindWorkspaceRootFallsBackToDirItself(t *testing.T) {
	dir := t.TempDir()
	found := loader.FindWorkspaceRoot(dir)
	require.Equal(t, dir, found)
}
