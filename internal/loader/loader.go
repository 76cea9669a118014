// Package loader implements script and plugin resolution and the
// single-shot load cache described in spec.md §4.5.
//
// Grounded on the teacher's internal/modules/loader.go: its
// detectPackageExtension/hasAnySourceFiles directory-descent rules,
// Processing set for cycle detection, and LoadedModules cache are
// generalized here from "load a type-checked module" to "load a script or
// plugin into a single cached Value", and Script vs Plugin dispatch is new
// (the teacher has no plugin ABI of its own).
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vaelang/vael/internal/config"
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/plugin"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/value"
)

// ScriptEvaluator parses and evaluates a script's source into a Value. It
// is injected rather than imported directly, since the evaluator package
// itself calls back into the Loader to resolve `load(name)` calls —
// importing it here would create a cycle.
type ScriptEvaluator func(ctx context.Context, rc *rtctx.Context, file string, source []byte) (*value.Value, *diagnostics.Error)

// Loader resolves load names against a search path and caches the
// resulting Values, one Loader per run (spec.md §4.5).
type Loader struct {
	SearchPath []string // additional directories searched after the working directory
	Eval       ScriptEvaluator

	mu         sync.Mutex
	cache      map[string]*value.Value // canonical path -> cached Value
	inProgress map[string]bool
}

// New creates a Loader with the given additional search path entries.
func New(searchPath []string, eval ScriptEvaluator) *Loader {
	return &Loader{
		SearchPath: searchPath,
		Eval:       eval,
		cache:      make(map[string]*value.Value),
		inProgress: make(map[string]bool),
	}
}

// Pending reports how many loads are currently in progress, i.e. mid-Load
// and not yet cached or failed. Used by tests to assert that a failed or
// cyclic load leaves no stale entries behind.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inProgress)
}

// Resolve finds the file backing `name`, searching workDir first, then
// each SearchPath entry in order, applying the extension-or-descend rule
// at each candidate (spec.md §4.5 "Resolution").
func (l *Loader) Resolve(workDir, name string) (string, error) {
	dirs := make([]string, 0, 1+len(l.SearchPath))
	if workDir != "" {
		dirs = append(dirs, workDir)
	} else {
		dirs = append(dirs, ".")
	}
	dirs = append(dirs, l.SearchPath...)

	var lastErr error
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if resolved, ok, err := resolveCandidate(candidate); err != nil {
			lastErr = err
		} else if ok {
			return resolved, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("loader: %q not found on search path", name)
}

// resolveCandidate applies "append extension if missing, else descend into
// directories via DirEntryFile, repeatedly" (spec.md §4.5).
func resolveCandidate(candidate string) (string, bool, error) {
	if !hasRecognizedExt(candidate) {
		for _, ext := range config.SourceFileExtensions {
			withExt := candidate + ext
			if info, err := os.Stat(withExt); err == nil && !info.IsDir() {
				return withExt, true, nil
			}
		}
	} else if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, true, nil
	}

	// Directory descent: <dir>/<DIR_FILE> repeatedly until a file is
	// reached (spec.md §4.5).
	path := candidate
	for i := 0; i < 64; i++ { // bound descent depth against pathological symlink loops
		info, err := os.Stat(path)
		if err != nil {
			return "", false, nil
		}
		if !info.IsDir() {
			return path, true, nil
		}
		path = filepath.Join(path, config.DirEntryFile)
	}
	return "", false, fmt.Errorf("loader: %q descends too deeply", candidate)
}

func hasRecognizedExt(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Load resolves, then loads and caches, the script or plugin at name
// relative to workDir (spec.md §4.5 "Loading").
func (l *Loader) Load(ctx context.Context, rc *rtctx.Context, workDir, name string) (*value.Value, *diagnostics.Error) {
	resolved, err := l.Resolve(workDir, name)
	if err != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, err.Error())
	}
	canonical, err := filepath.Abs(resolved)
	if err != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "loader: "+err.Error())
	}

	l.mu.Lock()
	if v, ok := l.cache[canonical]; ok {
		l.mu.Unlock()
		return v, nil
	}
	if l.inProgress[canonical] {
		l.mu.Unlock()
		return nil, diagnostics.New(diagnostics.KindResolution, "already loading "+canonical)
	}
	l.inProgress[canonical] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.inProgress, canonical)
		l.mu.Unlock()
	}()

	v, loadErr := l.loadPath(ctx, rc, canonical)
	if loadErr != nil {
		return nil, loadErr
	}

	l.mu.Lock()
	l.cache[canonical] = v
	l.mu.Unlock()
	return v, nil
}

func (l *Loader) loadPath(ctx context.Context, rc *rtctx.Context, canonical string) (*value.Value, *diagnostics.Error) {
	kind, sniffErr := plugin.SniffFile(canonical)
	if sniffErr != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "loader: "+sniffErr.Error())
	}
	if kind != plugin.KindUnknown {
		return plugin.Open(rc, canonical)
	}

	source, readErr := os.ReadFile(canonical)
	if readErr != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "loader: "+readErr.Error())
	}
	if l.Eval == nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "loader: no script evaluator configured")
	}
	return l.Eval(ctx, rc, canonical, source)
}

// FindWorkspaceRoot walks from dir upward looking for config.WorkspaceFile,
// returning the furthest (topmost) ancestor that has one, or dir itself if
// none is found (spec.md §6: "the engine walks ancestors to find the
// furthest workspace root").
func FindWorkspaceRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	furthest := ""
	cur := abs
	for {
		if _, err := os.Stat(filepath.Join(cur, config.WorkspaceFile)); err == nil {
			furthest = cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	if furthest != "" {
		return furthest
	}
	return abs
}
