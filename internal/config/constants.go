// Package config holds process-wide constants: source file conventions,
// environment variable names, and defaults for the CLI and runtime.
package config

import "runtime"

// Version is the current engine version. Set at build time via
// -ldflags "-X github.com/vaelang/vael/internal/config.Version=..." in
// release builds.
var Version = "0.1.0"

// SourceFileExt is the canonical script extension.
const SourceFileExt = ".vl"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".vl", ".vael"}

// WorkspaceFile is the well-known basename that marks a workspace root
// (spec.md §6, "script resolution on disk").
const WorkspaceFile = "workspace" + SourceFileExt

// DirEntryFile is the basename looked up when a load path resolves to a
// directory (spec.md §4.5: "descend into <dir>/<DIR_FILE> repeatedly").
const DirEntryFile = "mod" + SourceFileExt

// EnvLogLevel and EnvLogFile are the environment variables spec.md §6
// describes as "<PROGRAM>_LOG" / "<PROGRAM>_LOG_FILE".
const (
	EnvLogLevel = "VAEL_LOG"
	EnvLogFile  = "VAEL_LOG_FILE"
)

// DefaultWorkers is the Task Manager's default worker count (spec.md §4.3:
// "threads (default = CPU count)").
func DefaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// DefaultStoreDirName is the default subdirectory name for the
// content-addressed store, rooted under the workspace.
const DefaultStoreDirName = ".vael-store"

// DefaultMaxFrames bounds the number of "note:" lines rendered per error
// (spec.md §6: "cap configurable").
const DefaultMaxFrames = 16
