//go:build !unix

package plugin

import (
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/value"
)

// EntrySymbol is the well-known exported symbol name a native plugin must
// define (spec.md §4.5). Kept here too so callers can reference it without
// a build tag of their own.
const EntrySymbol = "VaelPluginEntry"

// Context carries per-load metadata into a plugin's entry point.
type Context struct {
	Path string
}

// Open is unavailable on non-Unix platforms: Go's plugin package only
// supports linux, darwin, and freebsd (spec.md §9: plugin loading is
// inherently platform-scoped, not something this engine can paper over).
func Open(rc *rtctx.Context, path string) (*value.Value, *diagnostics.Error) {
	return nil, diagnostics.New(diagnostics.KindResolution, "plugin: dynamic loading is not supported on this platform")
}
