//go:build unix

package plugin

import (
	goplugin "plugin"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/value"
)

// EntrySymbol is the well-known exported symbol name a native plugin must
// define (spec.md §4.5: "resolve a single well-known entry symbol").
const EntrySymbol = "VaelPluginEntry"

// EntryFunc is the ABI every plugin's entry symbol must satisfy. All types
// crossing the boundary are Values or opaque handles registered with the
// Trait Registry, so plugin ABI stability reduces to the Value type's own
// stability (spec.md §4.5: "Plugin ABI stability is required").
type EntryFunc func(Context, *rtctx.Context) (*value.Value, *diagnostics.Error)

// Context carries per-load metadata into a plugin's entry point.
type Context struct {
	Path string
}

// Handle is a loaded, leaked plugin: spec.md §9 explicitly allows the
// runtime to outlive a plugin's last dependent, and Go's plugin package
// provides no Close/unload primitive, so there is nothing to release on
// this end either.
type Handle struct {
	raw  *goplugin.Plugin
	Path string
}

// Open loads the shared object at path, resolves EntrySymbol, and invokes
// it with a fresh Context (spec.md §4.5). The *goplugin.Plugin itself is
// never unloaded for the lifetime of the process.
func Open(rc *rtctx.Context, path string) (*value.Value, *diagnostics.Error) {
	raw, err := goplugin.Open(path)
	if err != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "plugin: opening "+path+": "+err.Error())
	}
	sym, err := raw.Lookup(EntrySymbol)
	if err != nil {
		return nil, diagnostics.New(diagnostics.KindResolution, "plugin: "+path+" does not export "+EntrySymbol+": "+err.Error())
	}
	entry, ok := sym.(func(Context, *rtctx.Context) (*value.Value, *diagnostics.Error))
	if !ok {
		return nil, diagnostics.New(diagnostics.KindResolution, "plugin: "+path+"'s "+EntrySymbol+" has the wrong signature")
	}
	return entry(Context{Path: path}, rc)
}
