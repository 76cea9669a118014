// Package traits implements the process-wide, type-indexed trait registry
// (spec.md §4.2): direct registrations, generators consulted on miss and
// memoised, and generators-by-trait consulted for any Type. Grounded on
// the teacher's global registry idiom in
// internal/evaluator/ext_registry.go (a mutex-guarded map behind
// package-level Register/Get/List/Clear functions), generalized from a
// single flat `map[string]map[string]Object` keyed by ext-module name into
// a two-level `(Type, TraitID)` registry with generator fallback and
// negative-miss caching as spec.md §4.2 requires.
package traits

import (
	"sync"

	"github.com/vaelang/vael/internal/identity"
)

// TraitID names a trait, e.g. "Display" or "IntoTyped<Bool>". Parameterised
// traits encode their parameter in the id string, mirroring how
// identity.Type encodes parameters as opaque bytes.
type TraitID string

// Impl is an opaque implementation record. Concrete trait packages (the
// standard library) type-assert it to their own function-pointer shape,
// e.g. `impl.(DisplayFunc)`.
type Impl any

// Factory builds an Impl for a Type the first time it is needed.
type Factory func(t identity.Type) (Impl, bool)

// Generator is a (predicate, factory) pair consulted on a direct-lookup
// miss for a specific TraitID (spec.md §4.2 "Generated").
type Generator struct {
	Predicate func(t identity.Type) bool
	Factory   Factory
}

// TraitGenerator is consulted for *any* Type when a given TraitID is
// requested (spec.md §4.2 "Generator-by-trait", e.g. "IntoTyped<Bool> is
// registered for all types").
type TraitGenerator struct {
	Factory Factory
}

type key struct {
	typeID identity.ID
	params string
	trait  TraitID
}

func keyOf(t identity.Type, trait TraitID) key {
	return key{typeID: t.ID(), params: string(t.Params()), trait: trait}
}

// Registry is the shared, read-heavy trait store (spec.md §4.2: "a
// reader-writer discipline with copy-on-write generation is sufficient;
// readers must never see a partially-populated entry").
type Registry struct {
	mu sync.RWMutex

	direct     map[key]Impl
	generators map[TraitID][]Generator
	byTrait    map[TraitID][]TraitGenerator

	memo   map[key]Impl
	missed map[key]struct{}
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		direct:     make(map[key]Impl),
		generators: make(map[TraitID][]Generator),
		byTrait:    make(map[TraitID][]TraitGenerator),
		memo:       make(map[key]Impl),
		missed:     make(map[key]struct{}),
	}
}

// RegisterDirect pre-registers an implementation for a specific concrete
// Type (spec.md §4.2 "Direct"). Intended for use during startup/plugin
// load, before values referencing the type are reachable.
func (r *Registry) RegisterDirect(t identity.Type, trait TraitID, impl Impl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct[keyOf(t, trait)] = impl
	// A fresh direct registration invalidates any negative cache entry
	// for the same (type, trait), since a plugin loaded later may now
	// supply what a prior lookup found missing.
	delete(r.missed, keyOf(t, trait))
}

// RegisterGenerator adds a (predicate, factory) pair for trait.
func (r *Registry) RegisterGenerator(trait TraitID, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[trait] = append(r.generators[trait], g)
}

// RegisterTraitGenerator adds a generator consulted for every Type when
// trait is requested.
func (r *Registry) RegisterTraitGenerator(trait TraitID, g TraitGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTrait[trait] = append(r.byTrait[trait], g)
}

// GetImpl looks up an implementation of trait for t (spec.md §4.2:
// "get_impl(type, trait_id) -> ImplRef | miss"). Lookup order on miss:
// generators-by-trait, then generators-by-type, in registration order; the
// first to return a value wins and is memoised. Misses are cached
// negatively for the registry's lifetime.
func (r *Registry) GetImpl(t identity.Type, trait TraitID) (Impl, bool) {
	k := keyOf(t, trait)

	r.mu.RLock()
	if impl, ok := r.direct[k]; ok {
		r.mu.RUnlock()
		return impl, true
	}
	if impl, ok := r.memo[k]; ok {
		r.mu.RUnlock()
		return impl, true
	}
	if _, missed := r.missed[k]; missed {
		r.mu.RUnlock()
		return nil, false
	}
	byTrait := append([]TraitGenerator(nil), r.byTrait[trait]...)
	gens := append([]Generator(nil), r.generators[trait]...)
	r.mu.RUnlock()

	for _, g := range byTrait {
		if impl, ok := g.Factory(t); ok {
			r.memoize(k, impl)
			return impl, true
		}
	}
	for _, g := range gens {
		if g.Predicate != nil && !g.Predicate(t) {
			continue
		}
		if impl, ok := g.Factory(t); ok {
			r.memoize(k, impl)
			return impl, true
		}
	}

	r.mu.Lock()
	r.missed[k] = struct{}{}
	r.mu.Unlock()
	return nil, false
}

func (r *Registry) memoize(k key, impl Impl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have raced us to memoise the same key; both
	// results are equivalent by construction (factories are deterministic
	// per spec.md's identity-determinism contract), so last write is fine.
	r.memo[k] = impl
}

// Has reports whether a direct or already-memoised implementation exists,
// without running any generator (used by diagnostics/introspection).
func (r *Registry) Has(t identity.Type, trait TraitID) bool {
	k := keyOf(t, trait)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.direct[k]; ok {
		return true
	}
	_, ok := r.memo[k]
	return ok
}
