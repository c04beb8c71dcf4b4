// Package vars assembles the substitution environment for template rendering.
//
// Overview:
//   - Responsibility: Request-wide scalars, per-context scalars, and context-sized code fragments
//   - Key Types: Env (immutable token map), Assembly, Record, Style
//   - Concurrency Model: Env and Assembly are read-only after construction and safe to share
//   - Error Semantics: Assemble fails only on catalog lookups (unknown arch, persistence, database)
//   - Performance Notes: Fragments are formatted once per request, not per template
//
// Usage:
//
//	asm, err := vars.Assemble(cat, req, time.Now())
//	env := asm.ForContext("order")
//	v, ok := env.Lookup("ContextCap")
package vars

import (
	"maps"
	"slices"
)

// Env is an immutable token → text mapping. With returns a new view and never
// mutates the receiver, so a base Env can be shared across fan-out iterations.
type Env struct {
	base    map[string]string
	overlay map[string]string
}

// NewEnv creates an Env from a copy of values.
func NewEnv(values map[string]string) Env {
	return Env{base: maps.Clone(values)}
}

// With returns a new Env with the given key/value pairs layered on top.
// A trailing key without a value is ignored.
func (e Env) With(kv ...string) Env {
	overlay := make(map[string]string, len(e.overlay)+len(kv)/2)
	maps.Copy(overlay, e.overlay)
	for i := 0; i+1 < len(kv); i += 2 {
		overlay[kv[i]] = kv[i+1]
	}
	return Env{base: e.base, overlay: overlay}
}

// WithMap returns a new Env with all entries of values layered on top.
func (e Env) WithMap(values map[string]string) Env {
	overlay := make(map[string]string, len(e.overlay)+len(values))
	maps.Copy(overlay, e.overlay)
	maps.Copy(overlay, values)
	return Env{base: e.base, overlay: overlay}
}

// Lookup returns the value of a token.
func (e Env) Lookup(key string) (string, bool) {
	if v, ok := e.overlay[key]; ok {
		return v, true
	}
	v, ok := e.base[key]
	return v, ok
}

// Get returns the value of a token or the empty string.
func (e Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Keys returns all token names in sorted order.
func (e Env) Keys() []string {
	keys := make(map[string]struct{}, len(e.base)+len(e.overlay))
	for k := range e.base {
		keys[k] = struct{}{}
	}
	for k := range e.overlay {
		keys[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(keys))
}

// Len returns the number of distinct tokens.
func (e Env) Len() int {
	return len(e.Keys())
}
