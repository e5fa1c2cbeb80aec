// Package propagate carries key-value context fields through a call graph so
// that structured log events automatically include ancestor-supplied metadata
// (tenant id, request id, session id) without the emitting code passing them
// explicitly.
//
// Fields live in three layers: a per-goroutine frame stack for ordinary call
// chains, a per-task frame stack for work that suspends and resumes, and a
// process-wide store that bridges boundaries the stacks cannot follow. Reads
// resolve task frames first, then goroutine frames, then the global store.
//
// Propagation never fails the caller: a missing layer, an underflowed stack,
// or an absent store all degrade to "less context on this event".
package propagate

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// FunctionKey is the reserved field name under which an emitting function's
// name travels. FormatInherited excludes it, since function metadata is
// tracked separately by the emission side.
const FunctionKey = "function"

// Context is a flat set of propagated metadata fields.
type Context map[string]string

// Clone returns a detached copy. A nil Context clones to an empty one.
func (c Context) Clone() Context {
	return lo.Assign(Context{}, c)
}

// Merge returns a new Context holding c overlaid with overlay; on conflicting
// keys the overlay wins. Neither input is modified.
func (c Context) Merge(overlay Context) Context {
	return lo.Assign(Context{}, c, overlay)
}

// Format renders the fields as "key=value,key=value" with keys in sorted
// order, so equal Contexts always format identically.
func (c Context) Format() string {
	keys := lo.Keys(c)
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+c[key])
	}
	return strings.Join(parts, ",")
}
