package propagate

import "github.com/samber/mo"

// Package-level operations delegate to the Default propagator. Generated
// instrumentation calls these; code that wants an isolated engine constructs
// its own Propagator instead.

func Push(c Context) *SyncGuard {
	return Default().Push(c)
}

func PushAsync(c Context) *AsyncGuard {
	return Default().PushAsync(c)
}

func Lookup(key string) mo.Option[string] {
	return Default().Lookup(key)
}

// LookupOr resolves key and falls back to def when no layer defines it.
// Instrumented log sites use this with an empty default rather than failing.
func LookupOr(key, def string) string {
	return Default().Lookup(key).OrElse(def)
}

func Effective() Context {
	return Default().Effective()
}

func FormatInherited() string {
	return Default().FormatInherited()
}

func CaptureSameBoundary() *BridgeGuard {
	return Default().CaptureSameBoundary()
}

func CaptureCrossBoundary() *BridgeGuard {
	return Default().CaptureCrossBoundary()
}
