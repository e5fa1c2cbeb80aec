package propagate

import (
	"sync"

	"github.com/samber/mo"
)

// GlobalStore is a process-wide, last-resort propagation layer for work that
// has no structural link back to the scope that produced its context. Entries
// are only ever added or overwritten; the store is never scoped-removed.
//
// All methods are safe on a nil receiver and degrade to the empty store, so
// an absent store never surfaces as a failure. Each operation is one map
// access under the lock; a multi-key capture is therefore not atomic as a
// whole, which is acceptable for advisory context.
type GlobalStore struct {
	mu     sync.Mutex
	fields Context
}

func NewGlobalStore() *GlobalStore {
	return &GlobalStore{fields: Context{}}
}

// Set inserts or overwrites a single field.
func (s *GlobalStore) Set(key, value string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fields == nil {
		s.fields = Context{}
	}
	s.fields[key] = value
}

// Get returns the current value for key, if any.
func (s *GlobalStore) Get(key string) mo.Option[string] {
	if s == nil {
		return mo.None[string]()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.fields[key]; ok {
		return mo.Some(value)
	}
	return mo.None[string]()
}

// Snapshot returns a detached copy of all fields, or None when the store
// holds nothing. Callers use the None case to short-circuit merges.
func (s *GlobalStore) Snapshot() mo.Option[Context] {
	if s == nil {
		return mo.None[Context]()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.fields) == 0 {
		return mo.None[Context]()
	}
	return mo.Some(s.fields.Clone())
}

var (
	defaultGlobal     *GlobalStore
	defaultGlobalOnce sync.Once
)

// DefaultGlobal returns the process-wide store, created at first use and
// never torn down.
func DefaultGlobal() *GlobalStore {
	defaultGlobalOnce.Do(func() {
		defaultGlobal = NewGlobalStore()
	})
	return defaultGlobal
}
