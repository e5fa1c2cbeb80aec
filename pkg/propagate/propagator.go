package propagate

import (
	"os"
	"strings"
	"sync"

	"github.com/petermattis/goid"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Propagator is the engine handle. Every goroutine writing through the same
// Propagator gets its own sync frame stack; tasks bound through it share its
// task registry; cross-boundary captures publish into its global store.
//
// Construct one per process (or use Default) and inject it where context
// should flow; the engine keeps no hidden state outside the handle except
// the shared DefaultGlobal store.
type Propagator struct {
	global *GlobalStore
	attach bool

	syncStacks sync.Map // goroutine id -> *frameStack
	tasks      sync.Map // goroutine id -> *Task

	counters counters
}

type Option func(*Propagator)

// WithGlobalStore replaces the cross-boundary store. Passing nil disables
// the global layer entirely; operations against it degrade to empty and are
// counted in Stats.
func WithGlobalStore(store *GlobalStore) Option {
	return func(p *Propagator) {
		p.global = store
	}
}

// WithAttachment sets the process-wide context attachment toggle, evaluated
// once here rather than per log event.
func WithAttachment(enabled bool) Option {
	return func(p *Propagator) {
		p.attach = enabled
	}
}

func New(opts ...Option) *Propagator {
	p := &Propagator{
		global: DefaultGlobal(),
		attach: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

var (
	defaultPropagator     *Propagator
	defaultPropagatorOnce sync.Once
)

// Default returns the process-wide Propagator. Attachment honors the
// SHERPA_CONTEXT environment variable, read once at first use.
func Default() *Propagator {
	defaultPropagatorOnce.Do(func() {
		defaultPropagator = New(WithAttachment(attachmentFromEnv()))
	})
	return defaultPropagator
}

func attachmentFromEnv() bool {
	requested := mo.EmptyableToOption(os.Getenv("SHERPA_CONTEXT")).OrElse("on")
	switch strings.ToLower(requested) {
	case "0", "off", "false", "no":
		return false
	}
	return true
}

// AttachmentEnabled reports whether emitted events should carry context.
func (p *Propagator) AttachmentEnabled() bool {
	return p.attach
}

// Push appends a frame to the calling goroutine's sync stack. The returned
// guard pops it; release with defer.
func (p *Propagator) Push(c Context) *SyncGuard {
	gid := goid.Get()
	stack := p.syncStack(gid)
	stack.push(c)

	g := new(SyncGuard)
	g.release = func() {
		if !stack.pop() {
			p.counters.emptyPops.Add(1)
		}
		if stack.empty() {
			p.syncStacks.CompareAndDelete(gid, stack)
		}
	}
	return g
}

// PushAsync appends a frame to the current task's stack. On a goroutine with
// no bound task, an ephemeral task is created and bound so the frame still
// resolves; it discards itself once its last frame is popped.
func (p *Propagator) PushAsync(c Context) *AsyncGuard {
	gid := goid.Get()
	task := p.currentTask()
	if task == nil {
		task = NewTask()
		task.ephemeral = true
		p.tasks.Store(gid, task)
	}
	task.push(c)

	g := new(AsyncGuard)
	g.release = func() {
		popped, drained := task.pop()
		if !popped {
			p.counters.emptyPops.Add(1)
		}
		if drained && task.ephemeral {
			p.tasks.CompareAndDelete(gid, task)
		}
	}
	return g
}

// Lookup resolves one key across the layers: the bound task's frames
// innermost-first, then the goroutine's sync frames innermost-first, then
// the global store. Absence is a None, never an error.
func (p *Propagator) Lookup(key string) mo.Option[string] {
	if task := p.currentTask(); task != nil {
		if value := task.lookup(key); value.IsPresent() {
			return value
		}
	}

	if stack, ok := p.peekSyncStack(); ok {
		if value := stack.lookup(key); value.IsPresent() {
			return value
		}
	}

	if p.global == nil {
		p.counters.nilGlobalOps.Add(1)
		return mo.None[string]()
	}
	return p.global.Get(key)
}

// SyncMerged folds the calling goroutine's sync frames into one Context.
func (p *Propagator) SyncMerged() Context {
	if stack, ok := p.peekSyncStack(); ok {
		return stack.merged()
	}
	return Context{}
}

// AsyncMerged folds the bound task's frames into one Context. With no bound
// task it is empty, never an error.
func (p *Propagator) AsyncMerged() Context {
	if task := p.currentTask(); task != nil {
		return task.merged()
	}
	return Context{}
}

// Effective is the fully merged view attached to log events: global store
// values, overlaid by sync frames, overlaid by task frames. Within a layer
// inner frames win; across layers the task layer wins over sync, and sync
// wins over global.
func (p *Propagator) Effective() Context {
	base := Context{}
	if p.global == nil {
		p.counters.nilGlobalOps.Add(1)
	} else if snapshot, ok := p.global.Snapshot().Get(); ok {
		base = snapshot
	}
	return lo.Assign(base, p.SyncMerged(), p.AsyncMerged())
}

// FormatInherited renders the effective context as a deterministic
// "key=value,key=value" string for sinks that only take a flat annotation.
// The reserved FunctionKey field is excluded.
func (p *Propagator) FormatInherited() string {
	effective := p.Effective()
	delete(effective, FunctionKey)
	return effective.Format()
}

// syncStack returns the goroutine's stack, creating it on first push. Only
// the owning goroutine ever mutates its stack; the registry map is the sole
// shared structure.
func (p *Propagator) syncStack(gid int64) *frameStack {
	if v, ok := p.syncStacks.Load(gid); ok {
		return v.(*frameStack)
	}
	v, _ := p.syncStacks.LoadOrStore(gid, new(frameStack))
	return v.(*frameStack)
}

// peekSyncStack is the read path: it never allocates a stack for a goroutine
// that has pushed nothing.
func (p *Propagator) peekSyncStack() (*frameStack, bool) {
	if v, ok := p.syncStacks.Load(goid.Get()); ok {
		return v.(*frameStack), true
	}
	return nil, false
}
