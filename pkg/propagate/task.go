package propagate

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/petermattis/goid"
	"github.com/samber/mo"
)

// Task is a logical unit of work whose context frames must survive
// suspension and resumption, even when resumption happens on a different
// goroutine. A Task owns its own frame stack; the stack follows the Task,
// not the goroutine it happens to run on.
//
// A goroutine has at most one bound Task at a time. Whoever schedules the
// task binds it before running a slice of its work and unbinds afterwards,
// or carries it in a context.Context and uses BindFromContext.
type Task struct {
	id uuid.UUID

	mu     sync.Mutex
	frames frameStack

	// ephemeral tasks are created implicitly by PushAsync on an unbound
	// goroutine and discard themselves once their stack drains.
	ephemeral bool
}

func NewTask() *Task {
	return &Task{id: uuid.New()}
}

// ID identifies the task across goroutine reassignment.
func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) push(c Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames.push(c)
}

// pop reports whether a frame was removed and whether the stack is now empty.
func (t *Task) pop() (popped bool, drained bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	popped = t.frames.pop()
	return popped, t.frames.empty()
}

func (t *Task) lookup(key string) mo.Option[string] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames.lookup(key)
}

func (t *Task) merged() Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames.merged()
}

// BindTask makes t the calling goroutine's current task until the returned
// function runs. Unbind restores whatever task was bound before, so nested
// bindings compose. Bind and unbind must run on the same goroutine.
func (p *Propagator) BindTask(t *Task) (unbind func()) {
	gid := goid.Get()
	previous, hadPrevious := p.tasks.Load(gid)
	p.tasks.Store(gid, t)

	return func() {
		if hadPrevious {
			p.tasks.Store(gid, previous)
		} else {
			p.tasks.Delete(gid)
		}
	}
}

// BindFromContext binds the task carried by ctx, if any. When ctx carries no
// task the returned unbind is a no-op, and async reads degrade to empty.
func (p *Propagator) BindFromContext(ctx context.Context) (unbind func()) {
	task, ok := TaskFromContext(ctx).Get()
	if !ok {
		return func() {}
	}
	return p.BindTask(task)
}

// currentTask returns the calling goroutine's bound task, or nil.
func (p *Propagator) currentTask() *Task {
	if v, ok := p.tasks.Load(goid.Get()); ok {
		return v.(*Task)
	}
	return nil
}

type contextKey string

const contextKeyTask = contextKey("PropagateTask")

// ContextWithTask attaches task to ctx so schedulers and handlers can carry
// it across goroutine handoffs.
func ContextWithTask(ctx context.Context, task *Task) context.Context {
	return context.WithValue(ctx, contextKeyTask, task)
}

func TaskFromContext(ctx context.Context) mo.Option[*Task] {
	v, _ := ctx.Value(contextKeyTask).(*Task)
	return mo.EmptyableToOption(v)
}
