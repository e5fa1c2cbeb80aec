package propagate

import "github.com/samber/lo"

// capturedUnion merges the task-layer view with the sync-layer view. Sync
// frames win on conflict: at a capture site they are the more local scope.
func (p *Propagator) capturedUnion() Context {
	return lo.Assign(Context{}, p.AsyncMerged(), p.SyncMerged())
}

// CaptureSameBoundary snapshots the currently resolvable stack context (the
// global layer is deliberately not included) and re-pushes it onto both the
// task and sync stacks. Use it when a scope must keep its full inherited
// context resolvable even if downstream code consults only one stack type,
// such as a synchronous helper called from inside a task.
func (p *Propagator) CaptureSameBoundary() *BridgeGuard {
	union := p.capturedUnion()

	asyncGuard := p.PushAsync(union)
	syncGuard := p.Push(union)

	return &BridgeGuard{sync: syncGuard, async: asyncGuard}
}

// CaptureCrossBoundary snapshots the stack context like CaptureSameBoundary,
// and additionally publishes every captured field into the global store so
// the context survives handoff to work with no structural link back to the
// caller, such as a fire-and-forget goroutine. The union is also re-pushed
// onto both stacks for immediate local benefit.
//
// Preferred alternative when the spawn site can carry values: capture
// Effective() into a variable and hand it to the new goroutine explicitly,
// re-seeding with Push there.
func (p *Propagator) CaptureCrossBoundary() *BridgeGuard {
	union := p.capturedUnion()

	if p.global == nil {
		p.counters.nilGlobalOps.Add(1)
	} else {
		for key, value := range union {
			p.global.Set(key, value)
		}
	}

	asyncGuard := p.PushAsync(union)
	syncGuard := p.Push(union)

	return &BridgeGuard{sync: syncGuard, async: asyncGuard}
}
