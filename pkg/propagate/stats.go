package propagate

import "sync/atomic"

// counters tracks degraded events. Degradation is silent toward callers
// (context propagation must never fail the primary operation), but it can
// mask guard-lifetime bugs, so the occurrences stay observable here.
type counters struct {
	emptyPops    atomic.Uint64
	nilGlobalOps atomic.Uint64
}

// Stats is a point-in-time snapshot of the engine's degradation counters.
type Stats struct {
	// EmptyPops counts pops against an already-empty stack, normally a sign
	// of guard/stack desynchronization in the caller.
	EmptyPops uint64
	// NilGlobalOps counts operations that needed the global layer while none
	// was configured.
	NilGlobalOps uint64
}

func (p *Propagator) Stats() Stats {
	return Stats{
		EmptyPops:    p.counters.emptyPops.Load(),
		NilGlobalOps: p.counters.nilGlobalOps.Load(),
	}
}
