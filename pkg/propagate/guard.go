package propagate

import "sync"

// guard pops exactly the frame its push created. Release is unconditional
// and idempotent: releasing twice never double-pops.
type guard struct {
	once    sync.Once
	release func()
}

func (g *guard) Release() {
	g.once.Do(func() {
		if g.release != nil {
			g.release()
		}
	})
}

// SyncGuard owns one frame on the calling goroutine's stack. Release it with
// defer so the frame is popped on every exit path, including panics. Guards
// on the same stack must be released in reverse order of creation.
type SyncGuard struct {
	guard
}

// AsyncGuard owns one frame on a task's stack. Same discipline as SyncGuard.
type AsyncGuard struct {
	guard
}

// BridgeGuard combines the pair of frames pushed by a capture operation and
// releases them in reverse push order.
type BridgeGuard struct {
	sync  *SyncGuard
	async *AsyncGuard
}

func (g *BridgeGuard) Release() {
	g.sync.Release()
	g.async.Release()
}
