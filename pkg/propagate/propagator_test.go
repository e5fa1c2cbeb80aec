package propagate

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPropagator() *Propagator {
	return New(WithGlobalStore(NewGlobalStore()))
}

func TestPropagator_PushLookupRelease(t *testing.T) {
	p := newTestPropagator()

	assert.False(t, p.Lookup("tenant_id").IsPresent())

	g := p.Push(Context{"tenant_id": "acme"})
	assert.Equal(t, "acme", p.Lookup("tenant_id").OrElse(""))

	g.Release()
	assert.False(t, p.Lookup("tenant_id").IsPresent())
}

func TestPropagator_ShadowedKey(t *testing.T) {
	p := newTestPropagator()

	outer := p.Push(Context{"x": "1"})
	inner := p.Push(Context{"x": "2"})

	assert.Equal(t, "2", p.Lookup("x").OrElse(""))

	inner.Release()
	assert.Equal(t, "1", p.Lookup("x").OrElse(""))

	outer.Release()
	assert.False(t, p.Lookup("x").IsPresent())
}

func TestPropagator_LayerPrecedence(t *testing.T) {
	store := NewGlobalStore()
	store.Set("source", "global")

	p := New(WithGlobalStore(store))

	syncGuard := p.Push(Context{"source": "sync"})
	asyncGuard := p.PushAsync(Context{"source": "async"})

	assert.Equal(t, "async", p.Lookup("source").OrElse(""))
	assert.Equal(t, "async", p.Effective()["source"])

	asyncGuard.Release()
	assert.Equal(t, "sync", p.Lookup("source").OrElse(""))

	syncGuard.Release()
	assert.Equal(t, "global", p.Lookup("source").OrElse(""))
}

func TestPropagator_Effective(t *testing.T) {
	p := newTestPropagator()

	syncGuard := p.Push(Context{"tenant_id": "acme"})
	asyncGuard := p.PushAsync(Context{"session_id": "s1"})

	effective := p.Effective()
	if !assert.Equal(t, Context{"tenant_id": "acme", "session_id": "s1"}, effective) {
		spew.Dump(effective)
	}

	asyncGuard.Release()
	syncGuard.Release()

	assert.Equal(t, Context{}, p.Effective())
}

func TestPropagator_EffectiveIdempotent(t *testing.T) {
	p := newTestPropagator()

	g := p.Push(Context{"tenant_id": "acme", "request_id": "r1"})
	defer g.Release()

	first := p.Effective()
	second := p.Effective()
	assert.Equal(t, first, second)
}

func TestPropagator_FormatInherited(t *testing.T) {
	p := newTestPropagator()

	g := p.Push(Context{
		"tenant_id":   "acme",
		"request_id":  "r1",
		FunctionKey:   "handleOrder",
		"customer_id": "c9",
	})
	defer g.Release()

	// sorted keys, reserved function field excluded
	assert.Equal(t, "customer_id=c9,request_id=r1,tenant_id=acme", p.FormatInherited())
}

func TestPropagator_FormatInherited_Empty(t *testing.T) {
	p := newTestPropagator()
	assert.Equal(t, "", p.FormatInherited())
}

func TestGuard_DoubleRelease(t *testing.T) {
	p := newTestPropagator()

	outer := p.Push(Context{"x": "1"})
	inner := p.Push(Context{"x": "2"})

	inner.Release()
	inner.Release()
	require.Equal(t, "1", p.Lookup("x").OrElse(""))

	outer.Release()
	outer.Release()
	assert.False(t, p.Lookup("x").IsPresent())
	assert.Zero(t, p.Stats().EmptyPops)
}

func TestPropagator_Stats_NilGlobal(t *testing.T) {
	p := New(WithGlobalStore(nil))

	assert.False(t, p.Lookup("tenant_id").IsPresent())
	assert.Equal(t, Context{}, p.Effective())

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.NilGlobalOps)
}

func TestPropagator_AttachmentToggle(t *testing.T) {
	assert.True(t, New().AttachmentEnabled())
	assert.False(t, New(WithAttachment(false)).AttachmentEnabled())
}

func TestPropagator_GoroutineIsolation(t *testing.T) {
	p := newTestPropagator()

	g := p.Push(Context{"tenant_id": "acme"})
	defer g.Release()

	var remote Context
	done := make(chan struct{})
	go func() {
		defer close(done)
		remote = p.SyncMerged()
	}()
	<-done

	// a freshly spawned goroutine starts with empty stacks
	assert.Equal(t, Context{}, remote)
	assert.Equal(t, "acme", p.Lookup("tenant_id").OrElse(""))
}
