package propagate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalStore(t *testing.T) {
	store := NewGlobalStore()

	assert.False(t, store.Get("tenant_id").IsPresent())
	assert.False(t, store.Snapshot().IsPresent())

	store.Set("tenant_id", "acme")
	assert.Equal(t, "acme", store.Get("tenant_id").OrElse(""))

	store.Set("tenant_id", "globex")
	assert.Equal(t, "globex", store.Get("tenant_id").OrElse(""))

	snapshot, ok := store.Snapshot().Get()
	assert.True(t, ok)
	assert.Equal(t, Context{"tenant_id": "globex"}, snapshot)

	// snapshot is detached from the store
	snapshot["tenant_id"] = "mutated"
	assert.Equal(t, "globex", store.Get("tenant_id").OrElse(""))
}

func TestGlobalStore_Nil(t *testing.T) {
	var store *GlobalStore

	store.Set("tenant_id", "acme")
	assert.False(t, store.Get("tenant_id").IsPresent())
	assert.False(t, store.Snapshot().IsPresent())
}

func TestGlobalStore_PersistsAfterGuards(t *testing.T) {
	store := NewGlobalStore()
	p := New(WithGlobalStore(store))

	pushGuard := p.Push(Context{"request_id": "r1"})
	bridgeGuard := p.CaptureCrossBoundary()

	bridgeGuard.Release()
	pushGuard.Release()

	assert.Equal(t, Context{}, p.SyncMerged())
	assert.Equal(t, "r1", store.Get("request_id").OrElse(""))
}
