package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	sut := NewMemoryStore()

	require.NoError(t, sut.Set("userToken", []byte("abc")))
	value, err := sut.Get("userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)

	require.NoError(t, sut.Delete("userToken"))
	_, err = sut.Get("userToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	sut := NewMemoryStore()

	_, err := sut.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	sut := NewMemoryStore()
	require.NoError(t, sut.Set("k", []byte("abc")))

	value, err := sut.Get("k")
	require.NoError(t, err)
	value[0] = 'X'

	again, err := sut.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again, "mutating a returned value must not corrupt the store")
}

func TestMemoryStore_WatchDeliversChanges(t *testing.T) {
	sut := NewMemoryStore()

	var m sync.Mutex
	var changes []Change
	unsubscribe := sut.Watch(func(c Change) {
		m.Lock()
		defer m.Unlock()
		changes = append(changes, c)
	})

	require.NoError(t, sut.Set("k", []byte("v")))
	require.NoError(t, sut.Delete("k"))

	m.Lock()
	require.Len(t, changes, 2)
	assert.Equal(t, "k", changes[0].Key)
	assert.Equal(t, []byte("v"), changes[0].Value)
	assert.Nil(t, changes[1].Value, "delete delivers a nil value")
	m.Unlock()

	unsubscribe()
	require.NoError(t, sut.Set("k", []byte("after")))
	m.Lock()
	assert.Len(t, changes, 2, "no delivery after unsubscribe")
	m.Unlock()
}

func TestMemoryStore_DeleteMissingIsSilent(t *testing.T) {
	sut := NewMemoryStore()

	fired := false
	sut.Watch(func(Change) { fired = true })

	require.NoError(t, sut.Delete("never-set"))
	assert.False(t, fired, "deleting an absent key notifies nobody")
}
