package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore
// backed by it.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "tab-1"), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	sut, _ := setupTestRedis(t)

	require.NoError(t, sut.Set("userToken", []byte("abc")))
	value, err := sut.Get("userToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)

	require.NoError(t, sut.Delete("userToken"))
	_, err = sut.Get("userToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_MissingKey(t *testing.T) {
	sut, _ := setupTestRedis(t)

	_, err := sut.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_KeysAreNamespaced(t *testing.T) {
	sut, mr := setupTestRedis(t)

	require.NoError(t, sut.Set("userToken", []byte("abc")))

	raw, err := mr.Get("storefront:tab-1:userToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)

	other := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "tab-2")
	_, err = other.Get("userToken")
	assert.ErrorIs(t, err, ErrNotFound, "another namespace never sees the key")
}
