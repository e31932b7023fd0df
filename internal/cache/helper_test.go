package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	InitRedis(mr.Addr())
	t.Cleanup(func() { client = nil })
	return mr
}

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func TestGetSetJSON(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	var miss cachedUser
	found, err := GetJSON(ctx, UserKey(1), &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, UserKey(1), cachedUser{ID: 1, Username: "alice"}, UserTTL))

	var hit cachedUser
	found, err = GetJSON(ctx, UserKey(1), &hit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", hit.Username)
}

func TestAside(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 7, Username: "bob"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "bob", first.Username)
	assert.Equal(t, 1, calls)

	// The second read is served from the cache.
	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, "bob", second.Username)
	assert.Equal(t, 1, calls)

	// Invalidation forces a refetch.
	InvalidateUser(ctx, 7)
	var third cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &third, UserTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_NoRedisDegradesToFetch(t *testing.T) {
	client = nil

	calls := 0
	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		calls++
		dest = cachedUser{ID: 1, Username: "alice"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "alice", dest.Username)
}
