// ABOUTME: Tests for the memory and Redis session stores
// ABOUTME: Redis runs on miniredis; both stores share one contract test
package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/harper/dongne/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	sess, err := models.NewSession("user-1")
	require.NoError(t, err)
	sess.Say("안녕?😊")
	sess.Context.Cuisine = "한식"
	sess.Context.MoodTags = []string{"조용한"}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "한식", got.Context.Cuisine)
	assert.Equal(t, sess.Transcript, got.Transcript)

	got.Context.MoodTags[0] = "changed"
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "조용한", again.Context.MoodTags[0], "stored copy is isolated")

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	testStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess, err := models.NewSession("user-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sess))

	assert.True(t, mr.Exists(KeyPrefix+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL(KeyPrefix+sess.ID))

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set(KeyPrefix+"bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
