package rediscached

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grumbler/schemas"
	"grumbler/storage"
	"grumbler/storage/inmemory"
)

// unreachableClient points at a closed port so every cache call fails
// fast; the cached storage must still serve writes durably.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestWritesSurviveCacheOutage(t *testing.T) {
	persistent := inmemory.NewInMemoryStorage()
	cs := NewCachedStorage(persistent, unreachableClient(), time.Minute)
	ctx := context.Background()

	created := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	post := &schemas.Post{
		ID:      schemas.NewPostId(),
		Title:   "t",
		Content: "c",
		Author:  schemas.Author{AuthID: "app:tester01", Name: "n"},
		Created: created,
		Expiry:  created.Add(time.Hour),
	}

	require.NoError(t, cs.InsertPost(ctx, post))
	stored, err := persistent.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, stored.ID)

	require.NoError(t, cs.UpdateAuthorName(ctx, "app:tester01", "Renamed"))
	renamed, err := persistent.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Author.Name)

	require.NoError(t, cs.DeletePost(ctx, post.ID))
	_, err = persistent.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
