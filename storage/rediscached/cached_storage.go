package rediscached

import (
	"context"
	"log"
	"reflect"
	"time"

	"github.com/go-redis/redis/v8"

	"grumbler/plain"
	"grumbler/schemas"
	"grumbler/storage"
	"grumbler/storage/rediscached/redisgeneral"
)

const frontPackKey = "grmb:frontpack"

// CachedFrontPack is the first page of the public listing plus its
// total count, cached as one unit so count and window never disagree.
type CachedFrontPack struct {
	Posts      []*schemas.Post
	TotalCount int
}

func (cfp CachedFrontPack) GetVersion() int {
	vers := cfp.TotalCount
	for i := range cfp.Posts {
		vers += cfp.Posts[i].Version
	}
	return vers
}

// CachedStorage caches the front page of the public listing; every
// other scope and window goes straight to the persistent storage.
// Expiry inside the TTL window is tolerated: the read-side transform
// recomputes isExpired on every render anyway.
type CachedStorage struct {
	persistentStorage storage.PostStorage
	frontPackCache    *redisgeneral.Storage
}

func NewCachedStorage(persistentStorage storage.PostStorage, client *redis.Client, cacheTTL time.Duration) *CachedStorage {
	frontPackCache := redisgeneral.NewStorage(client, reflect.TypeOf(CachedFrontPack{}), cacheTTL)
	return &CachedStorage{
		persistentStorage: persistentStorage,
		frontPackCache:    frontPackCache,
	}
}

func (cs *CachedStorage) InsertPost(ctx context.Context, post *schemas.Post) error {
	if err := cs.persistentStorage.InsertPost(ctx, post); err != nil {
		return err
	}
	cs.invalidateFrontPack(ctx)
	return nil
}

func (cs *CachedStorage) GetPost(ctx context.Context, postId schemas.PostId) (*schemas.Post, error) {
	return cs.persistentStorage.GetPost(ctx, postId)
}

func (cs *CachedStorage) FindPosts(ctx context.Context, filter storage.PostFilter, skip int, limit int) ([]*schemas.Post, error) {
	if !filter.IsFrontScope() || skip != 0 || limit != plain.DefaultPageSize {
		return cs.persistentStorage.FindPosts(ctx, filter, skip, limit)
	}

	pack, err := cs.frontPack(ctx, filter)
	if err != nil {
		return nil, err
	}
	postList := pack.Posts
	if len(postList) > limit {
		postList = postList[:limit]
	}
	return postList, nil
}

func (cs *CachedStorage) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	if !filter.IsFrontScope() {
		return cs.persistentStorage.CountPosts(ctx, filter)
	}

	pack, err := cs.frontPack(ctx, filter)
	if err != nil {
		return 0, err
	}
	return pack.TotalCount, nil
}

func (cs *CachedStorage) DeletePost(ctx context.Context, postId schemas.PostId) error {
	if err := cs.persistentStorage.DeletePost(ctx, postId); err != nil {
		return err
	}
	cs.invalidateFrontPack(ctx)
	return nil
}

func (cs *CachedStorage) UpdateAuthorName(ctx context.Context, authorId schemas.AuthID, name string) error {
	if err := cs.persistentStorage.UpdateAuthorName(ctx, authorId, name); err != nil {
		return err
	}
	cs.invalidateFrontPack(ctx)
	return nil
}

// invalidateFrontPack is best-effort: the write already landed in the
// persistent storage, so a failed delete must not surface as a write
// failure. The TTL bounds how long the stale pack can live.
func (cs *CachedStorage) invalidateFrontPack(ctx context.Context) {
	if err := cs.frontPackCache.Delete(ctx, frontPackKey); err != nil {
		log.Printf("front pack invalidation failed: %s", err.Error())
	}
}

func (cs *CachedStorage) frontPack(ctx context.Context, filter storage.PostFilter) (*CachedFrontPack, error) {
	rawCached, found, err := cs.frontPackCache.Get(ctx, frontPackKey)
	if err != nil {
		return nil, err
	}
	if found {
		pack := rawCached.(CachedFrontPack)
		return &pack, nil
	}

	postList, err := cs.persistentStorage.FindPosts(ctx, filter, 0, plain.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	totalCount, err := cs.persistentStorage.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	rawCached, err = cs.frontPackCache.SetWithFreshness(ctx, frontPackKey, &CachedFrontPack{Posts: postList, TotalCount: totalCount})
	if err != nil {
		return nil, err
	}
	pack := rawCached.(CachedFrontPack)
	return &pack, nil
}
