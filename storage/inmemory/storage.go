package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grumbler/schemas"
	"grumbler/storage"
)

// MemoryStorage keeps posts ordered by creation time descending, the
// same order the mongo storage returns.
type MemoryStorage struct {
	mu sync.RWMutex

	posts []*schemas.Post
}

func NewInMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) InsertPost(_ context.Context, post *schemas.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := post.Copy()
	at := sort.Search(len(s.posts), func(i int) bool {
		return s.posts[i].Created.Before(stored.Created)
	})
	s.posts = append(s.posts, nil)
	copy(s.posts[at+1:], s.posts[at:])
	s.posts[at] = stored
	return nil
}

func (s *MemoryStorage) GetPost(_ context.Context, postId schemas.PostId) (*schemas.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, post := range s.posts {
		if post.ID == postId {
			return post.Copy(), nil
		}
	}
	return nil, fmt.Errorf("%w: post %s", storage.ErrNotFound, postId.ToBase64URL())
}

func matches(post *schemas.Post, filter storage.PostFilter) bool {
	if filter.AuthorID != "" && post.Author.AuthID != filter.AuthorID {
		return false
	}
	if filter.AliveAt != nil && !post.Expiry.After(*filter.AliveAt) {
		return false
	}
	return true
}

func (s *MemoryStorage) FindPosts(_ context.Context, filter storage.PostFilter, skip int, limit int) ([]*schemas.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*schemas.Post, 0, limit)
	for _, post := range s.posts {
		if !matches(post, filter) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		result = append(result, post.Copy())
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryStorage) CountPosts(_ context.Context, filter storage.PostFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, post := range s.posts {
		if matches(post, filter) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) DeletePost(_ context.Context, postId schemas.PostId) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, post := range s.posts {
		if post.ID == postId {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: post %s", storage.ErrNotFound, postId.ToBase64URL())
}

func (s *MemoryStorage) UpdateAuthorName(_ context.Context, authorId schemas.AuthID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range s.posts {
		if post.Author.AuthID == authorId {
			post.Author.Name = name
			post.Version++
		}
	}
	return nil
}
