package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grumbler/schemas"
)

var (
	StorageError = errors.New("storage")
	ErrCollision = fmt.Errorf("%w.collision", StorageError)
	ErrNotFound  = fmt.Errorf("%w.not_found", StorageError)
)

// PostFilter selects one of the two supported listing scopes: every
// post of one author (profile listing), or every post still alive at
// an instant (public listing).
type PostFilter struct {
	AuthorID schemas.AuthID // empty: any author
	AliveAt  *time.Time     // set: only posts whose expiry is after this instant
}

// IsFrontScope reports whether the filter is the public listing scope,
// the only scope the redis layer caches.
func (f PostFilter) IsFrontScope() bool {
	return f.AuthorID == "" && f.AliveAt != nil
}

type PostStorage interface {
	InsertPost(ctx context.Context, post *schemas.Post) error
	GetPost(ctx context.Context, postId schemas.PostId) (*schemas.Post, error)
	FindPosts(ctx context.Context, filter PostFilter, skip int, limit int) ([]*schemas.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int, error)
	DeletePost(ctx context.Context, postId schemas.PostId) error
	UpdateAuthorName(ctx context.Context, authorId schemas.AuthID, name string) error
}

type UserStorage interface {
	InsertUser(ctx context.Context, user *schemas.User) error
	FindUser(ctx context.Context, authId schemas.AuthID) (*schemas.User, error)
	UpdateUserName(ctx context.Context, authId schemas.AuthID, name string) (*schemas.User, error)
	DeleteUser(ctx context.Context, authId schemas.AuthID) error
	CountUsers(ctx context.Context) (int, error)
}
