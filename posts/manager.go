package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grumbler/authz"
	"grumbler/captcha"
	"grumbler/plain"
	"grumbler/schemas"
	"grumbler/storage"
)

var (
	ErrVerificationFailed = errors.New("captcha verification failed")
	ErrNotOwner           = errors.New("not owner")
	ErrPersistenceFailed  = errors.New("persistence failed")
	ErrInvalidDraft       = errors.New("invalid draft")
)

// Masked identity shown in place of the author of anonymous posts.
const (
	maskedAuthId = "0"
	maskedName   = "a ninja"
)

const displayTimeFormat = "2006/1/2, 15:04"

type Draft struct {
	Title          string
	Content        string
	Category       string
	ExpirySelector int
	Anonymous      bool
	CaptchaToken   string
}

type PostsManager struct {
	postsStorage storage.PostStorage
	verifier     captcha.Verifier

	clock func() time.Time
}

func NewPostsManager(postsStorage storage.PostStorage, verifier captcha.Verifier) *PostsManager {
	return &PostsManager{
		postsStorage: postsStorage,
		verifier:     verifier,
		clock: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// Create validates and stamps a draft and persists it. The captcha
// verdict is a hard precondition: the store is only touched after it
// passes, so a rejected draft leaves no partial writes behind.
func (pm *PostsManager) Create(ctx context.Context, draft Draft, author *schemas.User) (*schemas.Post, error) {
	if draft.Title == "" {
		return nil, fmt.Errorf("%w: title", ErrInvalidDraft)
	}
	if draft.Content == "" {
		return nil, fmt.Errorf("%w: content", ErrInvalidDraft)
	}
	offset, err := offsetFor(draft.ExpirySelector)
	if err != nil {
		return nil, err
	}

	if !pm.verifier.Verify(ctx, draft.CaptchaToken) {
		return nil, ErrVerificationFailed
	}

	now := pm.clock()
	newPost := &schemas.Post{
		ID:       schemas.NewPostId(),
		Title:    draft.Title,
		Content:  draft.Content,
		Category: draft.Category,
		Author: schemas.Author{
			AuthID: author.AuthID,
			Name:   author.Name,
		},
		Created:   now,
		Expiry:    now.Add(offset),
		Anonymous: draft.Anonymous,
	}

	if err := pm.postsStorage.InsertPost(ctx, newPost); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersistenceFailed, err.Error())
	}
	return newPost, nil
}

// Present is the read-side transform every post passes through before
// it reaches a consumer. Pure: the stored post is never touched, only
// the view copy is masked and formatted.
func Present(post *schemas.Post, now time.Time) schemas.PostView {
	view := schemas.PostView{
		ID:       post.ID.ToBase64URL(),
		Title:    post.Title,
		Content:  post.Content,
		Category: post.Category,
		Author:   post.Author,
		Created:  post.Created.Format(displayTimeFormat),
	}
	if post.Anonymous {
		view.Author = schemas.Author{
			AuthID: maskedAuthId,
			Name:   maskedName,
		}
	}
	if view.Category == "" {
		view.Category = Uncategorized
	}
	if !post.Expiry.IsZero() {
		view.IsExpired = post.Expiry.Before(now)
		view.Expiry = post.Expiry.Format(displayTimeFormat)
	}
	return view
}

// PresentNow renders one post against the manager's clock, the same
// source Create stamps with.
func (pm *PostsManager) PresentNow(post *schemas.Post) schemas.PostView {
	return Present(post, pm.clock())
}

// Remove deletes one post on behalf of acting. Existence is checked
// before ownership, so a missing post reads as not-found rather than
// as somebody else's.
func (pm *PostsManager) Remove(ctx context.Context, postId schemas.PostId, acting schemas.AuthID) error {
	post, err := pm.postsStorage.GetPost(ctx, postId)
	if err != nil {
		return err
	}
	if !authz.Allowed(acting, post.Author.AuthID) {
		return fmt.Errorf("%w: post %s", ErrNotOwner, postId.ToBase64URL())
	}
	return pm.postsStorage.DeletePost(ctx, postId)
}

// Query runs the pagination engine over one listing scope: count
// first, window math, then one ordered window read, every hit passed
// through Present.
func (pm *PostsManager) Query(ctx context.Context, filter storage.PostFilter, pageNo int, pageSize int) (*plain.Page, error) {
	totalCount, err := pm.postsStorage.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	layout := plain.LayoutFor(pageNo, totalCount, pageSize)

	var postList []*schemas.Post
	if layout.Page > 0 {
		postList, err = pm.postsStorage.FindPosts(ctx, filter, layout.Skip, layout.Size)
		if err != nil {
			return nil, err
		}
	}

	now := pm.clock()
	views := make([]schemas.PostView, len(postList))
	for i, post := range postList {
		views[i] = Present(post, now)
	}
	return plain.NewPage(layout, totalCount, views), nil
}

// QueryPublic lists non-expired posts for everyone.
func (pm *PostsManager) QueryPublic(ctx context.Context, pageNo int) (*plain.Page, error) {
	now := pm.clock()
	return pm.Query(ctx, storage.PostFilter{AliveAt: &now}, pageNo, plain.DefaultPageSize)
}

// QueryByAuthor lists every post of one author, expired included.
// Callers guard this behind the ownership check.
func (pm *PostsManager) QueryByAuthor(ctx context.Context, authId schemas.AuthID, pageNo int) (*plain.Page, error) {
	return pm.Query(ctx, storage.PostFilter{AuthorID: authId}, pageNo, plain.DefaultPageSize)
}
