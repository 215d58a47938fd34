package posts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grumbler/schemas"
	"grumbler/storage"
	"grumbler/storage/inmemory"
)

type stubVerifier struct {
	verdict bool
}

func (v stubVerifier) Verify(context.Context, string) bool {
	return v.verdict
}

type countingStorage struct {
	*inmemory.MemoryStorage
	inserts int
}

func (cs *countingStorage) InsertPost(ctx context.Context, post *schemas.Post) error {
	cs.inserts++
	return cs.MemoryStorage.InsertPost(ctx, post)
}

func newTestManager(t *testing.T, verdict bool) (*PostsManager, *countingStorage) {
	t.Helper()
	postsStorage := &countingStorage{MemoryStorage: inmemory.NewInMemoryStorage()}
	pm := NewPostsManager(postsStorage, stubVerifier{verdict: verdict})
	return pm, postsStorage
}

func testAuthor() *schemas.User {
	return &schemas.User{
		AuthID: "app:tester01",
		Name:   "Tester",
	}
}

func validDraft() Draft {
	return Draft{
		Title:          "hello",
		Content:        "first grumble",
		Category:       "share",
		ExpirySelector: 2,
		CaptchaToken:   "token",
	}
}

func TestCreateStampsPost(t *testing.T) {
	pm, postsStorage := newTestManager(t, true)
	now := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	pm.clock = func() time.Time { return now }

	newPost, err := pm.Create(context.Background(), validDraft(), testAuthor())
	require.NoError(t, err)

	assert.Equal(t, now, newPost.Created)
	assert.Equal(t, now.Add(24*time.Hour), newPost.Expiry)
	assert.Equal(t, schemas.AuthID("app:tester01"), newPost.Author.AuthID)
	assert.Equal(t, "Tester", newPost.Author.Name)
	assert.Equal(t, 1, postsStorage.inserts)

	stored, err := postsStorage.GetPost(context.Background(), newPost.ID)
	require.NoError(t, err)
	assert.Equal(t, newPost.Title, stored.Title)
}

func TestCreateRejectedCaptchaTouchesNoStore(t *testing.T) {
	pm, postsStorage := newTestManager(t, false)

	_, err := pm.Create(context.Background(), validDraft(), testAuthor())
	require.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, 0, postsStorage.inserts)
}

func TestCreateValidatesDraft(t *testing.T) {
	pm, _ := newTestManager(t, true)

	noTitle := validDraft()
	noTitle.Title = ""
	_, err := pm.Create(context.Background(), noTitle, testAuthor())
	assert.ErrorIs(t, err, ErrInvalidDraft)

	badExpiry := validDraft()
	badExpiry.ExpirySelector = len(ExpiryOptions)
	_, err = pm.Create(context.Background(), badExpiry, testAuthor())
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestPresentMasksAnonymousAuthor(t *testing.T) {
	post := &schemas.Post{
		ID:      schemas.NewPostId(),
		Title:   "whisper",
		Content: "nobody saw me",
		Author: schemas.Author{
			AuthID: "app:tester01",
			Name:   "Tester",
		},
		Created:   time.Date(2018, 1, 25, 9, 5, 0, 0, time.UTC),
		Expiry:    time.Date(2018, 1, 26, 9, 5, 0, 0, time.UTC),
		Anonymous: true,
	}

	view := Present(post, time.Date(2018, 1, 25, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, maskedAuthId, string(view.Author.AuthID))
	assert.Equal(t, maskedName, view.Author.Name)
	// the stored post keeps its real author
	assert.Equal(t, schemas.AuthID("app:tester01"), post.Author.AuthID)
}

func TestPresentSubstitutesUncategorized(t *testing.T) {
	post := &schemas.Post{Created: time.Now()}
	view := Present(post, time.Now())
	assert.Equal(t, Uncategorized, view.Category)
}

func TestPresentDerivesExpiry(t *testing.T) {
	expiry := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	post := &schemas.Post{Created: expiry.Add(-time.Hour), Expiry: expiry}

	assert.False(t, Present(post, expiry.Add(-time.Second)).IsExpired)
	// strict inequality: at the expiry instant the post still lives
	assert.False(t, Present(post, expiry).IsExpired)
	assert.True(t, Present(post, expiry.Add(time.Second)).IsExpired)
}

func TestPresentFormatsTimestamps(t *testing.T) {
	post := &schemas.Post{
		Created: time.Date(2018, 1, 25, 9, 5, 0, 0, time.UTC),
		Expiry:  time.Date(2018, 2, 3, 23, 45, 0, 0, time.UTC),
	}
	view := Present(post, time.Date(2018, 1, 25, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2018/1/25, 09:05", view.Created)
	assert.Equal(t, "2018/2/3, 23:45", view.Expiry)
}

func TestPresentNowUsesManagerClock(t *testing.T) {
	pm, _ := newTestManager(t, true)
	base := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	pm.clock = func() time.Time { return base }

	oneDay := validDraft()
	oneDay.ExpirySelector = 2
	newPost, err := pm.Create(context.Background(), oneDay, testAuthor())
	require.NoError(t, err)

	assert.False(t, pm.PresentNow(newPost).IsExpired)

	// create and render must judge expiry against the same clock
	pm.clock = func() time.Time { return base.Add(25 * time.Hour) }
	assert.True(t, pm.PresentNow(newPost).IsExpired)
}

func TestRemove(t *testing.T) {
	pm, postsStorage := newTestManager(t, true)
	ctx := context.Background()

	newPost, err := pm.Create(ctx, validDraft(), testAuthor())
	require.NoError(t, err)

	t.Run("missing post is not found, not foreign", func(t *testing.T) {
		err := pm.Remove(ctx, schemas.NewPostId(), "app:tester01")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.False(t, errors.Is(err, ErrNotOwner))
	})

	t.Run("foreign post is refused and kept", func(t *testing.T) {
		err := pm.Remove(ctx, newPost.ID, "app:someoneelse")
		assert.ErrorIs(t, err, ErrNotOwner)
		_, err = postsStorage.GetPost(ctx, newPost.ID)
		assert.NoError(t, err)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, pm.Remove(ctx, newPost.ID, "app:tester01"))
		_, err := postsStorage.GetPost(ctx, newPost.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func seedPosts(t *testing.T, pm *PostsManager, count int, base time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		pm.clock = func() time.Time { return created }
		draft := validDraft()
		draft.Title = fmt.Sprintf("post %02d", i)
		_, err := pm.Create(context.Background(), draft, testAuthor())
		require.NoError(t, err)
	}
}

func TestQueryPageWindow(t *testing.T) {
	pm, _ := newTestManager(t, true)
	base := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	seedPosts(t, pm, 25, base)

	now := base.Add(time.Hour)
	pm.clock = func() time.Time { return now }

	page, err := pm.Query(context.Background(), storage.PostFilter{AliveAt: &now}, 3, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 25, page.TotalCount)
	assert.Len(t, page.Posts, 5)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Last)
	require.NotNil(t, page.Prev)
	assert.Equal(t, 2, *page.Prev)
	require.NotNil(t, page.First)
	assert.Equal(t, 1, *page.First)

	// newest first: the last window holds the five oldest posts
	assert.Equal(t, "post 04", page.Posts[0].Title)
	assert.Equal(t, "post 00", page.Posts[4].Title)
}

func TestQueryClampsOverrunToLastPage(t *testing.T) {
	pm, _ := newTestManager(t, true)
	base := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)
	seedPosts(t, pm, 25, base)

	now := base.Add(time.Hour)
	page, err := pm.Query(context.Background(), storage.PostFilter{AliveAt: &now}, 42, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Len(t, page.Posts, 5)
}

func TestQueryEmptyScope(t *testing.T) {
	pm, _ := newTestManager(t, true)

	page, err := pm.QueryByAuthor(context.Background(), "app:nobody1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, page.CurrentPage)
	assert.Equal(t, 0, page.PageCount)
	assert.Empty(t, page.Posts)
}

func TestQueryPublicExcludesExpired(t *testing.T) {
	pm, _ := newTestManager(t, true)
	base := time.Date(2018, 1, 25, 12, 0, 0, 0, time.UTC)

	pm.clock = func() time.Time { return base }
	shortLived := validDraft()
	shortLived.ExpirySelector = len(ExpiryOptions) - 1 // ten minutes
	_, err := pm.Create(context.Background(), shortLived, testAuthor())
	require.NoError(t, err)

	pm.clock = func() time.Time { return base.Add(time.Minute) }
	_, err = pm.Create(context.Background(), validDraft(), testAuthor())
	require.NoError(t, err)

	pm.clock = func() time.Time { return base.Add(time.Hour) }
	page, err := pm.QueryPublic(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	// the profile listing still shows both
	ownPage, err := pm.QueryByAuthor(context.Background(), "app:tester01", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, ownPage.TotalCount)
	assert.True(t, ownPage.Posts[1].IsExpired)
}
