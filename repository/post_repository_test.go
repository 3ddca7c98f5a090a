package repository

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

// postFixture bundles the owner and forum most post tests need.
type postFixture struct {
	owner *models.User
	forum *models.Forum
}

func newPostFixture(t *testing.T, repo *PostRepository) *postFixture {
	t.Helper()

	owner := seedUser(t, repo.db, "author@example.com", "Author")
	forum, err := NewForumRepository(repo.db).Create(testCtx(), owner.ID, "General", "General discussion")
	require.NoError(t, err)
	return &postFixture{owner: owner, forum: forum}
}

func TestPostCreateAndListByForum(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	fx := newPostFixture(t, posts)

	first, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "First post", "hello")
	require.NoError(t, err)
	assert.True(t, first.IsPublic)
	assert.Equal(t, 0, first.Upvotes)

	second, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "Second post", "world")
	require.NoError(t, err)

	listed, err := posts.ListByForum(testCtx(), fx.forum.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest first.
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	require.NotNil(t, listed[0].AuthorName)
	assert.Equal(t, "Author", *listed[0].AuthorName)
}

func TestPostListByForum_MissingAuthorStillListed(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	fx := newPostFixture(t, posts)

	created, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "Orphaned", "author goes away")
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", fx.owner.ID).Error)

	listed, err := posts.ListByForum(testCtx(), fx.forum.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Nil(t, listed[0].AuthorName)
	assert.Nil(t, listed[0].AuthorAvatarURL)
}

func TestPostCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	fx := newPostFixture(t, posts)

	_, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "  ", "content")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "title", "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = posts.Create(testCtx(), "no-such-user", fx.forum.ID, "title", "content")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = posts.Create(testCtx(), fx.owner.ID, 9999, "title", "content")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestAdjustUpvotes(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	fx := newPostFixture(t, posts)

	created, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "Votable", "vote on me")
	require.NoError(t, err)

	up, err := posts.AdjustUpvotes(testCtx(), created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, up.Upvotes)

	down, err := posts.AdjustUpvotes(testCtx(), created.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, down.Upvotes)

	_, err = posts.AdjustUpvotes(testCtx(), created.ID, 2)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = posts.AdjustUpvotes(testCtx(), 9999, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestAdjustUpvotes_ConcurrentIncrementsAllLand(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	fx := newPostFixture(t, posts)

	created, err := posts.Create(testCtx(), fx.owner.ID, fx.forum.ID, "Hot take", "everyone votes at once")
	require.NoError(t, err)

	const voters = 25
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posts.AdjustUpvotes(testCtx(), created.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var final models.Post
	require.NoError(t, db.First(&final, created.ID).Error)
	assert.Equal(t, voters, final.Upvotes, "no increment may be lost to a read-modify-write race")
}

func TestPostRepository_DegradedMode(t *testing.T) {
	posts := NewPostRepository(nil)

	post, err := posts.Create(testCtx(), "any", 1, "title", "content")
	assert.NoError(t, err)
	assert.Nil(t, post)

	listed, err := posts.ListByForum(testCtx(), 1)
	assert.NoError(t, err)
	assert.Nil(t, listed)

	post, err = posts.AdjustUpvotes(testCtx(), 1, 1)
	assert.NoError(t, err)
	assert.Nil(t, post)
}
