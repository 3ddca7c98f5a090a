package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

func TestForumCreateAndListByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewForumRepository(db)
	owner := seedUser(t, db, "owner@example.com", "Owner")
	other := seedUser(t, db, "other@example.com", "Other")

	first, err := repo.Create(testCtx(), owner.ID, "Go Learners", "A place to learn Go")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, owner.ID, first.CreatedBy)
	assert.Equal(t, 1, first.NumMembers)

	second, err := repo.Create(testCtx(), owner.ID, "Systems Club", "Low level things")
	require.NoError(t, err)

	_, err = repo.Create(testCtx(), other.ID, "Unrelated", "Someone else's community")
	require.NoError(t, err)

	forums, err := repo.ListByOwner(testCtx(), owner.ID)
	require.NoError(t, err)
	require.Len(t, forums, 2)
	assert.Equal(t, first.ID, forums[0].ID)
	assert.Equal(t, second.ID, forums[1].ID)
}

func TestForumCreate_ValidationLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewForumRepository(db)
	owner := seedUser(t, db, "owner@example.com", "Owner")

	_, err := repo.Create(testCtx(), owner.ID, "   ", "desc")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = repo.Create(testCtx(), owner.ID, "name", "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	var count int64
	require.NoError(t, db.Model(&models.Forum{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestForumCreate_UnknownOwner(t *testing.T) {
	repo := NewForumRepository(newTestDB(t))

	_, err := repo.Create(testCtx(), "no-such-user", "Name", "Description")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestForumListByOwner_UnknownOwnerIsEmpty(t *testing.T) {
	repo := NewForumRepository(newTestDB(t))

	forums, err := repo.ListByOwner(testCtx(), "no-such-user")
	require.NoError(t, err)
	assert.Empty(t, forums)
}

func TestForumRepository_DegradedMode(t *testing.T) {
	repo := NewForumRepository(nil)

	forum, err := repo.Create(testCtx(), "any", "Name", "Description")
	assert.NoError(t, err)
	assert.Nil(t, forum)

	forums, err := repo.ListByOwner(testCtx(), "any")
	assert.NoError(t, err)
	assert.Nil(t, forums)
}
