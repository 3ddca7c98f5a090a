package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

func googleProfile(id, email, name string) models.GoogleProfile {
	return models.GoogleProfile{
		GoogleID:    id,
		DisplayName: name,
		Email:       email,
		AvatarURL:   "https://lh3.example.com/" + id,
	}
}

func TestFindOrCreateFromGoogleProfile_CreatesNewUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("g-100", "ada@example.com", "Ada"))
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "New user joined via Google OAuth", user.Bio)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-100", *user.GoogleID)
}

func TestFindOrCreateFromGoogleProfile_Idempotent(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	profile := googleProfile("g-200", "grace@example.com", "Grace")

	first, err := repo.FindOrCreateFromGoogleProfile(testCtx(), profile)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.FindOrCreateFromGoogleProfile(testCtx(), profile)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, repo.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateFromGoogleProfile_RefreshesDisplayFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("g-300", "old@example.com", "Old Name"))
	require.NoError(t, err)

	updated, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("g-300", "new@example.com", "New Name"))
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "new@example.com", updated.Email)
}

func TestFindOrCreateFromGoogleProfile_ClaimsRowByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	// A user who existed before ever logging in with Google.
	existing := seedUser(t, db, "linus@example.com", "Linus")
	require.Nil(t, existing.GoogleID)

	claimed, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("g-400", "linus@example.com", "Linus T"))
	require.NoError(t, err)
	require.NotNil(t, claimed)

	assert.Equal(t, existing.ID, claimed.ID, "claim must attach to the existing row, not create a new one")
	require.NotNil(t, claimed.GoogleID)
	assert.Equal(t, "g-400", *claimed.GoogleID)
	assert.Equal(t, "Linus T", claimed.Name)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateFromGoogleProfile_RequiresGoogleID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("", "nobody@example.com", "Nobody"))
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCreateFromProfile_DuplicateEmailIsConflict(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.CreateFromProfile(testCtx(), googleProfile("g-500", "dup@example.com", "First"))
	require.NoError(t, err)

	_, err = repo.CreateFromProfile(testCtx(), googleProfile("g-501", "dup@example.com", "Second"))
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUserRepository_DegradedMode(t *testing.T) {
	repo := NewUserRepository(nil)
	assert.True(t, repo.Degraded())

	user, err := repo.FindOrCreateFromGoogleProfile(testCtx(), googleProfile("g-600", "ghost@example.com", "Ghost"))
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.FindByID(testCtx(), "anything")
	assert.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, repo.UpdateBio(testCtx(), "anything", "bio"))
	assert.NoError(t, repo.SaveInterests(testCtx(), "anything", []string{"go"}))
}

func TestUpdateBio(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "bio@example.com", "Bio")

	require.NoError(t, repo.UpdateBio(testCtx(), user.ID, "Backend engineer"))

	reloaded, err := repo.FindByID(testCtx(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "Backend engineer", reloaded.Bio)

	err = repo.UpdateBio(testCtx(), "missing-id", "anything")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestInterests_RoundTripPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "tags@example.com", "Tags")

	tags := []string{"distributed systems", "go", "databases"}
	require.NoError(t, repo.SaveInterests(testCtx(), user.ID, tags))

	got, err := repo.Interests(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, tags, got)

	// Replacing the list fully overwrites the previous one.
	require.NoError(t, repo.SaveInterests(testCtx(), user.ID, []string{"ml"}))
	got, err = repo.Interests(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ml"}, got)
}

func TestInterests_EmptyByDefault(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "fresh@example.com", "Fresh")

	got, err := repo.Interests(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	_, err = repo.Interests(testCtx(), "missing-id")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
