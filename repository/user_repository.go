package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

// defaultBio is assigned to rows created through Google reconciliation.
const defaultBio = "New user joined via Google OAuth"

// UserRepository owns user rows and the Google identity reconciliation logic.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Degraded reports whether the repository runs without a backing store.
func (r *UserRepository) Degraded() bool { return r.db == nil }

// FindByID returns the user or nil when no row matches.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find user by id", err)
	}
	return &user, nil
}

// FindByGoogleID returns the user matched by the identity provider subject id,
// or nil when no row matches.
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find user by google id", err)
	}
	return &user, nil
}

// CreateFromProfile inserts a fresh user row for the profile. A uniqueness
// violation on email or google_id surfaces as a ConflictError so the caller
// can retry reconciliation once after a racing first-login.
func (r *UserRepository) CreateFromProfile(ctx context.Context, profile models.GoogleProfile) (*models.User, error) {
	if r.db == nil {
		return nil, nil
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, apperror.Validation("email", "profile email is required")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	gid := strings.TrimSpace(profile.GoogleID)
	user := models.User{
		Email:     strings.TrimSpace(profile.Email),
		Name:      profile.DisplayName,
		AvatarURL: profile.AvatarURL,
		Bio:       defaultBio,
	}
	if gid != "" {
		user.GoogleID = &gid
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeErr("create user", err)
	}
	return &user, nil
}

// UpdateDisplayFields refreshes the mutable display attributes of the row
// matched by google_id, treating the provider as source of truth. Returns nil
// without error when no row matches.
func (r *UserRepository) UpdateDisplayFields(ctx context.Context, googleID string, profile models.GoogleProfile) (*models.User, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("google_id = ?", googleID).
		Updates(map[string]interface{}{
			"name":       profile.DisplayName,
			"avatar_url": profile.AvatarURL,
			"email":      strings.TrimSpace(profile.Email),
		})
	if res.Error != nil {
		return nil, storeErr("update user display fields", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByGoogleID(ctx, googleID)
}

// FindOrCreateFromGoogleProfile maps an identity-provider profile onto a
// durable local user. The lookup order is fixed:
//
//  1. by google_id: refresh display fields and return the row;
//  2. by email: claim the row by attaching the google_id (a user who existed
//     under another identity path is logging in via Google for the first time);
//  3. otherwise insert a new row with a fresh id and a default bio.
//
// Calling this twice with the same profile is idempotent: both calls return a
// user with the same id and never create a duplicate row for the same
// google_id or email. In degraded mode it returns nil, which callers must
// treat as "could not authenticate", distinct from "user not found".
func (r *UserRepository) FindOrCreateFromGoogleProfile(ctx context.Context, profile models.GoogleProfile) (*models.User, error) {
	if r.db == nil {
		return nil, nil
	}
	gid := strings.TrimSpace(profile.GoogleID)
	if gid == "" {
		return nil, apperror.Validation("google_id", "profile external id is required")
	}

	existing, err := r.FindByGoogleID(ctx, gid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.UpdateDisplayFields(ctx, gid, profile)
	}

	if email := strings.TrimSpace(profile.Email); email != "" {
		claimed, err := r.claimByEmail(ctx, email, gid, profile)
		if err != nil {
			return nil, err
		}
		if claimed != nil {
			return claimed, nil
		}
	}

	return r.CreateFromProfile(ctx, profile)
}

// claimByEmail attaches the google_id to an existing row matched by email.
// Returns nil when no such row exists.
func (r *UserRepository) claimByEmail(ctx context.Context, email, googleID string, profile models.GoogleProfile) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND google_id IS NULL", email).
		Updates(map[string]interface{}{
			"google_id":  googleID,
			"name":       profile.DisplayName,
			"avatar_url": profile.AvatarURL,
		})
	if res.Error != nil {
		return nil, storeErr("claim user by email", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByGoogleID(ctx, googleID)
}

// UpdateBio replaces the user's bio. Returns NotFound when the user does not exist.
func (r *UserRepository) UpdateBio(ctx context.Context, userID, bio string) error {
	if r.db == nil {
		return nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("bio", bio)
	if res.Error != nil {
		return storeErr("update user bio", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// SaveInterests stores the tag list as a JSON array, preserving insertion
// order for display. Returns NotFound when the user does not exist.
func (r *UserRepository) SaveInterests(ctx context.Context, userID string, interests []string) error {
	if r.db == nil {
		return nil
	}
	if interests == nil {
		interests = []string{}
	}
	raw, err := json.Marshal(interests)
	if err != nil {
		return apperror.Validation("interests", "interests are not serializable")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("interests", string(raw))
	if res.Error != nil {
		return storeErr("save user interests", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// Interests returns the user's tag list, or an empty list when none were saved.
func (r *UserRepository) Interests(ctx context.Context, userID string) ([]string, error) {
	if r.db == nil {
		return nil, nil
	}
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", userID)
	}
	if strings.TrimSpace(user.Interests) == "" {
		return []string{}, nil
	}
	var interests []string
	if err := json.Unmarshal([]byte(user.Interests), &interests); err != nil {
		return []string{}, nil
	}
	return interests, nil
}
