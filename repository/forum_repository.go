package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

// ForumRepository owns community rows. Communities have exactly one creator;
// listing "for a user" means listing the communities that user created.
type ForumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// Create inserts a community owned by ownerID. Name and description must be
// non-empty and the owner must already exist.
func (r *ForumRepository) Create(ctx context.Context, ownerID, name, description string) (*models.Forum, error) {
	if r.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, apperror.Validation("name", "forum name is required")
	}
	if description == "" {
		return nil, apperror.Validation("description", "forum description is required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var owner models.User
	if err := r.db.WithContext(ctx).Where("id = ?", ownerID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", ownerID)
		}
		return nil, storeErr("verify forum owner", err)
	}

	forum := models.Forum{
		Name:        name,
		Description: description,
		CreatedBy:   owner.ID,
		NumMembers:  1,
	}
	if err := r.db.WithContext(ctx).Create(&forum).Error; err != nil {
		return nil, storeErr("create forum", err)
	}
	return &forum, nil
}

// ListByOwner returns the communities created by ownerID in insertion order.
// Unknown owners simply get an empty list.
func (r *ForumRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Forum, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var forums []models.Forum
	err := r.db.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("id ASC").
		Find(&forums).Error
	if err != nil {
		return nil, storeErr("list forums by owner", err)
	}
	return forums, nil
}

// FindByID returns the community or nil when no row matches.
func (r *ForumRepository) FindByID(ctx context.Context, id uint) (*models.Forum, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var forum models.Forum
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&forum).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find forum by id", err)
	}
	return &forum, nil
}
