package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

// ExperienceEntry is one incoming skill/years pair before persistence.
type ExperienceEntry struct {
	Skill             string `json:"skill"`
	YearsOfExperience int    `json:"years_of_experience"`
}

// ExperienceRepository owns the per-skill experience rows of a user. The only
// write path is replace-all: the owner's whole set is deleted and reinserted
// inside one transaction, so a failure leaves the previous rows intact and a
// concurrent reader never observes the intermediate empty state as committed.
type ExperienceRepository struct {
	db *gorm.DB
}

func NewExperienceRepository(db *gorm.DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

// ReplaceAll swaps ownerID's experience list for entries. A malformed entry
// (empty skill, negative years) fails the whole transaction; nothing is
// partially applied.
func (r *ExperienceRepository) ReplaceAll(ctx context.Context, ownerID string, entries []ExperienceEntry) ([]models.Experience, error) {
	if r.db == nil {
		return nil, nil
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.Validation("owner_id", "experience owner id is required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var inserted []models.Experience
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", ownerID).Delete(&models.Experience{}).Error; err != nil {
			return err
		}
		rows := make([]models.Experience, 0, len(entries))
		for _, entry := range entries {
			skill := strings.TrimSpace(entry.Skill)
			if skill == "" {
				return apperror.Validation("skill", "experience skill is required")
			}
			if entry.YearsOfExperience < 0 {
				return apperror.Validation("years_of_experience", "years of experience cannot be negative")
			}
			rows = append(rows, models.Experience{
				UserID:            ownerID,
				Skill:             skill,
				YearsOfExperience: entry.YearsOfExperience,
			})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		inserted = rows
		return nil
	})
	if err != nil {
		if _, ok := err.(*apperror.AppError); ok {
			return nil, err
		}
		return nil, storeErr("replace experiences", err)
	}
	return inserted, nil
}

// FindByOwner returns ownerID's experience rows in insertion order, or an
// empty list when none exist.
func (r *ExperienceRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Experience, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rows []models.Experience
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr("list experiences by owner", err)
	}
	return rows, nil
}
