package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a Trajecta member. Accounts are created exclusively through
// Google OAuth reconciliation; there is no local password material.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GoogleID  *string   `gorm:"size:128;uniqueIndex" json:"google_id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	Bio       string    `gorm:"size:512" json:"bio"`
	Interests string    `gorm:"type:text" json:"-"` // JSON array of free-text tags, insertion order preserved
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID and timestamps when they were not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// GoogleProfile is the identity-provider supplied record used to reconcile a
// local User. It is validated at the HTTP boundary before reaching the
// repository layer.
type GoogleProfile struct {
	GoogleID    string
	DisplayName string
	Email       string
	AvatarURL   string
}
