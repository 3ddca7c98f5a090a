package models

import "time"

// Forum is a community owned by exactly one creator. Membership beyond
// ownership is not modeled; num_members starts at 1 for the creator.
type Forum struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedBy   string    `gorm:"size:36;index;not null" json:"created_by"`
	NumMembers  int       `gorm:"default:1" json:"num_members"`
	CreatedAt   time.Time `json:"created_at"`
}
