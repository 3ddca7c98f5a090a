package models

import "time"

// Post belongs to a forum and is authored by a user. Upvotes are only ever
// mutated through relative increments evaluated by the store.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ForumID   uint      `gorm:"index;not null" json:"forum_id"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsPublic  bool      `gorm:"default:true" json:"is_public"`
	Upvotes   int       `gorm:"default:0" json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
}

// PostWithAuthor is the read model returned when listing a forum's posts.
// Author fields come from a LEFT JOIN so a post whose author no longer
// resolves still appears, with null author fields.
type PostWithAuthor struct {
	Post
	AuthorName      *string `json:"author_name"`
	AuthorAvatarURL *string `json:"author_avatar_url"`
}
