package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/models"
)

// PostRepository owns post rows inside communities.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post authored by authorID in the given forum. The author
// must resolve to an existing user (callers reconcile inline authors first)
// and the forum must exist. New posts start public with zero upvotes.
func (r *PostRepository) Create(ctx context.Context, authorID string, forumID uint, title, content string) (*models.Post, error) {
	if r.db == nil {
		return nil, nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.Validation("title", "post title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("content", "post content is required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var author models.User
	if err := r.db.WithContext(ctx).Where("id = ?", authorID).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", authorID)
		}
		return nil, storeErr("verify post author", err)
	}

	var forum models.Forum
	if err := r.db.WithContext(ctx).Where("id = ?", forumID).First(&forum).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("forum", forumID)
		}
		return nil, storeErr("verify post forum", err)
	}

	post := models.Post{
		ForumID:  forumID,
		UserID:   author.ID,
		Title:    title,
		Content:  content,
		IsPublic: true,
		Upvotes:  0,
	}
	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, storeErr("create post", err)
	}
	return &post, nil
}

// ListByForum returns the forum's posts newest first, each enriched with the
// author's display name and avatar through a LEFT JOIN: a post whose author no
// longer resolves still appears, with null author fields.
func (r *PostRepository) ListByForum(ctx context.Context, forumID uint) ([]models.PostWithAuthor, error) {
	if r.db == nil {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var posts []models.PostWithAuthor
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, users.name AS author_name, users.avatar_url AS author_avatar_url").
		Joins("LEFT JOIN users ON users.id = posts.user_id").
		Where("posts.forum_id = ?", forumID).
		Order("posts.created_at DESC, posts.id DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, storeErr("list posts by forum", err)
	}
	return posts, nil
}

// AdjustUpvotes applies a relative increment of +1 or -1 to the post's upvote
// counter. The adjustment is evaluated by the store so two concurrent calls
// both land; a read-modify-write here would lose updates.
func (r *PostRepository) AdjustUpvotes(ctx context.Context, postID uint, delta int) (*models.Post, error) {
	if r.db == nil {
		return nil, nil
	}
	if delta != 1 && delta != -1 {
		return nil, apperror.Validation("delta", "upvote delta must be +1 or -1")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("upvotes", gorm.Expr("upvotes + ?", delta))
	if res.Error != nil {
		return nil, storeErr("adjust post upvotes", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("post", postID)
	}

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, storeErr("reload post after upvote", err)
	}
	return &post, nil
}
