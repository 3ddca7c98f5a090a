package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trajecta/trajecta/models"
	"github.com/trajecta/trajecta/repository"
	"github.com/trajecta/trajecta/utils"
)

// FeedController manages communities and their posts. Request shapes mirror
// what the SPA sends: the user object carries the provider-side id plus
// display fields, so authors can be reconciled inline.
type FeedController struct {
	repos *repository.Repositories
}

// NewFeedController creates a FeedController.
func NewFeedController(repos *repository.Repositories) *FeedController {
	return &FeedController{repos: repos}
}

// feedUser is the caller-supplied identity attached to feed requests.
type feedUser struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

func (u feedUser) profile() models.GoogleProfile {
	return models.GoogleProfile{
		GoogleID:    u.ID,
		DisplayName: u.Name,
		Email:       u.Email,
		AvatarURL:   u.Photo,
	}
}

// resolveUser maps a feed user onto an existing local user by internal id
// first, then by provider id. Returns nil when neither matches.
func (f *FeedController) resolveUser(ctx context.Context, u feedUser) (*models.User, error) {
	user, err := f.repos.Users.FindByID(ctx, u.ID)
	if err != nil || user != nil {
		return user, err
	}
	return f.repos.Users.FindByGoogleID(ctx, u.ID)
}

// CreateCommunity creates a forum owned by the request's user.
func (f *FeedController) CreateCommunity(ctx *gin.Context) {
	var req struct {
		User  feedUser `json:"user" binding:"required"`
		Forum struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"forum" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if f.repos.Users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	owner, err := f.resolveUser(ctx.Request.Context(), req.User)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if owner == nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
		return
	}

	forum, err := f.repos.Forums.Create(ctx.Request.Context(),
		owner.ID,
		utils.Sanitize(req.Forum.Name),
		utils.Sanitize(req.Forum.Description),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:forums:owner:" + owner.ID)
	utils.Created(ctx, gin.H{"community": forum})
}

// FindCommunities lists the forums created by the request's user.
func (f *FeedController) FindCommunities(ctx *gin.Context) {
	var req struct {
		User feedUser `json:"user" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	if f.repos.Users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	owner, err := f.resolveUser(ctx.Request.Context(), req.User)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if owner == nil {
		// Unknown owners simply have no communities.
		utils.Success(ctx, gin.H{"communities": []models.Forum{}})
		return
	}

	cacheKey := "cache:forums:owner:" + owner.ID
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	forums, err := f.repos.Forums.ListByOwner(ctx.Request.Context(), owner.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if forums == nil {
		forums = []models.Forum{}
	}

	payload := gin.H{"communities": forums}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// CreatePost creates a post in a forum. The author is reconciled inline when
// the request carries a full profile, since they may be authenticating for
// the first time through this path.
func (f *FeedController) CreatePost(ctx *gin.Context) {
	var req struct {
		User  feedUser `json:"user" binding:"required"`
		Forum uint     `json:"forum" binding:"required"`
		Post  struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"post" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	if f.repos.Users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	author, err := f.resolveUser(ctx.Request.Context(), req.User)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if author == nil && strings.TrimSpace(req.User.Email) != "" {
		author, err = f.repos.Users.FindOrCreateFromGoogleProfile(ctx.Request.Context(), req.User.profile())
		if err != nil {
			respondError(ctx, err)
			return
		}
	}
	if author == nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
		return
	}

	post, err := f.repos.Posts.Create(ctx.Request.Context(),
		author.ID,
		req.Forum,
		utils.Sanitize(req.Post.Title),
		utils.Sanitize(req.Post.Content),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(postsCacheKey(req.Forum))
	utils.Created(ctx, gin.H{"post": post})
}

// FindPosts lists a forum's posts newest first, enriched with author fields.
func (f *FeedController) FindPosts(ctx *gin.Context) {
	var req struct {
		Forum uint `json:"forum" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	if f.repos.Users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	cacheKey := postsCacheKey(req.Forum)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := f.repos.Posts.ListByForum(ctx.Request.Context(), req.Forum)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if posts == nil {
		posts = []models.PostWithAuthor{}
	}

	payload := gin.H{"posts": posts}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// UpvotePost applies a +1/-1 adjustment to a post's upvote counter.
func (f *FeedController) UpvotePost(ctx *gin.Context) {
	postID, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid post id")
		return
	}

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid request payload")
		return
	}

	if f.repos.Users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	post, err := f.repos.Posts.AdjustUpvotes(ctx.Request.Context(), uint(postID), req.Delta)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(postsCacheKey(post.ForumID))
	utils.Success(ctx, gin.H{"post": post})
}

func postsCacheKey(forumID uint) string {
	return fmt.Sprintf("cache:posts:forum:%d", forumID)
}
