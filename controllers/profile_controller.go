package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trajecta/trajecta/middleware"
	"github.com/trajecta/trajecta/models"
	"github.com/trajecta/trajecta/repository"
	"github.com/trajecta/trajecta/utils"
)

// ProfileController manages the authenticated user's interests and skill
// experiences. The owner is always the JWT subject; request bodies may not
// write another user's profile.
type ProfileController struct {
	users       *repository.UserRepository
	experiences *repository.ExperienceRepository
}

// NewProfileController creates a ProfileController.
func NewProfileController(users *repository.UserRepository, experiences *repository.ExperienceRepository) *ProfileController {
	return &ProfileController{users: users, experiences: experiences}
}

// SaveInterests replaces the user's interest tags.
func (p *ProfileController) SaveInterests(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Interests []string `json:"interests"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	if p.users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	interests := make([]string, 0, len(req.Interests))
	for _, tag := range req.Interests {
		tag = utils.Sanitize(strings.TrimSpace(tag))
		if tag != "" {
			interests = append(interests, tag)
		}
	}

	if err := p.users.SaveInterests(ctx.Request.Context(), userID, interests); err != nil {
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"interests": interests})
}

// GetInterests returns the user's interest tags.
func (p *ProfileController) GetInterests(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	if p.users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	interests, err := p.users.Interests(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if interests == nil {
		interests = []string{}
	}

	utils.Success(ctx, gin.H{"interests": interests})
}

// SaveExperiences replaces the user's full experience list atomically.
func (p *ProfileController) SaveExperiences(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Experiences []repository.ExperienceEntry `json:"experiences"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	if p.users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	rows, err := p.experiences.ReplaceAll(ctx.Request.Context(), userID, req.Experiences)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if rows == nil {
		rows = []models.Experience{}
	}

	utils.Success(ctx, gin.H{"success": true, "experiences": rows})
}

// GetExperiences returns the user's experience list.
func (p *ProfileController) GetExperiences(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	if p.users.Degraded() {
		respondPersistenceDown(ctx)
		return
	}

	rows, err := p.experiences.FindByOwner(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if rows == nil {
		rows = []models.Experience{}
	}

	utils.Success(ctx, gin.H{"experiences": rows})
}
