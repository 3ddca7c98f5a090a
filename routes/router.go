package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/trajecta/trajecta/config"
	"github.com/trajecta/trajecta/controllers"
	"github.com/trajecta/trajecta/middleware"
	"github.com/trajecta/trajecta/quiz"
	"github.com/trajecta/trajecta/repository"
	"github.com/trajecta/trajecta/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(repos *repository.Repositories, runner *quiz.Runner) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok", "persistence": !repos.Users.Degraded()})
	})

	authController := controllers.NewAuthController(repos.Users)
	feedController := controllers.NewFeedController(repos)
	profileController := controllers.NewProfileController(repos.Users, repos.Experiences)
	examController := controllers.NewExamController(runner)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.GET("/google/login", authController.OAuthRedirect)
	authGroup.GET("/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	feedGroup := api.Group("/feed")
	feedGroup.Use(middleware.RateLimitMiddleware())
	feedGroup.POST("/create-community", feedController.CreateCommunity)
	feedGroup.POST("/find-communities", feedController.FindCommunities)
	feedGroup.POST("/create-post", feedController.CreatePost)
	feedGroup.POST("/find-posts", feedController.FindPosts)
	feedGroup.POST("/posts/:id/upvote", feedController.UpvotePost)

	profileGroup := api.Group("/profile")
	profileGroup.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	profileGroup.PUT("/interests", profileController.SaveInterests)
	profileGroup.GET("/interests", profileController.GetInterests)
	profileGroup.PUT("/experiences", profileController.SaveExperiences)
	profileGroup.GET("/experiences", profileController.GetExperiences)

	examGroup := api.Group("/exam")
	examGroup.Use(middleware.RateLimitMiddleware())
	examGroup.POST("/questions", examController.Questions)
	examGroup.POST("/verdict", examController.Verdict)
	examGroup.POST("/rank", examController.Rank)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
