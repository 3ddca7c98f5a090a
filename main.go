package main

import (
	"time"

	"github.com/trajecta/trajecta/config"
	"github.com/trajecta/trajecta/models"
	"github.com/trajecta/trajecta/quiz"
	"github.com/trajecta/trajecta/repository"
	"github.com/trajecta/trajecta/routes"
	"github.com/trajecta/trajecta/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// db is nil when no credentials are configured; repositories then run in
	// degraded mode and the quiz proxy stays available.
	db := config.InitDatabase(&models.User{}, &models.Forum{}, &models.Post{}, &models.Experience{})
	repos := repository.New(db)

	runner := quiz.NewRunner(quiz.Config{
		Interpreter: cfg.QuizInterpreter,
		ScriptPath:  cfg.QuizScriptPath,
		Workers:     cfg.QuizWorkers,
		Timeout:     time.Duration(cfg.QuizTimeoutSec) * time.Second,
	}, utils.Sugar)
	runner.Start()
	defer runner.Stop()

	r := routes.SetupRouter(repos, runner)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
