package main

import (
	"context"
	"time"

	"github.com/ThreadsofDaemonS/aiblog/config"
	"github.com/ThreadsofDaemonS/aiblog/models"
	"github.com/ThreadsofDaemonS/aiblog/routes"
	"github.com/ThreadsofDaemonS/aiblog/services"
	"github.com/ThreadsofDaemonS/aiblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Comment{}, &models.PageView{})

	// The generative client is optional: without a key the moderation service
	// fails open and replies fall back to the canned acknowledgement.
	var gen services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel,
			time.Duration(cfg.AIRequestTimeoutSec)*time.Second)
		if err != nil {
			utils.Sugar.Warnf("gemini client init failed, running without remote AI: %v", err)
		} else {
			gen = client
		}
	} else {
		utils.Sugar.Warn("GEMINI_API_KEY not set, running without remote AI")
	}

	moderator := services.NewModerator(gen, cfg.ModerationBlacklist, utils.Sugar)
	replier := services.NewReplier(gen, utils.Sugar)

	scheduler := services.NewAutoReplyScheduler(db, replier, cfg.AutoReplyWorkers, cfg.AutoReplyQueueSize, utils.Sugar)
	scheduler.Start()
	defer scheduler.Shutdown()

	comments := services.NewCommentService(db, moderator, scheduler, utils.Sugar)

	r := routes.SetupRouter(db, moderator, comments)

	// Best-effort purge of old blocked comments
	utils.StartModerationSweeper(db, time.Hour)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
