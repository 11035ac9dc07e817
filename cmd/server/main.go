package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/ai"
	"github.com/askforge/askforge/internal/api"
	"github.com/askforge/askforge/internal/cache"
	"github.com/askforge/askforge/internal/config"
	"github.com/askforge/askforge/internal/db"
	"github.com/askforge/askforge/internal/hub"
	"github.com/askforge/askforge/internal/middleware"
	"github.com/askforge/askforge/internal/observ"
	"github.com/askforge/askforge/internal/repository/postgres"
	"github.com/askforge/askforge/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ---------------------------------------------------------------
	// 3. Connect to Postgres
	//
	// Background() here, not a request context: startup has no parent
	// deadline, it takes as long as the connection takes.
	// ---------------------------------------------------------------
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	// ---------------------------------------------------------------
	// 4. Optional Redis cache for the hot list endpoints.
	// The forum runs fine without it; listings just always hit the DB.
	// ---------------------------------------------------------------
	var listCache *cache.Cache
	if cfg.RedisURL != "" {
		listCache, err = cache.New(context.Background(), cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer listCache.Close()
	}

	// ---------------------------------------------------------------
	// 5. Repositories, AI assistant, services
	// ---------------------------------------------------------------
	pool := database.Pool()
	userRepo := postgres.NewUserStore(pool)
	channelRepo := postgres.NewChannelStore(pool)
	postRepo := postgres.NewPostStore(pool)
	commentRepo := postgres.NewCommentStore(pool)

	assistant := ai.NewOpenAIAssistant(cfg.OpenAIKey, cfg.AIModel, cfg.AITimeout)
	events := hub.New()

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger)
	forumService := service.NewForumService(
		channelRepo, postRepo, commentRepo,
		assistant, listCache, events, logger,
	)

	// Idempotent bootstrap: ensure the configured seed admin exists.
	// A replica racing us to the insert is fine; so is no config at all.
	if err := authService.EnsureSeedAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure seed admin: %w", err)
	}

	// ---------------------------------------------------------------
	// 6. Handlers and routes
	// ---------------------------------------------------------------
	authHandler := api.NewAuthHandler(authService, logger)
	channelHandler := api.NewChannelHandler(forumService, logger)
	postHandler := api.NewPostHandler(forumService, logger)
	commentHandler := api.NewCommentHandler(forumService, logger)
	aiHandler := api.NewAIHandler(forumService, logger)
	feedHandler := api.NewFeedHandler(forumService, events, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	// Health stays public so load balancers can probe it.
	srv.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth surface.
	srv.POST("/register", authHandler.Register)
	srv.POST("/login", authHandler.Login)
	srv.GET("/auth/check-username", authHandler.CheckUsername)

	authed := middleware.AuthMiddleware(cfg.JWTSecret)
	srv.POST("/auth/create-admin", authed, middleware.RequireAdmin(), authHandler.CreateAdmin)

	// Forum reads are public; mutations require a token. The service
	// re-checks role and ownership on every mutation regardless of
	// route wiring.
	forums := srv.Group("/forums")
	{
		forums.GET("/channels", channelHandler.List)
		forums.GET("/channels/:id", channelHandler.GetByID)
		forums.GET("/channels/:id/posts", channelHandler.ListPosts)
		forums.POST("/channels", authed, middleware.RequireAdmin(), channelHandler.Create)

		forums.GET("/posts", postHandler.List)
		forums.GET("/posts/:id", postHandler.GetByID)
		forums.GET("/posts/:id/live", feedHandler.Live)
		forums.POST("/posts", authed, postHandler.Create)
		forums.PATCH("/posts/:id/resolve", authed, postHandler.Resolve)
		forums.POST("/posts/:id/ai-help", authed, postHandler.AiHelp)

		forums.POST("/comments", authed, commentHandler.Create)
		forums.PATCH("/comments/:id/accept", authed, commentHandler.Accept)
	}

	srv.GET("/ai/string", authed, aiHandler.GenerateString)

	logger.Info("starting askforge",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
