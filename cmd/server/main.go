package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"immortal-stories/internal/cloud"
	"immortal-stories/internal/config"
	"immortal-stories/internal/generator"
	"immortal-stories/internal/gist"
	"immortal-stories/internal/github"
	"immortal-stories/internal/handler"
	"immortal-stories/internal/logger"
	appMiddleware "immortal-stories/internal/middleware"
	"immortal-stories/internal/service"
	"immortal-stories/internal/session"
	"immortal-stories/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional in production
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// --- Local storage ---
	blobs, err := setupBlobstore(cfg, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize local storage", zap.Error(err))
	}
	storyStore := storage.NewStoryStore(blobs, log)

	// --- Session ---
	sess := session.NewManager(blobs, log)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
	sess.Load(loadCtx)
	loadCancel()
	zap.L().Info("Session state loaded", zap.Bool("authenticated", sess.IsAuthenticated()))

	// --- Collaborator clients ---
	oauthClient := github.NewOAuthClient(cfg.GitHubOAuthBaseURL, cfg.GitHubAPIBaseURL, cfg.GitHubClientID, cfg.GitHubClientSecret, log)
	gistClient := gist.NewClient(cfg.GitHubAPIBaseURL, sess, log)

	var genClient *generator.Client
	if cfg.GenerationEnabled() {
		genClient = generator.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.GenerationTimeout, log)
		zap.L().Info("Generation client initialized", zap.String("model", cfg.OpenAIModel))
	} else {
		zap.L().Warn("OPENAI_API_KEY not set, generation endpoints disabled")
	}

	var cloudClient *cloud.Client
	if cfg.SupabaseEnabled() {
		cloudClient, err = cloud.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to Supabase", zap.Error(err))
		}
		zap.L().Info("Connected to Supabase")
	} else {
		zap.L().Warn("Supabase not configured, cloud endpoints disabled")
	}

	// --- Dependency injection ---
	var narrator service.Narrator
	if genClient != nil {
		narrator = genClient
	}
	storySvc := service.NewStoryService(storyStore, gistClient, sess, narrator, log)
	apiHandler := handler.New(storySvc, sess, oauthClient, gistClient, cloudClient, genClient)

	// --- HTTP server setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(appMiddleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORS_ALLOWED_ORIGINS not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	apiHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupBlobstore builds the configured local storage backend.
func setupBlobstore(cfg *config.Config, log *zap.Logger) (storage.Blobstore, error) {
	if cfg.StorageBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()
		if _, err := client.Ping(pingCtx).Result(); err != nil {
			client.Close()
			return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.RedisAddr, err)
		}
		zap.L().Info("Connected to Redis", zap.String("address", cfg.RedisAddr))
		return storage.NewRedisBlobstore(client, log), nil
	}

	zap.L().Info("Using file storage", zap.String("dataDir", cfg.DataDir))
	return storage.NewFileBlobstore(cfg.DataDir, log)
}
