package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pinboard-api/config"
	"pinboard-api/handlers"
	"pinboard-api/helper"
	"pinboard-api/media"
	"pinboard-api/repositories"
	"pinboard-api/services"
	"pinboard-api/tasks"
	"pinboard-api/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.MigrateDB(db); err != nil {
		log.Fatal(err)
	}

	gateway, err := media.NewCloudinaryGateway(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, log)
	if err != nil {
		log.Fatal(err)
	}

	// Asset cleanup runs through asynq when Redis is configured, inline otherwise
	var (
		cleaner   services.AssetCleaner
		jobClient *asynq.Client
		jobServer *worker.Server
	)
	if cfg.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		jobClient = asynq.NewClient(redisOpt)
		cleaner = tasks.NewScheduler(jobClient, log)

		jobServer = worker.NewServer(redisOpt, gateway, log)
		if err := jobServer.Start(); err != nil {
			log.Fatalf("could not start worker server: %v", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, cleaning up assets inline")
		cleaner = media.NewInlineCleaner(gateway, log)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	postRepo := repositories.NewPostRepository(db, tagRepo)

	// Initialize services
	authService := services.NewAuthService(userRepo, gateway, cleaner, cfg.JWT, cfg.MediaAvatarFolder, log)
	postService := services.NewPostService(postRepo, userRepo, gateway, cleaner, cfg.MediaPostFolder, log)
	tagService := services.NewTagService(tagRepo)

	router := handlers.NewRouter(handlers.RouterDeps{
		AuthService:       authService,
		PostService:       postService,
		TagService:        tagService,
		Helper:            helper.NewHTTPHelper(log),
		Log:               log,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}

	if jobServer != nil {
		jobServer.Shutdown()
	}
	if jobClient != nil {
		if err := jobClient.Close(); err != nil {
			log.WithError(err).Warn("asynq client close error")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.WithFields(logrus.Fields{"port": cfg.Port}).Info("Server gracefully stopped")
}
