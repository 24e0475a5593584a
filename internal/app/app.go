package app

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"brainbin/internal/config"
	"brainbin/internal/email"
	"brainbin/internal/embedding"
	"brainbin/internal/handlers"
	"brainbin/internal/llm"
	"brainbin/internal/logger"
	"brainbin/internal/models"
	"brainbin/internal/ratelimit"
	"brainbin/internal/repositories"
	"brainbin/internal/routes"
	"brainbin/internal/services"
	"brainbin/internal/storage"
	"brainbin/internal/workers"
)

// Run wires the whole service together and blocks until shutdown. Any
// failure before the listener is up exits the process with a non-zero
// status; in particular the service never starts without a verified
// embedding model.
func Run() {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	log := logger.GetLogger()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Document{},
		&models.DocumentChunk{},
		&models.ChatHistory{},
		&models.WaitlistEntry{},
	); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	model, err := embedding.Load()
	if err != nil {
		logger.Fatal("Failed to load embedding model", "error", err)
	}
	inference := services.NewInference(model, cfg)

	store, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	var answerer llm.Answerer
	if cfg.LLM.APIKey != "" && cfg.LLM.BaseURL != "" {
		answerer = llm.NewClient(cfg)
		log.Info("Answer generation via completion provider", "model", cfg.LLM.Model)
	} else {
		answerer = llm.NewExtractiveAnswerer()
		log.Warn("No completion provider configured, using extractive answerer")
	}

	limiter := ratelimit.NewLimiter()
	limiter.SetCompletionLimit(cfg.LLM.GlobalPerMin)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := workers.NewTaskQueue(ctx, cfg.Ingest.Workers)
	go workers.NewCleanupWorker(repositories.NewUserRepository(db)).Start(ctx)

	appHandlers := handlers.NewAppHandlers(handlers.Deps{
		Inference: inference,
		Store:     store,
		Answerer:  answerer,
		Mailer:    email.NewProvider(cfg),
		Queue:     queue,
		Limiter:   limiter,
		Cfg:       cfg,
	})

	router := routes.Setup(appHandlers, db)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}

	queue.Wait()
	log.Info("Server stopped")
}
