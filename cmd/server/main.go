package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"autofill-api/internal/cache"
	"autofill-api/internal/config"
	"autofill-api/internal/logger"
	"autofill-api/internal/repository"
	"autofill-api/internal/service"
	"autofill-api/internal/store"
	"autofill-api/internal/transport/rest"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// AI config
	aiConfig := config.DefaultAIConfig()
	log.Info("AI config",
		"model", aiConfig.Model,
		"enabled", aiConfig.IsEnabled())
	if !aiConfig.IsEnabled() {
		log.Warn("GEMINI_API_KEY not set, using mock predictor")
	}

	// Postgres connection
	pool, err := store.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", "error", err)
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("failed to ensure schema", "error", err)
	}

	// Redis connection. The cache is an optimization; run without it if redis
	// is unreachable.
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	var patternCache cache.PatternCache
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Warn("redis unreachable, running without pattern cache", "error", err)
	} else {
		log.Info("connected to redis")
		patternCache = cache.NewPatternCache(rdb, cfg.GlobalCacheTTL)
	}

	// Initialize repositories
	patternRepo := repository.NewPatternRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	feedbackRepo := repository.NewFeedbackRepo(pool)

	// Initialize services
	matcherSvc := service.NewMatcherService(patternRepo, patternCache, cfg.FuzzyMatchThreshold, log)
	learnerSvc := service.NewLearnerService(cfg.LearnThreshold)
	patternSvc := service.NewPatternService(patternRepo, profileRepo, log)
	profileSvc := service.NewProfileService(profileRepo, log)
	statsSvc := service.NewStatsService(patternRepo, profileRepo, feedbackRepo, log)
	predictor := service.NewGeminiPredictor(aiConfig, log)
	autofillSvc := service.NewAutofillService(matcherSvc, learnerSvc, patternSvc, profileSvc, predictor, cfg.PatternMemoryConfidence, log)

	// Create router with container
	container := &rest.Container{
		AutofillService: autofillSvc,
		PatternService:  patternSvc,
		MatcherService:  matcherSvc,
		ProfileService:  profileSvc,
		StatsService:    statsSvc,
		APIKey:          cfg.APIKey,
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          log,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen and serve", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
