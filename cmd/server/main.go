// Package main runs the location-voting HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumen-studio/voting-backend/config"
	"github.com/lumen-studio/voting-backend/internal/middleware"
	"github.com/lumen-studio/voting-backend/internal/ratelimit"
	"github.com/lumen-studio/voting-backend/internal/stats"
	"github.com/lumen-studio/voting-backend/internal/votes"
	"github.com/lumen-studio/voting-backend/pkg/database"
	"github.com/lumen-studio/voting-backend/pkg/queue"
	"github.com/lumen-studio/voting-backend/pkg/redis"
	"github.com/lumen-studio/voting-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Votes
	voteRepo := votes.NewRepository(pool)
	if err := voteRepo.SeedLocations(ctx, votes.Catalog); err != nil {
		logger.Fatal("seed locations", zap.Error(err))
	}
	aggregator := votes.NewAggregator(voteRepo)
	cacheTTL := time.Duration(cfg.Poll.ResultsCacheTTLSec) * time.Second
	resultsCache := votes.NewResultsCache(rdb.Client, cacheTTL, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Rate limiting shares the vote store, so every API instance sees the
	// same budget.
	limiter := ratelimit.NewLimiter(
		ratelimit.NewPostgresStore(pool),
		cfg.Poll.RateLimitMax,
		time.Duration(cfg.Poll.RateLimitWindowSec)*time.Second,
	)

	voteHandler := votes.NewHandler(limiter, voteRepo, aggregator, resultsCache, jobQueue,
		cfg.Poll.IdentitySalt, cfg.Poll.ResultsCacheTTLSec, logger)

	// Stats
	statsRepo := stats.NewRepository(pool)
	statsHandler := stats.NewHandler(statsRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	votesGroup := router.Group("/votes")
	{
		votesGroup.POST("/submit", voteHandler.Submit)
		votesGroup.GET("/results", voteHandler.Results)
		votesGroup.GET("/stats/daily", statsHandler.Daily)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
