package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FaridaNelson/sp-server/internal/auth"
	"github.com/FaridaNelson/sp-server/internal/config"
	"github.com/FaridaNelson/sp-server/internal/db"
	internalhttp "github.com/FaridaNelson/sp-server/internal/http"
	"github.com/FaridaNelson/sp-server/internal/logging"
	"github.com/FaridaNelson/sp-server/internal/observability"
	"github.com/FaridaNelson/sp-server/internal/repository"
	"github.com/FaridaNelson/sp-server/internal/soundslice"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, closeLogger, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer closeLogger()

	closeSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer closeSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
	}

	store := repository.NewStore(pool)
	codec := auth.NewCodec(auth.Config{
		Secret:       cfg.JWTSecret,
		Issuer:       cfg.JWTIssuer,
		LifetimeDays: cfg.JWTDays,
	})
	sound := soundslice.New(soundslice.Config{
		AppID:          cfg.SoundsliceAppID,
		Password:       cfg.SoundslicePassword,
		DailyScorehash: cfg.SoundsliceScorehash,
	}, redisClient)

	server := internalhttp.NewServer(cfg, store, codec, sound, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("sp-server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}
