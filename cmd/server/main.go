package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/duetapp/duet-bot/internal/app"
	"github.com/duetapp/duet-bot/internal/cache"
	"github.com/duetapp/duet-bot/internal/config"
	"github.com/duetapp/duet-bot/internal/db"
	"github.com/duetapp/duet-bot/internal/logger"
	"github.com/duetapp/duet-bot/internal/messenger"
	"github.com/duetapp/duet-bot/internal/scheduler"
	"github.com/duetapp/duet-bot/internal/server"
	"github.com/duetapp/duet-bot/internal/service/conversation"
)

func main() {
	// .env is optional; environment variables alone are fine
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Missing platform secrets degrade sends/verification but are not fatal.
	if cfg.Messenger.PageAccessToken == "" {
		log.Warn("PAGE_ACCESS_TOKEN is not set; outbound sends will fail")
	}
	if cfg.Messenger.AppSecret == "" {
		log.Warn("APP_SECRET is not set; webhook signatures cannot be verified")
	}

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.Env == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	client := messenger.NewClient(cfg.Messenger.APIBaseURL, cfg.Messenger.PageAccessToken)
	timer := scheduler.NewSimpleTimer()
	engine := conversation.NewService(appCtx, client, timer)
	handler := server.NewHandler(appCtx, cfg, engine)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      server.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting webhook server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Pending paced follow-ups are deliberately dropped.
	timer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
		return
	}
	log.Info("server exited gracefully")
}
