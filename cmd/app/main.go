package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hamsterhub/internal/config"
	"hamsterhub/internal/db"
	"hamsterhub/internal/discord"
	"hamsterhub/internal/http/handlers"
	"hamsterhub/internal/http/middleware"
	"hamsterhub/internal/logger"
	"hamsterhub/internal/repository"
	"hamsterhub/internal/service"
	"hamsterhub/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	service.InitJWTWithSecret(cfg.JWTSecret)

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	if err := middleware.InitRedisRateLimiter(cfg.RedisURL); err != nil {
		logger.Warn("rate limiter disabled", "error", err)
	}

	notifier, err := discord.NewNotifier(cfg.DiscordBotToken, cfg.DiscordGuildID)
	if err != nil {
		logger.Warn("discord notifier disabled", "error", err)
	}
	defer notifier.Close()

	currency := service.NewCurrencyService(pool)
	gacha := service.NewGachaService(pool, currency)
	portfolio := service.NewPortfolioService(pool)
	board := service.NewHamsterboardService(pool, currency)

	memberRepo := repository.NewMemberRepository(pool)
	board.SetWinnerNotifyCallback(func(memberID int64, taskName string, reward int64) {
		if notifier == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		member, err := memberRepo.GetByID(ctx, memberID)
		if err != nil || member == nil {
			logger.Warn("winner lookup failed", "member_id", memberID, "error", err)
			return
		}
		notifier.NotifyReward(member.DiscordID, taskName, reward)
	})

	hub := ws.NewHub(cfg.RoomTTL)
	stopSweep := make(chan struct{})
	hub.StartCleanup(stopSweep)

	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(cfg, pool, currency, gacha, portfolio, board, hub, notifier)
	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	close(stopSweep)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
