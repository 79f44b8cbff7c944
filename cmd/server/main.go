// Package main starts the skill-share marketplace server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Umary15/student-skill-share/internal/alerts"
	"github.com/Umary15/student-skill-share/internal/auth"
	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/config"
	"github.com/Umary15/student-skill-share/internal/db"
	"github.com/Umary15/student-skill-share/internal/marketplace"
	"github.com/Umary15/student-skill-share/internal/middleware"
	"github.com/Umary15/student-skill-share/internal/profile"
	"github.com/Umary15/student-skill-share/internal/realtime"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer pool.Close()

	queryCache := cache.New(cfg.CacheTTL)
	hub := realtime.NewHub(logger)

	notificationStore := alerts.NewPGStore(pool)
	notifier := alerts.New(cfg.RedisAddr, notificationStore, hub, logger)
	defer notifier.Close()

	store := marketplace.NewStore(pool)
	dispatcher := realtime.NewDispatcher(notifier, queryCache, store, cfg.ToastDedupWindow, logger)
	listener := realtime.NewListener(cfg.DatabaseURI, dispatcher, logger)

	marketHandler := marketplace.NewHandler(store, queryCache, logger, cfg.PaymentWebhookSecret)
	authHandler := auth.NewHandler(pool, cfg.JWTSecret, logger)
	profileHandler := profile.NewHandler(pool, logger)
	alertHandler := alerts.NewHandler(notificationStore, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	// Public routes
	authGroup := e.Group("/auth")
	authGroup.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(10)))
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)

	e.GET("/gigs", marketHandler.ListGigs)
	e.GET("/gigs/:id", marketHandler.GetGig)
	e.GET("/gigs/:id/ratings", marketHandler.ListRatings)
	e.GET("/users/:id/profile", profileHandler.GetPublicProfile)
	e.POST("/webhooks/payment", marketHandler.PaymentWebhook)

	// Authenticated routes
	api := e.Group("", middleware.JWTAuth(cfg.JWTSecret))
	api.GET("/auth/me", authHandler.Me)
	api.PATCH("/profile", profileHandler.UpdateProfile)

	api.POST("/gigs", marketHandler.CreateGig)
	api.GET("/gigs/me", marketHandler.MyGigs)
	api.PATCH("/gigs/:id", marketHandler.UpdateGig)
	api.DELETE("/gigs/:id", marketHandler.DeleteGig)

	api.POST("/orders", marketHandler.CreateOrder)
	api.GET("/orders", marketHandler.ListOrders)
	api.POST("/orders/:id/deliver", marketHandler.DeliverOrder)
	api.POST("/orders/:id/cancel", marketHandler.CancelOrder)
	api.POST("/orders/:id/rating", marketHandler.CreateRating)

	api.GET("/ws", hub.Serve)
	api.GET("/notifications", alertHandler.ListNotifications)
	api.POST("/notifications/:id/read", alertHandler.MarkNotificationRead)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: e,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listener.Run(ctx)
	})

	g.Go(func() error {
		sugar.Infow("starting server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
