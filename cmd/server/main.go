package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riskids/riskids-betest/internal/cache"
	"github.com/riskids/riskids-betest/internal/config"
	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/internal/handler"
	"github.com/riskids/riskids-betest/internal/repository"
	"github.com/riskids/riskids-betest/internal/service"
	"github.com/riskids/riskids-betest/pkg/database"
	"github.com/riskids/riskids-betest/pkg/jwt"
	"github.com/riskids/riskids-betest/pkg/log"
	"github.com/riskids/riskids-betest/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log.Init(cfg.Log)
	logger := log.L()

	// Database connection is process-wide: opened once here, shared by all
	// requests, closed on shutdown.
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db, &domain.UserModel{}, &domain.AccountLoginModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	userRepo := repository.NewGormUserRepository(db)

	// The cache connects in the background; an unreachable redis leaves the
	// service fully functional, just uncached.
	userCache := cache.NewRedisUserCache(cfg.Redis, cfg.Cache.TTL())

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Log.ServiceName)

	userService := service.NewUserService(userRepo, userCache, cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, tokens)

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	httpHandler := handler.NewHandler(userService, authService, authMiddleware)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(log.GinMiddleware(logger), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	httpHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("db_driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	if err := userCache.Close(); err != nil {
		logger.Error().Err(err).Msg("cache close failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error().Err(err).Msg("database close failed")
		}
	}

	logger.Info().Msg("server stopped")
}
