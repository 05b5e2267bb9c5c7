package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"authgate/internal/config"
	"authgate/internal/db"
	apihttp "authgate/internal/http"
	"authgate/internal/oauth"
	"authgate/internal/repository"
	"authgate/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	tokenSvc, err := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	if err != nil {
		logger.Fatal("jwt config", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	policy := service.NewAccessPolicy(cfg.AllowedDomains, cfg.AllowedEmails)
	userSvc := service.NewUserService(logger, userRepo, sessionRepo, policy)

	var providers []oauth.Provider
	if cfg.OAuthClientID != "" {
		msProvider, err := oauth.NewMicrosoftProvider(oauth.MicrosoftConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Tenant:       cfg.OAuthTenant,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       cfg.OAuthScopes,
		})
		if err != nil {
			logger.Fatal("oauth provider init", zap.Error(err))
		}
		providers = append(providers, msProvider)
	} else {
		logger.Warn("no oauth provider configured; only sso-login is available")
	}
	registry := oauth.NewRegistry(providers...)

	var counters service.CounterStore = service.NewMemoryCounterStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			counters = service.NewRedisCounterStore(redisClient)
		}
		cancel()
	}

	authHandler := apihttp.NewAuthHandler(logger, registry, tokenSvc, userSvc, cfg)
	adminHandler := apihttp.NewAdminHandler(logger, userSvc)
	router := apihttp.NewRouter(logger, cfg, authHandler, adminHandler, tokenSvc, userSvc, counters)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("base_path", cfg.BasePath))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
