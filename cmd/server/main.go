package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"learnpath/docs"
	"learnpath/internal/auth"
	"learnpath/internal/cache"
	"learnpath/internal/config"
	"learnpath/internal/db"
	"learnpath/internal/handler"
	"learnpath/internal/logger"
	"learnpath/internal/mail"
	"learnpath/internal/metrics"
	"learnpath/internal/repository"
	"learnpath/internal/router"
	"learnpath/internal/service"
)

// @title Learnpath Admin API
// @version 1.0
// @description Admin API for learning paths, their modules and the users who manage them.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	} else if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() {
		if err := cacheClient.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching and token revocation disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewWithRegistry(registry)

	var mailer mail.Mailer = mail.NewLogMailer(log)
	if cfg.SendgridAPIKey != "" {
		mailer = mail.NewSendgridMailer(cfg.SendgridAPIKey, cfg.AppName, cfg.MailFrom)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	moduleRepo := repository.NewModuleRepository(gormDB)
	pathRepo := repository.NewPathRepository(gormDB)
	tx := repository.NewTransactor(gormDB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	pathService := service.NewPathService(tx, pathRepo, moduleRepo, collector, log, cfg.StrictClone)
	moduleService := service.NewModuleService(tx, moduleRepo, cacheClient)
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer, service.PasswordResetConfig{
		URL: cfg.ResetURL,
		TTL: cfg.ResetTokenTTL,
	}, log)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Dependencies{
		JWTSecret:  jwtService.Secret(),
		TokenStore: tokenStore,
		Logger:     log,
		Metrics:    collector,
		Gatherer:   registry,
		Health: func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		},
	},
		handler.NewPathHandler(pathService),
		handler.NewModuleHandler(moduleService),
		handler.NewUserHandler(userService),
		handler.NewAuthHandler(authService),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Bool("strict_clone", cfg.StrictClone).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
