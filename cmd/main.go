package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/niffitek/icke-scores/config"
	"github.com/niffitek/icke-scores/db"
	"github.com/niffitek/icke-scores/handlers"
	"github.com/niffitek/icke-scores/live"
	"github.com/niffitek/icke-scores/repositories"
	api "github.com/niffitek/icke-scores/routes"
	"github.com/niffitek/icke-scores/services"
	"github.com/niffitek/icke-scores/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader := storage.NewDisabledUploader()
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewR2Uploader(storage.R2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized")
	} else {
		logger.Warn("R2 not configured, logo uploads disabled")
	}

	hub := live.NewHub()
	go hub.Run()
	logger.Info("WebSocket hub started")

	cupRepo := repositories.NewPostgresCupRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	groupTeamRepo := repositories.NewPostgresGroupTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecretKey)
	cupService := services.NewCupService(cupRepo)
	teamService := services.NewTeamService(teamRepo, groupTeamRepo, uploader)
	groupService := services.NewGroupService(groupRepo, groupTeamRepo, teamRepo)
	matchService := services.NewMatchService(matchRepo, hub)
	standingsService := services.NewStandingsService(cupRepo, teamRepo, groupRepo, groupTeamRepo, matchRepo)
	transitionService := services.NewTransitionService(cupRepo, teamRepo, groupRepo, groupTeamRepo, matchRepo, hub, logger)
	logger.Info("services initialized")

	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Cup:        handlers.NewCupHandler(cupService),
		Team:       handlers.NewTeamHandler(teamService),
		Group:      handlers.NewGroupHandler(groupService),
		Match:      handlers.NewMatchHandler(matchService, teamService),
		Standings:  handlers.NewStandingsHandler(standingsService),
		Transition: handlers.NewTransitionHandler(transitionService),
		WebSocket:  handlers.NewWebSocketHandler(hub, logger),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shut down gracefully")
		}
	}
}
