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

	"github.com/Dosada05/u13-football/config"
	"github.com/Dosada05/u13-football/db"
	"github.com/Dosada05/u13-football/handlers"
	"github.com/Dosada05/u13-football/middleware"
	"github.com/Dosada05/u13-football/repositories"
	api "github.com/Dosada05/u13-football/routes"
	"github.com/Dosada05/u13-football/services"
	"github.com/Dosada05/u13-football/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title                       U13 Football API
// @version                     1.0
// @description                 Клубы, команды, игроки, турниры и матчи детского футбола.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	handlers.SetLogger(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	if cfg.MigrateOnStart {
		version, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
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

	// Хранилище файлов необязательно: без него загрузки отклоняются
	var uploader storage.FileUploader
	if cfg.Storage.Enabled() {
		uploader, err = storage.NewS3Uploader(context.Background(), storage.S3UploaderConfig{
			AccountID:       cfg.Storage.AccountID,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			Endpoint:        cfg.Storage.Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize file storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("file storage initialized", slog.String("bucket", cfg.Storage.BucketName))
	} else {
		logger.Warn("file storage is not configured, uploads are disabled")
	}

	// Инициализация репозиториев
	txManager := repositories.NewTxManager(dbConn, logger)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	phaseRepo := repositories.NewPostgresPhaseRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	tournamentMatchRepo := repositories.NewPostgresTournamentMatchRepository(dbConn)
	globalMatchRepo := repositories.NewPostgresGlobalMatchRepository(dbConn)
	lineupRepo := repositories.NewPostgresLineupRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	statisticsRepo := repositories.NewPostgresStatisticsRepository(dbConn)
	reportRepo := repositories.NewPostgresReportRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	principalLoader := services.NewPrincipalLoader(userRepo)
	synchronizer := services.NewMatchSynchronizer(globalMatchRepo)

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader, logger)
	clubService := services.NewClubService(clubRepo, uploader, logger)
	teamService := services.NewTeamService(txManager, teamRepo, clubRepo, logger)
	playerService := services.NewPlayerService(txManager, playerRepo, teamRepo, lineupRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, groupRepo, tournamentMatchRepo, uploader, logger)
	groupService := services.NewGroupService(tournamentRepo, groupRepo, phaseRepo, teamRepo, tournamentMatchRepo)
	registrationService := services.NewRegistrationService(txManager, tournamentRepo, teamRepo, groupRepo, registrationRepo, logger)
	tournamentMatchService := services.NewTournamentMatchService(
		txManager,
		tournamentRepo,
		groupRepo,
		phaseRepo,
		tournamentMatchRepo,
		teamRepo,
		playerRepo,
		lineupRepo,
		synchronizer,
		logger,
	)
	matchService := services.NewMatchService(txManager, globalMatchRepo, teamRepo, playerRepo, lineupRepo, logger)
	eventService := services.NewMatchEventService(txManager, globalMatchRepo, eventRepo, teamRepo, playerRepo, lineupRepo, logger)
	lineupService := services.NewLineupService(txManager, globalMatchRepo, teamRepo, playerRepo, lineupRepo, logger)
	reportService := services.NewMatchReportService(globalMatchRepo, statisticsRepo, reportRepo, logger)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	routeHandlers := api.Handlers{
		Auth:            handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.JWTTTL),
		User:            handlers.NewUserHandler(userService),
		Club:            handlers.NewClubHandler(clubService),
		Team:            handlers.NewTeamHandler(teamService),
		Player:          handlers.NewPlayerHandler(playerService),
		Tournament:      handlers.NewTournamentHandler(tournamentService),
		Group:           handlers.NewGroupHandler(groupService),
		Registration:    handlers.NewRegistrationHandler(registrationService),
		TournamentMatch: handlers.NewTournamentMatchHandler(tournamentMatchService),
		Match:           handlers.NewMatchHandler(matchService),
		MatchDetail:     handlers.NewMatchDetailHandler(eventService, lineupService, reportService),
	}
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, principalLoader, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, routeHandlers, authenticator, cfg.CORSAllowedOrigins, logger)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
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
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
