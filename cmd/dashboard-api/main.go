package main

import (
	"fmt"
	"os"

	"dashboard-api/internal/auth"
	"dashboard-api/internal/config"
	"dashboard-api/internal/db"
	httphandler "dashboard-api/internal/http"
	"dashboard-api/internal/http/middleware"
	"dashboard-api/internal/logger"
	"dashboard-api/internal/repository"
	"dashboard-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	snapshotRepo := repository.NewSnapshotRepository(database)
	reportService := service.NewReportService(
		snapshotRepo,
		appLogger,
		cfg.Reports.DefaultTrendMonths,
		cfg.Reports.MaxTrendMonths,
		cfg.Reports.DefaultTopN,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(reportService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting dashboard api")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
