package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/millbrook/garage-vhc/internal/advisor"
	"github.com/millbrook/garage-vhc/internal/config"
	"github.com/millbrook/garage-vhc/internal/export"
	httpserver "github.com/millbrook/garage-vhc/internal/interfaces/http"
	"github.com/millbrook/garage-vhc/internal/partsdoc"
	"github.com/millbrook/garage-vhc/internal/repository"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/millbrook/garage-vhc/pkg/database"
	"github.com/millbrook/garage-vhc/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Garage VHC Service",
		zap.String("workshop", cfg.Workshop.Name),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Create necessary directories
	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export output directory", zap.Error(err))
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db.DB, logger)
	checksheetRepo := repository.NewChecksheetRepository(db.DB, logger)
	checkRepo := repository.NewVhcCheckRepository(db.DB, logger)
	aliasRepo := repository.NewAliasRepository(db.DB, logger)
	partsRepo := repository.NewPartsLineRepository(db.DB, logger)
	authorizedRepo := repository.NewAuthorizedItemRepository(db.DB, logger)

	labourRate := decimal.NewFromFloat(cfg.Workshop.LabourRate)
	snapshotRepo := repository.NewSnapshotRepository(db, labourRate, logger)

	// Initialize VHC engine
	vhcService := vhc.NewService(snapshotRepo, checkRepo, logger)

	// Initialize summary exporter
	exporter := export.NewSummaryExporter(
		cfg.Workshop.Name,
		cfg.Workshop.Currency,
		cfg.Export.OutputDir,
		logger,
	)

	// Optional OpenAI-backed features; nil when no API key is configured
	var summaryDrafter httpserver.SummaryDrafter
	var lineExtractor httpserver.LineExtractor
	if cfg.OpenAI.APIKey != "" {
		summaryDrafter = advisor.NewAdvisor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		lineExtractor = partsdoc.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.VisionModel, logger)
	} else {
		logger.Info("OpenAI API key not configured, advisor and parts extraction disabled")
	}

	// Initialize HTTP server
	handlers := httpserver.NewHandlers(
		vhcService,
		jobRepo,
		checksheetRepo,
		partsRepo,
		authorizedRepo,
		checkRepo,
		aliasRepo,
		exporter,
		summaryDrafter,
		lineExtractor,
		logger,
	)

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Logger.Level == "debug",
	}, handlers, logger)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
