package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftline/draftline/internal/api"
	"github.com/draftline/draftline/internal/api/middleware"
	"github.com/draftline/draftline/internal/config"
	"github.com/draftline/draftline/internal/events"
	"github.com/draftline/draftline/internal/logger"
	"github.com/draftline/draftline/internal/progress"
	"github.com/draftline/draftline/internal/repository"
	"github.com/draftline/draftline/internal/scheduler"
	"github.com/draftline/draftline/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	itemRepo := repository.NewWorkItemRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize services
	generator := service.NewLLMClient(&service.LLMConfig{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	strategy := service.NewStrategy(cfg.Generate.Seed)
	tracker := progress.NewTracker()
	bus := events.NewBus()

	orchestrator := service.NewOrchestrator(
		projectRepo,
		itemRepo,
		recordRepo,
		jobRepo,
		generator,
		strategy,
		tracker,
		bus,
		appLogger,
		&service.OrchestratorConfig{
			Workers:     cfg.Generate.Workers,
			ItemTimeout: time.Duration(cfg.Generate.TimeoutSecs) * time.Second,
		},
	)
	approvals := service.NewApprovalService(recordRepo, appLogger)

	// Optional cron-triggered generation runs
	sched := scheduler.New(orchestrator, appLogger)
	for _, sc := range cfg.Schedules {
		if err := sched.Add(sc.Project, sc.Phase, sc.Cron); err != nil {
			appLogger.WithError(err).Fatalf("Invalid schedule: project=%s, phase=%s, cron=%q",
				sc.Project, sc.Phase, sc.Cron)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Setup router
	router := api.SetupRouter(api.RouterDeps{
		Orchestrator: orchestrator,
		Approvals:    approvals,
		Tracker:      tracker,
		Bus:          bus,
		Projects:     projectRepo,
		Items:        itemRepo,
		Jobs:         jobRepo,
		Logger:       appLogger,
		Mode:         cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
