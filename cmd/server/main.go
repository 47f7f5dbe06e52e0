package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/nats"
	"github.com/chatlens/chatlens/internal/parser"
	"github.com/chatlens/chatlens/internal/publisher"
	"github.com/chatlens/chatlens/internal/repository"
	"github.com/chatlens/chatlens/internal/tasks"
	"github.com/chatlens/chatlens/internal/web"
	"github.com/chatlens/chatlens/internal/web/handlers"
)

func main() {
	// 1. Load config
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "chatlens.yaml"
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Msg("starting chat export parsing service")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Open the task store
	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open task database")
	}
	tasksRepo := repository.NewTasksRepository(db)

	// 5. Connect to NATS (optional)
	var pub tasks.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := nats.New(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			pub = publisher.NewNATSPublisher(nc.Conn)
		}
	}

	// 6. Initialize pipeline, hub and task service
	hub := web.NewHub(log)
	pipeline := parser.NewPipeline(log)
	svc := tasks.NewService(tasksRepo, pipeline, pub, hub, web.TaskProgressEvent, log)

	// 7. Periodic cleanup of stale tasks
	if cfg.TaskRetentionHrs > 0 {
		retention := time.Duration(cfg.TaskRetentionHrs) * time.Hour
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					n, err := tasksRepo.DeleteOlderThan(ctx, retention)
					if err != nil {
						log.Warn().Err(err).Msg("task cleanup failed")
					} else if n > 0 {
						log.Info().Int64("removed", n).Msg("cleaned up old tasks")
					}
				}
			}
		}()
	}

	// 8. Initialize web handlers and server
	parseHandler := handlers.NewParseHandler(svc, cfg.MaxUploadBytes)
	tasksHandler := handlers.NewTasksHandler(tasksRepo)
	limiter := web.NewUploadLimiter(cfg.UploadRPS, cfg.UploadBurst)

	server := web.NewServer(web.Config{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
	}, parseHandler, tasksHandler, hub, limiter, log)

	// 9. Start server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// 10. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
