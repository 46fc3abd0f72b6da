package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-relay/internal/archive"
	"support-relay/internal/bot"
	"support-relay/internal/config"
	"support-relay/internal/crash"
	"support-relay/internal/dedup"
	"support-relay/internal/handler"
	"support-relay/internal/logger"
	"support-relay/internal/relay"
	"support-relay/internal/service"
	"support-relay/internal/storage"
)

func main() {
	defer crash.RecoverWithStackAndExit("main")
	crash.SetupCrashHandler()

	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	if err := storage.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := storage.GetDB()
	defer storage.Close(db)

	svc := service.New(db, cfg)
	svc.InitRepositories()
	logger.Info("Database connection established and repositories initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filter, err := dedup.New(ctx, cfg.Dedup)
	if err != nil {
		log.Fatalf("Failed to set up update dedup: %v", err)
	}
	defer filter.Close()

	botService, server, err := bot.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	transport := bot.NewTransport(botService.Bot)
	sinks := archive.MultiSink{archive.NewTelegramSink(botService.Bot, cfg.Relay.ArchiveChatID, cfg.Bot.Language)}
	if cfg.Archive.COS.Enabled {
		cosSink, err := archive.NewCOSSink(cfg.Archive.COS)
		if err != nil {
			log.Fatalf("Failed to set up COS archive: %v", err)
		}
		sinks = append(sinks, cosSink)
		logger.Infof("Mirroring transcripts to %s", cfg.Archive.COS.BucketURL)
	}

	routing := relay.NewRouting(cfg.Relay.Admins.Table())
	archiver := relay.NewArchiver(svc, routing, transport, sinks, cfg.Relay.DeleteConcurrency, cfg.Bot.Language)
	router := relay.NewRouter(svc, routing, transport, archiver, relay.Options{
		Brand:    cfg.Bot.Brand,
		Language: cfg.Bot.Language,
	})

	handler.Initialize(cfg)
	handler.New(router, filter, botService.Username).SetupMessageHandlers(botService.Handler)

	if server != nil {
		server.SetStatusSource(handler.GetProcessingStats)
		crash.SafeGoroutine("http-server", func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalf("HTTP server error: %v", err)
			}
		})
		// Give server time to start
		time.Sleep(500 * time.Millisecond)
		logger.Info("HTTP server is ready, starting bot handler...")
	}

	stopStats := make(chan struct{})
	crash.SafeGoroutine("status-monitor", func() {
		handler.LogProcessingStats(5*time.Minute, stopStats)
	})
	crash.SafeGoroutine("bot-handler", botService.Start)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)
	close(stopStats)

	cancel()
	botService.Stop()

	logger.Info("Waiting for message handlers to complete...")
	done := make(chan struct{})
	go func() {
		handler.WaitForHandlers()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All message handlers completed")
	case <-time.After(30 * time.Second):
		logger.Warning("Timeout waiting for message handlers, proceeding with shutdown")
	}

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("HTTP server shutdown error: %v", err)
		}
	}

	logger.Info("Server gracefully stopped")
}
