package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/badyy8/Ardiin-erh/internal/amqp"
	"github.com/badyy8/Ardiin-erh/internal/cache"
	"github.com/badyy8/Ardiin-erh/internal/cli"
	"github.com/badyy8/Ardiin-erh/internal/export"
	"github.com/badyy8/Ardiin-erh/internal/export/sheets"
	apphttp "github.com/badyy8/Ardiin-erh/internal/http"
	"github.com/badyy8/Ardiin-erh/internal/services"
	"github.com/badyy8/Ardiin-erh/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Bundle cache with periodic expiry cleanup
	bundles := cache.NewLRUCache[*services.YearBundle](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(bundles)
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	analytics := services.NewAnalyticsService(repo, bundles)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional monthly report export to Google Sheets
	var exporter export.ReportWriter
	if cfg.SheetsExportEnabled() {
		sheetsClient, err := sheets.NewFromConfig(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Optional dataset refresh consumer; without AMQP the server still works,
	// bundles just expire via TTL instead of being rebuilt on refresh events.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		refreshWorker := worker.NewRefreshWorker(analytics, exporter)
		go func() {
			err := amqpClient.ConsumeDatasetRefresh(ctx, func(msg *amqp.DatasetRefreshMessage) error {
				return refreshWorker.HandleRefreshMessage(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Dataset refresh consumption failed", "error", err)
			}
		}()
		logger.Info("Listening for dataset refresh events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - dataset refresh events will not be consumed")
	}

	srv := apphttp.NewServer(":"+cfg.Port, analytics)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting rewards server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
