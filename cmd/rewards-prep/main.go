package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/badyy8/Ardiin-erh/internal/amqp"
	"github.com/badyy8/Ardiin-erh/internal/cli"
	"github.com/badyy8/Ardiin-erh/internal/loader"
	"github.com/badyy8/Ardiin-erh/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	var source loader.Source
	switch cfg.Source {
	case "mysql":
		db, err := loader.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			logger.Error("Failed to connect to MySQL", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		source = &loader.MySQLSource{DB: db, Table: cfg.MySQLTable}
		logger.Info("Reading journal from MySQL", "table", cfg.MySQLTable)
	default:
		source = &loader.CSVSource{Path: cfg.SourceCSVPath}
		logger.Info("Reading journal from CSV", "path", cfg.SourceCSVPath)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional: without it the load still lands in SQLite, the
	// server just will not hear about it until its cache expires.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - dataset refresh events will not be published")
	}

	svc := services.NewLoadService(source, repo, amqpClient, true)

	if cfg.LookupCSVPath != "" {
		if err := svc.LoadLookup(ctx, cfg.LookupCSVPath); err != nil {
			logger.Error("Failed to load code lookup", "error", err, "path", cfg.LookupCSVPath)
			os.Exit(1)
		}
	}

	stats, err := svc.Run(ctx)
	if err != nil {
		logger.Error("Dataset load failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Dataset load complete",
		"raw_rows", stats.RawRows,
		"dropped_test_rows", stats.DroppedTestRows,
		"dropped_bad_dates", stats.DroppedBadDates,
		"retained", stats.Retained,
		"years", stats.Years)
}
