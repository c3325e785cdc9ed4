package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/badyy8/Ardiin-erh/internal/amqp"
	"github.com/badyy8/Ardiin-erh/internal/loader"
	applog "github.com/badyy8/Ardiin-erh/internal/log"
	"github.com/badyy8/Ardiin-erh/internal/storage"
)

// LoadService runs one ingest: read raw rows from the configured source,
// prepare them, replace the stored dataset and announce the refresh.
type LoadService struct {
	source       loader.Source
	repo         *storage.SQLiteRepository
	amqpClient   *amqp.Client
	showProgress bool
	logger       *applog.StructuredLogger
}

func NewLoadService(source loader.Source, repo *storage.SQLiteRepository, amqpClient *amqp.Client, showProgress bool) *LoadService {
	return &LoadService{
		source:       source,
		repo:         repo,
		amqpClient:   amqpClient,
		showProgress: showProgress,
		logger:       applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLoader)),
	}
}

// Run executes the full ingest pipeline and returns the preparation stats.
func (s *LoadService) Run(ctx context.Context) (loader.Stats, error) {
	raws, err := s.source.ReadTransactions(ctx)
	if err != nil {
		return loader.Stats{}, fmt.Errorf("read source: %w", err)
	}

	txns, stats := loader.Prepare(ctx, raws, s.showProgress)

	runStats := storage.RunStats{
		LoadedAt:        time.Now(),
		RawRows:         stats.RawRows,
		DroppedTestRows: stats.DroppedTestRows,
		DroppedBadDates: stats.DroppedBadDates,
		Retained:        stats.Retained,
	}
	if err := s.repo.ReplaceTransactions(ctx, txns, runStats); err != nil {
		return stats, fmt.Errorf("store dataset: %w", err)
	}

	s.logger.LogDatasetLoaded(ctx, stats.Retained, stats.Years)

	if err := s.publishRefresh(ctx, stats); err != nil {
		s.logger.LogError(ctx, "Failed to publish refresh message", err,
			applog.ComponentAMQP, applog.OpRefresh, applog.NewFields())
		// The dataset is stored; a missed notification only delays
		// downstream rebuilds until their next cold read.
	}

	return stats, nil
}

// LoadLookup reads the loyalty-code description table and stores it.
func (s *LoadService) LoadLookup(ctx context.Context, path string) error {
	lookup, err := loader.ReadLookupCSV(path)
	if err != nil {
		return fmt.Errorf("read lookup: %w", err)
	}
	if err := s.repo.ReplaceLookup(ctx, lookup); err != nil {
		return fmt.Errorf("store lookup: %w", err)
	}
	slog.InfoContext(ctx, "Code lookup loaded", "codes", len(lookup))
	return nil
}

func (s *LoadService) publishRefresh(ctx context.Context, stats loader.Stats) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping refresh message")
		return nil
	}
	return s.amqpClient.PublishDatasetRefresh(ctx, stats.Retained, stats.Years)
}
