package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/types"
	"github.com/MidhulKiruthik/Nova-sub000/pkg/logger"
)

const directoryPermission = 0o750

// ErrVerification is returned when the leaderboard does not match what was
// imported.
var ErrVerification = errors.New("leaderboard verification failed")

// Run generates partners, imports them in batches and verifies the
// leaderboard that comes back.
func Run(ctx context.Context, cfg Config, log logger.Logger) (Stats, error) {
	cfg = cfg.withDefaults()
	log = logger.OrNop(log)
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting nova seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("topN", cfg.TopN))

	client := NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	partners := NewGenerator(cfg.Seed, time.Now()).Generate(cfg.Count)
	stats.Generated = len(partners)

	for start := 0; start < len(partners); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(partners))
		rep, err := client.Import(ctx, partners[start:end])
		if err != nil {
			return stats, fmt.Errorf("import batch %d: %w", stats.Batches, err)
		}
		stats.Batches++
		stats.Imported += rep.Imported
		stats.Duplicates += rep.Duplicates
		log.Debug(ctx, "batch imported",
			logger.Int("batch", stats.Batches),
			logger.Int("imported", rep.Imported))
	}

	top, err := client.Top(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.Leaderboard = len(top)
	if err := verifyLeaderboard(top, partners, cfg.TopN, cfg.BatchSize); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := savePartners(cfg.OutputFile, partners); err != nil {
			log.Warn(ctx, "failed to save partners to file", logger.Error(err))
		} else {
			log.Info(ctx, "partners saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seed completed",
		logger.Int("generated", stats.Generated),
		logger.Int("imported", stats.Imported),
		logger.Int("batches", stats.Batches),
		logger.Int("leaderboard", stats.Leaderboard),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// verifyLeaderboard checks ordering and that every ranked partner was one of
// ours. Each import replaces the whole collection, so only the last batch is
// expected to be present.
func verifyLeaderboard(top []types.Entry, generated []model.Partner, n, batchSize int) error {
	if len(generated) == 0 {
		return nil
	}
	last := generated[(len(generated)-1)/batchSize*batchSize:]
	known := make(map[string]struct{}, len(last))
	for _, p := range last {
		known[p.ID] = struct{}{}
	}

	if want := min(n, len(last)); len(top) != want {
		return fmt.Errorf("%w: got %d entries, want %d", ErrVerification, len(top), want)
	}
	for i, e := range top {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrVerification, i, e.Rank)
		}
		if _, ok := known[e.PartnerID]; !ok {
			return fmt.Errorf("%w: unknown partner %s", ErrVerification, e.PartnerID)
		}
		if i > 0 && e.NovaScore > top[i-1].NovaScore {
			return fmt.Errorf("%w: entry %d outranks entry %d", ErrVerification, i, i-1)
		}
	}
	return nil
}

func savePartners(filename string, partners []model.Partner) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(partners, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal partners: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}
