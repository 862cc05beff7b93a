package meteoblue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/skywatch/satpass/internal/domain"
)

// Forecaster is the fetch side of the weather join.
type Forecaster interface {
	HourlyForecast(ctx context.Context) ([]domain.WeatherSample, error)
}

// DailyCache wraps a Forecaster with a one-snapshot-per-UTC-day disk cache.
// A snapshot file for "today" suppresses refetching unless a refresh is
// forced; after a fetch the snapshot is written for the rest of the day.
type DailyCache struct {
	inner  Forecaster
	dir    string
	force  bool
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewDailyCache creates the cache decorator. force bypasses an existing
// same-day snapshot.
func NewDailyCache(inner Forecaster, dir string, force bool, clock clockwork.Clock, logger *slog.Logger) *DailyCache {
	return &DailyCache{
		inner:  inner,
		dir:    dir,
		force:  force,
		clock:  clock,
		logger: logger,
	}
}

// HourlyForecast returns today's cached snapshot when present, fetching
// and persisting one otherwise.
func (c *DailyCache) HourlyForecast(ctx context.Context) ([]domain.WeatherSample, error) {
	path := c.snapshotPath()

	if !c.force {
		if samples, err := readSnapshot(path); err == nil {
			c.logger.Info("using cached weather snapshot", "path", path, "hours", len(samples))
			return samples, nil
		}
	}

	samples, err := c.inner.HourlyForecast(ctx)
	if err != nil {
		return nil, err
	}

	if err := writeSnapshot(path, samples); err != nil {
		// A failed snapshot write only costs an extra fetch tomorrow.
		c.logger.Warn("could not write weather snapshot", "path", path, "error", err)
	}
	return samples, nil
}

func (c *DailyCache) snapshotPath() string {
	day := c.clock.Now().UTC().Format("2006-01-02")
	return filepath.Join(c.dir, fmt.Sprintf("meteoblue_%s.json", day))
}

func readSnapshot(path string) ([]domain.WeatherSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples []domain.WeatherSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return samples, nil
}

func writeSnapshot(path string, samples []domain.WeatherSample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
