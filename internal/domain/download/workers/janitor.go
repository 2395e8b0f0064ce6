// Package workers contains background workers for the download domain
package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/patt509/YT-Downloader/config"
	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
	"github.com/patt509/YT-Downloader/internal/domain/download/storage"
)

// Janitor removes temp files left behind by a crash or by a resolver that
// never returned. Operations clean up after themselves; this only catches
// what they could not.
type Janitor struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	metrics  deps.MetricsRecorder
	logger   zerolog.Logger
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewJanitor creates a new Janitor for the file store directory
func NewJanitor(cfg *config.DownloadConfig, store *storage.FileStore, metrics deps.MetricsRecorder, logger zerolog.Logger) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Janitor{
		dir:      store.Dir(),
		interval: cfg.JanitorInterval,
		maxAge:   cfg.JanitorMaxAge,
		metrics:  metrics,
		logger:   logger,
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start sweeps once and then on every tick
func (j *Janitor) Start() {
	j.logger.Info().
		Str("dir", j.dir).
		Dur("interval", j.interval).
		Dur("max_age", j.maxAge).
		Msg("Starting temp file janitor...")

	j.Sweep(time.Now())

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.ctx.Done():
				return
			case now := <-ticker.C:
				j.Sweep(now)
			}
		}
	}()
}

// Stop stops the janitor and waits for a running sweep
func (j *Janitor) Stop() {
	j.cancel()
	<-j.done
	j.logger.Info().Msg("Temp file janitor stopped")
}

// Sweep removes regular files older than maxAge and returns how many it removed
func (j *Janitor) Sweep(now time.Time) int {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		j.logger.Error().Err(err).Str("dir", j.dir).Msg("Failed to list temp dir")
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= j.maxAge {
			continue
		}

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.metrics.RecordCleanupError()
			j.logger.Error().Err(err).Str("path", path).Msg("Failed to remove stale temp file")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.Warn().Int("removed", removed).Msg("Removed stale temp files")
	}

	return removed
}
