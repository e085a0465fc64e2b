package service

import (
	"context"
	"sync"
	"time"

	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/storage"

	"go.uber.org/zap"
)

// JanitorConfig holds configuration for the photo janitor.
type JanitorConfig struct {
	// Interval is how often a sweep runs. Default: 24 hours.
	Interval time.Duration

	// MinAge protects fresh uploads that have not been attached to an item
	// yet. Default: 24 hours.
	MinAge time.Duration
}

// PhotoJanitor periodically deletes stored photos that no inventory item
// references.
type PhotoJanitor struct {
	repo   repository.InventoryRepository
	store  storage.BlobStore
	config JanitorConfig
	logger *zap.Logger

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewPhotoJanitor creates a janitor. Zero config values get defaults.
func NewPhotoJanitor(repo repository.InventoryRepository, store storage.BlobStore, config JanitorConfig, logger *zap.Logger) *PhotoJanitor {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.MinAge <= 0 {
		config.MinAge = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PhotoJanitor{
		repo:   repo,
		store:  store,
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic sweeps. Calling Start twice is a no-op.
func (j *PhotoJanitor) Start() {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = true
	j.ticker = time.NewTicker(j.config.Interval)
	j.mu.Unlock()

	j.logger.Info("photo janitor started",
		zap.Duration("interval", j.config.Interval),
		zap.Duration("min_age", j.config.MinAge))

	go j.run()
}

func (j *PhotoJanitor) run() {
	for {
		select {
		case <-j.ticker.C:
			j.sweep()
		case <-j.stopCh:
			j.logger.Info("photo janitor stopped")
			return
		}
	}
}

func (j *PhotoJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := j.RunNow(ctx)
	if err != nil {
		j.logger.Error("photo sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("removed orphan photos", zap.Int("count", removed))
	}
}

// Stop stops the janitor.
func (j *PhotoJanitor) Stop() {
	j.stopOnce.Do(func() {
		j.mu.Lock()
		defer j.mu.Unlock()

		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.stopCh)
		j.isRunning = false
	})
}

// RunNow performs one sweep and returns how many photos were removed.
func (j *PhotoJanitor) RunNow(ctx context.Context) (int, error) {
	objects, err := j.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	items, err := j.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]bool, len(items))
	for _, item := range items {
		if item.PhotoURL == nil {
			continue
		}
		if name, ok := j.store.NameFromURL(*item.PhotoURL); ok {
			referenced[name] = true
		}
	}

	cutoff := time.Now().Add(-j.config.MinAge)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Name] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Delete(ctx, obj.Name); err != nil {
			j.logger.Warn("failed to remove orphan photo", zap.String("name", obj.Name), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
