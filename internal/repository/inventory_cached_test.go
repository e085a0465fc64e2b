package repository

import (
	"context"
	"testing"
	"time"

	"petcare-inventory-api/internal/cache"
	"petcare-inventory-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stallingRepository holds GetAll after its snapshot is taken until
// release is closed.
type stallingRepository struct {
	*MemoryInventoryRepository
	entered chan struct{}
	release chan struct{}
}

func newStallingRepository() *stallingRepository {
	return &stallingRepository{
		MemoryInventoryRepository: NewMemoryInventoryRepository(),
		entered:                   make(chan struct{}),
		release:                   make(chan struct{}),
	}
}

func (r *stallingRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := r.MemoryInventoryRepository.GetAll(ctx)
	select {
	case <-r.entered:
	default:
		close(r.entered)
		<-r.release
	}
	return items, err
}

func newStallingCached(t *testing.T) (*CachedInventoryRepository, *stallingRepository) {
	t.Helper()
	backend := newStallingRepository()
	c := cache.NewMemoryCache(0)
	t.Cleanup(func() { c.Close() })
	return NewCachedInventoryRepository(backend, c, time.Minute, zap.NewNop()), backend
}

func TestCachedDropsFillStartedBeforeWrite(t *testing.T) {
	ctx := context.Background()
	repo, backend := newStallingCached(t)

	done := make(chan []model.InventoryItem)
	go func() {
		items, err := repo.GetAll(ctx)
		assert.NoError(t, err)
		done <- items
	}()

	<-backend.entered
	require.NoError(t, repo.Add(ctx, newItem("a", "Flea Drops", "Medication", "VetPharm", time.Now())))
	close(backend.release)

	stale := <-done
	assert.Empty(t, stale)

	items, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Flea Drops", items[0].Name)
}

func TestCachedKeepsFillWithoutWrite(t *testing.T) {
	ctx := context.Background()
	repo, backend := newStallingCached(t)
	require.NoError(t, backend.MemoryInventoryRepository.Add(ctx, newItem("a", "Flea Drops", "Medication", "VetPharm", time.Now())))
	close(backend.release)

	_, err := repo.GetAll(ctx)
	require.NoError(t, err)

	raw, err := repo.cache.Get(ctx, cacheKeyAll)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSourceUnwrapsCache(t *testing.T) {
	repo, backend := newStallingCached(t)
	assert.Same(t, backend, Source(repo))

	mem := NewMemoryInventoryRepository()
	assert.Same(t, mem, Source(mem))
}
