package repository

import (
	"context"
	"fmt"
	"sync"

	"petcare-inventory-api/internal/model"
)

// MemoryInventoryRepository keeps items in process memory. Used for local
// runs and tests; nothing survives a restart.
type MemoryInventoryRepository struct {
	mu    sync.RWMutex
	items map[string]model.InventoryItem
	order []string
}

// NewMemoryInventoryRepository creates an empty in-memory repository.
func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{
		items: make(map[string]model.InventoryItem),
	}
}

// GetAll returns every item in insertion order.
func (r *MemoryInventoryRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.InventoryItem, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.items[id])
	}
	return items, nil
}

// GetByID returns the item with the given id, or nil.
func (r *MemoryInventoryRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// Search scans all items for a case-insensitive match.
func (r *MemoryInventoryRepository) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.InventoryItem, 0)
	for _, id := range r.order {
		item := r.items[id]
		if item.Matches(query) {
			items = append(items, item)
		}
	}
	return items, nil
}

// Exists reports whether id is stored.
func (r *MemoryInventoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

// Add stores a new item.
func (r *MemoryInventoryRepository) Add(ctx context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("failed to add item: id %s already stored", item.ID)
	}
	r.items[item.ID] = *item
	r.order = append(r.order, item.ID)
	return nil
}

// Update replaces a stored item.
func (r *MemoryInventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("failed to update item: id %s not found", item.ID)
	}
	r.items[item.ID] = *item
	return nil
}

// Delete removes an item. Deleting an unknown id is a no-op.
func (r *MemoryInventoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetStats returns the item count.
func (r *MemoryInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"total_items": int64(len(r.items)),
	}, nil
}

// Close is a no-op.
func (r *MemoryInventoryRepository) Close() error {
	return nil
}

var _ InventoryRepository = (*MemoryInventoryRepository)(nil)
