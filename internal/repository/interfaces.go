package repository

import (
	"context"

	"petcare-inventory-api/internal/model"
)

// InventoryRepository defines inventory data access methods.
//
// Implementations do not enforce name uniqueness; the service layer owns
// the duplicate rule.
type InventoryRepository interface {
	// GetAll returns every item, oldest first.
	GetAll(ctx context.Context) ([]model.InventoryItem, error)

	// GetByID returns the item with the given id, or nil if there is none.
	GetByID(ctx context.Context, id string) (*model.InventoryItem, error)

	// Search returns items whose name, category or supplier contains query,
	// ignoring case.
	Search(ctx context.Context, query string) ([]model.InventoryItem, error)

	// Exists reports whether an item with the given id is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Add inserts a new item. The caller assigns the id.
	Add(ctx context.Context, item *model.InventoryItem) error

	// Update overwrites the stored item with the same id.
	Update(ctx context.Context, item *model.InventoryItem) error

	// Delete removes the item with the given id.
	Delete(ctx context.Context, id string) error

	// GetStats returns backend specific statistics.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// Uncacheable is implemented by decorators that can hand out the
// repository they wrap.
type Uncacheable interface {
	Uncached() InventoryRepository
}

// Source unwraps cache decorators and returns the repository that reads
// the backend directly.
func Source(repo InventoryRepository) InventoryRepository {
	for {
		u, ok := repo.(Uncacheable)
		if !ok {
			return repo
		}
		repo = u.Uncached()
	}
}
