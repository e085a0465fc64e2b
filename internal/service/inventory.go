package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petcare-inventory-api/internal/events"
	"petcare-inventory-api/internal/model"
	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/pkg/uid"

	"go.uber.org/zap"
)

// InventoryService handles inventory business logic: the duplicate name
// rule, wholesale updates and delete preconditions.
//
// The duplicate check and the following write are separate repository
// calls, so two concurrent requests with the same name can both succeed.
type InventoryService struct {
	repo repository.InventoryRepository
	// source bypasses any read cache; the duplicate check reads it.
	source    repository.InventoryRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency). A nil publisher
// falls back to logging events.
func NewInventoryService(repo repository.InventoryRepository, publisher events.Publisher, logger *zap.Logger) *InventoryService {
	if repo == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}
	return &InventoryService{
		repo:      repo,
		source:    repository.Source(repo),
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every item in repository order.
func (s *InventoryService) ListAll(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// GetByID returns the item, or nil when it does not exist.
func (s *InventoryService) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

// Search returns items whose name, category or supplier contains query,
// ignoring case. A blank query matches nothing.
func (s *InventoryService) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.InventoryItem{}, nil
	}

	items, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search inventory: %w", err)
	}
	return items, nil
}

// Create stores a new item unless another item already has the same
// normalized name, in which case it returns *DuplicateNameError and
// nothing is written.
func (s *InventoryService) Create(ctx context.Context, req *model.ItemRequest) (*model.InventoryItem, error) {
	name := model.NormalizeName(req.Name)
	if err := s.checkDuplicate(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	item := &model.InventoryItem{
		ID:        uid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(item)

	if err := s.repo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("inventory item created", zap.String("id", item.ID), zap.String("name", item.Name))
	s.publish(ctx, events.NewEvent(events.ItemCreated, item.ID, item))
	return item, nil
}

// Update overwrites every mutable field of item id with req and returns the
// item as written. It returns nil when the item does not exist, and
// *DuplicateNameError when another item already uses the normalized name.
// The item itself is excluded from the duplicate check, so renaming to a
// different casing is allowed.
func (s *InventoryService) Update(ctx context.Context, id string, req *model.ItemRequest) (*model.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	if item == nil {
		return nil, nil
	}

	if err := s.checkDuplicate(ctx, model.NormalizeName(req.Name), id); err != nil {
		return nil, err
	}

	req.Apply(item)
	item.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item %s: %w", id, err)
	}

	s.logger.Info("inventory item updated", zap.String("id", id))
	s.publish(ctx, events.NewEvent(events.ItemUpdated, id, item))
	return item, nil
}

// Delete removes item id. It returns false when the item does not exist.
func (s *InventoryService) Delete(ctx context.Context, id string) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check item %s: %w", id, err)
	}
	if !exists {
		return false, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete item %s: %w", id, err)
	}

	s.logger.Info("inventory item deleted", zap.String("id", id))
	s.publish(ctx, events.NewEvent(events.ItemDeleted, id, nil))
	return true, nil
}

// Stats summarizes the current inventory.
func (s *InventoryService) Stats(ctx context.Context) (model.InventoryStats, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return model.InventoryStats{}, fmt.Errorf("failed to list inventory: %w", err)
	}

	now := s.now()
	var stats model.InventoryStats
	for _, item := range items {
		stats.TotalItems++
		stats.TotalQuantity += int64(item.Quantity)
		if item.PhotoURL != nil {
			stats.WithPhoto++
		}
		if item.ExpiryDate != nil && item.ExpiryDate.Before(now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// checkDuplicate returns *DuplicateNameError if any item other than
// excludeID has the normalized name. It reads the backend directly so a
// stale cached list can't hide an existing name.
func (s *InventoryService) checkDuplicate(ctx context.Context, normalized, excludeID string) error {
	items, err := s.source.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check duplicate name: %w", err)
	}

	for _, existing := range items {
		if existing.ID == excludeID {
			continue
		}
		if model.NormalizeName(existing.Name) == normalized {
			return &DuplicateNameError{Name: normalized}
		}
	}
	return nil
}

func (s *InventoryService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish inventory event",
			zap.String("event-type", string(event.Type)),
			zap.String("item_id", event.ItemID),
			zap.Error(err),
		)
	}
}
