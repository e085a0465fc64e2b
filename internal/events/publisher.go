// Package events publishes inventory change notifications.
package events

import (
	"context"
	"time"

	"petcare-inventory-api/internal/model"

	"go.uber.org/zap"
)

// Type names an inventory change.
type Type string

const (
	ItemCreated Type = "item.created"
	ItemUpdated Type = "item.updated"
	ItemDeleted Type = "item.deleted"
)

// Event is one inventory change. Item is nil for deletions.
type Event struct {
	Type       Type                 `json:"type"`
	ItemID     string               `json:"itemId"`
	Item       *model.InventoryItem `json:"item,omitempty"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t Type, itemID string, item *model.InventoryItem) Event {
	return Event{Type: t, ItemID: itemID, Item: item, OccurredAt: time.Now().UTC()}
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info("inventory event",
		zap.String("event-type", string(event.Type)),
		zap.String("item_id", event.ItemID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error {
	return nil
}

var _ Publisher = (*LogPublisher)(nil)
