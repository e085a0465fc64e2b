package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petcare-inventory-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLInventoryRepository implements InventoryRepository using MySQL.
// The DSN must set parseTime=true.
type MySQLInventoryRepository struct {
	db *sql.DB
}

// NewMySQLInventoryRepository opens a MySQL pool and creates the schema.
func NewMySQLInventoryRepository(dsn string, logger *zap.Logger) (*MySQLInventoryRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// The driver rejects multi-statement Exec unless multiStatements=true,
	// so the index lives inside CREATE TABLE.
	_, err = db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS inventory_items (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL,
		category VARCHAR(255) NOT NULL,
		supplier VARCHAR(255) NOT NULL,
		expiry_date DATETIME(6) NULL,
		description TEXT NULL,
		photo_url VARCHAR(1024) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_inventory_items_created_at (created_at)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info("MySQL inventory repository initialized")
	}
	return &MySQLInventoryRepository{db: db}, nil
}

// GetAll returns every item ordered by creation time.
func (r *MySQLInventoryRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items, err := scanRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	return items, nil
}

// GetByID returns the item with the given id, or nil.
func (r *MySQLInventoryRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// Search matches query against name, category and supplier.
func (r *MySQLInventoryRepository) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	pattern := likePattern(query)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(supplier) LIKE ?
		ORDER BY created_at, id`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	items, err := scanRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	return items, nil
}

// Exists reports whether id is stored.
func (r *MySQLInventoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return count > 0, nil
}

// Add inserts a new item.
func (r *MySQLInventoryRepository) Add(ctx context.Context, item *model.InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Quantity, item.Category, item.Supplier,
		nullTime(item.ExpiryDate), nullString(item.Description), nullString(item.PhotoURL),
		item.CreatedAt.UTC(), item.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of the item.
func (r *MySQLInventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items SET
			name = ?, quantity = ?, category = ?, supplier = ?,
			expiry_date = ?, description = ?, photo_url = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Quantity, item.Category, item.Supplier,
		nullTime(item.ExpiryDate), nullString(item.Description), nullString(item.PhotoURL),
		item.UpdatedAt.UTC(), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes the item with the given id.
func (r *MySQLInventoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// GetStats returns the item count and pool statistics.
func (r *MySQLInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_items").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_items"] = count

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Close closes the database connection pool.
func (r *MySQLInventoryRepository) Close() error {
	return r.db.Close()
}

var _ InventoryRepository = (*MySQLInventoryRepository)(nil)
