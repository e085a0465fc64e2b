package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"petcare-inventory-api/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// sqliteTimeLayout is used for every timestamp column. Values are always
// UTC so lexical order matches chronological order.
const sqliteTimeLayout = time.RFC3339Nano

// SQLiteInventoryRepository implements InventoryRepository using SQLite.
// Thread-safe with WAL mode for concurrent reads.
type SQLiteInventoryRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteInventoryRepository creates a new SQLite inventory repository.
// dbPath is the path to the SQLite database file (e.g., "./data/inventory.db")
// or ":memory:".
func NewSQLiteInventoryRepository(dbPath string, logger *zap.Logger) (*SQLiteInventoryRepository, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer; a single connection also keeps
	// ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite inventory repository initialized", zap.String("path", dbPath))
	}
	return &SQLiteInventoryRepository{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		category TEXT NOT NULL,
		supplier TEXT NOT NULL,
		expiry_date TEXT,
		description TEXT,
		photo_url TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_items_created_at ON inventory_items(created_at);
	`
	_, err := db.Exec(query)
	return err
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func formatSQLiteTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatSQLiteTime(*t), Valid: true}
}

// scanSQLiteItem reads one row where timestamps are stored as text.
func scanSQLiteItem(s rowScanner) (*model.InventoryItem, error) {
	var (
		item                 model.InventoryItem
		expiry, desc, photo  sql.NullString
		createdAt, updatedAt string
	)

	err := s.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &item.Supplier,
		&expiry, &desc, &photo, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		t, err := time.Parse(sqliteTimeLayout, expiry.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expiry_date: %w", err)
		}
		item.ExpiryDate = &t
	}
	if item.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	item.Description = nullStringPtr(desc)
	item.PhotoURL = nullStringPtr(photo)

	return &item, nil
}

// GetAll returns every item ordered by creation time.
func (r *SQLiteInventoryRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items, err := scanRows(rows, scanSQLiteItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	return items, nil
}

// GetByID returns the item with the given id, or nil.
func (r *SQLiteInventoryRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanSQLiteItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// Search matches query against name, category and supplier. SQLite's
// LOWER folds ASCII only, so matching runs in Go.
func (r *SQLiteInventoryRepository) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.InventoryItem, 0)
	for i := range all {
		if all[i].Matches(query) {
			items = append(items, all[i])
		}
	}
	return items, nil
}

// Exists reports whether id is stored.
func (r *SQLiteInventoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return count > 0, nil
}

// Add inserts a new item.
func (r *SQLiteInventoryRepository) Add(ctx context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Quantity, item.Category, item.Supplier,
		formatSQLiteTimePtr(item.ExpiryDate), nullString(item.Description), nullString(item.PhotoURL),
		formatSQLiteTime(item.CreatedAt), formatSQLiteTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of the item.
func (r *SQLiteInventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items SET
			name = ?, quantity = ?, category = ?, supplier = ?,
			expiry_date = ?, description = ?, photo_url = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Quantity, item.Category, item.Supplier,
		formatSQLiteTimePtr(item.ExpiryDate), nullString(item.Description), nullString(item.PhotoURL),
		formatSQLiteTime(item.UpdatedAt), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes the item with the given id.
func (r *SQLiteInventoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// GetStats returns statistics about the inventory database.
func (r *SQLiteInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_items").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_items"] = count

	var lastUpdate sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM inventory_items").Scan(&lastUpdate); err == nil && lastUpdate.Valid {
		stats["last_update"] = lastUpdate.String
	}

	// Database size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteInventoryRepository) Close() error {
	return r.db.Close()
}

var _ InventoryRepository = (*SQLiteInventoryRepository)(nil)
