package repository

import (
	"database/sql"
	"strings"
	"time"

	"petcare-inventory-api/internal/model"
)

const itemColumns = `id, name, quantity, category, supplier, expiry_date, description, photo_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// likePattern builds a %query% pattern for LIKE with \ as the escape
// character, so user input can't inject wildcards.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

// scanItem reads one row for drivers that return native timestamps.
func scanItem(s rowScanner) (*model.InventoryItem, error) {
	var (
		item        model.InventoryItem
		expiry      sql.NullTime
		desc, photo sql.NullString
	)

	err := s.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &item.Supplier,
		&expiry, &desc, &photo, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		t := expiry.Time
		item.ExpiryDate = &t
	}
	item.Description = nullStringPtr(desc)
	item.PhotoURL = nullStringPtr(photo)

	return &item, nil
}

func scanRows(rows *sql.Rows, scan func(rowScanner) (*model.InventoryItem, error)) ([]model.InventoryItem, error) {
	defer rows.Close()

	items := make([]model.InventoryItem, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
