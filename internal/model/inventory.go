package model

import (
	"strings"
	"time"

	"petcare-inventory-api/pkg/apierror"
)

// InventoryItem is a stocked product: medication, food, supply or equipment.
type InventoryItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	Category    string     `json:"category"`
	Supplier    string     `json:"supplier"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Description *string    `json:"description"`
	PhotoURL    *string    `json:"photoUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ItemRequest is the payload for both create and update. On update every
// mutable field is overwritten, so an omitted optional field clears it.
type ItemRequest struct {
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	Category    string     `json:"category"`
	Supplier    string     `json:"supplier"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Description *string    `json:"description"`
	PhotoURL    *string    `json:"photoUrl"`
}

// Validate checks the field constraints and returns one entry per violation.
func (r *ItemRequest) Validate() []apierror.FieldError {
	var errs []apierror.FieldError

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, apierror.FieldError{Field: "name", Message: "name is required"})
	}
	if r.Quantity < 0 {
		errs = append(errs, apierror.FieldError{Field: "quantity", Message: "quantity must be zero or greater"})
	}
	if strings.TrimSpace(r.Category) == "" {
		errs = append(errs, apierror.FieldError{Field: "category", Message: "category is required"})
	}
	if strings.TrimSpace(r.Supplier) == "" {
		errs = append(errs, apierror.FieldError{Field: "supplier", Message: "supplier is required"})
	}

	return errs
}

// Apply copies every mutable field of the request onto item.
func (r *ItemRequest) Apply(item *InventoryItem) {
	item.Name = r.Name
	item.Quantity = r.Quantity
	item.Category = r.Category
	item.Supplier = r.Supplier
	item.ExpiryDate = r.ExpiryDate
	item.Description = r.Description
	item.PhotoURL = r.PhotoURL
}

// NormalizeName is the comparison form of an item name: trimmed and
// lowercased. Stored names keep their original spelling.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Matches reports whether query appears, ignoring case, in the item's name,
// category or supplier.
func (i *InventoryItem) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(i.Name), q) ||
		strings.Contains(strings.ToLower(i.Category), q) ||
		strings.Contains(strings.ToLower(i.Supplier), q)
}

// InventoryStats summarizes the stored inventory.
type InventoryStats struct {
	TotalItems    int64 `json:"total_items"`
	TotalQuantity int64 `json:"total_quantity"`
	WithPhoto     int64 `json:"with_photo"`
	Expired       int64 `json:"expired"`
}
